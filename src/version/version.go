package version

// Version is the semantic version of the keyring-export binary.
// Overridden at release time via -ldflags "-X keyring-export/src/version.Version=...".
var Version = "0.1.0-dev"
