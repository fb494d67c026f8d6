package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"keyring-export/src/export"
)

// initConfig wires viper as the defaults layer: a keyring-export.yaml in the
// working directory or ~/.config/keyring-export/, overlaid by
// KEYRING_EXPORT_* environment variables. Flags still win when set.
func initConfig() {
	viper.SetConfigName("keyring-export")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "keyring-export"))
	}

	viper.SetEnvPrefix("KEYRING_EXPORT")
	viper.AutomaticEnv()

	viper.SetDefault("output", "keyring-export.kdbx")
	viper.SetDefault("on_conflict", export.ConflictSkip.String())
	viper.SetDefault("group_by", export.GroupService.String())
	viper.SetDefault("backup", false)

	// Config file is optional.
	_ = viper.ReadInConfig()
}
