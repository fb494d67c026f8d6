package export

import (
	"fmt"
	"sort"

	"keyring-export/src/kdbx"
)

// Properties converts a record's attribute map into custom properties,
// byte-for-byte and sorted by key so the output is deterministic. Keys that
// collide with first-class field names are kept: downstream Secret Service
// bridges match entries on these exact attributes.
func Properties(attrs map[string]string) []kdbx.Property {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	props := make([]kdbx.Property, 0, len(keys))
	for _, k := range keys {
		props = append(props, kdbx.Property{Key: k, Value: attrs[k]})
	}
	return props
}

// validateAttributes rejects attribute sets the container cannot represent.
func validateAttributes(attrs map[string]string) error {
	for k := range attrs {
		if k == "" {
			return fmt.Errorf("attribute with empty key")
		}
	}
	return nil
}
