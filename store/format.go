package store

import (
	"fmt"
	"strings"
)

// StorageFormat names the on-disk dialect used for a logical config entity.
type StorageFormat string

const (
	// FormatStandard is the literal/script dialect with the ".mk" extension.
	FormatStandard StorageFormat = "standard"

	// FormatRaw is the JSON dialect with the ".cfg" extension.
	FormatRaw StorageFormat = "raw"
)

// StorageFormatFromString parses a storage format name.
func StorageFormatFromString(s string) (StorageFormat, error) {
	switch StorageFormat(strings.ToLower(s)) {
	case FormatStandard:
		return FormatStandard, nil
	case FormatRaw:
		return FormatRaw, nil
	default:
		return "", fmt.Errorf("unknown storage format %q", s)
	}
}

func (f StorageFormat) String() string { return string(f) }

// Extension returns the file extension used by this format.
func (f StorageFormat) Extension() string {
	if f == FormatRaw {
		return ".cfg"
	}
	return ".mk"
}

// HostsFile returns the file name holding host definitions in this format.
func (f StorageFormat) HostsFile() string {
	return "hosts" + f.Extension()
}

// IsHostsConfig reports whether the site-relative path names a hosts config
// file of this format. Only files below /wato/ qualify.
func (f StorageFormat) IsHostsConfig(path string) bool {
	return strings.HasPrefix(path, "/wato/") && strings.HasSuffix(path, "/"+f.HostsFile())
}
