package actions

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// OSReleasePath is the os-release(5) file of the running system.
const OSReleasePath = "/etc/os-release"

// OSRelease is the subset of os-release(5) the checks need.
type OSRelease struct {
	ID         string
	VersionID  string
	PrettyName string
}

// ReadOSRelease parses the os-release file at path.
func ReadOSRelease(fs ports.FileSystem, path string) (OSRelease, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return OSRelease{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := ini.Load(data)
	if err != nil {
		return OSRelease{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	section := cfg.Section(ini.DefaultSection)
	return OSRelease{
		ID:         strings.ToLower(section.Key("ID").String()),
		VersionID:  section.Key("VERSION_ID").String(),
		PrettyName: section.Key("PRETTY_NAME").String(),
	}, nil
}

// SemVer returns VERSION_ID as a semantic version ("7" becomes "v7"), or ""
// when it cannot be read as one.
func (r OSRelease) SemVer() string {
	v := "v" + strings.TrimPrefix(r.VersionID, "v")
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// String returns the pretty name, falling back to id and version.
func (r OSRelease) String() string {
	if r.PrettyName != "" {
		return r.PrettyName
	}
	return strings.TrimSpace(r.ID + " " + r.VersionID)
}
