package actions

import (
	"context"
	"fmt"
	"os"

	"github.com/coreos/go-systemd/v22/util"
	"golang.org/x/mod/semver"
	"golang.org/x/sys/unix"

	"github.com/felixgeelhaar/centos2alma/internal/domain/action"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// check holds the name and the remediation text of a check.
type check struct {
	name        string
	description string
}

func (c *check) Name() string        { return c.name }
func (c *check) Description() string { return c.description }

// AssertRoot passes when the tool runs as root.
type AssertRoot struct {
	check
	euid func() int
}

// NewAssertRoot creates the check.
func NewAssertRoot() *AssertRoot {
	return &AssertRoot{
		check: check{name: "root user", description: "The conversion must be run as root. Use sudo or log in as root."},
		euid:  os.Geteuid,
	}
}

// Check compares the effective user id with 0.
func (c *AssertRoot) Check(_ context.Context) (bool, error) {
	return c.euid() == 0, nil
}

// AssertOSVersion passes on CentOS 7.
type AssertOSVersion struct {
	check
	fs   ports.FileSystem
	path string
}

// NewAssertOSVersion creates the check reading the os-release file at path.
func NewAssertOSVersion(fs ports.FileSystem, path string) *AssertOSVersion {
	return &AssertOSVersion{
		check: check{name: "distribution version", description: "Only CentOS 7 can be converted to AlmaLinux 8."},
		fs:    fs,
		path:  path,
	}
}

// Check reads os-release and compares the version with 7.
func (c *AssertOSVersion) Check(_ context.Context) (bool, error) {
	release, err := ReadOSRelease(c.fs, c.path)
	if err != nil {
		return false, err
	}

	version := release.SemVer()
	if release.ID == "centos" && version != "" && semver.Major(version) == "v7" {
		return true, nil
	}

	c.description = fmt.Sprintf("Only CentOS 7 can be converted to AlmaLinux 8, this system runs %s.", release)
	return false, nil
}

// AssertFreeSpace passes when a filesystem has enough room for the upgrade
// packages.
type AssertFreeSpace struct {
	check
	path   string
	minMB  int64
	statfs func(path string, buf *unix.Statfs_t) error
}

// NewAssertFreeSpace creates the check for the filesystem holding path.
func NewAssertFreeSpace(path string, minMB int64) *AssertFreeSpace {
	return &AssertFreeSpace{
		check:  check{name: "free disk space", description: fmt.Sprintf("At least %d MiB must be free on %s.", minMB, path)},
		path:   path,
		minMB:  minMB,
		statfs: unix.Statfs,
	}
}

// Check compares the space available to unprivileged users with the minimum.
func (c *AssertFreeSpace) Check(_ context.Context) (bool, error) {
	var st unix.Statfs_t
	if err := c.statfs(c.path, &st); err != nil {
		return false, fmt.Errorf("failed to stat filesystem of %s: %w", c.path, err)
	}

	freeMB := int64(st.Bavail) * int64(st.Bsize) / (1024 * 1024)
	if freeMB >= c.minMB {
		return true, nil
	}

	c.description = fmt.Sprintf("Only %d MiB are free on %s, the conversion needs at least %d MiB. Free up %d MiB and try again.",
		freeMB, c.path, c.minMB, c.minMB-freeMB)
	return false, nil
}

// AssertSystemd passes when systemd is the init system, which the resume
// service relies on.
type AssertSystemd struct {
	check
	running func() bool
}

// NewAssertSystemd creates the check.
func NewAssertSystemd() *AssertSystemd {
	return &AssertSystemd{
		check:   check{name: "systemd", description: "The system must be booted with systemd to resume the conversion after the reboot."},
		running: util.IsRunningSystemd,
	}
}

// Check looks for the systemd runtime directory.
func (c *AssertSystemd) Check(_ context.Context) (bool, error) {
	return c.running(), nil
}

var (
	_ action.CheckAction = (*AssertRoot)(nil)
	_ action.CheckAction = (*AssertOSVersion)(nil)
	_ action.CheckAction = (*AssertFreeSpace)(nil)
	_ action.CheckAction = (*AssertSystemd)(nil)
)
