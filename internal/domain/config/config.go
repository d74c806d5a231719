// Package config holds the settings of the conversion tool: where state,
// status and logs live, how the leapp tooling is installed and how the
// conversion resumes after the reboot.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// Default locations and values.
const (
	DefaultStatePath      = "/usr/local/psa/var/centos2alma/actions.json"
	DefaultStatusPath     = "/tmp/centos2alma.status"
	DefaultLogPath        = "/var/log/plesk/centos2alma.log"
	DefaultLockPath       = "/var/run/centos2alma.lock"
	DefaultReportInterval = time.Second
	DefaultLeappPackage   = "leapp-upgrade"
	DefaultUnitName       = "centos2alma-resume.service"
	DefaultUnitDir        = "/etc/systemd/system"
	DefaultBinaryPath     = "/usr/local/bin/centos2alma"
	DefaultMinFreeSpaceMB = 5 * 1024
)

// Duration is a time.Duration read from "1s" style strings.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete tool configuration.
type Config struct {
	StatePath      string     `yaml:"state_path" toml:"state_path"`
	StatusPath     string     `yaml:"status_path" toml:"status_path"`
	LogPath        string     `yaml:"log_path" toml:"log_path"`
	LogLevel       string     `yaml:"log_level" toml:"log_level"`
	LockPath       string     `yaml:"lock_path" toml:"lock_path"`
	ReportInterval Duration   `yaml:"report_interval" toml:"report_interval"`
	MinFreeSpaceMB int64      `yaml:"min_free_space_mb" toml:"min_free_space_mb"`
	Leapp          Leapp      `yaml:"leapp" toml:"leapp"`
	ResumeUnit     ResumeUnit `yaml:"resume_unit" toml:"resume_unit"`
}

// Leapp configures the upgrade tooling.
type Leapp struct {
	// Package is the package that provides leapp and its AlmaLinux data.
	Package string `yaml:"package" toml:"package"`
	// RepoDir holds the yum .repo files.
	RepoDir string `yaml:"repo_dir" toml:"repo_dir"`
	// DisableRepos lists repository ids leapp cannot upgrade through.
	DisableRepos []string `yaml:"disable_repos" toml:"disable_repos"`
}

// ResumeUnit configures the boot-time service that runs the finish pass.
type ResumeUnit struct {
	Name   string `yaml:"name" toml:"name"`
	Dir    string `yaml:"dir" toml:"dir"`
	Binary string `yaml:"binary" toml:"binary"`
}

// Path returns the unit file location.
func (u ResumeUnit) Path() string {
	return filepath.Join(u.Dir, u.Name)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		StatePath:      DefaultStatePath,
		StatusPath:     DefaultStatusPath,
		LogPath:        DefaultLogPath,
		LogLevel:       ports.LevelInfo.String(),
		LockPath:       DefaultLockPath,
		ReportInterval: Duration{DefaultReportInterval},
		MinFreeSpaceMB: DefaultMinFreeSpaceMB,
		Leapp: Leapp{
			Package:      DefaultLeappPackage,
			RepoDir:      "/etc/yum.repos.d",
			DisableRepos: []string{"epel", "epel-testing"},
		},
		ResumeUnit: ResumeUnit{
			Name:   DefaultUnitName,
			Dir:    DefaultUnitDir,
			Binary: DefaultBinaryPath,
		},
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	errs := &ErrorList{}

	paths := []struct {
		field string
		value string
	}{
		{"state_path", c.StatePath},
		{"status_path", c.StatusPath},
		{"log_path", c.LogPath},
		{"lock_path", c.LockPath},
		{"leapp.repo_dir", c.Leapp.RepoDir},
		{"resume_unit.dir", c.ResumeUnit.Dir},
	}
	for _, p := range paths {
		if p.value == "" {
			errs.AddValidation(p.field, "path is required", "Set an absolute path or remove the key to use the default.")
		} else if !filepath.IsAbs(p.value) {
			errs.AddValidation(p.field, fmt.Sprintf("path %q is not absolute", p.value), "Use an absolute path.")
		}
	}

	if c.StatePath != "" && c.StatePath == c.StatusPath {
		errs.AddValidation("status_path", "must differ from state_path", "The status file is removed after every run; keep it apart from the state file.")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs.AddValidation("log_level", fmt.Sprintf("unknown level %q", c.LogLevel), "Use one of: debug, info, warn, error.")
	}

	if c.ReportInterval.Duration <= 0 {
		errs.AddValidation("report_interval", "must be positive", "Use a value like \"1s\".")
	}
	if c.MinFreeSpaceMB < 0 {
		errs.AddValidation("min_free_space_mb", "must not be negative", "")
	}
	if c.Leapp.Package == "" {
		errs.AddValidation("leapp.package", "package is required", fmt.Sprintf("The default is %q.", DefaultLeappPackage))
	}
	if c.ResumeUnit.Name == "" || !strings.HasSuffix(c.ResumeUnit.Name, ".service") {
		errs.AddValidation("resume_unit.name", fmt.Sprintf("invalid unit name %q", c.ResumeUnit.Name), "Unit names end in \".service\".")
	}
	if c.ResumeUnit.Binary == "" {
		errs.AddValidation("resume_unit.binary", "binary is required", "Point it at the installed centos2alma executable.")
	}

	return errs.AsError()
}
