package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Config holds user-tunable settings for a run. Every field has a default,
// so a missing config file is not an error.
//
// The file format is JSONC: comments and trailing commas are tolerated, the
// same way editor config files behave. Unknown fields are silently ignored.
type Config struct {
	// OscBin is the OBS client binary. Default "osc".
	OscBin string `json:"oscBin,omitempty"`

	// XsctBin is the vendor batch tool binary. Default "xsct".
	XsctBin string `json:"xsctBin,omitempty"`

	// UnzipBin is the archive extraction binary. Default "unzip".
	UnzipBin string `json:"unzipBin,omitempty"`

	// XzBin is the compressor binary. Default "xz".
	XzBin string `json:"xzBin,omitempty"`

	// APIURL overrides the OBS API endpoint (osc -A). Empty means the
	// osc default (the user's ~/.oscrc configuration).
	APIURL string `json:"apiUrl,omitempty"`

	// Project is the default OBS project when -p is not given. The %s
	// placeholder, if present, is replaced with the osc username.
	Project string `json:"project,omitempty"`

	// EDAImage is a container image carrying the vendor tools. When set,
	// the batch tool runs inside a container with the work directory
	// bind-mounted, instead of a locally installed xsct.
	EDAImage string `json:"edaImage,omitempty"`

	// DeviceTreeRepo is a checkout of the vendor's device-tree generator
	// repository, required for the devicetree artifact.
	DeviceTreeRepo string `json:"deviceTreeRepo,omitempty"`
}

// defaults for settings the config file does not override.
const (
	defaultOscBin   = "osc"
	defaultXsctBin  = "xsct"
	defaultUnzipBin = "unzip"
	defaultXzBin    = "xz"

	// defaultProject derives the project from the osc account:
	// home:<user>:hardware:mpsoc.
	defaultProject = "home:%s:hardware:mpsoc"
)

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		OscBin:   defaultOscBin,
		XsctBin:  defaultXsctBin,
		UnzipBin: defaultUnzipBin,
		XzBin:    defaultXzBin,
		Project:  defaultProject,
	}
}

// Path returns the expected location of the user config file:
// $XDG_CONFIG_HOME/hdf2obs/config.jsonc (os.UserConfigDir semantics).
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, "hdf2obs", "config.jsonc"), nil
}

// Load reads the user config from the default location and merges it over
// the defaults. A missing file yields the defaults without error; a file
// that exists but cannot be parsed is an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		// No config directory — fall back to defaults silently.
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads and parses a config file at an explicit path, merging it
// over the defaults. Used directly by tests and by Load.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Strip comments and trailing commas before handing the bytes to
	// encoding/json. The config format deliberately matches the JSONC
	// dialect users know from editor configuration files.
	clean := jsonc.ToJSON(data)

	var overrides Config
	if err := json.Unmarshal(clean, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.merge(&overrides)
	return cfg, nil
}

// merge copies every non-empty field of overrides onto c.
func (c *Config) merge(overrides *Config) {
	if overrides.OscBin != "" {
		c.OscBin = overrides.OscBin
	}
	if overrides.XsctBin != "" {
		c.XsctBin = overrides.XsctBin
	}
	if overrides.UnzipBin != "" {
		c.UnzipBin = overrides.UnzipBin
	}
	if overrides.XzBin != "" {
		c.XzBin = overrides.XzBin
	}
	if overrides.APIURL != "" {
		c.APIURL = overrides.APIURL
	}
	if overrides.Project != "" {
		c.Project = overrides.Project
	}
	if overrides.EDAImage != "" {
		c.EDAImage = overrides.EDAImage
	}
	if overrides.DeviceTreeRepo != "" {
		c.DeviceTreeRepo = overrides.DeviceTreeRepo
	}
}

// ProjectFor resolves the configured project template against the osc
// username. Templates without the %s placeholder are returned verbatim.
func (c *Config) ProjectFor(username string) string {
	if c.Project == "" {
		return fmt.Sprintf(defaultProject, username)
	}
	if containsPlaceholder(c.Project) {
		return fmt.Sprintf(c.Project, username)
	}
	return c.Project
}

// containsPlaceholder reports whether the template carries the single
// supported %s verb. Any other verb would make Sprintf emit error text,
// so only a literal "%s" counts.
func containsPlaceholder(template string) bool {
	for i := 0; i+1 < len(template); i++ {
		if template[i] == '%' {
			return template[i+1] == 's'
		}
	}
	return false
}
