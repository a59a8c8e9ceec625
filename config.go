// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config is the top-level shape of densky's JSON-with-comments config file, per §6.
type Config struct {
	Densky DenskyConfig         `json:"densky"`
	Clouds map[string]CloudSpec `json:"clouds"`
}

// DenskyConfig holds the driver's own settings.
type DenskyConfig struct {
	Verbose bool     `json:"verbose,omitempty"`
	Output  string   `json:"output,omitempty"`
	Vendor  []string `json:"vendor,omitempty"`

	// UpdatePort is the port the child runtime process advertises for update-event
	// POSTs, per §6. Zero means no child is running and update events are skipped.
	UpdatePort int `json:"updatePort,omitempty"`
}

// CloudSpec unmarshals either a bare version string (`"my-cloud": "1.2.3"`) or an object
// carrying a version plus arbitrary extra fields (`"my-cloud": {"version": "1.2.3", ...}`).
type CloudSpec struct {
	Version string
	Extra   map[string]json.RawMessage
}

// UnmarshalJSON implements the string-or-object shape described above.
func (c *CloudSpec) UnmarshalJSON(data []byte) error {
	var version string
	if err := json.Unmarshal(data, &version); err == nil {
		c.Version = version
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: cloud spec must be a string or an object", ErrConfig)
	}
	if raw, ok := obj["version"]; ok {
		if err := json.Unmarshal(raw, &c.Version); err != nil {
			return fmt.Errorf("%w: cloud spec \"version\" must be a string", ErrConfig)
		}
		delete(obj, "version")
	}
	c.Extra = obj
	return nil
}

// LoadConfig reads and parses the JSONC config file at path.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	standard, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	var cfg Config
	if err := json.Unmarshal(standard, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return &cfg, nil
}

// DefaultDenskyInstall returns $DENSKY_INSTALL, or $HOME/.densky if unset, per §6.
func DefaultDenskyInstall() string {
	if v := os.Getenv("DENSKY_INSTALL"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".densky"
	}
	return filepath.Join(home, ".densky")
}

// CloudSearchPaths returns, in order, every directory consulted when resolving name's
// shared-library path: the config's vendor list, then $DENSKY_INSTALL (default
// $HOME/.densky), per §6.
func (c *Config) CloudSearchPaths() []string {
	paths := make([]string, 0, len(c.Densky.Vendor)+1)
	paths = append(paths, c.Densky.Vendor...)
	paths = append(paths, DefaultDenskyInstall())
	return paths
}

// ResolveCloudPath returns name's version when that version is a filesystem path that
// exists; otherwise it looks for the file named libraryFilename(name) under each of the
// search paths in order. Any other version string (a semver range or a tag) is not
// compared against anything and does not narrow the search.
func (c *Config) ResolveCloudPath(name string, libraryFilename func(name string) string) (string, error) {
	spec, ok := c.Clouds[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown cloud %q", ErrConfig, name)
	}

	version := ParseCloudVersion(spec.Version)
	if version.Kind == "path" {
		if _, err := os.Stat(version.Raw); err == nil {
			return version.Raw, nil
		}
	}

	filename := libraryFilename(name)
	for _, dir := range c.CloudSearchPaths() {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: cloud %q not found in any search path", ErrPluginLoad, name)
}
