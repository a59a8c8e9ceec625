// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudSpecUnmarshalBareString(t *testing.T) {
	var spec CloudSpec
	require.NoError(t, json.Unmarshal([]byte(`"1.2.3"`), &spec))
	assert.Equal(t, "1.2.3", spec.Version)
	assert.Nil(t, spec.Extra)
}

func TestCloudSpecUnmarshalObject(t *testing.T) {
	var spec CloudSpec
	require.NoError(t, json.Unmarshal([]byte(`{"version": "1.2.3", "options": {"strict": true}}`), &spec))
	assert.Equal(t, "1.2.3", spec.Version)
	require.Contains(t, spec.Extra, "options")
}

func TestCloudSpecUnmarshalObjectWithoutVersion(t *testing.T) {
	var spec CloudSpec
	require.NoError(t, json.Unmarshal([]byte(`{"options": {"strict": true}}`), &spec))
	assert.Empty(t, spec.Version)
	require.Contains(t, spec.Extra, "options")
}

func TestLoadConfigStripsComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "densky.jsonc")
	contents := `{
		// the driver's own settings
		"densky": {
			"output": ".densky",
			"vendor": ["./vendor"],
		},
		"clouds": {
			"http-router": "^1.0.0",
			"static-files": { "version": "./local/static-files" },
		},
	}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ".densky", cfg.Densky.Output)
	assert.Equal(t, []string{"./vendor"}, cfg.Densky.Vendor)
	require.Contains(t, cfg.Clouds, "http-router")
	assert.Equal(t, "^1.0.0", cfg.Clouds["http-router"].Version)
	require.Contains(t, cfg.Clouds, "static-files")
	assert.Equal(t, "./local/static-files", cfg.Clouds["static-files"].Version)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.jsonc"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestResolveCloudPathPrefersPath(t *testing.T) {
	dir := t.TempDir()
	libPath := filepath.Join(dir, "libdensky_custom.so")
	require.NoError(t, os.WriteFile(libPath, []byte("x"), 0o644))

	cfg := &Config{
		Clouds: map[string]CloudSpec{
			"custom": {Version: libPath},
		},
	}

	got, err := cfg.ResolveCloudPath("custom", func(name string) string {
		return "libdensky_" + name + ".so"
	})
	require.NoError(t, err)
	assert.Equal(t, libPath, got)
}

func TestResolveCloudPathSearchesVendor(t *testing.T) {
	vendorDir := t.TempDir()
	libPath := filepath.Join(vendorDir, "libdensky_http-router.so")
	require.NoError(t, os.WriteFile(libPath, []byte("x"), 0o644))

	cfg := &Config{
		Densky: DenskyConfig{Vendor: []string{vendorDir}},
		Clouds: map[string]CloudSpec{
			"http-router": {Version: "^1.0.0"},
		},
	}

	got, err := cfg.ResolveCloudPath("http-router", func(name string) string {
		return "libdensky_" + name + ".so"
	})
	require.NoError(t, err)
	assert.Equal(t, libPath, got)
}

func TestResolveCloudPathNotFound(t *testing.T) {
	cfg := &Config{
		Densky: DenskyConfig{Vendor: []string{t.TempDir()}},
		Clouds: map[string]CloudSpec{
			"missing": {Version: "^1.0.0"},
		},
	}

	_, err := cfg.ResolveCloudPath("missing", func(name string) string {
		return "libdensky_" + name + ".so"
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPluginLoad)
}

func TestResolveCloudPathUnknownCloud(t *testing.T) {
	cfg := &Config{Clouds: map[string]CloudSpec{}}
	_, err := cfg.ResolveCloudPath("nope", func(name string) string { return name })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestParseCloudVersionClassification(t *testing.T) {
	assert.Equal(t, "semver", ParseCloudVersion("^1.2.3").Kind)
	assert.Equal(t, "path", ParseCloudVersion("./local/cloud").Kind)
	assert.Equal(t, "unknown", ParseCloudVersion("latest").Kind)
	assert.Equal(t, "unknown", ParseCloudVersion("").Kind)
}
