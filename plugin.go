// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

import "fmt"

// FileStrategy names which walk strategy a plugin wants applied to its source folder.
type FileStrategy uint8

const (
	FileStrategyNone FileStrategy = iota
	FileStrategySimpleTree
	FileStrategyOptimizedTree
)

// CloudVersion is a resolved plugin version requirement: an exact/semver-ish string, a
// filesystem path, or a free-form tag, per Open Question resolution #2 (best-effort).
type CloudVersion struct {
	Kind string // "semver", "path", or "unknown"
	Raw  string
}

// ParseCloudVersion classifies a raw version string. No semver range parser is
// introduced (see SPEC_FULL.md's Open Question resolutions); "semver" is recognized
// syntactically (a leading digit or comparison operator), "path" when it looks like a
// filesystem path, else "unknown".
func ParseCloudVersion(raw string) CloudVersion {
	if raw == "" {
		return CloudVersion{Kind: "unknown", Raw: raw}
	}
	switch raw[0] {
	case '.', '/', '~':
		return CloudVersion{Kind: "path", Raw: raw}
	}
	if c := raw[0]; (c >= '0' && c <= '9') || c == '^' || c == '=' || c == '>' || c == '<' {
		return CloudVersion{Kind: "semver", Raw: raw}
	}
	return CloudVersion{Kind: "unknown", Raw: raw}
}

// DependencyOption is one value of a CloudDependency's free-form options map.
type DependencyOption struct {
	String  string
	Integer int64
	Float   float64
	Boolean bool
	Array   []DependencyOption
	Kind    string // "string", "integer", "float", "boolean", "array"
}

// Dependency describes one entry of a Setup's declared dependencies.
type Dependency struct {
	Name     string
	Version  CloudVersion
	Optional bool
	Options  map[string]DependencyOption
}

// Setup is the descriptor a plugin returns from its cloud_setup entry point.
type Setup struct {
	Name         string
	Version      string
	SourceFolder string
	FileStarts   string
	HasStarts    bool
	FileEnds     string
	HasEnds      bool
	FileStrategy FileStrategy
	Dependencies []Dependency
}

// ManifestUpdate is the mergeable record emitted by a plugin's cloud_before_manifest and
// cloud_manifest entry points, per spec §4.6.
type ManifestUpdate struct {
	Imports   map[string]string // path -> items, concatenated on key collision
	Arguments map[string]string // name -> type description, must match exactly on collision
	Content   string
}

// NewManifestUpdate returns an empty, ready-to-merge ManifestUpdate.
func NewManifestUpdate() ManifestUpdate {
	return ManifestUpdate{
		Imports:   make(map[string]string),
		Arguments: make(map[string]string),
	}
}

// Merge folds other into u in place, per spec §4.6's merge semantics: import values
// concatenate, argument values must agree exactly (else *ArgumentConflictError), and
// content appends.
func (u *ManifestUpdate) Merge(other ManifestUpdate) error {
	if u.Imports == nil {
		u.Imports = make(map[string]string)
	}
	if u.Arguments == nil {
		u.Arguments = make(map[string]string)
	}

	for path, items := range other.Imports {
		u.Imports[path] += items
	}

	for name, typ := range other.Arguments {
		if existing, ok := u.Arguments[name]; ok {
			if existing != typ {
				return &ArgumentConflictError{Name: name, Have: existing, Want: typ}
			}
			continue
		}
		u.Arguments[name] = typ
	}

	u.Content += other.Content

	return nil
}

// PluginHost is the stable ABI over a loaded cloud plugin, per spec §4.5. Concrete
// loading is delegated to internal/pluginffi; this interface is what Strategy and
// ManifestAssembler depend on so they can be tested against a fake without cgo.
type PluginHost interface {
	Setup() (Setup, error)
	PostSetup() error
	FileResolve(file CloudFile) (Resolution, error)
	BeforeManifest() (ManifestUpdate, error)
	Manifest(leaf Leaf, staticChildrenSrc, childrenSrc, dynamicChildSrc string) (ManifestUpdate, error)
	DebugContext()
	Close() error
}

// Filter adapts a Setup's file_starts/file_ends into a FileFilter for Strategy's walk.
func (s Setup) Filter() FileFilter {
	var f FileFilter
	if s.HasStarts {
		f.Starts = []string{s.FileStarts}
	}
	if s.HasEnds {
		f.Ends = []string{s.FileEnds}
	}
	return f
}

// pluginHostResolver adapts a PluginHost to the FileResolver interface Strategy.Walk
// consumes, so Strategy never depends on the full PluginHost surface.
type pluginHostResolver struct {
	host  PluginHost
	setup Setup
}

// NewFileResolver wraps host, fetching its Setup once up front to build the filter.
func NewFileResolver(host PluginHost) (FileResolver, error) {
	setup, err := host.Setup()
	if err != nil {
		return nil, fmt.Errorf("densky: cloud_setup: %w", err)
	}
	return &pluginHostResolver{host: host, setup: setup}, nil
}

func (r *pluginHostResolver) FileResolve(file CloudFile) (Resolution, error) {
	return r.host.FileResolve(file)
}

func (r *pluginHostResolver) Filter() FileFilter {
	return r.setup.Filter()
}
