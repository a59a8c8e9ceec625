// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is returned when the config file is missing, malformed, or carries an invalid version spec.
	ErrConfig = errors.New("config error")
	// ErrPluginLoad is returned when a shared library cannot be found or is missing a required symbol.
	ErrPluginLoad = errors.New("plugin load error")
	// ErrPluginCall is returned when a plugin call returns an error variant.
	ErrPluginCall = errors.New("plugin call error")
	// ErrPathResolve is returned when a file path cannot be made relative to the input root, or decoded to text.
	ErrPathResolve = errors.New("path resolve error")
	// ErrThornConflict is returned when a SingleThorn is inserted twice for the same path/name.
	ErrThornConflict = errors.New("thorn conflict")
	// ErrArgumentConflict is returned when a ManifestUpdate merge sees two different types for the same argument name.
	ErrArgumentConflict = errors.New("argument conflict")
	// ErrFatal signals an invariant violation that aborts the build.
	ErrFatal = errors.New("fatal build error")

	// ErrNodeNotFound is returned by the NodeStore when an id has no backing node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNodeLocked names the state of a node that already has a guard outstanding. NodeStore.Writer
	// reports that state by returning ok == false; it does not return this error.
	ErrNodeLocked = errors.New("node locked")
	// ErrDuplicateNodeID is a fatal invariant violation: two nodes were assigned the same id.
	ErrDuplicateNodeID = fmt.Errorf("%w: duplicate node id", ErrFatal)
)

// ThornConflictError describes a duplicate SingleThorn registration.
type ThornConflictError struct {
	Path string
	Name string
}

func (e *ThornConflictError) Error() string {
	return fmt.Sprintf("thorn conflict: %q is already registered at %q", e.Name, e.Path)
}

func (e *ThornConflictError) Unwrap() error {
	return ErrThornConflict
}

// ArgumentConflictError describes two manifest updates disagreeing on an argument's type.
type ArgumentConflictError struct {
	Name string
	Have string
	Want string
}

func (e *ArgumentConflictError) Error() string {
	return fmt.Sprintf("argument conflict: %q declared as %q, previously %q", e.Name, e.Want, e.Have)
}

func (e *ArgumentConflictError) Unwrap() error {
	return ErrArgumentConflict
}

// PluginCallError wraps an error returned by a specific plugin entry point.
type PluginCallError struct {
	Plugin string
	Symbol string
	Err    error
}

func (e *PluginCallError) Error() string {
	return fmt.Sprintf("plugin %q: call to %q failed: %v", e.Plugin, e.Symbol, e.Err)
}

func (e *PluginCallError) Unwrap() error {
	return ErrPluginCall
}
