// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

import (
	"log/slog"
	"time"
)

// Keys for the build-event logger's structured attributes.
const (
	// LoggerPathKey is the key used for the file path a build event concerns.
	// The associated [slog.Value] is a string.
	LoggerPathKey = "path"
	// LoggerResolutionKey is the key used for the Resolution kind a file was classified as.
	// The associated [slog.Value] is a string.
	LoggerResolutionKey = "resolution"
	// LoggerActionKey is the key used for the Action kind returned by TreeNode.insert.
	// The associated [slog.Value] is a string.
	LoggerActionKey = "action"
	// LoggerCloudKey is the key used for the cloud plugin name involved in an event.
	// The associated [slog.Value] is a string.
	LoggerCloudKey = "cloud"
	// LoggerLatencyKey is the key used for how long a build or rebuild cycle took.
	// The associated [slog.Value] is a time.Duration.
	LoggerLatencyKey = "latency"
)

// BuildLogger wraps a [slog.Handler] with the event vocabulary Strategy and the CLI use
// to report discovery, tree rewrites, and manifest assembly, mirroring the attribute-
// grouping style of the teacher's HTTP request logger but over build events instead of
// requests.
type BuildLogger struct {
	log *slog.Logger
}

// NewBuildLogger returns a BuildLogger over handler.
func NewBuildLogger(handler slog.Handler) *BuildLogger {
	return &BuildLogger{log: slog.New(handler)}
}

// Raw returns the underlying [slog.Logger] for callers that need a generic log line
// outside BuildLogger's fixed event vocabulary.
func (b *BuildLogger) Raw() *slog.Logger {
	return b.log
}

// FileDiscovered logs a file's classification during a Strategy walk.
func (b *BuildLogger) FileDiscovered(path string, resolution Resolution) {
	b.log.Debug("file discovered",
		slog.String(LoggerPathKey, path),
		slog.String(LoggerResolutionKey, resolution.Kind.String()),
	)
}

// TreeAction logs a non-terminal Action returned by TreeNode.insert as it is re-driven
// to a fixed point.
func (b *BuildLogger) TreeAction(path string, action Action) {
	if action.Kind == ActionNone {
		return
	}
	b.log.Debug("tree rewrite",
		slog.String(LoggerPathKey, path),
		slog.String(LoggerActionKey, actionKindName(action.Kind)),
	)
}

// PluginError logs a recoverable plugin failure at WARN, per spec §7: "errors during
// file resolution for a single file are reported and the file is skipped."
func (b *BuildLogger) PluginError(cloud, path string, err error) {
	b.log.Warn("plugin call failed",
		slog.String(LoggerCloudKey, cloud),
		slog.String(LoggerPathKey, path),
		"error", err,
	)
}

// BuildComplete logs a successful build or rebuild cycle at INFO.
func (b *BuildLogger) BuildComplete(cloud string, latency time.Duration) {
	b.log.Info("build complete",
		slog.String(LoggerCloudKey, cloud),
		slog.Duration(LoggerLatencyKey, latency),
	)
}

// Fatal logs an invariant violation at ERROR before the caller aborts the build.
func (b *BuildLogger) Fatal(cloud string, err error) {
	b.log.Error("fatal build error",
		slog.String(LoggerCloudKey, cloud),
		"error", err,
	)
}

func actionKindName(k ActionKind) string {
	switch k {
	case ActionNone:
		return "None"
	case ActionResolve:
		return "Resolve"
	case ActionRemoveNode:
		return "RemoveNode"
	case ActionMergeNodes:
		return "MergeNodes"
	default:
		return "Unknown"
	}
}
