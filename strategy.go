// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FileResolver is the subset of PluginHost used by Strategy to classify files.
type FileResolver interface {
	FileResolve(file CloudFile) (Resolution, error)
	Filter() FileFilter
}

// FileFilter narrows the walk to files a plugin declares interest in, per spec §4.5:
// "the host short-circuits with Ignore when the filename does not satisfy the
// file_starts/file_ends filters".
type FileFilter struct {
	Starts []string
	Ends   []string
}

// Match reports whether name satisfies the filter. An empty filter matches everything.
func (f FileFilter) Match(name string) bool {
	if len(f.Starts) > 0 {
		ok := false
		for _, p := range f.Starts {
			if strings.HasPrefix(name, p) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.Ends) > 0 {
		ok := false
		for _, p := range f.Ends {
			if strings.HasSuffix(name, p) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Walk implements spec §4.4: it creates a fresh NodeStore, walks inputDir depth-first,
// classifies every matching file through resolver, and drives TreeNode.insert to a fixed
// point for each one. It returns the populated store.
func Walk(inputDir string, resolver FileResolver, log *BuildLogger) (*NodeStore, error) {
	store := NewNodeStore()
	filter := resolver.Filter()

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !filter.Match(d.Name()) {
			return nil
		}

		rel, relErr := filepath.Rel(inputDir, path)
		if relErr != nil {
			log.Raw().Warn("densky.strategy: cannot compute relative path", "path", path, "error", relErr)
			return nil
		}
		rel = filepath.ToSlash(rel)

		if walkErr := insertFile(store, resolver, path, rel, log); walkErr != nil {
			return walkErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// insertFile discovers one file and drives it through the insert fixed-point loop
// described by spec §4.4 step 2c and step 3.
func insertFile(store *NodeStore, resolver FileResolver, fullPath, relPath string, log *BuildLogger) error {
	ext := filepath.Ext(relPath)
	file := CloudFile{FullPath: fullPath, RelativePath: relPath, OutputPath: relPath}

	resolution, err := resolver.FileResolve(file)
	if err != nil {
		log.Raw().Warn("densky.strategy: file_resolve failed, defaulting to Pass", "path", relPath, "error", err)
		resolution = Pass()
	}

	dummy := newTreeNode()
	dummyID := store.Add(dummy)

	leaf := newTreeNode()
	leaf.Pathname = relPath
	leaf.RelativePathname = relPath
	leaf.InputPath = fullPath
	leaf.HasInput = true
	leaf.OutputPath = relPath
	leaf.HasOutput = true
	leaf.Index = &dummyID
	leafID := store.Add(leaf)

	log.FileDiscovered(relPath, resolution)

	action, err := store.Insert(store.RootID(), leafID, resolution)
	if err != nil {
		return err
	}

	for action.Kind != ActionNone {
		switch action.Kind {
		case ActionResolve, ActionMergeNodes:
			target := action.TargetID
			newRelative := action.NewRelative

			guard, ok := store.Writer(leafID)
			if !ok {
				return ErrNodeNotFound
			}
			guard.Node().RelativePathname = newRelative
			guard.Release()

			newResolution, rerr := resolver.FileResolve(CloudFile{
				FullPath:     fullPath,
				RelativePath: newRelative + ext,
				OutputPath:   file.OutputPath,
			})
			if rerr != nil {
				log.Raw().Warn("densky.strategy: re-resolve failed, defaulting to Pass", "path", newRelative, "error", rerr)
				newResolution = Pass()
			}

			action, err = store.Insert(target, leafID, newResolution)
			if err != nil {
				return err
			}
			log.TreeAction(newRelative, action)
		case ActionRemoveNode:
			store.Remove(action.TargetID)
			action = noneAction()
		}
	}
	return nil
}
