// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Artifact is one result file to publish. Its name doubles as the remote
// blob name and the backup file name; contents are opaque to the
// publisher.
type Artifact struct {
	Name string
	Path string
}

// FromDir collects every regular file in dir as an artifact, sorted by
// name for a stable publication order.
func FromDir(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading results directory: %w", err)
	}

	var artifacts []Artifact
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Name < artifacts[j].Name
	})
	return artifacts, nil
}
