// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/coreos/pkg/capnslog"

	"github.com/ldabas-msft/jumpstart-resources/util"
)

// archive copies every artifact into the backup directory before any
// network attempt. A single file failing to copy is logged and skipped;
// only a backup where nothing could be written is fatal, and that is the
// caller's check. Returns the set of artifact names actually archived.
func (p *Publisher) archive(artifacts []Artifact) map[string]bool {
	archived := make(map[string]bool)
	if err := os.MkdirAll(p.backupDir, 0755); err != nil {
		plog.Errorf("Creating backup directory %q: %v", p.backupDir, err)
		return archived
	}

	for _, a := range artifacts {
		dest := filepath.Join(p.backupDir, a.Name)
		if err := copyRegularFile(a.Path, dest); err != nil {
			plog.Errorf("Archiving %q: %v", a.Name, err)
			continue
		}
		archived[a.Name] = true
	}
	return archived
}

// copyRegularFile copies a file in place, updates are not atomic. The
// destination is created with the source's permissions; if it already
// exists (a re-run overwriting an earlier backup) the permissions remain
// as-is.
func copyRegularFile(src, dest string) (err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}
	mode := srcInfo.Mode()
	if !mode.IsRegular() {
		return fmt.Errorf("not a regular file: %s", src)
	}

	destFile, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		e := destFile.Close()
		if err == nil {
			err = e
		}
	}()

	_, err = util.CopyProgress(capnslog.DEBUG, "archive "+filepath.Base(src), destFile, srcFile, srcInfo.Size())
	return err
}
