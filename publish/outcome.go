// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package publish

import "fmt"

// Status is the aggregate verdict of a publication run.
type Status string

const (
	// AllUploaded means every artifact reached some target.
	AllUploaded Status = "all-uploaded"

	// PartialUpload means at least one but not all artifacts were
	// uploaded; the rest are only in the local backup.
	PartialUpload Status = "partial-upload"

	// LocalOnly means nothing reached a target; the local backup is the
	// only copy.
	LocalOnly Status = "local-only"
)

// FileStatus is the per-artifact verdict.
type FileStatus string

const (
	FileUploaded FileStatus = "uploaded"
	FileBackedUp FileStatus = "backed-up"

	// FileLost marks an artifact that neither reached a target nor made
	// it into the backup; the source file is the only copy, if it still
	// exists at all.
	FileLost FileStatus = "lost"
)

type FileOutcome struct {
	Name   string
	Status FileStatus

	// Target is the name of the target that took the upload, empty for
	// backed-up files.
	Target string
}

// Outcome is the immutable record a publication run ends in. The run never
// surfaces remote failures as errors; they are folded in here so the
// caller can report a deterministic status regardless of storage
// availability.
type Outcome struct {
	Status    Status
	Uploaded  int
	Archived  int
	BackupDir string
	Files     []FileOutcome
}

func (o *Outcome) String() string {
	return fmt.Sprintf("%s (%d uploaded, %d archived in %s)",
		o.Status, o.Uploaded, o.Archived, o.BackupDir)
}
