// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifestOrderPreserved(t *testing.T) {
	path := writeManifest(t, `
targets:
  - kind: azure
    account: primaryacct
    container: testresults
  - kind: azure
    account: secondaryacct
  - kind: s3
    endpoint: minio.internal:9000
    bucket: testresults
    useSSL: false
`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Targets) != 3 {
		t.Fatalf("got %d targets, want 3", len(m.Targets))
	}
	if m.Targets[0].Account != "primaryacct" || m.Targets[1].Account != "secondaryacct" {
		t.Errorf("target order not preserved: %+v", m.Targets)
	}
	if m.Targets[2].Kind != "s3" || m.Targets[2].Endpoint != "minio.internal:9000" {
		t.Errorf("s3 entry mangled: %+v", m.Targets[2])
	}
	if m.Targets[2].UseSSL == nil || *m.Targets[2].UseSSL {
		t.Error("useSSL: false not parsed")
	}
}

func TestLoadManifestRejectsBadEntries(t *testing.T) {
	for name, content := range map[string]string{
		"unknown kind":       "targets:\n  - kind: ftp\n    account: x\n",
		"azure sans account": "targets:\n  - kind: azure\n",
		"s3 sans bucket":     "targets:\n  - kind: s3\n    endpoint: h:9000\n",
	} {
		if _, err := LoadManifest(writeManifest(t, content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing manifest")
	}
}
