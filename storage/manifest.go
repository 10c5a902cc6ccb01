// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is an explicit, ordered list of candidate targets, as an
// alternative to discovering storage accounts from the resource group.
// Order in the file is the order targets are attempted in.
type Manifest struct {
	Targets []ManifestEntry `yaml:"targets"`
}

type ManifestEntry struct {
	// Kind is "azure" or "s3".
	Kind string `yaml:"kind"`

	// Azure entries.
	Account   string `yaml:"account,omitempty"`
	Container string `yaml:"container,omitempty"`

	// S3 entries.
	Endpoint string `yaml:"endpoint,omitempty"`
	Bucket   string `yaml:"bucket,omitempty"`
	Region   string `yaml:"region,omitempty"`
	UseSSL   *bool  `yaml:"useSSL,omitempty"`
}

// LoadManifest parses a target manifest file.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading target manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parsing target manifest %q: %w", path, err)
	}
	for i, e := range m.Targets {
		switch e.Kind {
		case "azure":
			if e.Account == "" {
				return nil, fmt.Errorf("target %d: azure entries need an account name", i)
			}
		case "s3":
			if e.Endpoint == "" || e.Bucket == "" {
				return nil, fmt.Errorf("target %d: s3 entries need an endpoint and a bucket", i)
			}
		default:
			return nil, fmt.Errorf("target %d: unknown kind %q", i, e.Kind)
		}
	}
	return &m, nil
}
