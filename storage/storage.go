// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage defines the remote destinations result artifacts can be
// published to. A Target is one candidate destination; every operation
// takes the credential strategy to attempt it under, because a target
// reachable under one strategy may reject the other.
package storage

import (
	"context"
	"fmt"
)

// Strategy selects how a target is authenticated to.
type Strategy string

const (
	// StrategySharedKey authenticates with the storage account's shared
	// access key.
	StrategySharedKey Strategy = "shared-key"

	// StrategyIdentity authenticates with a delegated identity (service
	// principal, managed identity, or an IAM role on S3-compatible
	// targets).
	StrategyIdentity Strategy = "identity"
)

// Alternate returns the other strategy, for fallback attempts.
func (s Strategy) Alternate() Strategy {
	if s == StrategySharedKey {
		return StrategyIdentity
	}
	return StrategySharedKey
}

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategySharedKey, StrategyIdentity:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown credential strategy %q (want %q or %q)",
		s, StrategySharedKey, StrategyIdentity)
}

// Target is a candidate remote destination for result artifacts.
//
// Implementations must treat Upload as an overwrite: publishing the same
// blob name twice replaces the first copy rather than erroring, so a rerun
// of the pipeline is idempotent.
type Target interface {
	// Name identifies the target in logs and outcome records.
	Name() string

	// Probe resolves credentials under the given strategy and performs a
	// cheap connectivity check (listing containers or a bucket-exists
	// call). A probe error means the target is not usable under that
	// strategy.
	Probe(ctx context.Context, strategy Strategy) error

	// EnsureContainer creates the well-known container if it is absent.
	// An already-existing container is success.
	EnsureContainer(ctx context.Context, strategy Strategy) error

	// Upload publishes the file at path under the given blob name.
	Upload(ctx context.Context, strategy Strategy, name, path string) error

	// List returns the blob names currently present in the container.
	List(ctx context.Context, strategy Strategy) ([]string, error)
}
