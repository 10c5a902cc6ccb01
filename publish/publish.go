// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

// Package publish takes a set of local result artifacts and a list of
// candidate storage targets of uncertain availability, and guarantees each
// artifact ends up either remotely published or locally archived.
//
// The fallback ladder, in order of preference: upload under the preferred
// credential strategy, retry the upload under the alternate strategy,
// carry the artifact over to the next candidate target, and finally leave
// it in the mandatory local backup. Remote failures never escape as
// errors; the only fatal condition is a backup directory nothing could be
// written to.
package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/coreos/pkg/capnslog"

	"github.com/ldabas-msft/jumpstart-resources/storage"
	"github.com/ldabas-msft/jumpstart-resources/util"
)

var plog = capnslog.NewPackageLogger("github.com/ldabas-msft/jumpstart-resources", "publish")

// Config carries the publication run's knobs. Zero values get defaults
// from New.
type Config struct {
	// BackupDir is the flat directory every artifact is copied into
	// before any network attempt. Its listing is the backup manifest.
	BackupDir string

	// CallTimeout bounds each network call (probe, container creation,
	// upload). Expiry is treated as a failure feeding the normal
	// fallback path.
	CallTimeout time.Duration

	// Probe backoff policy. Role-assignment propagation on fresh
	// identities shows up as connectivity failures that resolve within
	// tens of seconds, so probes retry with exponential backoff instead
	// of a fixed sleep.
	ProbeInitialInterval time.Duration
	ProbeMaxInterval     time.Duration
	ProbeMaxElapsed      time.Duration
}

const (
	defaultCallTimeout          = 2 * time.Minute
	defaultProbeInitialInterval = 2 * time.Second
	defaultProbeMaxInterval     = 15 * time.Second
	defaultProbeMaxElapsed      = 45 * time.Second
)

type Publisher struct {
	backupDir string
	cfg       Config
}

func New(cfg Config) *Publisher {
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.ProbeInitialInterval == 0 {
		cfg.ProbeInitialInterval = defaultProbeInitialInterval
	}
	if cfg.ProbeMaxInterval == 0 {
		cfg.ProbeMaxInterval = defaultProbeMaxInterval
	}
	if cfg.ProbeMaxElapsed == 0 {
		cfg.ProbeMaxElapsed = defaultProbeMaxElapsed
	}
	return &Publisher{
		backupDir: cfg.BackupDir,
		cfg:       cfg,
	}
}

// Publish archives every artifact locally, then walks the candidate
// targets in order until every artifact has been uploaded somewhere. The
// returned error is non-nil only when local archival failed for all
// artifacts; every other failure mode is folded into the Outcome.
func (p *Publisher) Publish(ctx context.Context, artifacts []Artifact, targets []storage.Target, preferred storage.Strategy) (*Outcome, error) {
	out := &Outcome{
		Status:    AllUploaded,
		BackupDir: p.backupDir,
	}
	if len(artifacts) == 0 {
		return out, nil
	}

	archived := p.archive(artifacts)
	out.Archived = len(archived)
	if out.Archived == 0 {
		return nil, fmt.Errorf("archiving all %d artifacts to %q failed", len(artifacts), p.backupDir)
	}

	uploadedBy := make(map[string]string)
	for _, t := range targets {
		if len(uploadedBy) == len(artifacts) {
			break
		}

		active, ok := p.connect(ctx, t, preferred)
		if !ok {
			plog.Warningf("Target %q unreachable under either credential strategy, skipping", t.Name())
			continue
		}
		if err := p.ensureContainer(ctx, t, active); err != nil {
			plog.Warningf("Target %q has no usable container: %v", t.Name(), err)
			continue
		}

		for _, a := range artifacts {
			if _, done := uploadedBy[a.Name]; done {
				continue
			}
			if err := p.upload(ctx, t, active, a); err != nil {
				plog.Errorf("Uploading %q to %q failed under both strategies: %v", a.Name, t.Name(), err)
				continue
			}
			uploadedBy[a.Name] = t.Name()
		}

		if len(uploadedBy) == len(artifacts) {
			// First fully-successful target is terminal.
			p.verifyListing(ctx, t, active, uploadedBy)
			break
		}
		plog.Infof("Target %q took %d of %d artifacts, continuing with remaining candidates",
			t.Name(), len(uploadedBy), len(artifacts))
	}

	for _, a := range artifacts {
		fo := FileOutcome{Name: a.Name, Status: FileLost}
		if archived[a.Name] {
			fo.Status = FileBackedUp
		}
		if target, ok := uploadedBy[a.Name]; ok {
			fo.Status = FileUploaded
			fo.Target = target
		}
		out.Files = append(out.Files, fo)
	}
	out.Uploaded = len(uploadedBy)
	switch {
	case out.Uploaded == len(artifacts):
		out.Status = AllUploaded
	case out.Uploaded > 0:
		out.Status = PartialUpload
	default:
		out.Status = LocalOnly
	}
	return out, nil
}

// connect finds a credential strategy the target answers under, trying the
// preferred strategy first. Probes retry with bounded backoff; a failed
// preferred probe is not surfaced when the alternate succeeds.
func (p *Publisher) connect(ctx context.Context, t storage.Target, preferred storage.Strategy) (storage.Strategy, bool) {
	for _, s := range []storage.Strategy{preferred, preferred.Alternate()} {
		if err := p.probe(ctx, t, s); err != nil {
			plog.Infof("Probe of %q under %q failed: %v", t.Name(), s, err)
			continue
		}
		return s, true
	}
	return "", false
}

func (p *Publisher) probe(ctx context.Context, t storage.Target, s storage.Strategy) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.ProbeInitialInterval
	b.MaxInterval = p.cfg.ProbeMaxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		cctx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
		defer cancel()
		return struct{}{}, t.Probe(cctx, s)
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(p.cfg.ProbeMaxElapsed))
	return err
}

// ensureContainer provisions the well-known container under the active
// strategy, falling back to the alternate once.
func (p *Publisher) ensureContainer(ctx context.Context, t storage.Target, active storage.Strategy) error {
	strategies := []storage.Strategy{active, active.Alternate()}
	attempt := 0
	return util.Retry(len(strategies), 0, func() error {
		s := strategies[attempt]
		attempt++
		cctx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
		defer cancel()
		return t.EnsureContainer(cctx, s)
	})
}

// upload attempts one artifact under the active strategy with a single
// alternate-strategy retry scoped to this target.
func (p *Publisher) upload(ctx context.Context, t storage.Target, active storage.Strategy, a Artifact) error {
	strategies := []storage.Strategy{active, active.Alternate()}
	attempt := 0
	return util.RetryConditional(len(strategies), 0, func(err error) bool {
		if attempt < len(strategies) {
			plog.Infof("Upload of %q under %q failed, retrying under %q: %v",
				a.Name, strategies[attempt-1], strategies[attempt], err)
		}
		return true
	}, func() error {
		s := strategies[attempt]
		attempt++
		cctx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
		defer cancel()
		return t.Upload(cctx, s, a.Name, a.Path)
	})
}

// verifyListing lists the terminal target after a complete upload and
// warns about any artifact the listing does not show. The uploads already
// succeeded, so listing problems stay warnings.
func (p *Publisher) verifyListing(ctx context.Context, t storage.Target, active storage.Strategy, uploadedBy map[string]string) {
	cctx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
	defer cancel()
	names, err := t.List(cctx, active)
	if err != nil {
		plog.Warningf("Listing %q after upload failed: %v", t.Name(), err)
		return
	}

	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	for name, target := range uploadedBy {
		if target == t.Name() && !present[name] {
			plog.Warningf("Uploaded %q is not visible in the listing of %q", name, t.Name())
		}
	}
}
