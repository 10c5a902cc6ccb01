// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

// Package runner invokes the external test runner and collects the result
// files it writes. The runner's report format is opaque here; files are
// picked up by name pattern and published as-is.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coreos/go-semver/semver"
	"github.com/coreos/pkg/capnslog"
	"github.com/kballard/go-shellquote"

	"github.com/ldabas-msft/jumpstart-resources/publish"
	"github.com/ldabas-msft/jumpstart-resources/util"
)

var plog = capnslog.NewPackageLogger("github.com/ldabas-msft/jumpstart-resources", "runner")

// TranscriptName is the log transcript file written into the results
// directory. It is collected as an artifact like any report.
const TranscriptName = "transcript.log"

type Config struct {
	// Command is the runner invocation as one shell-quoted string, e.g.
	// `pester -OutputFormat NUnitXml`.
	Command string

	// Dir is the runner's working directory; empty means inherit.
	Dir string

	// ResultsDir is where the runner writes its reports and where the
	// transcript goes.
	ResultsDir string

	// ReportGlob selects result files inside ResultsDir. Defaults to
	// "*.xml", the test-report convention the runner emits.
	ReportGlob string

	// MinVersion optionally gates the run on `<runner> --version`
	// reporting at least this semantic version.
	MinVersion string
}

type Runner struct {
	cfg  Config
	argv []string
}

func New(cfg Config) (*Runner, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("no runner command configured")
	}
	if cfg.ResultsDir == "" {
		return nil, fmt.Errorf("no results directory configured")
	}
	argv, err := shellquote.Split(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parsing runner command: %w", err)
	}
	if cfg.ReportGlob == "" {
		cfg.ReportGlob = "*.xml"
	}
	return &Runner{cfg: cfg, argv: argv}, nil
}

// CheckVersion runs `<runner> --version` and compares the first version
// string found against MinVersion. A runner that is too old is a
// configuration error, not a test failure.
func (r *Runner) CheckVersion(ctx context.Context) error {
	if r.cfg.MinVersion == "" {
		return nil
	}
	min, err := semver.NewVersion(r.cfg.MinVersion)
	if err != nil {
		return fmt.Errorf("parsing minimum runner version %q: %w", r.cfg.MinVersion, err)
	}

	out, err := exec.CommandContext(ctx, r.argv[0], "--version").Output()
	if err != nil {
		return fmt.Errorf("querying runner version: %w", err)
	}
	got, err := ParseVersion(string(out))
	if err != nil {
		return err
	}
	if got.LessThan(*min) {
		return fmt.Errorf("runner version %s is older than required %s", got, min)
	}
	plog.Debugf("Runner version %s satisfies minimum %s", got, min)
	return nil
}

// ParseVersion extracts the first semver-looking token from version
// command output such as "pester 5.5.0" or "v2.1.3".
func ParseVersion(out string) (*semver.Version, error) {
	for _, field := range strings.Fields(out) {
		v, err := semver.NewVersion(strings.TrimPrefix(field, "v"))
		if err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("no version found in runner output %q", strings.TrimSpace(out))
}

// Run executes the test runner, teeing its combined output to the
// transcript file in the results directory and streaming it line by line
// through the package logger. The runner's exit status is returned as-is:
// a failing suite still produces reports worth publishing, so callers
// treat the error as a verdict, not an abort.
func (r *Runner) Run(ctx context.Context) error {
	if err := os.MkdirAll(r.cfg.ResultsDir, 0755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	transcript, err := os.Create(filepath.Join(r.cfg.ResultsDir, TranscriptName))
	if err != nil {
		return fmt.Errorf("creating transcript: %w", err)
	}
	defer transcript.Close()

	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	cmd.Dir = r.cfg.Dir

	// Stdout and Stderr share one writer so the child gets a single pipe
	// and the transcript keeps the interleaving the runner produced.
	pr, pw := io.Pipe()
	cmd.Stdout = io.MultiWriter(transcript, pw)
	cmd.Stderr = cmd.Stdout
	logged := make(chan struct{})
	go func() {
		util.LogFrom(capnslog.INFO, pr)
		close(logged)
	}()

	plog.Infof("Running test suite: %s", r.cfg.Command)
	runErr := cmd.Run()
	pw.Close()
	<-logged

	if runErr != nil {
		return fmt.Errorf("test runner: %w", runErr)
	}
	return nil
}

// Artifacts collects the report files plus the transcript from the
// results directory, sorted by name.
func (r *Runner) Artifacts() ([]publish.Artifact, error) {
	matches, err := filepath.Glob(filepath.Join(r.cfg.ResultsDir, r.cfg.ReportGlob))
	if err != nil {
		return nil, fmt.Errorf("globbing reports: %w", err)
	}

	transcript := filepath.Join(r.cfg.ResultsDir, TranscriptName)
	if _, err := os.Stat(transcript); err == nil {
		matches = append(matches, transcript)
	}

	var artifacts []publish.Artifact
	seen := make(map[string]bool)
	for _, m := range matches {
		name := filepath.Base(m)
		if seen[name] {
			continue
		}
		seen[name] = true
		artifacts = append(artifacts, publish.Artifact{Name: name, Path: m})
	}
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Name < artifacts[j].Name
	})
	return artifacts, nil
}
