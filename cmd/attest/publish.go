// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/ldabas-msft/jumpstart-resources/publish"
)

var cmdPublish = &cobra.Command{
	Use:   "publish",
	Short: "Publish an existing results directory",
	Long: `Publish every file in the results directory to the candidate storage
targets, archiving everything locally first. Exits non-zero only when the
local archive itself could not be written.`,
	Run:    runPublish,
	PreRun: preRun,
}

func init() {
	root.AddCommand(cmdPublish)
}

func runPublish(cmd *cobra.Command, args []string) {
	publishResults(context.Background())
}

// publishResults is the shared tail of `run` and `publish`: collect
// artifacts, resolve targets, publish, report. It does not return.
func publishResults(ctx context.Context) {
	artifacts, err := publish.FromDir(resultsDir)
	if err != nil {
		plog.Fatalf("Collecting artifacts from %q: %v", resultsDir, err)
	}
	if len(artifacts) == 0 {
		plog.Noticef("No artifacts in %q, nothing to publish", resultsDir)
		os.Exit(0)
	}

	targets, err := buildTargets(ctx)
	if err != nil {
		// Unresolvable targets degrade to local-only, they do not lose
		// the results.
		plog.Errorf("Resolving candidate targets: %v", err)
		targets = nil
	}

	p := publish.New(publish.Config{
		BackupDir:   backupDir,
		CallTimeout: callTimeout,
	})
	outcome, err := p.Publish(ctx, artifacts, targets, strategy)
	if err != nil {
		plog.Fatalf("Local archival failed, results are at risk: %v", err)
	}

	switch outcome.Status {
	case publish.AllUploaded:
		plog.Noticef("Published all %d artifacts", outcome.Uploaded)
	case publish.PartialUpload:
		plog.Noticef("Published %d of %d artifacts; the rest are in %s",
			outcome.Uploaded, len(artifacts), outcome.BackupDir)
	case publish.LocalOnly:
		plog.Noticef("No target took any uploads; all artifacts are in %s", outcome.BackupDir)
	}

	if err := json.NewEncoder(os.Stdout).Encode(outcome); err != nil {
		plog.Errorf("Encoding outcome: %v", err)
	}
	os.Exit(0)
}
