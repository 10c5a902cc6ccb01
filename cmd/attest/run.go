// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ldabas-msft/jumpstart-resources/harness/reporters"
	"github.com/ldabas-msft/jumpstart-resources/harness/testresult"
	"github.com/ldabas-msft/jumpstart-resources/provision"
	"github.com/ldabas-msft/jumpstart-resources/runner"
	"github.com/ldabas-msft/jumpstart-resources/version"
)

var (
	cmdRun = &cobra.Command{
		Use:   "run",
		Short: "Wait for provisioning, run the test suite, publish the results",
		Long: `Run the whole pipeline: wait for the provisioning sentinel (unless
--skip-wait), invoke the external test runner, write a stage summary, and
publish everything in the results directory.

A failing test suite still publishes its reports; the exit code is only
non-zero when results could not even be archived locally.`,
		Run:    runRun,
		PreRun: preRun,
	}

	runnerCmdline string
	runnerDir     string
	reportGlob    string
	minRunnerVer  string
	skipWait      bool

	provisionLog string
	sentinel     string
	pollInterval time.Duration
	waitTimeout  time.Duration

	environmentName string
)

func init() {
	root.AddCommand(cmdRun)

	sv := cmdRun.Flags().StringVar
	sv(&runnerCmdline, "runner", "", "test runner command line (shell-quoted)")
	sv(&runnerDir, "runner-dir", "", "working directory for the test runner")
	sv(&reportGlob, "report-glob", "*.xml", "pattern selecting report files in the results directory")
	sv(&minRunnerVer, "min-runner-version", "", "minimum test runner version (semver)")
	cmdRun.Flags().BoolVar(&skipWait, "skip-wait", false, "skip waiting for the provisioning sentinel")
	sv(&environmentName, "environment", "", "environment name recorded in the stage summary")

	addWaitFlags(cmdRun)
}

func addWaitFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&provisionLog, "provision-log", "", "provisioning transcript to watch for the sentinel")
	cmd.Flags().StringVar(&sentinel, "sentinel", "Provisioning complete", "log line that marks the provisioning phase finished")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 15*time.Second, "how often to poll the provisioning log")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 90*time.Minute, "how long to wait for provisioning before giving up")
}

func preRun(cmd *cobra.Command, args []string) {
	if err := syncOptions(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(3)
	}
}

func runRun(cmd *cobra.Command, args []string) {
	if runnerCmdline == "" {
		fmt.Fprintln(os.Stderr, "Error: --runner is required")
		os.Exit(3)
	}

	ctx := context.Background()
	reps := reporters.Reporters{
		reporters.NewJSONReporter("attest-summary.json", environmentName, version.Version),
		reporters.NewJUnitReporter("attest-summary.xml", "attest"),
	}
	overall := testresult.Pass

	if provisionLog != "" && !skipWait {
		start := time.Now()
		wctx, cancel := context.WithTimeout(ctx, waitTimeout)
		err := provision.WaitForSentinel(wctx, provisionLog, sentinel, pollInterval)
		cancel()
		if err != nil {
			// Publish whatever already exists rather than losing it.
			plog.Errorf("Provisioning wait failed: %v", err)
			reps.ReportTest("provision-wait", testresult.Fail, time.Since(start), []byte(err.Error()))
			overall = testresult.Fail
		} else {
			reps.ReportTest("provision-wait", testresult.Pass, time.Since(start), nil)
		}
	} else {
		reps.ReportTest("provision-wait", testresult.Skip, 0, nil)
	}

	r, err := runner.New(runner.Config{
		Command:    runnerCmdline,
		Dir:        runnerDir,
		ResultsDir: resultsDir,
		ReportGlob: reportGlob,
		MinVersion: minRunnerVer,
	})
	if err != nil {
		plog.Fatal(err)
	}
	if err := r.CheckVersion(ctx); err != nil {
		plog.Fatal(err)
	}

	start := time.Now()
	if err := r.Run(ctx); err != nil {
		plog.Errorf("Test suite failed: %v", err)
		reps.ReportTest("test-suite", testresult.Fail, time.Since(start), []byte(err.Error()))
		overall = testresult.Fail
	} else {
		reps.ReportTest("test-suite", testresult.Pass, time.Since(start), nil)
	}

	if reports, err := r.Artifacts(); err != nil || len(reports) <= 1 {
		// Only the transcript present means the runner wrote no reports.
		plog.Warningf("Test runner produced no report files matching %q", reportGlob)
	}

	reps.SetResult(overall)
	if err := reps.Output(resultsDir); err != nil {
		plog.Errorf("Writing stage summary: %v", err)
	}

	publishResults(ctx)
}
