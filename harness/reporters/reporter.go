// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

// Package reporters renders a validation run's stage results into the
// report files that get published alongside the runner's own output.
package reporters

import (
	"time"

	"github.com/ldabas-msft/jumpstart-resources/harness/testresult"
)

type Reporters []Reporter

func (reps Reporters) ReportTest(name string, result testresult.TestResult, duration time.Duration, b []byte) {
	for _, r := range reps {
		r.ReportTest(name, result, duration, b)
	}
}

func (reps Reporters) Output(path string) error {
	for _, r := range reps {
		err := r.Output(path)
		if err != nil {
			return err
		}
	}
	return nil
}

func (reps Reporters) SetResult(s testresult.TestResult) {
	for _, r := range reps {
		r.SetResult(s)
	}
}

type Reporter interface {
	ReportTest(string, testresult.TestResult, time.Duration, []byte)
	Output(string) error
	SetResult(testresult.TestResult)
}
