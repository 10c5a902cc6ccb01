// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package reporters

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ldabas-msft/jumpstart-resources/harness/testresult"
)

func TestJSONReporterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := NewJSONReporter("summary.json", "arcbox-dev", "0.1.0")
	r.ReportTest("provision-wait", testresult.Pass, 3*time.Second, nil)
	r.ReportTest("test-suite", testresult.Fail, time.Minute, []byte("2 assertions failed"))
	r.SetResult(testresult.Fail)

	if err := r.Output(dir); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Tests []struct {
			Name   string                `json:"name"`
			Result testresult.TestResult `json:"result"`
			Output string                `json:"output"`
		} `json:"tests"`
		Result      testresult.TestResult `json:"result"`
		Environment string                `json:"environment"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Result != testresult.Fail {
		t.Errorf("overall result = %q, want FAIL", decoded.Result)
	}
	if decoded.Environment != "arcbox-dev" {
		t.Errorf("environment = %q", decoded.Environment)
	}
	if len(decoded.Tests) != 2 || decoded.Tests[1].Output != "2 assertions failed" {
		t.Errorf("tests mangled: %+v", decoded.Tests)
	}
}

func TestJUnitReporterCounts(t *testing.T) {
	dir := t.TempDir()
	r := NewJUnitReporter("summary.xml", "attest")
	r.ReportTest("provision-wait", testresult.Pass, time.Second, nil)
	r.ReportTest("test-suite", testresult.Fail, time.Minute, []byte("boom"))
	r.ReportTest("optional-stage", testresult.Skip, 0, nil)

	if err := r.Output(dir); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "summary.xml"))
	if err != nil {
		t.Fatal(err)
	}
	var suite struct {
		XMLName  xml.Name `xml:"testsuite"`
		Tests    int      `xml:"tests,attr"`
		Failures int      `xml:"failures,attr"`
		Skipped  int      `xml:"skipped,attr"`
		Cases    []struct {
			Name    string `xml:"name,attr"`
			Failure *struct {
				Output string `xml:",chardata"`
			} `xml:"failure"`
		} `xml:"testcase"`
	}
	if err := xml.Unmarshal(b, &suite); err != nil {
		t.Fatal(err)
	}
	if suite.Tests != 3 || suite.Failures != 1 || suite.Skipped != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/1/1", suite.Tests, suite.Failures, suite.Skipped)
	}
	if suite.Cases[1].Failure == nil || suite.Cases[1].Failure.Output != "boom" {
		t.Errorf("failure output missing: %+v", suite.Cases[1])
	}
}

func TestReportersFanOut(t *testing.T) {
	dir := t.TempDir()
	reps := Reporters{
		NewJSONReporter("a.json", "env", "v"),
		NewJUnitReporter("b.xml", "suite"),
	}
	reps.ReportTest("stage", testresult.Pass, time.Second, nil)
	reps.SetResult(testresult.Pass)
	if err := reps.Output(dir); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.json", "b.xml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("reporter output %q missing", name)
		}
	}
}
