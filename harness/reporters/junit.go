// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package reporters

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"time"

	"github.com/ldabas-msft/jumpstart-resources/harness/testresult"
)

// junitReporter emits the JUnit testsuite XML convention so the pipeline's
// own stage summary is readable by the same dashboards that consume the
// runner's reports.
type junitReporter struct {
	suite    junitSuite
	filename string
}

type junitSuite struct {
	XMLName  xml.Name    `xml:"testsuite"`
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Skipped  int         `xml:"skipped,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name     string        `xml:"name,attr"`
	Duration float64       `xml:"time,attr"`
	Failure  *junitMessage `xml:"failure,omitempty"`
	Skipped  *junitMessage `xml:"skipped,omitempty"`
}

type junitMessage struct {
	Message string `xml:"message,attr,omitempty"`
	Output  string `xml:",chardata"`
}

func NewJUnitReporter(filename, suiteName string) *junitReporter {
	return &junitReporter{
		suite:    junitSuite{Name: suiteName},
		filename: filename,
	}
}

func (r *junitReporter) ReportTest(name string, result testresult.TestResult, duration time.Duration, b []byte) {
	c := junitCase{
		Name:     name,
		Duration: duration.Seconds(),
	}
	switch result {
	case testresult.Fail:
		r.suite.Failures++
		c.Failure = &junitMessage{Output: string(b)}
	case testresult.Skip:
		r.suite.Skipped++
		c.Skipped = &junitMessage{Output: string(b)}
	}
	r.suite.Tests++
	r.suite.Cases = append(r.suite.Cases, c)
}

func (r *junitReporter) Output(path string) error {
	f, err := os.Create(filepath.Join(path, r.filename))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "\t")
	if err := enc.Encode(&r.suite); err != nil {
		return err
	}
	return enc.Close()
}

// SetResult is part of the Reporter interface; the JUnit convention has no
// suite-level verdict attribute, the failure count carries it.
func (r *junitReporter) SetResult(result testresult.TestResult) {}
