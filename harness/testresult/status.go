// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

// Package testresult defines the result states a validation stage or test
// suite can finish in.
package testresult

const (
	Fail TestResult = "FAIL"
	Skip TestResult = "SKIP"
	Pass TestResult = "PASS"
)

type TestResult string
