// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

// attest waits out the provisioning phase of an environment deployment,
// runs the verification test suite against it, and publishes the result
// files to cloud storage with a local backup so results are never lost.
package main

import (
	"github.com/coreos/pkg/capnslog"
	"github.com/spf13/cobra"

	"github.com/ldabas-msft/jumpstart-resources/cli"
)

var (
	plog = capnslog.NewPackageLogger("github.com/ldabas-msft/jumpstart-resources", "attest")

	root = &cobra.Command{
		Use:   "attest [command]",
		Short: "Validate a deployed environment and publish the test results",
	}
)

func main() {
	cli.Execute(root)
}
