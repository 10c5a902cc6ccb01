// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ldabas-msft/jumpstart-resources/provision"
)

var cmdWait = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the provisioning sentinel and exit",
	Run:   runWait,
}

func init() {
	root.AddCommand(cmdWait)
	addWaitFlags(cmdWait)
}

func runWait(cmd *cobra.Command, args []string) {
	if provisionLog == "" {
		fmt.Fprintln(os.Stderr, "Error: --provision-log is required")
		os.Exit(3)
	}

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()

	if err := provision.WaitForSentinel(ctx, provisionLog, sentinel, pollInterval); err != nil {
		plog.Fatalf("Waiting for provisioning: %v", err)
	}
}
