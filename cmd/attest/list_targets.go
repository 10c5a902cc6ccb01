// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cmdListTargets = &cobra.Command{
	Use:    "list-targets",
	Short:  "Print the candidate storage targets in publication order",
	Run:    runListTargets,
	PreRun: preRun,
}

func init() {
	root.AddCommand(cmdListTargets)
}

func runListTargets(cmd *cobra.Command, args []string) {
	targets, err := buildTargets(context.Background())
	if err != nil {
		plog.Fatalf("Resolving candidate targets: %v", err)
	}
	if len(targets) == 0 {
		plog.Noticef("No candidate targets; publication would be local-only")
		return
	}
	for i, t := range targets {
		fmt.Printf("%d\t%s\n", i+1, t.Name())
	}
}
