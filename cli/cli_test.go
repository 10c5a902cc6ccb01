// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/coreos/pkg/capnslog"
	"github.com/spf13/cobra"
)

func TestStartLoggingWritesToCommandWriter(t *testing.T) {
	defer func() {
		logVerbose = false
		logLevel = capnslog.NOTICE
	}()

	var buf bytes.Buffer
	cmd := &cobra.Command{Use: "attest"}
	cmd.SetOut(&buf)

	logVerbose = true
	StartLogging(cmd)

	if logLevel != capnslog.INFO {
		t.Errorf("log level = %s, want INFO", logLevel)
	}
	if !strings.Contains(buf.String(), "Started logging") {
		t.Errorf("startup line not routed to the command's writer: %q", buf.String())
	}
}

func TestWrapPreRunChainsExisting(t *testing.T) {
	var order []string
	cmd := &cobra.Command{
		Use: "attest",
		PersistentPreRun: func(*cobra.Command, []string) {
			order = append(order, "original")
		},
	}
	WrapPreRun(cmd, func(*cobra.Command, []string) error {
		order = append(order, "wrapped")
		return nil
	})

	if err := cmd.PersistentPreRunE(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "wrapped" || order[1] != "original" {
		t.Errorf("pre-run order = %v, want [wrapped original]", order)
	}
}
