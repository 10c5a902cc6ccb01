// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

// Package provision watches the provisioning phase that runs before the
// verification tests. Provisioning is owned elsewhere; all this package
// sees of it is a transcript log that eventually contains a sentinel line.
package provision

import (
	"bufio"
	"context"
	"os"
	"strings"
	"time"

	"github.com/coreos/pkg/capnslog"

	"github.com/ldabas-msft/jumpstart-resources/util"
)

var plog = capnslog.NewPackageLogger("github.com/ldabas-msft/jumpstart-resources", "provision")

// WaitForSentinel polls logPath every interval until a line containing
// sentinel appears or ctx expires. The log file not existing yet is
// normal; provisioning may not have started writing it.
func WaitForSentinel(ctx context.Context, logPath, sentinel string, interval time.Duration) error {
	plog.Infof("Waiting for %q to appear in %s", sentinel, logPath)
	start := time.Now()

	err := util.WaitUntilReady(ctx, interval, func() (bool, error) {
		found, err := logContains(logPath, sentinel)
		if err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, err
		}
		return found, nil
	})
	if err != nil {
		return err
	}

	plog.Infof("Provisioning finished after %v", time.Since(start).Round(time.Second))
	return nil
}

func logContains(path, sentinel string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	// Provisioning transcripts can carry long unbroken lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), sentinel) {
			return true, nil
		}
	}
	return false, scanner.Err()
}
