// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ldabas-msft/jumpstart-resources/auth"
	"github.com/ldabas-msft/jumpstart-resources/storage"
	"github.com/ldabas-msft/jumpstart-resources/storage/azure"
	"github.com/ldabas-msft/jumpstart-resources/storage/s3"
)

var (
	azureOpts auth.AzureOptions
	s3Opts    s3.Options

	envFile       string
	containerName string
	strategyName  string
	targetsFile   string
	accountName   string
	s3Bucket      string

	resultsDir  string
	backupDir   string
	callTimeout time.Duration

	strategy storage.Strategy
)

func init() {
	sv := root.PersistentFlags().StringVar

	// authentication / target-resolution configuration
	sv(&azureOpts.SubscriptionID, "subscription", "", "Azure subscription id (or AZURE_SUBSCRIPTION_ID)")
	sv(&azureOpts.TenantID, "tenant", "", "Azure tenant id (or AZURE_TENANT_ID)")
	sv(&azureOpts.ClientID, "client-id", "", "service principal client id (or AZURE_CLIENT_ID)")
	sv(&azureOpts.ClientSecret, "client-secret", "", "service principal secret (or AZURE_CLIENT_SECRET, never logged)")
	sv(&azureOpts.ResourceGroup, "resource-group", "", "resource group holding the candidate storage accounts")
	sv(&azureOpts.Location, "location", "eastus", "Azure region")
	sv(&azureOpts.StorageEndpointSuffix, "storage-endpoint-suffix", "", "Azure Storage endpoint suffix override")
	sv(&envFile, "env-file", ".env", "dotenv file to load credentials from, if present")

	// target selection
	sv(&containerName, "container", azure.DefaultContainer, "well-known container/bucket for result blobs")
	sv(&strategyName, "strategy", string(storage.StrategySharedKey), "preferred credential strategy: shared-key or identity")
	sv(&targetsFile, "targets-file", "", "YAML manifest of candidate targets (overrides discovery)")
	sv(&accountName, "account", "", "publish to this one storage account instead of discovering")

	// s3-compatible fallback target
	sv(&s3Opts.Endpoint, "s3-endpoint", "", "S3-compatible endpoint host:port")
	sv(&s3Opts.Region, "s3-region", "", "S3 region")
	sv(&s3Opts.AccessKey, "s3-access-key", "", "S3 static access key (or S3_ACCESS_KEY)")
	sv(&s3Opts.SecretKey, "s3-secret-key", "", "S3 static secret key (or S3_SECRET_KEY, never logged)")
	sv(&s3Bucket, "s3-bucket", "", "S3 bucket for result objects")
	root.PersistentFlags().BoolVar(&s3Opts.UseSSL, "s3-ssl", true, "use TLS for the S3 endpoint")

	// local layout
	sv(&resultsDir, "results-dir", "results", "directory the test runner writes result files into")
	sv(&backupDir, "backup-dir", filepath.Join(os.TempDir(), "testresults-backup"),
		"local directory every artifact is archived into before upload")
	root.PersistentFlags().DurationVar(&callTimeout, "call-timeout", 2*time.Minute,
		"timeout applied to each storage call")
}

// syncOptions resolves flags against the environment and validates what
// every subcommand needs. Target-specific validation happens lazily in
// buildTargets; `attest wait` runs without any cloud configuration.
func syncOptions() error {
	if err := auth.LoadEnv(envFile); err != nil {
		return fmt.Errorf("loading %q: %v", envFile, err)
	}
	azureOpts.FillFromEnvironment()
	if s3Opts.AccessKey == "" {
		s3Opts.AccessKey = os.Getenv("S3_ACCESS_KEY")
	}
	if s3Opts.SecretKey == "" {
		s3Opts.SecretKey = os.Getenv("S3_SECRET_KEY")
	}

	var err error
	strategy, err = storage.ParseStrategy(strategyName)
	if err != nil {
		return err
	}

	plog.Infof("Authentication configuration: %v", azureOpts)
	return nil
}

// buildTargets assembles the ordered candidate target list: an explicit
// manifest wins, then an explicit account, then discovery of the resource
// group's storage accounts. A configured S3 bucket is appended as the last
// candidate.
func buildTargets(ctx context.Context) ([]storage.Target, error) {
	var targets []storage.Target

	switch {
	case targetsFile != "":
		m, err := storage.LoadManifest(targetsFile)
		if err != nil {
			return nil, err
		}
		for _, e := range m.Targets {
			switch e.Kind {
			case "azure":
				c := e.Container
				if c == "" {
					c = containerName
				}
				targets = append(targets, azure.NewTarget(&azureOpts, e.Account, c))
			case "s3":
				opts := s3Opts
				opts.Endpoint = e.Endpoint
				if e.Region != "" {
					opts.Region = e.Region
				}
				if e.UseSSL != nil {
					opts.UseSSL = *e.UseSSL
				}
				targets = append(targets, s3.NewTarget(&opts, e.Bucket))
			}
		}
		return targets, nil

	case accountName != "":
		if err := azureOpts.Validate(); err != nil {
			return nil, err
		}
		targets = append(targets, azure.NewTarget(&azureOpts, accountName, containerName))

	default:
		if err := azureOpts.Validate(); err != nil {
			return nil, err
		}
		discovered, err := azure.Discover(ctx, &azureOpts, containerName)
		if err != nil {
			return nil, err
		}
		targets = discovered
	}

	if s3Opts.Endpoint != "" && s3Bucket != "" {
		targets = append(targets, s3.NewTarget(&s3Opts, s3Bucket))
	}
	return targets, nil
}
