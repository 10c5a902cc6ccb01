// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

// Package azure implements a storage.Target over an Azure storage account.
//
// Two credential strategies are supported. The shared-key strategy fetches
// the account's access key through the management plane and talks to the
// blob endpoint with it; the identity strategy talks to the blob endpoint
// directly with the service principal's (or default chain's) token. An
// account locked down with AllowSharedKeyAccess=false rejects the former,
// an account whose role assignments have not propagated yet rejects the
// latter, so the publisher swaps strategies per attempt.
package azure

import (
	"context"
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
	"github.com/coreos/pkg/capnslog"

	"github.com/ldabas-msft/jumpstart-resources/auth"
	"github.com/ldabas-msft/jumpstart-resources/storage"
)

// DefaultContainer is the well-known container result artifacts land in.
const DefaultContainer = "testresults"

var plog = capnslog.NewPackageLogger("github.com/ldabas-msft/jumpstart-resources", "storage/azure")

type Target struct {
	opts      *auth.AzureOptions
	account   string
	container string

	// Service clients are cached per strategy; building the shared-key
	// client costs a management-plane round trip.
	clients map[storage.Strategy]*service.Client
}

func NewTarget(opts *auth.AzureOptions, account, container string) *Target {
	if container == "" {
		container = DefaultContainer
	}
	return &Target{
		opts:      opts,
		account:   account,
		container: container,
		clients:   make(map[storage.Strategy]*service.Client),
	}
}

func (t *Target) Name() string {
	return t.account
}

func (t *Target) serviceURL() string {
	return fmt.Sprintf("https://%s.blob.%s/", t.account, t.opts.EndpointSuffix())
}

func (t *Target) client(ctx context.Context, strategy storage.Strategy) (*service.Client, error) {
	if c, ok := t.clients[strategy]; ok {
		return c, nil
	}

	var (
		c   *service.Client
		err error
	)
	switch strategy {
	case storage.StrategySharedKey:
		c, err = t.sharedKeyClient(ctx)
	case storage.StrategyIdentity:
		c, err = t.identityClient()
	default:
		return nil, fmt.Errorf("unknown credential strategy %q", strategy)
	}
	if err != nil {
		return nil, err
	}

	t.clients[strategy] = c
	return c, nil
}

// sharedKeyClient lists the account keys through the management plane and
// builds a blob service client from the first one.
func (t *Target) sharedKeyClient(ctx context.Context) (*service.Client, error) {
	cred, err := t.opts.TokenCredential()
	if err != nil {
		return nil, fmt.Errorf("resolving management credential: %w", err)
	}
	accClient, err := armstorage.NewAccountsClient(t.opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating accounts client: %w", err)
	}
	keys, err := accClient.ListKeys(ctx, t.opts.ResourceGroup, t.account, nil)
	if err != nil {
		return nil, fmt.Errorf("listing keys for %q: %w", t.account, err)
	}
	for _, k := range keys.Keys {
		if k.Value == nil {
			continue
		}
		skc, err := service.NewSharedKeyCredential(t.account, *k.Value)
		if err != nil {
			return nil, fmt.Errorf("building shared key credential: %w", err)
		}
		return service.NewClientWithSharedKeyCredential(t.serviceURL(), skc, nil)
	}
	return nil, fmt.Errorf("no usable keys found for %q", t.account)
}

func (t *Target) identityClient() (*service.Client, error) {
	cred, err := t.opts.TokenCredential()
	if err != nil {
		return nil, fmt.Errorf("resolving identity credential: %w", err)
	}
	return service.NewClient(t.serviceURL(), cred, nil)
}

// Probe resolves a client under the strategy and lists the first page of
// containers to prove the data plane is reachable.
func (t *Target) Probe(ctx context.Context, strategy storage.Strategy) error {
	c, err := t.client(ctx, strategy)
	if err != nil {
		return err
	}
	pager := c.NewListContainersPager(nil)
	if _, err := pager.NextPage(ctx); err != nil {
		return fmt.Errorf("listing containers on %q: %w", t.account, err)
	}
	return nil
}

// EnsureContainer creates the container without checking for it first; an
// existence check needs a read permission the caller may not hold, while
// create-and-tolerate-conflict works either way.
func (t *Target) EnsureContainer(ctx context.Context, strategy storage.Strategy) error {
	c, err := t.client(ctx, strategy)
	if err != nil {
		return err
	}
	_, err = c.NewContainerClient(t.container).Create(ctx, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists, bloberror.ResourceAlreadyExists) {
		return fmt.Errorf("creating container %q on %q: %w", t.container, t.account, err)
	}
	return nil
}

// Upload publishes the file as a block blob. Same-named blobs are
// overwritten.
func (t *Target) Upload(ctx context.Context, strategy storage.Strategy, name, path string) error {
	c, err := t.client(ctx, strategy)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	blobClient := c.NewContainerClient(t.container).NewBlockBlobClient(name)
	if _, err := blobClient.UploadFile(ctx, f, nil); err != nil {
		return fmt.Errorf("uploading %q to %s/%s: %w", name, t.account, t.container, err)
	}
	plog.Infof("Uploaded %q to %s/%s", name, t.account, t.container)
	return nil
}

func (t *Target) List(ctx context.Context, strategy storage.Strategy) ([]string, error) {
	c, err := t.client(ctx, strategy)
	if err != nil {
		return nil, err
	}

	var names []string
	pager := c.NewContainerClient(t.container).NewListBlobsFlatPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed listing blobs for %q: %w", t.container, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	return names, nil
}

// Discover lists the storage accounts in the configured resource group and
// returns them as candidate targets in the order the management plane
// reports them. An empty resource group yields no targets, which the
// publisher treats as local-only, not as an error.
func Discover(ctx context.Context, opts *auth.AzureOptions, containerName string) ([]storage.Target, error) {
	cred, err := opts.TokenCredential()
	if err != nil {
		return nil, fmt.Errorf("resolving credential for discovery: %w", err)
	}
	accClient, err := armstorage.NewAccountsClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating accounts client: %w", err)
	}

	var targets []storage.Target
	pager := accClient.NewListByResourceGroupPager(opts.ResourceGroup, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing storage accounts in %q: %w", opts.ResourceGroup, err)
		}
		for _, acc := range page.Value {
			if acc.Name == nil {
				continue
			}
			plog.Infof("Discovered storage account %q", *acc.Name)
			targets = append(targets, NewTarget(opts, *acc.Name, containerName))
		}
	}
	return targets, nil
}
