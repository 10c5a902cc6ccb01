// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth resolves the cloud credentials and target-resolution
// configuration a publication run needs, from flags, the process
// environment, or an optional .env file.
package auth

import (
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/joho/godotenv"
)

// AzureOptions identifies the subscription, the service principal, and the
// resource group that hosts the candidate storage accounts.
type AzureOptions struct {
	SubscriptionID string
	TenantID       string
	ClientID       string
	ClientSecret   string
	ResourceGroup  string
	Location       string

	// Azure Storage endpoint suffix. If unset, the public cloud suffix
	// is used.
	StorageEndpointSuffix string
}

const DefaultStorageEndpointSuffix = "core.windows.net"

// LoadEnv reads a dotenv file into the process environment. A missing file
// is not an error; runs in CI get their variables from the pipeline.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// FillFromEnvironment populates unset fields from the conventional
// AZURE_* environment variables.
func (o *AzureOptions) FillFromEnvironment() {
	setIfEmpty := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	setIfEmpty(&o.SubscriptionID, "AZURE_SUBSCRIPTION_ID")
	setIfEmpty(&o.TenantID, "AZURE_TENANT_ID")
	setIfEmpty(&o.ClientID, "AZURE_CLIENT_ID")
	setIfEmpty(&o.ClientSecret, "AZURE_CLIENT_SECRET")
	setIfEmpty(&o.ResourceGroup, "AZURE_RESOURCE_GROUP")
	setIfEmpty(&o.Location, "AZURE_LOCATION")
}

// Validate checks that enough configuration is present to resolve a token
// credential for the subscription.
func (o *AzureOptions) Validate() error {
	if o.SubscriptionID == "" {
		return fmt.Errorf("no subscription id configured (--subscription or AZURE_SUBSCRIPTION_ID)")
	}
	if o.ResourceGroup == "" {
		return fmt.Errorf("no resource group configured (--resource-group or AZURE_RESOURCE_GROUP)")
	}
	return nil
}

// TokenCredential builds the delegated-identity credential. A configured
// service principal takes precedence; otherwise the default chain (managed
// identity, workload identity, CLI) is used.
func (o *AzureOptions) TokenCredential() (azcore.TokenCredential, error) {
	if o.TenantID != "" && o.ClientID != "" && o.ClientSecret != "" {
		return azidentity.NewClientSecretCredential(o.TenantID, o.ClientID, o.ClientSecret, nil)
	}
	return azidentity.NewDefaultAzureCredential(nil)
}

// EndpointSuffix returns the configured storage endpoint suffix or the
// public cloud default.
func (o *AzureOptions) EndpointSuffix() string {
	if o.StorageEndpointSuffix != "" {
		return o.StorageEndpointSuffix
	}
	return DefaultStorageEndpointSuffix
}

// String renders the options for diagnostics. The client secret is never
// included.
func (o AzureOptions) String() string {
	secret := ""
	if o.ClientSecret != "" {
		secret = "(redacted)"
	}
	return fmt.Sprintf("subscription=%s tenant=%s client=%s secret=%s group=%s location=%s",
		o.SubscriptionID, o.TenantID, o.ClientID, secret, o.ResourceGroup, o.Location)
}
