// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

// Package s3 implements a storage.Target over a bucket on an S3-compatible
// endpoint (MinIO, AWS). The shared-key strategy uses static v4 keys, the
// identity strategy uses the environment/IAM credential chain.
package s3

import (
	"context"
	"fmt"

	"github.com/coreos/pkg/capnslog"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ldabas-msft/jumpstart-resources/storage"
)

var plog = capnslog.NewPackageLogger("github.com/ldabas-msft/jumpstart-resources", "storage/s3")

type Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

type Target struct {
	opts   *Options
	bucket string

	clients map[storage.Strategy]*minio.Client
}

func NewTarget(opts *Options, bucket string) *Target {
	return &Target{
		opts:    opts,
		bucket:  bucket,
		clients: make(map[storage.Strategy]*minio.Client),
	}
}

func (t *Target) Name() string {
	return fmt.Sprintf("%s/%s", t.opts.Endpoint, t.bucket)
}

func (t *Target) client(strategy storage.Strategy) (*minio.Client, error) {
	if c, ok := t.clients[strategy]; ok {
		return c, nil
	}

	var creds *credentials.Credentials
	switch strategy {
	case storage.StrategySharedKey:
		if t.opts.AccessKey == "" || t.opts.SecretKey == "" {
			return nil, fmt.Errorf("no static keys configured for %q", t.opts.Endpoint)
		}
		creds = credentials.NewStaticV4(t.opts.AccessKey, t.opts.SecretKey, "")
	case storage.StrategyIdentity:
		creds = credentials.NewIAM("")
	default:
		return nil, fmt.Errorf("unknown credential strategy %q", strategy)
	}

	c, err := minio.New(t.opts.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: t.opts.UseSSL,
		Region: t.opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client for %q: %w", t.opts.Endpoint, err)
	}

	t.clients[strategy] = c
	return c, nil
}

func (t *Target) Probe(ctx context.Context, strategy storage.Strategy) error {
	c, err := t.client(strategy)
	if err != nil {
		return err
	}
	if _, err := c.BucketExists(ctx, t.bucket); err != nil {
		return fmt.Errorf("probing %q: %w", t.Name(), err)
	}
	return nil
}

func (t *Target) EnsureContainer(ctx context.Context, strategy storage.Strategy) error {
	c, err := t.client(strategy)
	if err != nil {
		return err
	}
	exists, err := c.BucketExists(ctx, t.bucket)
	if err == nil && exists {
		return nil
	}
	// Either the bucket is missing or we lack permission to check; try
	// creating it and treat an ownership conflict as success.
	err = c.MakeBucket(ctx, t.bucket, minio.MakeBucketOptions{Region: t.opts.Region})
	if err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return nil
		}
		return fmt.Errorf("creating bucket %q: %w", t.bucket, err)
	}
	return nil
}

func (t *Target) Upload(ctx context.Context, strategy storage.Strategy, name, path string) error {
	c, err := t.client(strategy)
	if err != nil {
		return err
	}
	_, err = c.FPutObject(ctx, t.bucket, name, path, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("uploading %q to %s: %w", name, t.Name(), err)
	}
	plog.Infof("Uploaded %q to %s", name, t.Name())
	return nil
}

func (t *Target) List(ctx context.Context, strategy storage.Strategy) ([]string, error) {
	c, err := t.client(strategy)
	if err != nil {
		return nil, err
	}
	var names []string
	for obj := range c.ListObjects(ctx, t.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing %q: %w", t.Name(), obj.Err)
		}
		names = append(names, obj.Key)
	}
	return names, nil
}
