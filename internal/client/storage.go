package client

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"

	"github.com/windfall/kidvocab_service/internal/errors"
)

// StorageClient wraps the Google Cloud Storage client.
type StorageClient struct {
	client     *storage.Client
	bucketName string
}

// NewStorageClient creates a new storage client.
func NewStorageClient(ctx context.Context, bucketName string) (*StorageClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Storage("failed to create storage client", err)
	}

	return &StorageClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// Close closes the client.
func (c *StorageClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Upload writes data to the bucket and returns the object's public URL.
func (c *StorageClient) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	obj := c.client.Bucket(c.bucketName).Object(objectName)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", errors.Storage("failed to write object", err)
	}

	if err := w.Close(); err != nil {
		return "", errors.Storage("failed to finalize object", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, objectName), nil
}
