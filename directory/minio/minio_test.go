package minio

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drusellers/tantivy/directory"
)

// TestIntegration_MinioDirectory requires a running MinIO instance with
// the default credentials. It is skipped otherwise.
func TestIntegration_MinioDirectory(t *testing.T) {
	endpoint := "localhost:9000"
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-tantivy"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	prefix := fmt.Sprintf("test-%d", time.Now().UnixNano())
	d, err := Open(ctx, client, bucket, func(o *Options) {
		o.Prefix = prefix
	})
	require.NoError(t, err)
	defer d.Close()

	t.Run("WriteAndRead", func(t *testing.T) {
		w, err := d.OpenWrite("seg.term")
		require.NoError(t, err)
		_, err = w.Write([]byte("dictionary"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		ok, err := d.Exists("seg.term")
		require.NoError(t, err)
		assert.True(t, ok)

		src, err := d.OpenRead("seg.term")
		require.NoError(t, err)
		assert.Equal(t, "dictionary", string(src.Bytes()))
		require.NoError(t, src.Close())
	})

	t.Run("DuplicateWriteFails", func(t *testing.T) {
		_, err := d.OpenWrite("seg.term")
		assert.ErrorIs(t, err, directory.ErrFileAlreadyExists)
	})

	t.Run("AtomicRoundTrip", func(t *testing.T) {
		require.NoError(t, d.AtomicWrite("meta.json", []byte(`{"v":1}`)))
		data, err := d.AtomicRead("meta.json")
		require.NoError(t, err)
		assert.Equal(t, `{"v":1}`, string(data))

		require.NoError(t, d.AtomicWrite("meta.json", []byte(`{"v":2}`)))
		data, err = d.AtomicRead("meta.json")
		require.NoError(t, err)
		assert.Equal(t, `{"v":2}`, string(data))
	})

	t.Run("MissingObject", func(t *testing.T) {
		_, err := d.AtomicRead("nope.json")
		assert.ErrorIs(t, err, directory.ErrFileDoesNotExist)

		ok, err := d.Exists("nope.json")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Prefetch", func(t *testing.T) {
		require.NoError(t, d.AtomicWrite("warm.idx", []byte("posting data")))
		require.NoError(t, d.Prefetch(ctx, "warm.idx"))

		src, err := d.OpenRead("warm.idx")
		require.NoError(t, err)
		assert.Equal(t, "posting data", string(src.Bytes()))
		require.NoError(t, src.Close())
	})

	t.Run("Cleanup", func(t *testing.T) {
		for _, name := range []string{"seg.term", "meta.json", "warm.idx"} {
			require.NoError(t, d.Delete(name))
		}
	})
}
