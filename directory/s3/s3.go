package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/drusellers/tantivy/directory"
)

// Client is the subset of the S3 API the directory uses. *s3.Client
// satisfies it.
type Client interface {
	manager.UploadAPIClient
	manager.DownloadAPIClient
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Options configures an S3 directory.
type Options struct {
	// Prefix is prepended to every object key, so multiple indexes can
	// share one bucket (e.g. "indexes/logs").
	Prefix string

	// CacheDir is the local directory objects are fetched into. When
	// empty, a fresh temp dir is created and removed again on Close.
	CacheDir string

	// FetchRate bounds remote object fetches per second. Defaults to
	// unlimited.
	FetchRate rate.Limit

	// PrefetchConcurrency caps parallel downloads during Prefetch.
	PrefetchConcurrency int
}

// Directory reads and writes index files as objects under bucket/prefix.
//
// Immutable segment files are cached on local disk and memory mapped
// from there. The mutable metadata file bypasses the cache: AtomicRead
// always fetches from S3, AtomicWrite puts directly, so a fresh process
// always observes the latest commit.
type Directory struct {
	client   Client
	uploader *manager.Uploader
	bucket   string
	prefix   string

	limiter             *rate.Limiter
	prefetchConcurrency int
	fetches             singleflight.Group

	cacheDir  string
	ownsCache bool
	local     *directory.MmapDirectory
	closed    atomic.Bool
}

var _ directory.Directory = (*Directory)(nil)

// Open validates access to the bucket and prepares the local cache.
func Open(ctx context.Context, client Client, bucket string, optFns ...func(*Options)) (*Directory, error) {
	opts := Options{
		FetchRate:           rate.Inf,
		PrefetchConcurrency: 8,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return nil, fmt.Errorf("s3: bucket %q not accessible: %w", bucket, err)
	}

	cacheDir := opts.CacheDir
	ownsCache := false
	if cacheDir == "" {
		tmp, err := os.MkdirTemp("", "tantivy-s3-*")
		if err != nil {
			return nil, err
		}
		cacheDir = tmp
		ownsCache = true
	} else if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, err
	}

	local, err := directory.OpenMmapDirectory(cacheDir)
	if err != nil {
		if ownsCache {
			_ = os.RemoveAll(cacheDir)
		}
		return nil, err
	}

	return &Directory{
		client:              client,
		uploader:            manager.NewUploader(client),
		bucket:              bucket,
		prefix:              opts.Prefix,
		limiter:             rate.NewLimiter(opts.FetchRate, 1),
		prefetchConcurrency: opts.PrefetchConcurrency,
		cacheDir:            cacheDir,
		ownsCache:           ownsCache,
		local:               local,
	}, nil
}

func (d *Directory) String() string {
	return fmt.Sprintf("S3Directory(s3://%s/%s)", d.bucket, d.prefix)
}

func (d *Directory) key(name string) string {
	return path.Join(d.prefix, name)
}

// OpenRead fetches the object into the local cache on first use and
// memory maps it from there.
func (d *Directory) OpenRead(p string) (*directory.ReadOnlySource, error) {
	if err := d.ensureLocal(context.Background(), p); err != nil {
		return nil, err
	}
	return d.local.OpenRead(p)
}

// OpenWrite creates the file in the local cache; the finished file is
// uploaded to S3 when the returned writer is closed.
func (d *Directory) OpenWrite(p string) (directory.WriteCloser, error) {
	exists, err := d.Exists(p)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &directory.FileError{Op: "create", Path: p, Err: directory.ErrFileAlreadyExists}
	}
	w, err := d.local.OpenWrite(p)
	if err != nil {
		return nil, err
	}
	return &uploadOnClose{dir: d, path: p, local: w}, nil
}

// AtomicRead fetches the full object from S3, bypassing the cache.
func (d *Directory) AtomicRead(p string) ([]byte, error) {
	ctx := context.Background()
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, &directory.FileError{Op: "read", Path: p, Err: err}
	}
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(p)),
	})
	if err != nil {
		return nil, d.translate("read", p, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &directory.FileError{Op: "read", Path: p, Err: err}
	}
	return data, nil
}

// AtomicWrite puts the object directly. S3 object writes are atomic, so
// readers observe either the previous object or this one.
func (d *Directory) AtomicWrite(p string, data []byte) error {
	_, err := d.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:        aws.String(d.bucket),
		Key:           aws.String(d.key(p)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return d.translate("write", p, err)
	}
	// Drop a stale cached copy, if any.
	if ok, _ := d.local.Exists(p); ok {
		_ = d.local.Delete(p)
	}
	return nil
}

// Delete removes the object and the cached local copy. Deleting a
// missing object is not an error, matching S3 semantics.
func (d *Directory) Delete(p string) error {
	_, err := d.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(p)),
	})
	if err != nil {
		return d.translate("delete", p, err)
	}
	if ok, _ := d.local.Exists(p); ok {
		return d.local.Delete(p)
	}
	return nil
}

// Exists reports whether the object exists in the bucket.
func (d *Directory) Exists(p string) (bool, error) {
	_, err := d.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(p)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, &directory.FileError{Op: "stat", Path: p, Err: err}
	}
	return true, nil
}

// Prefetch downloads the given files into the local cache in parallel,
// warming it before the first search.
func (d *Directory) Prefetch(ctx context.Context, paths ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.prefetchConcurrency)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			return d.ensureLocal(ctx, p)
		})
	}
	return g.Wait()
}

// CacheInfo exposes the embedded mmap cache counters.
func (d *Directory) CacheInfo() directory.CacheInfo {
	return d.local.CacheInfo()
}

// Close releases the local cache. A cache dir created by Open is
// removed; a caller-provided one is kept for the next process.
func (d *Directory) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := d.local.Close()
	if d.ownsCache {
		if rmErr := os.RemoveAll(d.cacheDir); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

// ensureLocal makes sure the object has a complete local copy.
// Concurrent callers for the same path share one download.
func (d *Directory) ensureLocal(ctx context.Context, p string) error {
	ok, err := d.local.Exists(p)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	_, err, _ = d.fetches.Do(p, func() (any, error) {
		ok, err := d.local.Exists(p)
		if err != nil || ok {
			return nil, err
		}
		return nil, d.fetch(ctx, p)
	})
	return err
}

// fetch downloads one object and installs it in the cache atomically,
// so a crashed download never leaves a half file behind.
func (d *Directory) fetch(ctx context.Context, p string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return &directory.FileError{Op: "fetch", Path: p, Err: err}
	}
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(p)),
	})
	if err != nil {
		return d.translate("fetch", p, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return &directory.FileError{Op: "fetch", Path: p, Err: err}
	}
	return d.local.AtomicWrite(p, data)
}

func (d *Directory) upload(ctx context.Context, p string) error {
	f, err := os.Open(filepath.Join(d.cacheDir, p))
	if err != nil {
		return &directory.FileError{Op: "upload", Path: p, Err: err}
	}
	defer f.Close()

	_, err = d.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(p)),
		Body:   f,
	})
	if err != nil {
		return &directory.FileError{Op: "upload", Path: p, Err: err}
	}
	return nil
}

func (d *Directory) translate(op, p string, err error) error {
	if isNotFound(err) {
		return &directory.FileError{Op: op, Path: p, Err: directory.ErrFileDoesNotExist}
	}
	return &directory.FileError{Op: op, Path: p, Err: err}
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

// uploadOnClose writes through to the local cache file and uploads the
// finished file when closed. Segment files are immutable, so a single
// upload at close covers the whole lifecycle.
type uploadOnClose struct {
	dir    *Directory
	path   string
	local  directory.WriteCloser
	closed atomic.Bool
}

func (w *uploadOnClose) Write(p []byte) (int, error) {
	if w.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	return w.local.Write(p)
}

func (w *uploadOnClose) Sync() error {
	return w.local.Sync()
}

func (w *uploadOnClose) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := w.local.Close(); err != nil {
		return err
	}
	return w.dir.upload(context.Background(), w.path)
}
