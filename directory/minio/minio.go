package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/drusellers/tantivy/directory"
)

// Options configures a MinIO directory.
type Options struct {
	// Prefix is prepended to every object key.
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

// Directory reads and writes index files as objects under bucket/prefix,
// with the same local cache behavior as the s3 package.
type Directory struct {
	client *minio.Client
	bucket string
	prefix string

	limiter             *rate.Limiter
	prefetchConcurrency int
	fetches             singleflight.Group

	cacheDir  string
	ownsCache bool
	local     *directory.MmapDirectory
	closed    atomic.Bool
}

var _ directory.Directory = (*Directory)(nil)

// Open validates that the bucket exists and prepares the local cache.
func Open(ctx context.Context, client *minio.Client, bucket string, optFns ...func(*Options)) (*Directory, error) {
	opts := Options{
		FetchRate:           rate.Inf,
		PrefetchConcurrency: 8,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	ok, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio: bucket %q not accessible: %w", bucket, err)
	}
	if !ok {
		return nil, fmt.Errorf("minio: bucket %q does not exist", bucket)
	}

	cacheDir := opts.CacheDir
	ownsCache := false
	if cacheDir == "" {
		tmp, err := os.MkdirTemp("", "tantivy-minio-*")
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
	return fmt.Sprintf("MinioDirectory(%s/%s)", d.bucket, d.prefix)
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
// uploaded when the returned writer is closed.
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

// AtomicRead fetches the full object, bypassing the cache.
func (d *Directory) AtomicRead(p string) ([]byte, error) {
	ctx := context.Background()
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, &directory.FileError{Op: "read", Path: p, Err: err}
	}
	obj, err := d.client.GetObject(ctx, d.bucket, d.key(p), minio.GetObjectOptions{})
	if err != nil {
		return nil, d.translate("read", p, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		// minio defers the NoSuchKey response until the first read.
		return nil, d.translate("read", p, err)
	}
	return data, nil
}

// AtomicWrite puts the object directly; object writes are atomic on the
// remote side.
func (d *Directory) AtomicWrite(p string, data []byte) error {
	_, err := d.client.PutObject(context.Background(), d.bucket, d.key(p),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return d.translate("write", p, err)
	}
	if ok, _ := d.local.Exists(p); ok {
		_ = d.local.Delete(p)
	}
	return nil
}

// Delete removes the object and the cached local copy. Deleting a
// missing object is not an error.
func (d *Directory) Delete(p string) error {
	err := d.client.RemoveObject(context.Background(), d.bucket, d.key(p), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return d.translate("delete", p, err)
	}
	if ok, _ := d.local.Exists(p); ok {
		return d.local.Delete(p)
	}
	return nil
}

// Exists reports whether the object exists in the bucket.
func (d *Directory) Exists(p string) (bool, error) {
	_, err := d.client.StatObject(context.Background(), d.bucket, d.key(p), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, &directory.FileError{Op: "stat", Path: p, Err: err}
	}
	return true, nil
}

// Prefetch downloads the given files into the local cache in parallel.
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

func (d *Directory) fetch(ctx context.Context, p string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return &directory.FileError{Op: "fetch", Path: p, Err: err}
	}
	obj, err := d.client.GetObject(ctx, d.bucket, d.key(p), minio.GetObjectOptions{})
	if err != nil {
		return d.translate("fetch", p, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return d.translate("fetch", p, err)
	}
	return d.local.AtomicWrite(p, data)
}

func (d *Directory) upload(ctx context.Context, p string) error {
	f, err := os.Open(filepath.Join(d.cacheDir, p))
	if err != nil {
		return &directory.FileError{Op: "upload", Path: p, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return &directory.FileError{Op: "upload", Path: p, Err: err}
	}
	_, err = d.client.PutObject(ctx, d.bucket, d.key(p), f, fi.Size(), minio.PutObjectOptions{})
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
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}

// uploadOnClose writes through to the local cache file and uploads the
// finished file when closed.
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
