// Package s3 provides an S3 backed implementation of the
// directory.Directory interface.
//
// Segment files are fetched on first read into a local cache directory
// and served from there through memory mappings, so repeated scans hit
// the page cache instead of the network. Writes go to the cache first
// and upload to S3 when the file is closed.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	client := s3.NewFromConfig(cfg)
//
//	dir, err := s3dir.Open(ctx, client, "my-bucket",
//	    func(o *s3dir.Options) { o.Prefix = "indexes/logs" },
//	)
//
//	ix, err := tantivy.Open(dir)
//
// # Features
//
//   - Local mmap cache, populated once per object
//   - Multipart uploads for large segment files
//   - Optional rate limiting of remote fetches
//   - Parallel Prefetch for warming a cold cache
package s3
