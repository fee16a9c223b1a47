// Package minio provides a directory.Directory backed by MinIO or any
// S3-compatible object store reachable through minio-go.
//
// It mirrors the behavior of the s3 package: segment files are fetched
// into a local cache directory on first read and memory mapped from
// there, writes upload when the file is closed, and the metadata file
// always goes straight to the remote store.
//
// # Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//
//	dir, err := miniodir.Open(ctx, client, "search-indexes",
//	    func(o *miniodir.Options) { o.Prefix = "logs" },
//	)
package minio
