// Package blobstore provides storage abstraction for model artifacts.
//
// BlobStore is the interface for reading the matrix and dictionary blobs a
// trained model is published as. Implementations must be safe for concurrent
// use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem
//   - MemoryStore: In-memory store for tests and embedding
//   - s3.Store: Amazon S3
//   - minio.Store: MinIO and S3-compatible object storage
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error) // Open for reading
//	}
//
// The store is read-only by design: artifacts are produced by the training
// pipeline and never written by the scoring engine.
package blobstore
