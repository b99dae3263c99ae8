// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for common operations
// like checking bucket existence, uploading files, and listing objects. This abstraction
// supports both AWS S3 and self-hosted MinIO instances.
//
// The catalog keeps two kinds of binary payloads here: versioned install
// archives under "archives/<objectKey>" and media files under
// "media/<fileId>". Both are content-addressed by an opaque object key.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: Verifies or creates the target bucket.
//   - PutObject / GetObject: Streams content to and from storage.
//   - FPutObject / FGetObject: Transfers whole files, used by the archive
//     patch engine to stage zips on local disk.
//   - StatObject: Checks object existence and size without downloading.
//   - ListObjects / RemoveObject: Enumerates and deletes objects.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "catalog")
package storage
