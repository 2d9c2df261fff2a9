// Package minio implements blobstore.BlobStore backed by MinIO or any
// S3-compatible object storage.
//
// Usage:
//
//	client, err := minio.New("play.min.io", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := minio.NewStore(client, "my-models", "hpf/")
package minio
