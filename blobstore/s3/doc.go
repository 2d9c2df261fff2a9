// Package s3 implements blobstore.BlobStore backed by Amazon S3.
//
// Model artifacts are addressed as bucket/rootPrefix/region/artifact and
// streamed directly into the decoder; no local staging files are created.
//
// Usage:
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := s3.NewStore(s3.NewFromConfig(cfg), "my-models", "hpf/")
package s3
