// Package stackrec serves companion-package recommendations from a
// precomputed Hierarchical Poisson Factorization (HPF) model.
//
// Given a user's package list (their "stack"), the engine returns additional
// packages likely to co-occur with it, plus the input names the model does
// not recognize. Scoring folds the input into a fixed factorization: an exact
// match against a known usage pattern ("manifest") selects its latent row,
// and unmatched inputs fall back to a precomputed hyperparameter-derived
// vector so every request produces a valid result.
//
// The model - two latent matrices and two identifier dictionaries - is loaded
// once from a blobstore.BlobStore and treated as immutable shared state;
// concurrent predictions need no locking, and Reload swaps state atomically.
// Training the factorization is out of scope: this package only scores.
//
// # Quick Start
//
//	ctx := context.Background()
//
//	engine, err := stackrec.New(ctx, blobstore.NewLocalStore("./models"),
//	    stackrec.WithRegion("maven"),
//	    stackrec.WithMaxRecommendations(5),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pred, err := engine.Predict(ctx, []string{
//	    "org.slf4j:slf4j-api",
//	    "junit:junit",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, rec := range pred.Recommendations {
//	    fmt.Printf("%s (%.2f)\n", rec.PackageName, rec.CooccurrenceProbability)
//	}
//
// Models published to S3 or MinIO load the same way; pass the corresponding
// blobstore implementation.
package stackrec
