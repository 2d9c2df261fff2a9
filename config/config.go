// Package config loads the engine's deployment configuration.
//
// Configuration is layered: struct defaults first, then an optional YAML
// file, then environment variables (highest priority).
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/stackrec/blobstore"
	miniostore "github.com/hupe1980/stackrec/blobstore/minio"
	s3store "github.com/hupe1980/stackrec/blobstore/s3"
	"github.com/hupe1980/stackrec/hpf"
	"github.com/hupe1980/stackrec/model"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "STACKREC_"

// Config is the full load-time configuration of the scoring engine.
type Config struct {
	// Region scopes artifact paths to a package ecosystem.
	Region string `koanf:"region"`

	Storage   StorageConfig   `koanf:"storage"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	HPF       HPFConfig       `koanf:"hpf"`

	// UnknownPackagesThreshold is the missing-ratio cutoff in [0,1].
	UnknownPackagesThreshold float64 `koanf:"unknown_packages_threshold"`
	// MaxRecommendations caps the companion list length.
	MaxRecommendations int `koanf:"max_recommendations"`
}

// StorageConfig selects and parameterizes the blob storage backend.
type StorageConfig struct {
	// Backend is one of "local", "s3" or "minio".
	Backend string `koanf:"backend"`
	// Path is the root directory for the local backend.
	Path string `koanf:"path"`
	// Bucket and Prefix address the object-storage backends.
	Bucket string `koanf:"bucket"`
	Prefix string `koanf:"prefix"`
	// Endpoint, AccessKey, SecretKey and UseSSL configure the minio backend.
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// ArtifactsConfig overrides the published artifact names.
type ArtifactsConfig struct {
	Theta        string `koanf:"theta"`
	Beta         string `koanf:"beta"`
	PackageDict  string `koanf:"package_dict"`
	ManifestDict string `koanf:"manifest_dict"`
}

// HPFConfig carries the training hyperparameters.
type HPFConfig struct {
	A  float64 `koanf:"a"`
	AC float64 `koanf:"a_c"`
	BC float64 `koanf:"b_c"`
	C  float64 `koanf:"c"`
	CC float64 `koanf:"c_c"`
	DC float64 `koanf:"d_c"`
	K  int     `koanf:"k"`
}

// Default returns a Config with all default values applied.
func Default() *Config {
	params := hpf.DefaultHyperparameters()
	artifacts := model.DefaultArtifacts()

	return &Config{
		Region: "maven",
		Storage: StorageConfig{
			Backend: "local",
			Path:    "./models",
			UseSSL:  true,
		},
		Artifacts: ArtifactsConfig{
			Theta:        artifacts.Theta,
			Beta:         artifacts.Beta,
			PackageDict:  artifacts.PackageDict,
			ManifestDict: artifacts.ManifestDict,
		},
		HPF: HPFConfig{
			A:  params.A,
			AC: params.AC,
			BC: params.BC,
			C:  params.C,
			CC: params.CC,
			DC: params.DC,
			K:  params.K,
		},
		UnknownPackagesThreshold: 0.3,
		MaxRecommendations:       5,
	}
}

// envKeys maps supported environment variables to koanf paths. Unknown
// variables with the prefix are ignored.
var envKeys = map[string]string{
	"REGION":                     "region",
	"STORAGE_BACKEND":            "storage.backend",
	"STORAGE_PATH":               "storage.path",
	"STORAGE_BUCKET":             "storage.bucket",
	"STORAGE_PREFIX":             "storage.prefix",
	"STORAGE_ENDPOINT":           "storage.endpoint",
	"STORAGE_ACCESS_KEY":         "storage.access_key",
	"STORAGE_SECRET_KEY":         "storage.secret_key",
	"STORAGE_USE_SSL":            "storage.use_ssl",
	"UNKNOWN_PACKAGES_THRESHOLD": "unknown_packages_threshold",
	"MAX_RECOMMENDATIONS":        "max_recommendations",
	"HPF_K":                      "hpf.k",
}

// Load builds the configuration from defaults, the optional YAML file at
// path (empty path skips the file layer), and environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.TrimPrefix(s, EnvPrefix)
		if target, ok := envKeys[key]; ok {
			return target
		}
		return ""
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region must not be empty")
	}
	if c.UnknownPackagesThreshold < 0 || c.UnknownPackagesThreshold > 1 {
		return fmt.Errorf("unknown_packages_threshold must be in [0,1], got %v", c.UnknownPackagesThreshold)
	}
	if c.MaxRecommendations <= 0 {
		return fmt.Errorf("max_recommendations must be positive, got %d", c.MaxRecommendations)
	}

	switch c.Storage.Backend {
	case "local":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the local backend")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend")
		}
	case "minio":
		if c.Storage.Bucket == "" || c.Storage.Endpoint == "" {
			return fmt.Errorf("storage.bucket and storage.endpoint are required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	return c.Hyperparameters().Validate()
}

// NewBlobStore constructs the artifact store the configuration selects.
//
// The s3 backend resolves region and credentials from the ambient AWS
// environment; the minio backend uses the configured static credentials.
func (c *Config) NewBlobStore(ctx context.Context) (blobstore.BlobStore, error) {
	switch c.Storage.Backend {
	case "local":
		return blobstore.NewLocalStore(c.Storage.Path), nil
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return s3store.NewStore(s3.NewFromConfig(awsCfg), c.Storage.Bucket, c.Storage.Prefix), nil
	case "minio":
		client, err := minio.New(c.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(c.Storage.AccessKey, c.Storage.SecretKey, ""),
			Secure: c.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, c.Storage.Bucket, c.Storage.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
}

// Hyperparameters converts the HPF section into scoring hyperparameters.
func (c *Config) Hyperparameters() hpf.Hyperparameters {
	return hpf.Hyperparameters{
		A:  c.HPF.A,
		AC: c.HPF.AC,
		BC: c.HPF.BC,
		C:  c.HPF.C,
		CC: c.HPF.CC,
		DC: c.HPF.DC,
		K:  c.HPF.K,
	}
}

// ModelArtifacts converts the artifacts section into loader artifact names.
func (c *Config) ModelArtifacts() model.Artifacts {
	return model.Artifacts{
		Theta:        c.Artifacts.Theta,
		Beta:         c.Artifacts.Beta,
		PackageDict:  c.Artifacts.PackageDict,
		ManifestDict: c.Artifacts.ManifestDict,
	}
}
