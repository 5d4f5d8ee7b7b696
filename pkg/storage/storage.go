// Package storage persists person datasets.
//
// A dataset is the canonical ordered sequence of person records under a
// name. [Repository] implementations exist for several backends:
//   - memory: in-process maps for tests and one-off runs
//   - file: JSON documents under a directory, for the CLI
//   - redis: one JSON value per dataset, for shared deployments
//   - mongo: one document per dataset
//
// Use [Open] to construct the backend named in a [Config]:
//
//	repo, err := storage.Open(ctx, storage.Config{Backend: "file", Dir: dir})
//	if err != nil {
//	    return err
//	}
//	defer repo.Close()
//	ds, err := repo.Load(ctx, "pendle")
//
// Every backend reports a missing dataset as NOT_FOUND and rejects unsafe
// dataset names with INVALID_INPUT.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/person"
)

// Dataset is a stored person sequence.
type Dataset struct {
	Name     string          `json:"name" bson:"_id"`
	People   []person.Person `json:"people" bson:"people"`
	SavedAt  time.Time       `json:"saved_at" bson:"saved_at"`
	Checksum string          `json:"checksum" bson:"checksum"`
}

// Repository is the interface for dataset storage backends.
type Repository interface {
	// Load returns the named dataset, or a NOT_FOUND error.
	Load(ctx context.Context, name string) (*Dataset, error)

	// Save stores people under name, replacing any previous content.
	Save(ctx context.Context, name string, people []person.Person) error

	// Delete removes the named dataset, or returns a NOT_FOUND error.
	Delete(ctx context.Context, name string) error

	// List returns the stored dataset names in ascending order.
	List(ctx context.Context) ([]string, error)

	Close() error
}

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string

	// Dir is the root directory of the file backend.
	Dir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open connects to the configured backend. The returned repository reports
// every load and save to the storage hooks.
func Open(ctx context.Context, cfg Config) (Repository, error) {
	var (
		repo Repository
		err  error
	)
	switch cfg.Backend {
	case BackendMemory:
		repo = NewMemoryStore()
	case BackendFile, "":
		repo, err = NewFileStore(cfg.Dir)
	case BackendRedis:
		repo, err = NewRedisStore(ctx, RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	case BackendMongo:
		repo, err = NewMongoStore(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase, Collection: cfg.MongoCollection})
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	backend := cfg.Backend
	if backend == "" {
		backend = BackendFile
	}
	return &instrumented{Repository: repo, backend: backend}, nil
}

// newDataset stamps people with the save time and a checksum.
func newDataset(name string, people []person.Person) (*Dataset, error) {
	if people == nil {
		people = []person.Person{}
	}
	data, err := json.Marshal(people)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode dataset %s", name)
	}
	return &Dataset{
		Name:     name,
		People:   people,
		SavedAt:  time.Now().UTC(),
		Checksum: Hash(data),
	}, nil
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeNotFound, "dataset %q not found", name)
}

type instrumented struct {
	Repository
	backend string
}

func (r *instrumented) Load(ctx context.Context, name string) (*Dataset, error) {
	start := time.Now()
	ds, err := r.Repository.Load(ctx, name)
	n := 0
	if ds != nil {
		n = len(ds.People)
	}
	observability.Storage().OnLoad(ctx, r.backend, name, n, time.Since(start), err)
	return ds, err
}

func (r *instrumented) Save(ctx context.Context, name string, people []person.Person) error {
	start := time.Now()
	err := r.Repository.Save(ctx, name, people)
	observability.Storage().OnSave(ctx, r.backend, name, len(people), time.Since(start), err)
	return err
}
