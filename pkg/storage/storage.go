// Package storage archives score reports.
//
// Every pipeline run that reaches the store stage is saved as a [Record]
// under its run ID. Two backends exist:
//   - file: one JSON file per record, for the CLI
//   - mongo: a MongoDB collection, for the API server
//
// Usage:
//
//	store, err := storage.Open(ctx, storage.Config{Backend: storage.BackendFile, Dir: dir})
//	if err != nil {
//	    return err
//	}
//	defer store.Close(ctx)
//
//	if err := store.Save(ctx, rec); err != nil {
//	    return err
//	}
//	recent, err := store.List(ctx, 10)
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/score"
)

// Record is one archived run.
type Record struct {
	ID        string    `json:"id" yaml:"id" toml:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" toml:"created_at" bson:"created_at"`

	// InputHash identifies the input files by content.
	InputHash string `json:"input_hash" yaml:"input_hash" toml:"input_hash" bson:"input_hash"`
	G1        string `json:"g1" yaml:"g1" toml:"g1" bson:"g1"`
	G2        string `json:"g2" yaml:"g2" toml:"g2" bson:"g2"`
	View      string `json:"view" yaml:"view" toml:"view" bson:"view"`
	Mode      string `json:"mode" yaml:"mode" toml:"mode" bson:"mode"`

	Nodes    int             `json:"nodes" yaml:"nodes" toml:"nodes" bson:"nodes"`
	Links    map[string]int  `json:"links" yaml:"links" toml:"links" bson:"links"`
	Measures []score.Measure `json:"measures" yaml:"measures" toml:"measures" bson:"measures"`
}

// Measure returns the value of the named measure.
func (r *Record) Measure(name string) (float64, bool) {
	for _, m := range r.Measures {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}

// NewRecord returns a record with a fresh ID and the current time.
func NewRecord() *Record {
	return &Record{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

// Store saves and retrieves records. Implementations are safe for
// concurrent use.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	// Get returns the record or an error with code ErrCodeReportNotFound.
	Get(ctx context.Context, id string) (*Record, error)
	// List returns up to limit records, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Record, error)
	Close(ctx context.Context) error
}

func notFound(id string) error {
	return apperr.New(apperr.ErrCodeReportNotFound, "report %q not found", id)
}

// validID rejects IDs that are not UUIDs, so they are safe as file names.
func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid report id %q", id)
	}
	return nil
}

// Backend names a store implementation.
type Backend string

// Backends.
const (
	BackendFile  Backend = "file"
	BackendMongo Backend = "mongo"
)

// Config selects a backend.
type Config struct {
	Backend  Backend
	Dir      string
	MongoURI string
	Database string
}

// Open returns the configured store. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(cfg.Dir)
	case BackendMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
	}
	return nil, fmt.Errorf("unknown store backend %q (must be one of: file, mongo)", cfg.Backend)
}
