package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/basel-ax/imagegen/internal/domain"
	"github.com/basel-ax/imagegen/internal/repository/kv"
)

// DefaultKey is the key the artifact mapping is stored under
const DefaultKey = "generated-images"

// ErrArtifactNotFound is returned when no artifact has the requested id
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactRepository defines the interface for generated artifact access
type ArtifactRepository interface {
	ReadAllSorted(ctx context.Context) ([]domain.GeneratedArtifact, error)
	Get(ctx context.Context, id string) (*domain.GeneratedArtifact, error)
	UpsertOne(ctx context.Context, artifact domain.GeneratedArtifact) error
	UpsertMany(ctx context.Context, artifacts []domain.GeneratedArtifact) error
	ToggleFavourite(ctx context.Context, id string) (*domain.GeneratedArtifact, error)
}

// KVArtifactRepository stores every artifact as one JSON object under a single key.
// Each mutation rewrites the whole object.
type KVArtifactRepository struct {
	store kv.Store
	key   string

	// serializes load-merge-write
	mu sync.Mutex
}

// NewKVArtifactRepository creates a repository over store. An empty key selects DefaultKey.
func NewKVArtifactRepository(store kv.Store, key string) *KVArtifactRepository {
	if key == "" {
		key = DefaultKey
	}
	return &KVArtifactRepository{store: store, key: key}
}

func (r *KVArtifactRepository) load(ctx context.Context) (map[string]domain.GeneratedArtifact, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.key, err)
	}
	artifacts := make(map[string]domain.GeneratedArtifact)
	if !ok || raw == "" {
		return artifacts, nil
	}
	if err := json.Unmarshal([]byte(raw), &artifacts); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.key, err)
	}
	if artifacts == nil {
		// a stored JSON null
		artifacts = make(map[string]domain.GeneratedArtifact)
	}
	return artifacts, nil
}

func (r *KVArtifactRepository) save(ctx context.Context, artifacts map[string]domain.GeneratedArtifact) error {
	data, err := json.Marshal(artifacts)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.key, err)
	}
	if err := r.store.Set(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.key, err)
	}
	return nil
}

// ReadAllSorted returns all artifacts, most recently created first
func (r *KVArtifactRepository) ReadAllSorted(ctx context.Context) ([]domain.GeneratedArtifact, error) {
	r.mu.Lock()
	artifacts, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	result := make([]domain.GeneratedArtifact, 0, len(artifacts))
	for _, a := range artifacts {
		result = append(result, a)
	}
	SortByRecency(result)
	return result, nil
}

// Get returns the artifact with the given id
func (r *KVArtifactRepository) Get(ctx context.Context, id string) (*domain.GeneratedArtifact, error) {
	r.mu.Lock()
	artifacts, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	a, ok := artifacts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, id)
	}
	return &a, nil
}

// UpsertOne replaces the stored record for artifact.ID
func (r *KVArtifactRepository) UpsertOne(ctx context.Context, artifact domain.GeneratedArtifact) error {
	return r.UpsertMany(ctx, []domain.GeneratedArtifact{artifact})
}

// UpsertMany merges artifacts into the stored mapping with a single write
func (r *KVArtifactRepository) UpsertMany(ctx context.Context, artifacts []domain.GeneratedArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		current[a.ID] = a
	}
	return r.save(ctx, current)
}

// ToggleFavourite flips the favourite flag of an artifact and stores the whole record
func (r *KVArtifactRepository) ToggleFavourite(ctx context.Context, id string) (*domain.GeneratedArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	a, ok := current[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, id)
	}
	a.Favourite = !a.Favourite
	current[id] = a
	if err := r.save(ctx, current); err != nil {
		return nil, err
	}
	return &a, nil
}

// SortByRecency orders artifacts by creation time, newest first. Ties fall back to id.
func SortByRecency(artifacts []domain.GeneratedArtifact) {
	sort.Slice(artifacts, func(i, j int) bool {
		if !artifacts[i].CreatedOn.Equal(artifacts[j].CreatedOn) {
			return artifacts[i].CreatedOn.After(artifacts[j].CreatedOn)
		}
		return artifacts[i].ID < artifacts[j].ID
	})
}
