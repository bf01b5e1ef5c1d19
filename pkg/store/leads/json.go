package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/getmilo/milo/pkg/models/store"
	"github.com/getmilo/milo/pkg/store/blob"
)

const DefaultDocumentKey = "leads.json"

// jsonStore keeps every lead in a single JSON array document. Writes are
// serialized in-process; concurrent writers in other processes are not coordinated.
type jsonStore struct {
	mu   sync.Mutex
	blob blob.Store
	key  string
}

func NewJSONStore(b blob.Store, key string) (Store, error) {
	if b == nil {
		return nil, errors.New("blob store is nil")
	}
	if key == "" {
		key = DefaultDocumentKey
	}
	return &jsonStore{blob: b, key: key}, nil
}

func (s *jsonStore) load(ctx context.Context) ([]store.Lead, error) {
	data, err := s.blob.Get(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		return []store.Lead{}, nil
	}
	if err != nil {
		return nil, err
	}
	var leads []store.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return leads, nil
}

func (s *jsonStore) Upsert(ctx context.Context, lead store.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	leads, err := s.load(ctx)
	if err != nil {
		return err
	}

	found := false
	for i := range leads {
		if leads[i].Email == lead.Email {
			leads[i].Source = lead.Source
			leads[i].Product = lead.Product
			leads[i].Timestamp = lead.Timestamp
			found = true
			break
		}
	}
	if !found {
		leads = append(leads, lead)
	}

	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return fmt.Errorf("encode leads: %w", err)
	}
	return s.blob.Put(ctx, s.key, data)
}

func (s *jsonStore) Stats(ctx context.Context) (store.LeadStats, error) {
	leads, err := s.List(ctx)
	if err != nil {
		return store.LeadStats{}, err
	}
	stats := store.LeadStats{Total: len(leads)}
	for _, l := range leads {
		if l.Converted {
			stats.Converted++
		}
		if l.FollowUpSent {
			stats.FollowUpSent++
		}
	}
	return stats, nil
}

// List returns leads newest first.
func (s *jsonStore) List(ctx context.Context) ([]store.Lead, error) {
	s.mu.Lock()
	leads, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(leads, func(a, b store.Lead) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return leads, nil
}
