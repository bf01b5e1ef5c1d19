// Package leads persists captured email leads.
package leads

import (
	"context"

	"github.com/getmilo/milo/pkg/models/store"
)

// Store upserts leads keyed by email. A second submission for the same email
// updates source, product and timestamp but keeps the original id and flags.
type Store interface {
	Upsert(ctx context.Context, lead store.Lead) error
	Stats(ctx context.Context) (store.LeadStats, error)
	List(ctx context.Context) ([]store.Lead, error)
}
