package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type identitySource interface {
	GetByID(ctx context.Context, id string) (models.Identity, error)
}

// Fetcher resolves token subjects to identities, optionally through a
// bounded read-through cache. Entries live at most ttl, which callers keep
// at or below the token lifetime, and are dropped on approve/revoke.
type Fetcher struct {
	src   identitySource
	cache *expirable.LRU[string, models.Identity]
}

// NewFetcher returns a Fetcher over src. A non-positive size or ttl
// disables caching.
func NewFetcher(src identitySource, size int, ttl time.Duration) *Fetcher {
	f := &Fetcher{src: src}
	if size > 0 && ttl > 0 {
		f.cache = expirable.NewLRU[string, models.Identity](size, nil, ttl)
	}
	return f
}

// Resolve returns the identity for subjectID or UNKNOWN_SUBJECT.
func (f *Fetcher) Resolve(ctx context.Context, subjectID string) (models.Identity, error) {
	if f.cache != nil {
		if id, ok := f.cache.Get(subjectID); ok {
			return id, nil
		}
	}

	id, err := f.src.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			return models.Identity{}, apperr.ErrUnknownSubject
		}
		return models.Identity{}, apperr.Internal(err)
	}

	if f.cache != nil {
		f.cache.Add(subjectID, id)
	}
	return id, nil
}

// Invalidate drops any cached entry for id.
func (f *Fetcher) Invalidate(id string) {
	if f.cache != nil {
		f.cache.Remove(id)
	}
}
