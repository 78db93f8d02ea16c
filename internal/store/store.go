// Package store is the session store used by the engine: MongoDB is the source
// of truth and Redis a read-through cache invalidated on every write.
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fjod/quickbites/internal/cache"
	"github.com/fjod/quickbites/internal/domain"
	"github.com/fjod/quickbites/internal/repository"
	"golang.org/x/sync/singleflight"
)

var ErrSessionNotFound = repository.ErrSessionNotFound

type Store struct {
	repo  repository.SessionRepository
	cache cache.SessionCache
	sfg   singleflight.Group // Prevents cache stampede
	log   *slog.Logger
}

func New(repo repository.SessionRepository, cache cache.SessionCache, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		repo:  repo,
		cache: cache,
		log:   log.With(slog.String("component", "session_store")),
	}
}

// Find returns a private copy of the session, or ErrSessionNotFound. A cache
// miss fills the cache before Find returns.
func (s *Store) Find(ctx context.Context, key string) (*domain.Session, error) {
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		session, err := s.cache.Get(ctx, key)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "cache get error", slog.String("session", key), slog.Any("error", err))
		}

		session, err = s.repo.FindSession(ctx, key)
		if err != nil {
			return nil, err
		}

		// the fill must land before the caller can Save, or the delete in
		// invalidate could run first and leave the old session cached
		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := s.cache.Set(setCtx, key, session.Clone()); err != nil {
			s.log.WarnContext(ctx, "cache set error", slog.String("session", key), slog.Any("error", err))
		}

		return session, nil
	})
	if err != nil {
		return nil, err
	}

	// singleflight hands the same pointer to every waiter
	return v.(*domain.Session).Clone(), nil
}

// Create inserts a new session. When another request created the same key
// first, the stored session is returned instead.
func (s *Store) Create(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	err := s.repo.CreateSession(ctx, session)
	if errors.Is(err, repository.ErrSessionExists) {
		return s.Find(ctx, session.Key)
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	if err := s.repo.SaveSession(ctx, session); err != nil {
		return err
	}
	s.invalidate(session.Key)
	return nil
}

// FindByReference always reads MongoDB; references are not cached.
func (s *Store) FindByReference(ctx context.Context, reference string) (*domain.Session, error) {
	return s.repo.FindSessionByReference(ctx, reference)
}

func (s *Store) invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn("cache invalidate error", slog.String("session", key), slog.Any("error", err))
	}
}
