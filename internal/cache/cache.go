package cache

import (
	"context"
	"errors"

	"github.com/fjod/quickbites/internal/domain"
)

type SessionCache interface {
	Get(ctx context.Context, key string) (*domain.Session, error)
	Set(ctx context.Context, key string, session *domain.Session) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")
