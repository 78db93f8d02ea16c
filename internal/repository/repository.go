package repository

import (
	"context"

	"github.com/fjod/quickbites/internal/domain"
)

// SessionRepository defines the interface for session data operations
// Consumers define this interface, not the MongoDB implementation
type SessionRepository interface {
	FindSession(ctx context.Context, key string) (*domain.Session, error)
	FindSessionByReference(ctx context.Context, reference string) (*domain.Session, error)
	CreateSession(ctx context.Context, session *domain.Session) error
	SaveSession(ctx context.Context, session *domain.Session) error
}
