// internal/workers/notify/resolver.go
package notify

import (
	"context"

	"survey-workers/internal/models"
)

// RecipientResolver decides who gets notified about a survey's new summary.
// Swapping the strategy (all users, survey owners, a per-company list) must
// not touch delivery code.
type RecipientResolver interface {
	Resolve(ctx context.Context, survey models.Survey) ([]models.User, error)
}

// UserLister is the storage dependency of the default resolver.
type UserLister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// AllUsersResolver notifies every registered user regardless of survey.
type AllUsersResolver struct {
	users UserLister
}

func NewAllUsersResolver(users UserLister) *AllUsersResolver {
	return &AllUsersResolver{users: users}
}

func (r *AllUsersResolver) Resolve(ctx context.Context, _ models.Survey) ([]models.User, error) {
	return r.users.ListUsers(ctx)
}
