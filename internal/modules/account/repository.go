package account

import "context"

type Repository interface {
	// Create fails with CONFLICT when the email or manager id is taken.
	Create(ctx context.Context, role Role, c *credentials) error
	// FindByEmail returns (nil, nil) when no account of that role has the email.
	FindByEmail(ctx context.Context, role Role, email string) (*credentials, error)
}
