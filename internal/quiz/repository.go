package quiz

import "context"

// Repository is the persistence capability the service consumes. The only
// implementation talks to the external quiz REST API; all durable state
// lives there.
type Repository interface {
	List(ctx context.Context) ([]Quiz, error)
	Get(ctx context.Context, id string) (*Quiz, error)
	Create(ctx context.Context, q Quiz) (*Quiz, error)
	Update(ctx context.Context, id string, q Quiz) (*Quiz, error)
	Delete(ctx context.Context, id string) error
}
