package overtime

import "context"

// StoreAPI persists calculations. Every call is scoped to the owner; Update and Delete
// report false when no row with that id belongs to the owner.
type StoreAPI interface {
	List(ctx context.Context, ownerID string) ([]Calculation, error)
	Get(ctx context.Context, id, ownerID string) (Calculation, error)
	Create(ctx context.Context, ownerID string, calc Calculation) (string, error)
	Update(ctx context.Context, id, ownerID string, calc Calculation) (bool, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}
