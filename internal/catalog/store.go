package catalog

import "context"

// Store is the product collection the HTTP server works against. Lookups
// report absence with ok=false; absence is never an error.
type Store interface {
	Append(p Product)
	Find(id string) (Product, bool)
	Snapshot() []Product
	// Update applies fn to the product with the given id and writes the
	// result back in place, atomically with respect to other store calls.
	Update(id string, fn func(Product) Product) (Product, bool)
	Delete(id string) bool
	Len() int
	Ping(ctx context.Context) error
}
