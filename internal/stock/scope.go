package stock

import "context"

// Scope is a single-use mutation context, typically one read-write
// transaction. A scope is never shared between messages.
type Scope interface {
	// UpdateStockQuantity sets the stock of productID. found is false when no
	// such product exists.
	UpdateStockQuantity(ctx context.Context, productID, quantity int) (found bool, err error)
	Commit() error
	// Discard releases the scope. It is safe to call after Commit.
	Discard()
}

// ScopeFactory opens a fresh Scope for every processed message.
type ScopeFactory interface {
	NewScope(ctx context.Context) (Scope, error)
}
