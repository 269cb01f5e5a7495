package backend

import (
	"context"

	"budget/internal/amqp"
	"budget/internal/services"
	"budget/internal/storage"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Backend is everything the web server needs: the store, the service built
// on it and the optional event publisher.
type Backend struct {
	Store     *storage.Store
	Service   *services.BudgetService
	Publisher *amqp.Client // nil when AMQP is disabled
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Backend, error)
}
