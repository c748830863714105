package customer

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("customer not found")

type Repository interface {
	// Save inserts the customer and its contacts, filling in generated IDs.
	Save(ctx context.Context, customer *Customer) error

	// FindByID loads a customer with contacts.
	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindAll(ctx context.Context, activeOnly bool) ([]*Customer, error)
}
