package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"lending-engine/internal/pkg/apperrors"
)

type Service interface {
	CreateCustomer(ctx context.Context, firstName, lastName string, contacts []Contact) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	ListCustomers(ctx context.Context, activeOnly bool) ([]*Customer, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	return &service{
		repo:   repo,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *service) CreateCustomer(ctx context.Context, firstName, lastName string, contacts []Contact) (*Customer, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return nil, apperrors.NewValidationError("firstName", "cannot be empty")
	}
	if lastName == "" {
		return nil, apperrors.NewValidationError("lastName", "cannot be empty")
	}
	for _, contact := range contacts {
		if contact.Type != ContactEmail && contact.Type != ContactPhone {
			return nil, apperrors.NewValidationError("contacts",
				fmt.Sprintf("unknown contact type %q", contact.Type))
		}
		if strings.TrimSpace(contact.Value) == "" {
			return nil, apperrors.NewValidationError("contacts", "contact value cannot be empty")
		}
	}

	cust := &Customer{
		FirstName: firstName,
		LastName:  lastName,
		Active:    true,
		Contacts:  contacts,
	}

	if err := s.repo.Save(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	s.logger.InfoContext(ctx, "Customer created", "customerID", cust.ID)
	return cust, nil
}

func (s *service) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found", "customerID", customerID)
			return nil, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", "customerID", customerID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}
	return cust, nil
}

func (s *service) ListCustomers(ctx context.Context, activeOnly bool) ([]*Customer, error) {
	customers, err := s.repo.FindAll(ctx, activeOnly)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}
