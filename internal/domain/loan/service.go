package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lending-engine/internal/domain/customer"
	"lending-engine/internal/event"
	"lending-engine/internal/infrastructure/cache"
	"lending-engine/internal/infrastructure/monitoring"
	"lending-engine/internal/pkg/apperrors"
	"lending-engine/internal/pkg/clock"
)

// PlannedInstallment is one row of an on-the-fly schedule computation,
// including due dates but without persistence identity. Used for
// previewing simulated loans.
type PlannedInstallment struct {
	ScheduleEntry
	DueDate time.Time
}

type LoanService interface {
	// CreateLoan verifies the customer, computes the amortization
	// schedule and persists the loan. With Simulate set only the loan
	// row is stored; otherwise installments are materialized and the
	// loan starts out ACTIVE.
	CreateLoan(ctx context.Context, params NewLoanParams) (*Loan, error)

	// ActivateLoan turns a SIMULATED loan into an ACTIVE one: start and
	// end dates are fixed and installments are materialized from a
	// freshly recomputed schedule.
	ActivateLoan(ctx context.Context, loanID int64) (*Loan, error)

	// UpdateSimulatedLoan edits loan parameters while no installments
	// exist yet and recomputes the total amount.
	UpdateSimulatedLoan(ctx context.Context, loanID int64, params UpdateLoanParams) (*Loan, error)

	// RemoveLoan soft-deletes a SIMULATED loan.
	RemoveLoan(ctx context.Context, loanID int64) error

	CancelLoan(ctx context.Context, loanID int64) (*Loan, error)

	MarkDefaulted(ctx context.Context, loanID int64) (*Loan, error)

	// RecordPayment distributes a payment across the loan's open
	// installments, oldest first, in one transaction.
	RecordPayment(ctx context.Context, loanID int64, params RecordPaymentParams) ([]Payment, error)

	// CalculateSchedule recomputes the amortization schedule with due
	// dates without touching persisted installments.
	CalculateSchedule(ctx context.Context, loanID int64) ([]PlannedInstallment, error)

	GetLoan(ctx context.Context, loanID int64) (*Loan, error)

	ListLoans(ctx context.Context) ([]Loan, error)

	ListLoansByCustomer(ctx context.Context, customerID int64) ([]Loan, error)
}

type loanService struct {
	repo        Repository
	customers   customer.Service
	publisher   event.Publisher
	invalidator cache.Invalidator
	clk         clock.Clock
	logger      *slog.Logger
}

func NewLoanService(
	repo Repository,
	customers customer.Service,
	publisher event.Publisher,
	invalidator cache.Invalidator,
	clk clock.Clock,
	logger *slog.Logger,
) LoanService {
	return &loanService{
		repo:        repo,
		customers:   customers,
		publisher:   publisher,
		invalidator: invalidator,
		clk:         clk,
		logger:      logger.With("component", "loanService"),
	}
}

func (s *loanService) CreateLoan(ctx context.Context, params NewLoanParams) (*Loan, error) {
	s.logger.InfoContext(ctx, "Creating new loan", "customerID", params.CustomerID, "simulate", params.Simulate)

	if err := params.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.customers.GetCustomer(ctx, params.CustomerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %d not found", apperrors.ErrNotFound, params.CustomerID)
		}
		return nil, fmt.Errorf("failed to verify customer %d: %w", params.CustomerID, err)
	}

	schedule := Amortize(params.PrincipalAmount, params.AnnualInterestRate, params.PaymentFrequency, params.TotalPeriods)

	now := s.clk.Now()
	l := &Loan{
		CustomerID:          params.CustomerID,
		PrincipalAmount:     params.PrincipalAmount,
		AnnualInterestRate:  params.AnnualInterestRate,
		PaymentFrequency:    params.PaymentFrequency,
		TotalPeriods:        params.TotalPeriods,
		TotalAmount:         ScheduleTotal(schedule),
		Status:              StatusSimulated,
		OverdueInterestRate: params.OverdueInterestRate,
		SimulatedAt:         now,
	}

	var installments []Installment
	if !params.Simulate {
		start := now
		end := EndDate(start, params.PaymentFrequency, params.TotalPeriods)
		l.Status = StatusActive
		l.StartDate = &start
		l.EndDate = &end
		l.ActivatedAt = &now
		installments = materializeSchedule(schedule, start, params.PaymentFrequency)
	}

	created, err := s.repo.CreateLoan(ctx, l, installments)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save loan and installments", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	s.invalidate(ctx, created.ID)
	monitoring.RecordTransition(string(created.Status))
	if created.Status == StatusActive {
		s.publishStatusChange(ctx, created, StatusSimulated, StatusActive)
	}

	s.logger.InfoContext(ctx, "Loan created", "loanID", created.ID, "status", created.Status)
	return created, nil
}

func (s *loanService) ActivateLoan(ctx context.Context, loanID int64) (*Loan, error) {
	s.logger.InfoContext(ctx, "Activating loan", "loanID", loanID)

	l, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != StatusSimulated {
		return nil, apperrors.NewTransitionError("activate", string(l.Status), string(StatusSimulated))
	}

	// Principal, rate or periods may have been edited while simulated;
	// the schedule is always recomputed here.
	schedule := Amortize(l.PrincipalAmount, l.AnnualInterestRate, l.PaymentFrequency, l.TotalPeriods)

	now := s.clk.Now()
	start := now
	end := EndDate(start, l.PaymentFrequency, l.TotalPeriods)
	l.Status = StatusActive
	l.StartDate = &start
	l.EndDate = &end
	l.ActivatedAt = &now
	l.TotalAmount = ScheduleTotal(schedule)

	installments := materializeSchedule(schedule, start, l.PaymentFrequency)

	if err := s.repo.ActivateLoan(ctx, l, installments); err != nil {
		s.logger.ErrorContext(ctx, "Failed to activate loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to activate loan %d: %w", loanID, err)
	}

	s.invalidate(ctx, loanID)
	monitoring.RecordTransition(string(StatusActive))
	s.publishStatusChange(ctx, l, StatusSimulated, StatusActive)

	return s.GetLoan(ctx, loanID)
}

func (s *loanService) UpdateSimulatedLoan(ctx context.Context, loanID int64, params UpdateLoanParams) (*Loan, error) {
	s.logger.InfoContext(ctx, "Updating simulated loan", "loanID", loanID)

	l, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != StatusSimulated {
		return nil, apperrors.NewTransitionError("update", string(l.Status), string(StatusSimulated))
	}

	if params.PrincipalAmount != nil {
		l.PrincipalAmount = *params.PrincipalAmount
	}
	if params.AnnualInterestRate != nil {
		l.AnnualInterestRate = *params.AnnualInterestRate
	}
	if params.PaymentFrequency != nil {
		l.PaymentFrequency = *params.PaymentFrequency
	}
	if params.TotalPeriods != nil {
		l.TotalPeriods = *params.TotalPeriods
	}
	if params.OverdueInterestRate != nil {
		l.OverdueInterestRate = *params.OverdueInterestRate
	}

	merged := NewLoanParams{
		CustomerID:          l.CustomerID,
		PrincipalAmount:     l.PrincipalAmount,
		AnnualInterestRate:  l.AnnualInterestRate,
		PaymentFrequency:    l.PaymentFrequency,
		TotalPeriods:        l.TotalPeriods,
		OverdueInterestRate: l.OverdueInterestRate,
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	// Installments do not exist yet; only the projected total moves.
	schedule := Amortize(l.PrincipalAmount, l.AnnualInterestRate, l.PaymentFrequency, l.TotalPeriods)
	l.TotalAmount = ScheduleTotal(schedule)

	if err := s.repo.UpdateLoan(ctx, l); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update simulated loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to update loan %d: %w", loanID, err)
	}

	s.invalidate(ctx, loanID)
	return s.GetLoan(ctx, loanID)
}

func (s *loanService) RemoveLoan(ctx context.Context, loanID int64) error {
	s.logger.InfoContext(ctx, "Removing simulated loan", "loanID", loanID)

	l, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return err
	}
	if l.Status != StatusSimulated {
		return apperrors.NewTransitionError("delete", string(l.Status), string(StatusSimulated))
	}

	if err := s.repo.SoftDeleteLoan(ctx, loanID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to soft-delete loan", "loanID", loanID, slog.Any("error", err))
		return fmt.Errorf("failed to delete loan %d: %w", loanID, err)
	}

	s.invalidate(ctx, loanID)
	return nil
}

func (s *loanService) CancelLoan(ctx context.Context, loanID int64) (*Loan, error) {
	s.logger.InfoContext(ctx, "Cancelling loan", "loanID", loanID)

	l, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != StatusSimulated {
		return nil, apperrors.NewTransitionError("cancel", string(l.Status), string(StatusSimulated))
	}

	l.Status = StatusCancelled
	if err := s.repo.UpdateLoan(ctx, l); err != nil {
		s.logger.ErrorContext(ctx, "Failed to cancel loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to cancel loan %d: %w", loanID, err)
	}

	s.invalidate(ctx, loanID)
	monitoring.RecordTransition(string(StatusCancelled))
	s.publishStatusChange(ctx, l, StatusSimulated, StatusCancelled)
	return l, nil
}

func (s *loanService) MarkDefaulted(ctx context.Context, loanID int64) (*Loan, error) {
	s.logger.InfoContext(ctx, "Marking loan as defaulted", "loanID", loanID)

	l, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != StatusActive && l.Status != StatusOverdue {
		return nil, apperrors.NewTransitionError("mark defaulted", string(l.Status),
			string(StatusActive), string(StatusOverdue))
	}

	old := l.Status
	now := s.clk.Now()
	l.Status = StatusDefaulted
	l.DefaultedAt = &now

	if err := s.repo.UpdateLoan(ctx, l); err != nil {
		s.logger.ErrorContext(ctx, "Failed to mark loan as defaulted", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to mark loan %d as defaulted: %w", loanID, err)
	}

	s.invalidate(ctx, loanID)
	monitoring.RecordTransition(string(StatusDefaulted))
	s.publishStatusChange(ctx, l, old, StatusDefaulted)
	return l, nil
}

func (s *loanService) RecordPayment(ctx context.Context, loanID int64, params RecordPaymentParams) (payments []Payment, err error) {
	s.logger.InfoContext(ctx, "Recording payment", "loanID", loanID, "amount", params.Amount.StringFixed(2))

	if err := params.Validate(); err != nil {
		return nil, err
	}

	paymentDate := s.clk.Now()
	if params.PaymentDate != nil {
		paymentDate = *params.PaymentDate
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}

	loanPaidOff := false
	defer func() {
		if p := recover(); p != nil {
			s.logger.ErrorContext(ctx, "Panic during payment processing", "loanID", loanID, slog.Any("panic", p))
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		}
		if err != nil {
			monitoring.RecordPayment(paymentFailureStatus(err))
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	// The row lock serializes concurrent payments against the same
	// loan; without it two requests could both read a stale remaining
	// amount and over-allocate.
	locked, err := s.repo.LockLoanForUpdate(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan %d not found", apperrors.ErrNotFound, loanID)
		}
		return nil, fmt.Errorf("%w: could not lock loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}

	switch locked.Status {
	case StatusSimulated:
		return nil, fmt.Errorf("%w: cannot record payments for simulated loans", apperrors.ErrInvalidOperation)
	case StatusPaid:
		return nil, fmt.Errorf("%w: loan is already fully paid", apperrors.ErrInvalidOperation)
	}

	installments, err := s.repo.GetPayableInstallmentsInTx(ctx, tx, loanID)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load installments for loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}

	alloc, err := allocatePayment(installments, params, paymentDate)
	if err != nil {
		return nil, err
	}

	for i := range alloc.Payments {
		if err = s.repo.InsertPaymentInTx(ctx, tx, &alloc.Payments[i]); err != nil {
			return nil, fmt.Errorf("%w: could not insert payment record: %v", apperrors.ErrInternalServer, err)
		}
	}
	for i := range alloc.Installments {
		if err = s.repo.UpdateInstallmentInTx(ctx, tx, &alloc.Installments[i]); err != nil {
			return nil, fmt.Errorf("%w: could not update installment: %v", apperrors.ErrInternalServer, err)
		}
	}

	open, err := s.repo.CountOpenInstallmentsInTx(ctx, tx, loanID)
	if err != nil {
		return nil, fmt.Errorf("%w: could not check remaining installments: %v", apperrors.ErrInternalServer, err)
	}
	if open == 0 {
		if err = s.repo.UpdateLoanStatusInTx(ctx, tx, loanID, StatusPaid, &paymentDate); err != nil {
			return nil, fmt.Errorf("%w: could not mark loan as paid: %v", apperrors.ErrInternalServer, err)
		}
		loanPaidOff = true
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("%w: could not commit payment transaction: %v", apperrors.ErrInternalServer, err)
	}

	monitoring.RecordPayment("success")
	s.invalidate(ctx, loanID)
	if loanPaidOff {
		monitoring.RecordTransition(string(StatusPaid))
		s.publishStatusChange(ctx, locked, locked.Status, StatusPaid)
	}

	s.logger.InfoContext(ctx, "Payment recorded", "loanID", loanID,
		"installmentsTouched", len(alloc.Payments), "loanPaidOff", loanPaidOff)
	return alloc.Payments, nil
}

func (s *loanService) CalculateSchedule(ctx context.Context, loanID int64) ([]PlannedInstallment, error) {
	l, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	schedule := Amortize(l.PrincipalAmount, l.AnnualInterestRate, l.PaymentFrequency, l.TotalPeriods)

	// Active loans anchor on their real start date; simulations preview
	// from the moment they were simulated.
	base := l.SimulatedAt
	if l.StartDate != nil {
		base = *l.StartDate
	}

	planned := make([]PlannedInstallment, len(schedule))
	for i, entry := range schedule {
		planned[i] = PlannedInstallment{
			ScheduleEntry: entry,
			DueDate:       DueDate(base, l.PaymentFrequency, entry.InstallmentNumber),
		}
	}
	return planned, nil
}

func (s *loanService) GetLoan(ctx context.Context, loanID int64) (*Loan, error) {
	l, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	installments, err := s.repo.GetInstallmentsByLoanID(ctx, loanID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load installments", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to load installments for loan %d: %w", loanID, err)
	}
	l.Installments = installments
	return l, nil
}

func (s *loanService) ListLoans(ctx context.Context) ([]Loan, error) {
	loans, err := s.repo.ListLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

func (s *loanService) ListLoansByCustomer(ctx context.Context, customerID int64) ([]Loan, error) {
	loans, err := s.repo.ListLoansByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans for customer %d: %w", customerID, err)
	}
	return loans, nil
}

func (s *loanService) loadLoan(ctx context.Context, loanID int64) (*Loan, error) {
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan %d not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}
	return l, nil
}

// materializeSchedule turns computed schedule rows into persistable
// installments anchored on the loan's start date.
func materializeSchedule(schedule []ScheduleEntry, start time.Time, frequency PaymentFrequency) []Installment {
	installments := make([]Installment, len(schedule))
	for i, entry := range schedule {
		installments[i] = Installment{
			InstallmentNumber: entry.InstallmentNumber,
			DueDate:           DueDate(start, frequency, entry.InstallmentNumber),
			PrincipalAmount:   entry.PrincipalAmount,
			InterestAmount:    entry.InterestAmount,
			TotalAmount:       entry.TotalAmount,
			RemainingAmount:   entry.TotalAmount,
			Status:            InstallmentPending,
		}
	}
	return installments
}

func (s *loanService) invalidate(ctx context.Context, loanID int64) {
	if err := s.invalidator.Invalidate(ctx, cache.LoanKeys(loanID)...); err != nil {
		s.logger.WarnContext(ctx, "Cache invalidation failed", "loanID", loanID, slog.Any("error", err))
	}
}

func (s *loanService) publishStatusChange(ctx context.Context, l *Loan, old, next LoanStatus) {
	ev := event.LoanStatusChangedEvent{
		LoanID:     l.ID,
		CustomerID: l.CustomerID,
		OldStatus:  string(old),
		NewStatus:  string(next),
		Timestamp:  s.clk.Now(),
	}
	if err := s.publisher.PublishLoanStatusChanged(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish loan status change", "loanID", l.ID, slog.Any("error", err))
	}
}

func paymentFailureStatus(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrOverpayment):
		return "failure_overpayment"
	case errors.Is(err, apperrors.ErrInvalidOperation):
		return "failure_status"
	case errors.Is(err, apperrors.ErrNotFound):
		return "failure_not_found"
	default:
		return "failure_internal"
	}
}
