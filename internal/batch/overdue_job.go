package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lending-engine/internal/domain/customer"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/infrastructure/cache"
	"lending-engine/internal/infrastructure/monitoring"
	"lending-engine/internal/notification"
	"lending-engine/internal/pkg/clock"
	"lending-engine/internal/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OverdueAccrualJob flags past-due installments, accrues their daily
// penalty and promotes the parent loan to OVERDUE. It runs once a day
// from the cron scheduler.
type OverdueAccrualJob struct {
	loanRepo        loan.Repository
	customerService customer.Service
	sender          notification.Sender
	invalidator     cache.Invalidator
	clk             clock.Clock
	logger          *slog.Logger
}

func NewOverdueAccrualJob(
	loanRepo loan.Repository,
	customerSvc customer.Service,
	sender notification.Sender,
	invalidator cache.Invalidator,
	clk clock.Clock,
	logger *slog.Logger,
) *OverdueAccrualJob {
	if loanRepo == nil || customerSvc == nil || sender == nil || invalidator == nil || clk == nil || logger == nil {
		panic("OverdueAccrualJob dependencies cannot be nil")
	}
	return &OverdueAccrualJob{
		loanRepo:        loanRepo,
		customerService: customerSvc,
		sender:          sender,
		invalidator:     invalidator,
		clk:             clk,
		logger:          logger.With("job", "OverdueAccrual"),
	}
}

// AccrualError records one installment the run could not process.
type AccrualError struct {
	InstallmentID int64
	Err           error
}

// AccrualResult summarizes one job run. Failed counts installments
// whose state change did not commit; notification failures are logged
// but do not count as failures.
type AccrualResult struct {
	RunID             uuid.UUID
	Processed         int
	Failed            int
	NotificationsSent int
	Errors            []AccrualError
}

// Run processes every pending installment whose due date has passed.
// Each installment commits in its own transaction; a failure is
// recorded and the run moves on, so a partially processed batch is a
// normal outcome.
func (j *OverdueAccrualJob) Run(ctx context.Context) (*AccrualResult, error) {
	startTime := time.Now()
	result := &AccrualResult{RunID: uuid.New()}
	logger := j.logger.With(slog.String("runID", result.RunID.String()))

	today := clock.Midnight(j.clk.Today())
	logger.InfoContext(ctx, "Starting overdue accrual job.", slog.Time("asOf", today))

	candidates, err := j.loanRepo.FindOverdueCandidates(ctx, today)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to find overdue installments, aborting job.", slog.Any("error", err))
		return result, fmt.Errorf("cannot run job, failed to find overdue installments: %w", err)
	}
	logger.InfoContext(ctx, "Found overdue installments to process.", slog.Int("count", len(candidates)))

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			logger.WarnContext(ctx, "Accrual run cancelled before completion.", slog.Any("error", err))
			return result, err
		}

		if err := j.accrue(ctx, logger, &candidate, today); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, AccrualError{InstallmentID: candidate.Installment.ID, Err: err})
			monitoring.RecordAccrualItem("failure")
			logger.ErrorContext(ctx, "Failed to process overdue installment.",
				slog.Int64("installmentID", candidate.Installment.ID), slog.Any("error", err))
			continue
		}
		result.Processed++
		monitoring.RecordAccrualItem("success")

		if j.notify(ctx, logger, &candidate) {
			result.NotificationsSent++
		}
	}

	monitoring.RecordAccrualRun()
	summaryLog := logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("processed", result.Processed),
		slog.Int("failed", result.Failed),
		slog.Int("notifications_sent", result.NotificationsSent),
	)
	if result.Failed > 0 {
		summaryLog.WarnContext(ctx, "Overdue accrual job finished with errors.")
	} else {
		summaryLog.InfoContext(ctx, "Overdue accrual job finished successfully.")
	}
	return result, nil
}

// accrue commits the installment's penalty and status change, and the
// parent loan's promotion, in one transaction.
func (j *OverdueAccrualJob) accrue(ctx context.Context, logger *slog.Logger, candidate *loan.OverdueCandidate, today time.Time) (err error) {
	inst := candidate.Installment
	parent := candidate.Loan

	overdueDays := int(today.Sub(clock.Midnight(inst.DueDate)).Hours() / 24)
	if overdueDays < 0 {
		overdueDays = 0
	}

	// Simple daily penalty on what is still owed, recomputed from the
	// cumulative overdue days rather than compounded run over run.
	base := money.FloorZero(inst.TotalAmount.Sub(inst.PaidAmount))
	penalty := money.Round(base.Mul(money.Percent(parent.OverdueInterestRate)).Mul(decimal.NewFromInt(int64(overdueDays))))

	inst.OverdueDays = overdueDays
	inst.PenaltyAmount = penalty
	inst.RemainingAmount = base.Add(penalty)
	inst.Status = loan.InstallmentOverdue

	tx, err := j.loanRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = j.loanRepo.RollbackTx(ctx, tx)
			panic(p)
		}
		if err != nil {
			_ = j.loanRepo.RollbackTx(ctx, tx)
		}
	}()

	if err = j.loanRepo.UpdateInstallmentInTx(ctx, tx, &inst); err != nil {
		return fmt.Errorf("could not update installment %d: %w", inst.ID, err)
	}

	if parent.Status == loan.StatusActive {
		if err = j.loanRepo.UpdateLoanStatusInTx(ctx, tx, parent.ID, loan.StatusOverdue, nil); err != nil {
			return fmt.Errorf("could not promote loan %d to overdue: %w", parent.ID, err)
		}
		monitoring.RecordTransition(string(loan.StatusOverdue))
	}

	if err = j.loanRepo.CommitTx(ctx, tx); err != nil {
		return fmt.Errorf("could not commit accrual for installment %d: %w", inst.ID, err)
	}

	if cacheErr := j.invalidator.Invalidate(ctx, cache.LoanKeys(parent.ID)...); cacheErr != nil {
		logger.WarnContext(ctx, "Cache invalidation failed after accrual.",
			slog.Int64("loanID", parent.ID), slog.Any("error", cacheErr))
	}

	logger.DebugContext(ctx, "Installment marked overdue.",
		slog.Int64("installmentID", inst.ID),
		slog.Int("overdueDays", overdueDays),
		slog.String("penalty", penalty.StringFixed(2)))
	return nil
}

// notify requests an overdue notice for the customer's primary email
// contact. Send failures are logged only; the state change already
// committed and must stand.
func (j *OverdueAccrualJob) notify(ctx context.Context, logger *slog.Logger, candidate *loan.OverdueCandidate) bool {
	inst := candidate.Installment
	parent := candidate.Loan

	cust, err := j.customerService.GetCustomer(ctx, parent.CustomerID)
	if err != nil {
		logger.WarnContext(ctx, "Could not load customer for overdue notification.",
			slog.Int64("customerID", parent.CustomerID), slog.Any("error", err))
		return false
	}

	email, ok := cust.PrimaryEmail()
	if !ok {
		logger.DebugContext(ctx, "Customer has no primary email contact, skipping notification.",
			slog.Int64("customerID", cust.ID))
		return false
	}

	remaining := money.FloorZero(inst.TotalAmount.Sub(inst.PaidAmount))
	body := fmt.Sprintf(`Dear %s,

This is a notification that your payment for loan #%d is now overdue.

Installment Details:
- Installment Number: %d
- Due Date: %s
- Days Overdue: %d
- Remaining Amount: $%s
- Penalty Amount: $%s

Please make your payment as soon as possible to avoid additional penalties.

If you have any questions, please contact us.

Best regards,
Loans Team`,
		cust.FullName(),
		parent.ID,
		inst.InstallmentNumber,
		inst.DueDate.Format("2006-01-02"),
		inst.OverdueDays,
		remaining.StringFixed(2),
		inst.PenaltyAmount.StringFixed(2),
	)

	if err := j.sender.Send(ctx, email, "Payment Overdue Notification", body); err != nil {
		logger.ErrorContext(ctx, "Failed to send overdue notification.",
			slog.String("to", email), slog.Int64("installmentID", inst.ID), slog.Any("error", err))
		return false
	}

	logger.InfoContext(ctx, "Overdue notification sent.",
		slog.String("to", email), slog.Int64("installmentID", inst.ID))
	return true
}
