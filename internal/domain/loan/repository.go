package loan

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// OverdueCandidate pairs a past-due installment with its parent loan so
// the accrual job can read the penalty rate and loan status without a
// second round trip.
type OverdueCandidate struct {
	Installment Installment
	Loan        Loan
}

type Repository interface {
	// CreateLoan inserts the loan and, for non-simulated loans, its
	// installments in a single transaction.
	CreateLoan(ctx context.Context, l *Loan, installments []Installment) (*Loan, error)

	GetLoanByID(ctx context.Context, loanID int64) (*Loan, error)

	GetInstallmentsByLoanID(ctx context.Context, loanID int64) ([]Installment, error)

	GetPaymentsByInstallmentID(ctx context.Context, installmentID int64) ([]Payment, error)

	ListLoans(ctx context.Context) ([]Loan, error)

	// ListLoansByCustomer returns the customer's effective loans;
	// simulations and cancellations are excluded.
	ListLoansByCustomer(ctx context.Context, customerID int64) ([]Loan, error)

	// UpdateLoan persists editable fields plus status and lifecycle
	// timestamps from the given loan.
	UpdateLoan(ctx context.Context, l *Loan) error

	SoftDeleteLoan(ctx context.Context, loanID int64) error

	// ActivateLoan updates the loan row and inserts its installments in
	// one transaction.
	ActivateLoan(ctx context.Context, l *Loan, installments []Installment) error

	// LockLoanForUpdate loads the loan row under FOR UPDATE inside the
	// given transaction, serializing concurrent payments on the loan.
	LockLoanForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error)

	GetPayableInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) ([]Installment, error)

	InsertPaymentInTx(ctx context.Context, tx pgx.Tx, payment *Payment) error

	UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, installment *Installment) error

	UpdateLoanStatusInTx(ctx context.Context, tx pgx.Tx, loanID int64, status LoanStatus, statusAt *time.Time) error

	CountOpenInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int, error)

	// FindOverdueCandidates returns PENDING installments whose due date
	// is strictly before asOf, with their parent loans.
	FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]OverdueCandidate, error)

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
