package loan

import (
	"fmt"
	"time"

	"lending-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

const (
	DefaultOverdueInterestRate = 1
	MaxTotalPeriods            = 520
)

type LoanStatus string

const (
	StatusSimulated LoanStatus = "SIMULATED"
	StatusActive    LoanStatus = "ACTIVE"
	StatusOverdue   LoanStatus = "OVERDUE"
	StatusPaid      LoanStatus = "PAID"
	StatusDefaulted LoanStatus = "DEFAULTED"
	StatusCancelled LoanStatus = "CANCELLED"
)

type PaymentFrequency string

const (
	FrequencyWeekly   PaymentFrequency = "WEEKLY"
	FrequencyBiweekly PaymentFrequency = "BIWEEKLY"
	FrequencyMonthly  PaymentFrequency = "MONTHLY"
)

// PeriodsPerYear returns how many payment periods the frequency packs
// into a year, used to derive the periodic interest rate.
func (f PaymentFrequency) PeriodsPerYear() int {
	switch f {
	case FrequencyWeekly:
		return 52
	case FrequencyBiweekly:
		return 26
	default:
		return 12
	}
}

func (f PaymentFrequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "PENDING"
	InstallmentPartial InstallmentStatus = "PARTIAL"
	InstallmentPaid    InstallmentStatus = "PAID"
	InstallmentOverdue InstallmentStatus = "OVERDUE"
)

type Loan struct {
	ID                  int64
	CustomerID          int64
	PrincipalAmount     decimal.Decimal
	AnnualInterestRate  int
	PaymentFrequency    PaymentFrequency
	TotalPeriods        int
	TotalAmount         decimal.Decimal
	Status              LoanStatus
	OverdueInterestRate int
	StartDate           *time.Time
	EndDate             *time.Time
	SimulatedAt         time.Time
	ActivatedAt         *time.Time
	PaidAt              *time.Time
	DefaultedAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
	Installments        []Installment
}

type Installment struct {
	ID                int64
	LoanID            int64
	InstallmentNumber int
	DueDate           time.Time
	PrincipalAmount   decimal.Decimal
	InterestAmount    decimal.Decimal
	TotalAmount       decimal.Decimal
	PaidAmount        decimal.Decimal
	RemainingAmount   decimal.Decimal
	Status            InstallmentStatus
	OverdueDays       int
	PenaltyAmount     decimal.Decimal
	PaidAt            *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Outstanding is the amount still owed on the installment including any
// accrued penalty, floored at zero.
func (i *Installment) Outstanding() decimal.Decimal {
	out := i.TotalAmount.Add(i.PenaltyAmount).Sub(i.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// Payable reports whether the installment can still receive money.
func (i *Installment) Payable() bool {
	return i.Status == InstallmentPending || i.Status == InstallmentPartial
}

// Payment is an immutable record of money applied to one installment.
// Payments are append-only; corrections require a new record.
type Payment struct {
	ID            int64
	InstallmentID int64
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentMethod *string
	Notes         *string
	CreatedAt     time.Time
}

// NewLoanParams carries the caller-supplied inputs for creating or
// updating a loan while it is still simulated.
type NewLoanParams struct {
	CustomerID          int64
	PrincipalAmount     decimal.Decimal
	AnnualInterestRate  int
	PaymentFrequency    PaymentFrequency
	TotalPeriods        int
	OverdueInterestRate int
	Simulate            bool
}

func (p *NewLoanParams) Validate() error {
	if p.CustomerID <= 0 {
		return apperrors.NewValidationError("customerId", "must be a positive identifier")
	}
	if !p.PrincipalAmount.IsPositive() {
		return apperrors.NewValidationError("principalAmount", "must be greater than zero")
	}
	if p.AnnualInterestRate < 0 || p.AnnualInterestRate > 100 {
		return apperrors.NewValidationError("annualInterestRate", "must be between 0 and 100")
	}
	if !p.PaymentFrequency.Valid() {
		return apperrors.NewValidationError("paymentFrequency",
			fmt.Sprintf("must be one of %s, %s or %s", FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly))
	}
	if p.TotalPeriods < 1 || p.TotalPeriods > MaxTotalPeriods {
		return apperrors.NewValidationError("totalPeriods",
			fmt.Sprintf("must be between 1 and %d", MaxTotalPeriods))
	}
	if p.OverdueInterestRate < 0 || p.OverdueInterestRate > 100 {
		return apperrors.NewValidationError("overdueInterestRate", "must be between 0 and 100")
	}
	return nil
}

// UpdateLoanParams holds the editable fields of a simulated loan. Nil
// means "leave unchanged".
type UpdateLoanParams struct {
	PrincipalAmount     *decimal.Decimal
	AnnualInterestRate  *int
	PaymentFrequency    *PaymentFrequency
	TotalPeriods        *int
	OverdueInterestRate *int
}

// RecordPaymentParams carries a payment request against a loan.
type RecordPaymentParams struct {
	Amount        decimal.Decimal
	PaymentDate   *time.Time
	PaymentMethod *string
	Notes         *string
}

func (p *RecordPaymentParams) Validate() error {
	if !p.Amount.IsPositive() {
		return apperrors.NewValidationError("amount", "must be greater than zero")
	}
	return nil
}
