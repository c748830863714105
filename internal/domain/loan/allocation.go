package loan

import (
	"fmt"
	"sort"
	"time"

	"lending-engine/internal/pkg/apperrors"
	"lending-engine/internal/pkg/money"

	"github.com/shopspring/decimal"
)

// allocation is the outcome of distributing one payment across a loan's
// open installments: the payment records to insert and the mutated
// installment rows to persist, all of which must commit atomically.
type allocation struct {
	Payments     []Payment
	Installments []Installment
}

// allocatePayment walks the payable installments oldest-first and
// applies the amount until it is exhausted. Installments are re-sorted
// by installment number; the waterfall order is a hard guarantee.
//
// The whole amount is validated against the combined outstanding
// balance up front: an overpayment is rejected before any row is
// touched, never partially applied.
func allocatePayment(installments []Installment, params RecordPaymentParams, paymentDate time.Time) (*allocation, error) {
	eligible := make([]Installment, 0, len(installments))
	for _, inst := range installments {
		if inst.Payable() {
			eligible = append(eligible, inst)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: no pending installments to pay", apperrors.ErrInvalidOperation)
	}
	sortByInstallmentNumber(eligible)

	balances := make([]decimal.Decimal, len(eligible))
	for i := range eligible {
		balances[i] = eligible[i].Outstanding()
	}
	totalRemaining := money.Sum(balances...)
	if params.Amount.GreaterThan(totalRemaining) {
		return nil, &apperrors.OverpaymentError{Amount: params.Amount, Remaining: totalRemaining}
	}

	result := &allocation{}
	left := params.Amount

	for i := range eligible {
		if !left.IsPositive() {
			break
		}
		inst := eligible[i]

		outstanding := inst.Outstanding()
		applied := money.Min(left, outstanding)

		result.Payments = append(result.Payments, Payment{
			InstallmentID: inst.ID,
			Amount:        applied,
			PaymentDate:   paymentDate,
			PaymentMethod: params.PaymentMethod,
			Notes:         params.Notes,
		})

		inst.PaidAmount = inst.PaidAmount.Add(applied)
		inst.RemainingAmount = money.FloorZero(outstanding.Sub(applied))
		if inst.RemainingAmount.IsZero() {
			inst.Status = InstallmentPaid
			paidAt := paymentDate
			inst.PaidAt = &paidAt
		} else {
			inst.Status = InstallmentPartial
		}

		result.Installments = append(result.Installments, inst)
		left = left.Sub(applied)
	}

	return result, nil
}

func sortByInstallmentNumber(installments []Installment) {
	sort.Slice(installments, func(a, b int) bool {
		return installments[a].InstallmentNumber < installments[b].InstallmentNumber
	})
}
