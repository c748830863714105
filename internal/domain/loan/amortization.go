package loan

import (
	"lending-engine/internal/pkg/money"

	"github.com/shopspring/decimal"
)

// ScheduleEntry is one row of a computed amortization schedule, before
// it is materialized into a persisted Installment.
type ScheduleEntry struct {
	InstallmentNumber int
	PrincipalAmount   decimal.Decimal
	InterestAmount    decimal.Decimal
	TotalAmount       decimal.Decimal
}

// Amortize computes a fixed-payment (French) amortization schedule.
//
// The periodic rate is the annual percentage rate divided by the number
// of periods per year for the frequency. Each period pays
// interest = balance * rate with the rest of the fixed payment going to
// principal; the final period pays off the remaining balance exactly so
// the principal column always sums to the principal with no rounding
// drift. Amounts are rounded to cents as they are computed.
//
// Callers validate the inputs (periods >= 1, principal > 0) before
// invoking; see NewLoanParams.Validate.
func Amortize(principal decimal.Decimal, annualRatePercent int, frequency PaymentFrequency, periods int) []ScheduleEntry {
	periodicRate := money.Percent(annualRatePercent).
		Div(decimal.NewFromInt(int64(frequency.PeriodsPerYear())))

	if periodicRate.IsZero() {
		return amortizeZeroRate(principal, periods)
	}

	// Fixed payment A = P*i*(1+i)^n / ((1+i)^n - 1).
	compound := decimal.NewFromInt(1).Add(periodicRate).Pow(decimal.NewFromInt(int64(periods)))
	payment := principal.Mul(periodicRate).Mul(compound).Div(compound.Sub(decimal.NewFromInt(1)))

	schedule := make([]ScheduleEntry, 0, periods)
	balance := principal

	for n := 1; n <= periods; n++ {
		interest := money.Round(balance.Mul(periodicRate))

		var principalPart decimal.Decimal
		if n == periods {
			// Last period absorbs all accumulated rounding.
			principalPart = balance
		} else {
			principalPart = money.Round(payment.Sub(interest))
		}
		balance = balance.Sub(principalPart)

		schedule = append(schedule, ScheduleEntry{
			InstallmentNumber: n,
			PrincipalAmount:   principalPart,
			InterestAmount:    interest,
			TotalAmount:       principalPart.Add(interest),
		})
	}

	return schedule
}

// amortizeZeroRate splits the principal into equal installments when the
// periodic rate is zero, where the annuity formula would divide by zero.
func amortizeZeroRate(principal decimal.Decimal, periods int) []ScheduleEntry {
	per := money.Round(principal.Div(decimal.NewFromInt(int64(periods))))

	schedule := make([]ScheduleEntry, 0, periods)
	balance := principal

	for n := 1; n <= periods; n++ {
		principalPart := per
		if n == periods {
			principalPart = balance
		}
		balance = balance.Sub(principalPart)

		schedule = append(schedule, ScheduleEntry{
			InstallmentNumber: n,
			PrincipalAmount:   principalPart,
			InterestAmount:    decimal.Zero,
			TotalAmount:       principalPart,
		})
	}

	return schedule
}

// ScheduleTotal sums the total column of a schedule; this becomes the
// loan's TotalAmount.
func ScheduleTotal(schedule []ScheduleEntry) decimal.Decimal {
	totals := make([]decimal.Decimal, len(schedule))
	for i, e := range schedule {
		totals[i] = e.TotalAmount
	}
	return money.Sum(totals...)
}
