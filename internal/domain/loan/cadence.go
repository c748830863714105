package loan

import "time"

// DueDate returns the due date of the n-th installment (1-based) for a
// loan starting at start. Weekly and biweekly cadences advance in exact
// 7/14-day steps; monthly advances by calendar months and accepts the
// host calendar's normalization of month-end overflow (Jan 31 plus one
// month lands in early March in a non-leap year).
func DueDate(start time.Time, frequency PaymentFrequency, n int) time.Time {
	switch frequency {
	case FrequencyWeekly:
		return start.AddDate(0, 0, 7*n)
	case FrequencyBiweekly:
		return start.AddDate(0, 0, 14*n)
	default:
		return start.AddDate(0, n, 0)
	}
}

// EndDate is the due date of the final installment.
func EndDate(start time.Time, frequency PaymentFrequency, totalPeriods int) time.Time {
	return DueDate(start, frequency, totalPeriods)
}
