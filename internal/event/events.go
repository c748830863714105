package event

import "time"

// LoanStatusChangedEvent is emitted after every committed lifecycle
// transition so downstream consumers (reporting, notify service) can
// react without polling.
type LoanStatusChangedEvent struct {
	LoanID     int64     `json:"loanId"`
	CustomerID int64     `json:"customerId"`
	OldStatus  string    `json:"oldStatus"`
	NewStatus  string    `json:"newStatus"`
	Timestamp  time.Time `json:"timestamp"`
}

// NotificationRequestedEvent asks the notify service to deliver a
// message. Delivery transport (mail, SMS) is the consumer's concern.
type NotificationRequestedEvent struct {
	To            string    `json:"to"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	LoanID        int64     `json:"loanId,omitempty"`
	InstallmentID int64     `json:"installmentId,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
