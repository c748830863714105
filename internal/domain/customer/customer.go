package customer

import "time"

type ContactType string

const (
	ContactEmail ContactType = "EMAIL"
	ContactPhone ContactType = "PHONE"
)

type Contact struct {
	ID         int64       `json:"id"`
	CustomerID int64       `json:"customerId"`
	Type       ContactType `json:"type"`
	Value      string      `json:"value"`
	Label      *string     `json:"label,omitempty"`
	IsPrimary  bool        `json:"isPrimary"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

type Customer struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Active    bool      `json:"active"`
	Contacts  []Contact `json:"contacts,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// PrimaryEmail returns the customer's primary email contact, if any.
// Overdue notifications are skipped for customers without one.
func (c *Customer) PrimaryEmail() (string, bool) {
	for _, contact := range c.Contacts {
		if contact.Type == ContactEmail && contact.IsPrimary {
			return contact.Value, true
		}
	}
	return "", false
}
