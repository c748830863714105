package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"lending-engine/internal/domain/customer"
)

type ContactRequest struct {
	Type      string  `json:"type"`
	Value     string  `json:"value"`
	Label     *string `json:"label,omitempty"`
	IsPrimary bool    `json:"isPrimary"`
}

type CreateCustomerRequest struct {
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Contacts  []ContactRequest `json:"contacts,omitempty"`
}

func (r *CreateCustomerRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return fmt.Errorf("firstName cannot be empty")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return fmt.Errorf("lastName cannot be empty")
	}
	for i, contact := range r.Contacts {
		if strings.TrimSpace(contact.Value) == "" {
			return fmt.Errorf("contacts[%d].value cannot be empty", i)
		}
	}
	return nil
}

func (r *CreateCustomerRequest) ToContacts() []customer.Contact {
	contacts := make([]customer.Contact, len(r.Contacts))
	for i, contact := range r.Contacts {
		contacts[i] = customer.Contact{
			Type:      customer.ContactType(strings.ToUpper(contact.Type)),
			Value:     contact.Value,
			Label:     contact.Label,
			IsPrimary: contact.IsPrimary,
		}
	}
	return contacts
}

type ContactResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Value     string  `json:"value"`
	Label     *string `json:"label,omitempty"`
	IsPrimary bool    `json:"isPrimary"`
}

type CustomerResponse struct {
	CustomerID string            `json:"customerId"`
	FirstName  string            `json:"firstName"`
	LastName   string            `json:"lastName"`
	Active     bool              `json:"active"`
	Contacts   []ContactResponse `json:"contacts,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}

	resp := CustomerResponse{
		CustomerID: strconv.FormatInt(cust.ID, 10),
		FirstName:  cust.FirstName,
		LastName:   cust.LastName,
		Active:     cust.Active,
		CreatedAt:  cust.CreatedAt,
		UpdatedAt:  cust.UpdatedAt,
	}

	if len(cust.Contacts) > 0 {
		resp.Contacts = make([]ContactResponse, len(cust.Contacts))
		for i, contact := range cust.Contacts {
			resp.Contacts[i] = ContactResponse{
				ID:        strconv.FormatInt(contact.ID, 10),
				Type:      string(contact.Type),
				Value:     contact.Value,
				Label:     contact.Label,
				IsPrimary: contact.IsPrimary,
			}
		}
	}

	return resp
}
