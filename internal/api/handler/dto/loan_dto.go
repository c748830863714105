package dto

import (
	"fmt"
	"strconv"
	"time"

	"lending-engine/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type CreateLoanRequest struct {
	CustomerID          int64  `json:"customerId"`
	PrincipalAmount     string `json:"principalAmount"`
	AnnualInterestRate  int    `json:"annualInterestRate"`
	PaymentFrequency    string `json:"paymentFrequency"`
	TotalPeriods        int    `json:"totalPeriods"`
	OverdueInterestRate *int   `json:"overdueInterestRate,omitempty"`
	Simulate            bool   `json:"simulate"`
}

// ToParams parses and applies defaults; domain-level validation happens
// in the service.
func (r *CreateLoanRequest) ToParams() (loan.NewLoanParams, error) {
	principal, err := decimal.NewFromString(r.PrincipalAmount)
	if err != nil || r.PrincipalAmount == "" {
		return loan.NewLoanParams{}, fmt.Errorf("invalid principalAmount: %w", err)
	}

	overdueRate := loan.DefaultOverdueInterestRate
	if r.OverdueInterestRate != nil {
		overdueRate = *r.OverdueInterestRate
	}

	return loan.NewLoanParams{
		CustomerID:          r.CustomerID,
		PrincipalAmount:     principal,
		AnnualInterestRate:  r.AnnualInterestRate,
		PaymentFrequency:    loan.PaymentFrequency(r.PaymentFrequency),
		TotalPeriods:        r.TotalPeriods,
		OverdueInterestRate: overdueRate,
		Simulate:            r.Simulate,
	}, nil
}

type UpdateLoanRequest struct {
	PrincipalAmount     *string `json:"principalAmount,omitempty"`
	AnnualInterestRate  *int    `json:"annualInterestRate,omitempty"`
	PaymentFrequency    *string `json:"paymentFrequency,omitempty"`
	TotalPeriods        *int    `json:"totalPeriods,omitempty"`
	OverdueInterestRate *int    `json:"overdueInterestRate,omitempty"`
}

func (r *UpdateLoanRequest) ToParams() (loan.UpdateLoanParams, error) {
	var params loan.UpdateLoanParams

	if r.PrincipalAmount != nil {
		principal, err := decimal.NewFromString(*r.PrincipalAmount)
		if err != nil {
			return params, fmt.Errorf("invalid principalAmount: %w", err)
		}
		params.PrincipalAmount = &principal
	}
	params.AnnualInterestRate = r.AnnualInterestRate
	if r.PaymentFrequency != nil {
		freq := loan.PaymentFrequency(*r.PaymentFrequency)
		params.PaymentFrequency = &freq
	}
	params.TotalPeriods = r.TotalPeriods
	params.OverdueInterestRate = r.OverdueInterestRate

	return params, nil
}

type RecordPaymentRequest struct {
	Amount        string  `json:"amount"`
	PaymentDate   *string `json:"paymentDate,omitempty"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

func (r *RecordPaymentRequest) ToParams() (loan.RecordPaymentParams, error) {
	var params loan.RecordPaymentParams

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil || r.Amount == "" {
		return params, fmt.Errorf("invalid payment amount: %w", err)
	}
	params.Amount = amount

	if r.PaymentDate != nil {
		paymentDate, err := time.Parse(time.RFC3339, *r.PaymentDate)
		if err != nil {
			paymentDate, err = time.Parse(time.RFC3339[:10], *r.PaymentDate)
			if err != nil {
				return params, fmt.Errorf("invalid paymentDate format (use RFC3339 or YYYY-MM-DD): %w", err)
			}
		}
		params.PaymentDate = &paymentDate
	}
	params.PaymentMethod = r.PaymentMethod
	params.Notes = r.Notes

	return params, nil
}

type LoanResponse struct {
	ID                  string                `json:"id"`
	CustomerID          int64                 `json:"customerId"`
	PrincipalAmount     string                `json:"principalAmount"`
	AnnualInterestRate  int                   `json:"annualInterestRate"`
	PaymentFrequency    string                `json:"paymentFrequency"`
	TotalPeriods        int                   `json:"totalPeriods"`
	TotalAmount         string                `json:"totalAmount"`
	Status              string                `json:"status"`
	OverdueInterestRate int                   `json:"overdueInterestRate"`
	StartDate           *string               `json:"startDate,omitempty"`
	EndDate             *string               `json:"endDate,omitempty"`
	SimulatedAt         time.Time             `json:"simulatedAt"`
	ActivatedAt         *time.Time            `json:"activatedAt,omitempty"`
	PaidAt              *time.Time            `json:"paidAt,omitempty"`
	DefaultedAt         *time.Time            `json:"defaultedAt,omitempty"`
	CreatedAt           time.Time             `json:"createdAt"`
	UpdatedAt           time.Time             `json:"updatedAt"`
	Installments        []InstallmentResponse `json:"installments,omitempty"`
}

type InstallmentResponse struct {
	ID                string     `json:"id"`
	InstallmentNumber int        `json:"installmentNumber"`
	DueDate           string     `json:"dueDate"`
	PrincipalAmount   string     `json:"principalAmount"`
	InterestAmount    string     `json:"interestAmount"`
	TotalAmount       string     `json:"totalAmount"`
	PaidAmount        string     `json:"paidAmount"`
	RemainingAmount   string     `json:"remainingAmount"`
	Status            string     `json:"status"`
	OverdueDays       int        `json:"overdueDays"`
	PenaltyAmount     string     `json:"penaltyAmount"`
	PaidAt            *time.Time `json:"paidAt,omitempty"`
}

type PaymentResponse struct {
	ID            string    `json:"id"`
	InstallmentID int64     `json:"installmentId"`
	Amount        string    `json:"amount"`
	PaymentDate   time.Time `json:"paymentDate"`
	PaymentMethod *string   `json:"paymentMethod,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
}

type ScheduleEntryResponse struct {
	InstallmentNumber int    `json:"installmentNumber"`
	DueDate           string `json:"dueDate"`
	PrincipalAmount   string `json:"principalAmount"`
	InterestAmount    string `json:"interestAmount"`
	TotalAmount       string `json:"totalAmount"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

func NewLoanResponse(l *loan.Loan, includeInstallments bool) LoanResponse {
	resp := LoanResponse{
		ID:                  strconv.FormatInt(l.ID, 10),
		CustomerID:          l.CustomerID,
		PrincipalAmount:     l.PrincipalAmount.StringFixed(2),
		AnnualInterestRate:  l.AnnualInterestRate,
		PaymentFrequency:    string(l.PaymentFrequency),
		TotalPeriods:        l.TotalPeriods,
		TotalAmount:         l.TotalAmount.StringFixed(2),
		Status:              string(l.Status),
		OverdueInterestRate: l.OverdueInterestRate,
		SimulatedAt:         l.SimulatedAt,
		ActivatedAt:         l.ActivatedAt,
		PaidAt:              l.PaidAt,
		DefaultedAt:         l.DefaultedAt,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}

	if l.StartDate != nil {
		startDate := l.StartDate.Format(time.RFC3339[:10])
		resp.StartDate = &startDate
	}
	if l.EndDate != nil {
		endDate := l.EndDate.Format(time.RFC3339[:10])
		resp.EndDate = &endDate
	}

	if includeInstallments && l.Installments != nil {
		resp.Installments = make([]InstallmentResponse, len(l.Installments))
		for i, inst := range l.Installments {
			resp.Installments[i] = NewInstallmentResponse(&inst)
		}
	}

	return resp
}

func NewInstallmentResponse(inst *loan.Installment) InstallmentResponse {
	return InstallmentResponse{
		ID:                strconv.FormatInt(inst.ID, 10),
		InstallmentNumber: inst.InstallmentNumber,
		DueDate:           inst.DueDate.Format(time.RFC3339[:10]),
		PrincipalAmount:   inst.PrincipalAmount.StringFixed(2),
		InterestAmount:    inst.InterestAmount.StringFixed(2),
		TotalAmount:       inst.TotalAmount.StringFixed(2),
		PaidAmount:        inst.PaidAmount.StringFixed(2),
		RemainingAmount:   inst.RemainingAmount.StringFixed(2),
		Status:            string(inst.Status),
		OverdueDays:       inst.OverdueDays,
		PenaltyAmount:     inst.PenaltyAmount.StringFixed(2),
		PaidAt:            inst.PaidAt,
	}
}

func NewPaymentResponse(p *loan.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            strconv.FormatInt(p.ID, 10),
		InstallmentID: p.InstallmentID,
		Amount:        p.Amount.StringFixed(2),
		PaymentDate:   p.PaymentDate,
		PaymentMethod: p.PaymentMethod,
		Notes:         p.Notes,
	}
}

func NewScheduleEntryResponse(entry *loan.PlannedInstallment) ScheduleEntryResponse {
	return ScheduleEntryResponse{
		InstallmentNumber: entry.InstallmentNumber,
		DueDate:           entry.DueDate.Format(time.RFC3339[:10]),
		PrincipalAmount:   entry.PrincipalAmount.StringFixed(2),
		InterestAmount:    entry.InterestAmount.StringFixed(2),
		TotalAmount:       entry.TotalAmount.StringFixed(2),
	}
}
