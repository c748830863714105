package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lending-engine/internal/api/handler/dto"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockLoanService struct {
	mock.Mock
}

var _ loan.LoanService = (*MockLoanService)(nil)

func (m *MockLoanService) CreateLoan(ctx context.Context, params loan.NewLoanParams) (*loan.Loan, error) {
	args := m.Called(ctx, params)
	if created, ok := args.Get(0).(*loan.Loan); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ActivateLoan(ctx context.Context, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if activated, ok := args.Get(0).(*loan.Loan); ok {
		return activated, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) UpdateSimulatedLoan(ctx context.Context, loanID int64, params loan.UpdateLoanParams) (*loan.Loan, error) {
	args := m.Called(ctx, loanID, params)
	if updated, ok := args.Get(0).(*loan.Loan); ok {
		return updated, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) RemoveLoan(ctx context.Context, loanID int64) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

func (m *MockLoanService) CancelLoan(ctx context.Context, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if cancelled, ok := args.Get(0).(*loan.Loan); ok {
		return cancelled, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) MarkDefaulted(ctx context.Context, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if defaulted, ok := args.Get(0).(*loan.Loan); ok {
		return defaulted, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) RecordPayment(ctx context.Context, loanID int64, params loan.RecordPaymentParams) ([]loan.Payment, error) {
	args := m.Called(ctx, loanID, params)
	if payments, ok := args.Get(0).([]loan.Payment); ok {
		return payments, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) CalculateSchedule(ctx context.Context, loanID int64) ([]loan.PlannedInstallment, error) {
	args := m.Called(ctx, loanID)
	if schedule, ok := args.Get(0).([]loan.PlannedInstallment); ok {
		return schedule, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if found, ok := args.Get(0).(*loan.Loan); ok {
		return found, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context) ([]loan.Loan, error) {
	args := m.Called(ctx)
	if loans, ok := args.Get(0).([]loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListLoansByCustomer(ctx context.Context, customerID int64) ([]loan.Loan, error) {
	args := m.Called(ctx, customerID)
	if loans, ok := args.Get(0).([]loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func newLoanHandlerFixture() (*MockLoanService, *LoanHandler) {
	mockService := new(MockLoanService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return mockService, NewLoanHandler(mockService, logger)
}

func requestWithLoanID(method, target, loanID string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{Keys: []string{"loanID"}, Values: []string{loanID}},
	}))
	return req
}

func sampleLoan(id int64) *loan.Loan {
	return &loan.Loan{
		ID:                  id,
		CustomerID:          7,
		PrincipalAmount:     decimal.RequireFromString("10000.00"),
		AnnualInterestRate:  12,
		PaymentFrequency:    loan.FrequencyMonthly,
		TotalPeriods:        12,
		TotalAmount:         decimal.RequireFromString("10661.85"),
		Status:              loan.StatusActive,
		OverdueInterestRate: loan.DefaultOverdueInterestRate,
		SimulatedAt:         time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestLoanHandlerCreateLoan(t *testing.T) {
	t.Run("creates a loan and returns 201", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		created := sampleLoan(42)
		mockService.On("CreateLoan", mock.Anything, mock.MatchedBy(func(p loan.NewLoanParams) bool {
			return p.CustomerID == 7 && p.PrincipalAmount.Equal(decimal.RequireFromString("10000.00")) && !p.Simulate
		})).Return(created, nil)

		body := `{"customerId":7,"principalAmount":"10000.00","annualInterestRate":12,"paymentFrequency":"MONTHLY","totalPeriods":12}`
		req := httptest.NewRequest(http.MethodPost, "/loans", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.CreateLoan(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.LoanResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "42", resp.ID)
		assert.Equal(t, "10000.00", resp.PrincipalAmount)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		req := httptest.NewRequest(http.MethodPost, "/loans", strings.NewReader(`{"customerId":`))
		rec := httptest.NewRecorder()

		h.CreateLoan(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "CreateLoan")
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		body := `{"customerId":7,"principalAmount":"100.00","annualInterestRate":12,"paymentFrequency":"MONTHLY","totalPeriods":12,"surprise":true}`
		req := httptest.NewRequest(http.MethodPost, "/loans", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.CreateLoan(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "CreateLoan")
	})

	t.Run("maps a validation error to 400 with the field", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		mockService.On("CreateLoan", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("totalPeriods", "must be greater than zero"))

		body := `{"customerId":7,"principalAmount":"10000.00","annualInterestRate":12,"paymentFrequency":"MONTHLY","totalPeriods":0}`
		req := httptest.NewRequest(http.MethodPost, "/loans", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.CreateLoan(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "totalPeriods", resp.Error.Field)
		assert.Equal(t, "must be greater than zero", resp.Error.Message)
		mockService.AssertExpectations(t)
	})
}

func TestLoanHandlerGetLoan(t *testing.T) {
	t.Run("returns the loan with installments", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		found := sampleLoan(123)
		found.Installments = []loan.Installment{{
			ID:                1,
			LoanID:            123,
			InstallmentNumber: 1,
			DueDate:           time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			PrincipalAmount:   decimal.RequireFromString("788.49"),
			InterestAmount:    decimal.RequireFromString("100.00"),
			TotalAmount:       decimal.RequireFromString("888.49"),
			PaidAmount:        decimal.Zero,
			RemainingAmount:   decimal.RequireFromString("888.49"),
			PenaltyAmount:     decimal.Zero,
			Status:            loan.InstallmentPending,
		}}
		mockService.On("GetLoan", mock.Anything, int64(123)).Return(found, nil)

		rec := httptest.NewRecorder()
		h.GetLoan(rec, requestWithLoanID(http.MethodGet, "/loans/123", "123", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.LoanResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "123", resp.ID)
		assert.Len(t, resp.Installments, 1)
		assert.Equal(t, "888.49", resp.Installments[0].TotalAmount)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects a non-numeric loan ID", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		rec := httptest.NewRecorder()
		h.GetLoan(rec, requestWithLoanID(http.MethodGet, "/loans/abc", "abc", ""))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "GetLoan")
	})

	t.Run("returns 404 when the loan does not exist", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		mockService.On("GetLoan", mock.Anything, int64(2)).Return(nil, apperrors.ErrNotFound)

		rec := httptest.NewRecorder()
		h.GetLoan(rec, requestWithLoanID(http.MethodGet, "/loans/2", "2", ""))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Resource not found.", resp.Error.Message)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 500 for unexpected errors", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		mockService.On("GetLoan", mock.Anything, int64(3)).Return(nil, errors.New("connection reset"))

		rec := httptest.NewRecorder()
		h.GetLoan(rec, requestWithLoanID(http.MethodGet, "/loans/3", "3", ""))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "An unexpected error occurred.", resp.Error.Message)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 500 with the coded message for database errors", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		dbErr := apperrors.WrapDatabaseError(errors.New("connection reset"), "failed to get loan by ID")
		mockService.On("GetLoan", mock.Anything, int64(4)).Return(nil, dbErr)

		rec := httptest.NewRecorder()
		h.GetLoan(rec, requestWithLoanID(http.MethodGet, "/loans/4", "4", ""))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "[DB_ERROR] failed to get loan by ID", resp.Error.Message)
		mockService.AssertExpectations(t)
	})
}

func TestLoanHandlerListLoans(t *testing.T) {
	t.Run("lists all loans", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		mockService.On("ListLoans", mock.Anything).Return([]loan.Loan{*sampleLoan(1), *sampleLoan(2)}, nil)

		req := httptest.NewRequest(http.MethodGet, "/loans", nil)
		rec := httptest.NewRecorder()
		h.ListLoans(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.LoanResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp, 2)
		assert.Empty(t, resp[0].Installments)
		mockService.AssertExpectations(t)
	})

	t.Run("filters by customer when customerId is given", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		mockService.On("ListLoansByCustomer", mock.Anything, int64(7)).Return([]loan.Loan{*sampleLoan(1)}, nil)

		req := httptest.NewRequest(http.MethodGet, "/loans?customerId=7", nil)
		rec := httptest.NewRecorder()
		h.ListLoans(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.LoanResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp, 1)
		mockService.AssertNotCalled(t, "ListLoans")
		mockService.AssertExpectations(t)
	})

	t.Run("rejects a malformed customerId", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		req := httptest.NewRequest(http.MethodGet, "/loans?customerId=seven", nil)
		rec := httptest.NewRecorder()
		h.ListLoans(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "ListLoansByCustomer")
	})
}

func TestLoanHandlerUpdateLoan(t *testing.T) {
	t.Run("updates a simulated loan", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		updated := sampleLoan(5)
		updated.Status = loan.StatusSimulated
		updated.TotalPeriods = 24
		mockService.On("UpdateSimulatedLoan", mock.Anything, int64(5), mock.MatchedBy(func(p loan.UpdateLoanParams) bool {
			return p.TotalPeriods != nil && *p.TotalPeriods == 24 && p.PrincipalAmount == nil
		})).Return(updated, nil)

		rec := httptest.NewRecorder()
		h.UpdateLoan(rec, requestWithLoanID(http.MethodPut, "/loans/5", "5", `{"totalPeriods":24}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.LoanResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, 24, resp.TotalPeriods)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 412 when the loan is not simulated", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		mockService.On("UpdateSimulatedLoan", mock.Anything, int64(5), mock.Anything).
			Return(nil, apperrors.NewTransitionError("update", string(loan.StatusActive), string(loan.StatusSimulated)))

		rec := httptest.NewRecorder()
		h.UpdateLoan(rec, requestWithLoanID(http.MethodPut, "/loans/5", "5", `{"totalPeriods":24}`))

		assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestLoanHandlerRemoveLoan(t *testing.T) {
	t.Run("removes a simulated loan and returns 204", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		mockService.On("RemoveLoan", mock.Anything, int64(9)).Return(nil)

		rec := httptest.NewRecorder()
		h.RemoveLoan(rec, requestWithLoanID(http.MethodDelete, "/loans/9", "9", ""))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("returns 404 for a missing loan", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		mockService.On("RemoveLoan", mock.Anything, int64(9)).Return(apperrors.ErrNotFound)

		rec := httptest.NewRecorder()
		h.RemoveLoan(rec, requestWithLoanID(http.MethodDelete, "/loans/9", "9", ""))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestLoanHandlerLifecycleEndpoints(t *testing.T) {
	t.Run("activates a loan", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		activated := sampleLoan(4)
		mockService.On("ActivateLoan", mock.Anything, int64(4)).Return(activated, nil)

		rec := httptest.NewRecorder()
		h.ActivateLoan(rec, requestWithLoanID(http.MethodPost, "/loans/4/activate", "4", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.LoanResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, string(loan.StatusActive), resp.Status)
		mockService.AssertExpectations(t)
	})

	t.Run("activation of an active loan is a precondition failure", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		mockService.On("ActivateLoan", mock.Anything, int64(4)).
			Return(nil, apperrors.NewTransitionError("activate", string(loan.StatusActive), string(loan.StatusSimulated)))

		rec := httptest.NewRecorder()
		h.ActivateLoan(rec, requestWithLoanID(http.MethodPost, "/loans/4/activate", "4", ""))

		assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("cancels a loan", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		cancelled := sampleLoan(4)
		cancelled.Status = loan.StatusCancelled
		mockService.On("CancelLoan", mock.Anything, int64(4)).Return(cancelled, nil)

		rec := httptest.NewRecorder()
		h.CancelLoan(rec, requestWithLoanID(http.MethodPost, "/loans/4/cancel", "4", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.LoanResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, string(loan.StatusCancelled), resp.Status)
		mockService.AssertExpectations(t)
	})

	t.Run("marks a loan defaulted", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		defaulted := sampleLoan(4)
		defaulted.Status = loan.StatusDefaulted
		mockService.On("MarkDefaulted", mock.Anything, int64(4)).Return(defaulted, nil)

		rec := httptest.NewRecorder()
		h.MarkDefaulted(rec, requestWithLoanID(http.MethodPost, "/loans/4/default", "4", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.LoanResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, string(loan.StatusDefaulted), resp.Status)
		mockService.AssertExpectations(t)
	})
}

func TestLoanHandlerRecordPayment(t *testing.T) {
	t.Run("records a payment and returns 201", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		payments := []loan.Payment{
			{ID: 1, InstallmentID: 10, Amount: decimal.RequireFromString("100.00"), PaymentDate: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)},
			{ID: 2, InstallmentID: 11, Amount: decimal.RequireFromString("50.00"), PaymentDate: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)},
		}
		mockService.On("RecordPayment", mock.Anything, int64(8), mock.MatchedBy(func(p loan.RecordPaymentParams) bool {
			return p.Amount.Equal(decimal.RequireFromString("150.00"))
		})).Return(payments, nil)

		rec := httptest.NewRecorder()
		h.RecordPayment(rec, requestWithLoanID(http.MethodPost, "/loans/8/payments", "8", `{"amount":"150.00"}`))

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp []dto.PaymentResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp, 2)
		assert.Equal(t, "100.00", resp[0].Amount)
		assert.Equal(t, int64(11), resp[1].InstallmentID)
		mockService.AssertExpectations(t)
	})

	t.Run("maps an overpayment to 400", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		mockService.On("RecordPayment", mock.Anything, int64(8), mock.Anything).
			Return(nil, &apperrors.OverpaymentError{
				Amount:    decimal.RequireFromString("150.01"),
				Remaining: decimal.RequireFromString("150.00"),
			})

		rec := httptest.NewRecorder()
		h.RecordPayment(rec, requestWithLoanID(http.MethodPost, "/loans/8/payments", "8", `{"amount":"150.01"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp.Error.Message, "150.01")
		mockService.AssertExpectations(t)
	})

	t.Run("rejects a payment against a paid loan", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		mockService.On("RecordPayment", mock.Anything, int64(8), mock.Anything).
			Return(nil, apperrors.ErrInvalidOperation)

		rec := httptest.NewRecorder()
		h.RecordPayment(rec, requestWithLoanID(http.MethodPost, "/loans/8/payments", "8", `{"amount":"10.00"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects an unparseable amount before calling the service", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		rec := httptest.NewRecorder()
		h.RecordPayment(rec, requestWithLoanID(http.MethodPost, "/loans/8/payments", "8", `{"amount":"ten"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "RecordPayment")
	})
}

func TestLoanHandlerGetSchedule(t *testing.T) {
	t.Run("returns the computed schedule", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		schedule := []loan.PlannedInstallment{
			{
				ScheduleEntry: loan.ScheduleEntry{
					InstallmentNumber: 1,
					PrincipalAmount:   decimal.RequireFromString("788.49"),
					InterestAmount:    decimal.RequireFromString("100.00"),
					TotalAmount:       decimal.RequireFromString("888.49"),
				},
				DueDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			},
		}
		mockService.On("CalculateSchedule", mock.Anything, int64(6)).Return(schedule, nil)

		rec := httptest.NewRecorder()
		h.GetSchedule(rec, requestWithLoanID(http.MethodGet, "/loans/6/schedule", "6", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.ScheduleEntryResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp, 1)
		assert.Equal(t, "2024-06-01", resp[0].DueDate)
		assert.Equal(t, "888.49", resp[0].TotalAmount)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 404 for an unknown loan", func(t *testing.T) {
		mockService, h := newLoanHandlerFixture()

		mockService.On("CalculateSchedule", mock.Anything, int64(6)).Return(nil, apperrors.ErrNotFound)

		rec := httptest.NewRecorder()
		h.GetSchedule(rec, requestWithLoanID(http.MethodGet, "/loans/6/schedule", "6", ""))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})
}
