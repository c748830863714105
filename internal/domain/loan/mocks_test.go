package loan

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"lending-engine/internal/domain/customer"
	"lending-engine/internal/event"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (_m *MockRepository) CreateLoan(ctx context.Context, l *Loan, installments []Installment) (*Loan, error) {
	ret := _m.Called(ctx, l, installments)

	var r0 *Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) GetLoanByID(ctx context.Context, loanID int64) (*Loan, error) {
	ret := _m.Called(ctx, loanID)

	var r0 *Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) GetInstallmentsByLoanID(ctx context.Context, loanID int64) ([]Installment, error) {
	ret := _m.Called(ctx, loanID)

	var r0 []Installment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Installment)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) GetPaymentsByInstallmentID(ctx context.Context, installmentID int64) ([]Payment, error) {
	ret := _m.Called(ctx, installmentID)

	var r0 []Payment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Payment)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) ListLoans(ctx context.Context) ([]Loan, error) {
	ret := _m.Called(ctx)

	var r0 []Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) ListLoansByCustomer(ctx context.Context, customerID int64) ([]Loan, error) {
	ret := _m.Called(ctx, customerID)

	var r0 []Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) UpdateLoan(ctx context.Context, l *Loan) error {
	ret := _m.Called(ctx, l)
	return ret.Error(0)
}

func (_m *MockRepository) SoftDeleteLoan(ctx context.Context, loanID int64) error {
	ret := _m.Called(ctx, loanID)
	return ret.Error(0)
}

func (_m *MockRepository) ActivateLoan(ctx context.Context, l *Loan, installments []Installment) error {
	ret := _m.Called(ctx, l, installments)
	return ret.Error(0)
}

func (_m *MockRepository) LockLoanForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error) {
	ret := _m.Called(ctx, tx, loanID)

	var r0 *Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) GetPayableInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) ([]Installment, error) {
	ret := _m.Called(ctx, tx, loanID)

	var r0 []Installment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Installment)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) InsertPaymentInTx(ctx context.Context, tx pgx.Tx, payment *Payment) error {
	ret := _m.Called(ctx, tx, payment)
	return ret.Error(0)
}

func (_m *MockRepository) UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, installment *Installment) error {
	ret := _m.Called(ctx, tx, installment)
	return ret.Error(0)
}

func (_m *MockRepository) UpdateLoanStatusInTx(ctx context.Context, tx pgx.Tx, loanID int64, status LoanStatus, statusAt *time.Time) error {
	ret := _m.Called(ctx, tx, loanID, status, statusAt)
	return ret.Error(0)
}

func (_m *MockRepository) CountOpenInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int, error) {
	ret := _m.Called(ctx, tx, loanID)
	return ret.Int(0), ret.Error(1)
}

func (_m *MockRepository) FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]OverdueCandidate, error) {
	ret := _m.Called(ctx, asOf)

	var r0 []OverdueCandidate
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]OverdueCandidate)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	ret := _m.Called(ctx)

	var r0 pgx.Tx
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(pgx.Tx)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	ret := _m.Called(ctx, tx)
	return ret.Error(0)
}

func (_m *MockRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	ret := _m.Called(ctx, tx)
	return ret.Error(0)
}

type MockCustomerService struct {
	mock.Mock
}

var _ customer.Service = (*MockCustomerService)(nil)

func (_m *MockCustomerService) CreateCustomer(ctx context.Context, firstName, lastName string, contacts []customer.Contact) (*customer.Customer, error) {
	ret := _m.Called(ctx, firstName, lastName, contacts)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) ListCustomers(ctx context.Context, activeOnly bool) ([]*customer.Customer, error) {
	ret := _m.Called(ctx, activeOnly)

	var r0 []*customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*customer.Customer)
	}
	return r0, ret.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

var _ event.Publisher = (*MockPublisher)(nil)

func (_m *MockPublisher) PublishLoanStatusChanged(ctx context.Context, ev event.LoanStatusChangedEvent) error {
	ret := _m.Called(ctx, ev)
	return ret.Error(0)
}

func (_m *MockPublisher) PublishNotificationRequested(ctx context.Context, ev event.NotificationRequestedEvent) error {
	ret := _m.Called(ctx, ev)
	return ret.Error(0)
}

type MockInvalidator struct {
	mock.Mock
}

func (_m *MockInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	args := make([]interface{}, 0, len(keys)+1)
	args = append(args, ctx)
	for _, k := range keys {
		args = append(args, k)
	}
	ret := _m.Called(args...)
	return ret.Error(0)
}
