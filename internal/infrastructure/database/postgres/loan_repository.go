package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lending-engine/internal/domain/loan"
	"lending-engine/internal/infrastructure/monitoring"
	"lending-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)


const loanColumns = `id, customer_id, principal_amount, annual_interest_rate, payment_frequency,
		total_periods, total_amount, status, overdue_interest_rate, start_date, end_date,
		simulated_at, activated_at, paid_at, defaulted_at, created_at, updated_at`

const installmentColumns = `id, loan_id, installment_number, due_date, principal_amount,
		interest_amount, total_amount, paid_amount, remaining_amount, status, overdue_days,
		penalty_amount, paid_at, created_at, updated_at`

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

var _ loan.Repository = (*LoanRepository)(nil)

func (r *LoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to begin transaction")
	}
	return tx, nil
}

func (r *LoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return apperrors.WrapDatabaseError(err, "failed to commit transaction")
	}
	return nil
}

func (r *LoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
		return apperrors.WrapDatabaseError(err, "failed to rollback transaction")
	}
	return nil
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.CustomerID, &l.PrincipalAmount, &l.AnnualInterestRate, &l.PaymentFrequency,
		&l.TotalPeriods, &l.TotalAmount, &l.Status, &l.OverdueInterestRate, &l.StartDate, &l.EndDate,
		&l.SimulatedAt, &l.ActivatedAt, &l.PaidAt, &l.DefaultedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func scanInstallment(row pgx.Row) (*loan.Installment, error) {
	var inst loan.Installment
	err := row.Scan(
		&inst.ID, &inst.LoanID, &inst.InstallmentNumber, &inst.DueDate, &inst.PrincipalAmount,
		&inst.InterestAmount, &inst.TotalAmount, &inst.PaidAmount, &inst.RemainingAmount, &inst.Status,
		&inst.OverdueDays, &inst.PenaltyAmount, &inst.PaidAt, &inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *LoanRepository) CreateLoan(ctx context.Context, l *loan.Loan, installments []loan.Installment) (*loan.Loan, error) {
	status := "success"
	startTime := time.Now()
	defer func() { monitoring.RecordDBQuery("CreateLoan", status, time.Since(startTime)) }()

	tx, err := r.BeginTx(ctx)
	if err != nil {
		status = "error"
		return nil, err
	}
	defer r.RollbackTx(ctx, tx)

	loanSQL := `
        INSERT INTO loans (customer_id, principal_amount, annual_interest_rate, payment_frequency,
            total_periods, total_amount, status, overdue_interest_rate, start_date, end_date,
            simulated_at, activated_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
        RETURNING ` + loanColumns

	created, err := scanLoan(tx.QueryRow(ctx, loanSQL,
		l.CustomerID, l.PrincipalAmount, l.AnnualInterestRate, l.PaymentFrequency,
		l.TotalPeriods, l.TotalAmount, l.Status, l.OverdueInterestRate, l.StartDate, l.EndDate,
		l.SimulatedAt, l.ActivatedAt,
	))
	if err != nil {
		status = "error"
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to insert loan")
	}
	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.ID)

	if err := r.insertInstallmentsInTx(ctx, tx, created.ID, installments); err != nil {
		status = "error"
		return nil, err
	}

	if err := r.CommitTx(ctx, tx); err != nil {
		status = "error"
		return nil, err
	}
	return created, nil
}

func (r *LoanRepository) insertInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64, installments []loan.Installment) error {
	if len(installments) == 0 {
		return nil
	}

	installmentSQL := `
        INSERT INTO loan_installments (loan_id, installment_number, due_date, principal_amount,
            interest_amount, total_amount, paid_amount, remaining_amount, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

	batch := &pgx.Batch{}
	for _, inst := range installments {
		batch.Queue(installmentSQL, loanID, inst.InstallmentNumber, inst.DueDate, inst.PrincipalAmount,
			inst.InterestAmount, inst.TotalAmount, inst.PaidAmount, inst.RemainingAmount, inst.Status)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < len(installments); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			r.logger.ErrorContext(ctx, "Failed executing installment batch insert", "error", err, "entry_index", i, "loan_id", loanID)
			return apperrors.WrapDatabaseError(err, fmt.Sprintf("failed inserting installment %d", i+1))
		}
	}
	if err := results.Close(); err != nil {
		r.logger.ErrorContext(ctx, "Failed closing installment batch results", "error", err, "loan_id", loanID)
		return apperrors.WrapDatabaseError(err, "closing batch results failed")
	}
	r.logger.InfoContext(ctx, "Loan installments created in DB", "loan_id", loanID, "num_entries", len(installments))
	return nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE id = $1 AND deleted_at IS NULL`
	status := "success"
	startTime := time.Now()

	l, err := scanLoan(r.db.QueryRow(ctx, query, loanID))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetLoanByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to get loan by ID")
	}
	return l, nil
}

func (r *LoanRepository) GetInstallmentsByLoanID(ctx context.Context, loanID int64) ([]loan.Installment, error) {
	query := `
        SELECT ` + installmentColumns + `
        FROM loan_installments
        WHERE loan_id = $1
        ORDER BY installment_number ASC`

	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loan installments", "loan_id", loanID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to query loan installments")
	}
	defer rows.Close()

	installments := make([]loan.Installment, 0)
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan installment row", "loan_id", loanID, "error", err)
			return nil, apperrors.WrapDatabaseError(err, "failed to scan installment row")
		}
		installments = append(installments, *inst)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating installment rows", "loan_id", loanID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "error iterating installment rows")
	}
	return installments, nil
}

func (r *LoanRepository) GetPaymentsByInstallmentID(ctx context.Context, installmentID int64) ([]loan.Payment, error) {
	query := `
        SELECT id, installment_id, amount, payment_date, payment_method, notes, created_at
        FROM loan_payments
        WHERE installment_id = $1
        ORDER BY payment_date ASC, id ASC`

	rows, err := r.db.Query(ctx, query, installmentID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query installment payments", "installment_id", installmentID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to query installment payments")
	}
	defer rows.Close()

	payments := make([]loan.Payment, 0)
	for rows.Next() {
		var p loan.Payment
		err := rows.Scan(&p.ID, &p.InstallmentID, &p.Amount, &p.PaymentDate, &p.PaymentMethod, &p.Notes, &p.CreatedAt)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan payment row", "installment_id", installmentID, "error", err)
			return nil, apperrors.WrapDatabaseError(err, "failed to scan payment row")
		}
		payments = append(payments, p)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating payment rows", "installment_id", installmentID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "error iterating payment rows")
	}
	return payments, nil
}

func (r *LoanRepository) ListLoans(ctx context.Context) ([]loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE deleted_at IS NULL
        ORDER BY created_at DESC`

	return r.queryLoans(ctx, query)
}

func (r *LoanRepository) ListLoansByCustomer(ctx context.Context, customerID int64) ([]loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE customer_id = $1 AND deleted_at IS NULL AND status NOT IN ($2, $3)
        ORDER BY created_at DESC`

	return r.queryLoans(ctx, query, customerID, loan.StatusSimulated, loan.StatusCancelled)
}

func (r *LoanRepository) queryLoans(ctx context.Context, query string, args ...any) ([]loan.Loan, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to query loans")
	}
	defer rows.Close()

	loans := make([]loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "error", err)
			return nil, apperrors.WrapDatabaseError(err, "failed to scan loan row")
		}
		loans = append(loans, *l)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan rows", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "error iterating loan rows")
	}
	return loans, nil
}

func (r *LoanRepository) UpdateLoan(ctx context.Context, l *loan.Loan) error {
	sql := `
        UPDATE loans
        SET principal_amount = $1, annual_interest_rate = $2, payment_frequency = $3,
            total_periods = $4, total_amount = $5, status = $6, overdue_interest_rate = $7,
            start_date = $8, end_date = $9, activated_at = $10, paid_at = $11, defaulted_at = $12,
            updated_at = NOW()
        WHERE id = $13 AND deleted_at IS NULL`

	cmdTag, err := r.db.Exec(ctx, sql,
		l.PrincipalAmount, l.AnnualInterestRate, l.PaymentFrequency,
		l.TotalPeriods, l.TotalAmount, l.Status, l.OverdueInterestRate,
		l.StartDate, l.EndDate, l.ActivatedAt, l.PaidAt, l.DefaultedAt,
		l.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan", "loan_id", l.ID, "error", err)
		return apperrors.WrapDatabaseError(err, "failed to update loan")
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.WarnContext(ctx, "Loan update affected zero rows", "loan_id", l.ID)
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *LoanRepository) SoftDeleteLoan(ctx context.Context, loanID int64) error {
	sql := `UPDATE loans SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	cmdTag, err := r.db.Exec(ctx, sql, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to soft-delete loan", "loan_id", loanID, "error", err)
		return apperrors.WrapDatabaseError(err, "failed to soft-delete loan")
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.WarnContext(ctx, "Soft delete affected zero rows", "loan_id", loanID)
		return apperrors.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Loan soft-deleted in DB", "loan_id", loanID)
	return nil
}

func (r *LoanRepository) ActivateLoan(ctx context.Context, l *loan.Loan, installments []loan.Installment) error {
	status := "success"
	startTime := time.Now()
	defer func() { monitoring.RecordDBQuery("ActivateLoan", status, time.Since(startTime)) }()

	tx, err := r.BeginTx(ctx)
	if err != nil {
		status = "error"
		return err
	}
	defer r.RollbackTx(ctx, tx)

	sql := `
        UPDATE loans
        SET total_amount = $1, status = $2, start_date = $3, end_date = $4, activated_at = $5, updated_at = NOW()
        WHERE id = $6 AND deleted_at IS NULL`

	cmdTag, err := tx.Exec(ctx, sql, l.TotalAmount, l.Status, l.StartDate, l.EndDate, l.ActivatedAt, l.ID)
	if err != nil {
		status = "error"
		r.logger.ErrorContext(ctx, "Failed to update loan on activation", "loan_id", l.ID, "error", err)
		return apperrors.WrapDatabaseError(err, "failed to update loan on activation")
	}
	if cmdTag.RowsAffected() != 1 {
		status = "error"
		r.logger.WarnContext(ctx, "Loan activation affected zero rows", "loan_id", l.ID)
		return apperrors.ErrNotFound
	}

	if err := r.insertInstallmentsInTx(ctx, tx, l.ID, installments); err != nil {
		status = "error"
		return err
	}

	if err := r.CommitTx(ctx, tx); err != nil {
		status = "error"
		return err
	}
	return nil
}

func (r *LoanRepository) LockLoanForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) (*loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE id = $1 AND deleted_at IS NULL
        FOR UPDATE`

	l, err := scanLoan(tx.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found for locking", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock loan row", "loan_id", loanID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to lock loan row")
	}
	return l, nil
}

func (r *LoanRepository) GetPayableInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) ([]loan.Installment, error) {
	query := `
        SELECT ` + installmentColumns + `
        FROM loan_installments
        WHERE loan_id = $1 AND status IN ($2, $3)
        ORDER BY installment_number ASC`

	rows, err := tx.Query(ctx, query, loanID, loan.InstallmentPending, loan.InstallmentPartial)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query payable installments", "loan_id", loanID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to query payable installments")
	}
	defer rows.Close()

	installments := make([]loan.Installment, 0)
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan payable installment row", "loan_id", loanID, "error", err)
			return nil, apperrors.WrapDatabaseError(err, "failed to scan payable installment row")
		}
		installments = append(installments, *inst)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating payable installment rows", "loan_id", loanID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "error iterating payable installment rows")
	}
	return installments, nil
}

func (r *LoanRepository) InsertPaymentInTx(ctx context.Context, tx pgx.Tx, payment *loan.Payment) error {
	sql := `
        INSERT INTO loan_payments (installment_id, amount, payment_date, payment_method, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, created_at`

	err := tx.QueryRow(ctx, sql,
		payment.InstallmentID, payment.Amount, payment.PaymentDate, payment.PaymentMethod, payment.Notes,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert payment", "installment_id", payment.InstallmentID, "error", err)
		return apperrors.WrapDatabaseError(err, "failed to insert payment")
	}
	return nil
}

func (r *LoanRepository) UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, installment *loan.Installment) error {
	sql := `
        UPDATE loan_installments
        SET paid_amount = $1, remaining_amount = $2, status = $3, overdue_days = $4,
            penalty_amount = $5, paid_at = $6, updated_at = NOW()
        WHERE id = $7 AND loan_id = $8`

	cmdTag, err := tx.Exec(ctx, sql,
		installment.PaidAmount, installment.RemainingAmount, installment.Status, installment.OverdueDays,
		installment.PenaltyAmount, installment.PaidAt, installment.ID, installment.LoanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update installment", "installment_id", installment.ID, "loan_id", installment.LoanID, "error", err)
		return apperrors.WrapDatabaseError(err, "failed to update installment")
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Installment update affected zero rows", "installment_id", installment.ID, "loan_id", installment.LoanID)
		return fmt.Errorf("%w: installment update affected zero rows", apperrors.ErrDatabase)
	}
	return nil
}

func (r *LoanRepository) UpdateLoanStatusInTx(ctx context.Context, tx pgx.Tx, loanID int64, status loan.LoanStatus, statusAt *time.Time) error {
	var (
		cmdTag pgconn.CommandTag
		err    error
	)
	switch status {
	case loan.StatusPaid:
		sql := `UPDATE loans SET status = $1, paid_at = $2, updated_at = NOW() WHERE id = $3`
		cmdTag, err = tx.Exec(ctx, sql, status, statusAt, loanID)
	case loan.StatusDefaulted:
		sql := `UPDATE loans SET status = $1, defaulted_at = $2, updated_at = NOW() WHERE id = $3`
		cmdTag, err = tx.Exec(ctx, sql, status, statusAt, loanID)
	default:
		sql := `UPDATE loans SET status = $1, updated_at = NOW() WHERE id = $2`
		cmdTag, err = tx.Exec(ctx, sql, status, loanID)
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan status", "loan_id", loanID, "status", status, "error", err)
		return apperrors.WrapDatabaseError(err, "failed to update loan status")
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Loan status update affected zero rows", "loan_id", loanID, "status", status)
		return fmt.Errorf("%w: loan status update affected zero rows", apperrors.ErrDatabase)
	}
	r.logger.InfoContext(ctx, "Loan status updated in DB", "loan_id", loanID, "new_status", status)
	return nil
}

func (r *LoanRepository) CountOpenInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM loan_installments WHERE loan_id = $1 AND status != $2`
	err := tx.QueryRow(ctx, query, loanID, loan.InstallmentPaid).Scan(&count)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count open installments", "loan_id", loanID, "error", err)
		return 0, apperrors.WrapDatabaseError(err, "failed to count open installments")
	}
	return count, nil
}

func (r *LoanRepository) FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]loan.OverdueCandidate, error) {
	logCtx := r.logger.With(slog.String("operation", "FindOverdueCandidates"))
	logCtx.DebugContext(ctx, "Finding past-due pending installments", slog.Time("asOf", asOf))

	query := `
        SELECT i.id, i.loan_id, i.installment_number, i.due_date, i.principal_amount,
            i.interest_amount, i.total_amount, i.paid_amount, i.remaining_amount, i.status,
            i.overdue_days, i.penalty_amount, i.paid_at, i.created_at, i.updated_at,
            l.id, l.customer_id, l.principal_amount, l.annual_interest_rate, l.payment_frequency,
            l.total_periods, l.total_amount, l.status, l.overdue_interest_rate, l.start_date, l.end_date,
            l.simulated_at, l.activated_at, l.paid_at, l.defaulted_at, l.created_at, l.updated_at
        FROM loan_installments i
        JOIN loans l ON l.id = i.loan_id
        WHERE i.status = $1 AND i.due_date < $2 AND l.deleted_at IS NULL
        ORDER BY i.due_date ASC, i.id ASC`

	rows, err := r.db.Query(ctx, query, loan.InstallmentPending, asOf)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query overdue candidates", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to query overdue installments")
	}
	defer rows.Close()

	candidates := make([]loan.OverdueCandidate, 0)
	for rows.Next() {
		var c loan.OverdueCandidate
		inst := &c.Installment
		l := &c.Loan
		err := rows.Scan(
			&inst.ID, &inst.LoanID, &inst.InstallmentNumber, &inst.DueDate, &inst.PrincipalAmount,
			&inst.InterestAmount, &inst.TotalAmount, &inst.PaidAmount, &inst.RemainingAmount, &inst.Status,
			&inst.OverdueDays, &inst.PenaltyAmount, &inst.PaidAt, &inst.CreatedAt, &inst.UpdatedAt,
			&l.ID, &l.CustomerID, &l.PrincipalAmount, &l.AnnualInterestRate, &l.PaymentFrequency,
			&l.TotalPeriods, &l.TotalAmount, &l.Status, &l.OverdueInterestRate, &l.StartDate, &l.EndDate,
			&l.SimulatedAt, &l.ActivatedAt, &l.PaidAt, &l.DefaultedAt, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan overdue candidate row", slog.Any("error", err))
			return nil, apperrors.WrapDatabaseError(err, "failed scanning overdue installment")
		}
		candidates = append(candidates, c)
	}

	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating overdue candidate rows", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "error iterating overdue installments")
	}

	logCtx.DebugContext(ctx, "Finished finding overdue candidates", slog.Int("count", len(candidates)))
	return candidates, nil
}
