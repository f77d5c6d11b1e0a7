package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReportingRepository struct {
	BaseRepository
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// newPgxReportingRepository creates a new repository for the aggregate reports.
func newPgxReportingRepository(pool *pgxpool.Pool) *PgxReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

func (r *PgxReportingRepository) GetEmployeeConsumptionData(ctx context.Context, companyID string, period domain.Period) ([]domain.EmployeeConsumptionRow, error) {
	query := `
		SELECT c.employee_id, COALESCE(e.name, ''), COUNT(*), COALESCE(SUM(c.amount), 0)
		FROM consumptions c
		LEFT JOIN employees e ON e.employee_id = c.employee_id
		WHERE c.company_id = $1 AND c.reversed = FALSE
		  AND c.consumed_at >= $2 AND c.consumed_at <= $3
		GROUP BY c.employee_id, e.name
		ORDER BY SUM(c.amount) DESC;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, period.From, period.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee consumption report: %w", err)
	}
	defer rows.Close()

	result := make([]domain.EmployeeConsumptionRow, 0)
	for rows.Next() {
		var row domain.EmployeeConsumptionRow
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeName, &row.Count, &row.Total); err != nil {
			return nil, fmt.Errorf("failed to scan employee consumption row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *PgxReportingRepository) GetProviderSettlementData(ctx context.Context, period domain.Period) ([]domain.ProviderSettlementRow, error) {
	// Commission at the provider's current rate. Issued payables keep their
	// own frozen rate; this projection is informational.
	query := `
		SELECT c.provider_id, COALESCE(p.name, ''), COUNT(*), COALESCE(SUM(c.amount), 0),
		       ROUND(COALESCE(SUM(c.amount), 0) * COALESCE(p.commission_rate, 0), 2)
		FROM consumptions c
		LEFT JOIN providers p ON p.provider_id = c.provider_id
		WHERE c.reversed = FALSE AND c.consumed_at >= $1 AND c.consumed_at <= $2
		GROUP BY c.provider_id, p.name, p.commission_rate
		ORDER BY SUM(c.amount) DESC;
	`
	rows, err := r.Pool.Query(ctx, query, period.From, period.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query provider settlement report: %w", err)
	}
	defer rows.Close()

	result := make([]domain.ProviderSettlementRow, 0)
	for rows.Next() {
		var row domain.ProviderSettlementRow
		if err := rows.Scan(&row.ProviderID, &row.ProviderName, &row.Count, &row.Gross, &row.Commission); err != nil {
			return nil, fmt.Errorf("failed to scan provider settlement row: %w", err)
		}
		row.Net = row.Gross.Sub(row.Commission)
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *PgxReportingRepository) GetCompanyExposureData(ctx context.Context, companyID string) (*domain.CompanyExposureReport, error) {
	query := `
		SELECT co.company_id, co.name, co.credit_limit,
		       COALESCE((SELECT SUM(allocated_limit) FROM employees WHERE company_id = co.company_id AND is_active = TRUE), 0),
		       COALESCE((SELECT SUM(amount) FROM consumptions WHERE company_id = co.company_id AND reversed = FALSE AND receivable_id IS NULL), 0),
		       COALESCE((SELECT SUM(total - paid) FROM receivable_documents WHERE company_id = co.company_id AND status IN ('PENDING', 'PARTIAL')), 0),
		       COALESCE((SELECT SUM(original_amount - paid) FROM refinancings WHERE company_id = co.company_id AND status NOT IN ('PAID', 'WRITTEN_OFF')), 0)
		FROM companies co
		WHERE co.company_id = $1;
	`
	var report domain.CompanyExposureReport
	err := r.Pool.QueryRow(ctx, query, companyID).Scan(
		&report.CompanyID,
		&report.CompanyName,
		&report.CreditLimit,
		&report.TotalAllocated,
		&report.UnbilledConsumed,
		&report.OpenReceivables,
		&report.OpenRefinancings,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
		}
		return nil, fmt.Errorf("failed to query exposure report for company %s: %w", companyID, err)
	}
	report.Unlimited = report.CreditLimit.IsZero()
	return &report, nil
}

func (r *PgxReportingRepository) GetReceivableAgeingData(ctx context.Context, asOf time.Time) ([]domain.DocumentAgeingRow, error) {
	query := `
		SELECT bucket, COUNT(doc_id), COALESCE(SUM(pending), 0)
		FROM (
			SELECT receivable_id AS doc_id, total - paid AS pending,
			       CASE
			         WHEN due_at >= $1 THEN 'current'
			         WHEN due_at >= $1 - INTERVAL '30 days' THEN '1-30'
			         WHEN due_at >= $1 - INTERVAL '60 days' THEN '31-60'
			         WHEN due_at >= $1 - INTERVAL '90 days' THEN '61-90'
			         ELSE '90+'
			       END AS bucket
			FROM receivable_documents
			WHERE status IN ('PENDING', 'PARTIAL')
		) aged
		GROUP BY bucket;
	`
	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query receivable ageing report: %w", err)
	}
	defer rows.Close()

	byBucket := make(map[string]domain.DocumentAgeingRow)
	for rows.Next() {
		var row domain.DocumentAgeingRow
		if err := rows.Scan(&row.Bucket, &row.Count, &row.Pending); err != nil {
			return nil, fmt.Errorf("failed to scan ageing row: %w", err)
		}
		byBucket[row.Bucket] = row
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Emit every bucket in fixed order, zero-filled, so the console table
	// shape never depends on the data.
	ordered := []string{"current", "1-30", "31-60", "61-90", "90+"}
	result := make([]domain.DocumentAgeingRow, 0, len(ordered))
	for _, bucket := range ordered {
		row, ok := byBucket[bucket]
		if !ok {
			row = domain.DocumentAgeingRow{Bucket: bucket}
		}
		result = append(result, row)
	}
	return result, nil
}
