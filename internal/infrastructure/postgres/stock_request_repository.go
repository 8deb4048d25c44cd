package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ops-api/internal/domain"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
)

var _ repository.StockRequestRepository = (*StockRequestRepo)(nil)

const stockRequestColumns = `id, company_id, item_code, brand, model, quantity, from_location, to_location,
	status, requested_by, requested_at, source_stock_id, approved_by, approved_at,
	rejected_by, rejected_at, rejection_reason, failure_reason, failed_at, updated_at`

// StockRequestRepo solicitudes de traslado sobre PostgreSQL (pool o tx).
type StockRequestRepo struct {
	q Querier
}

// NewStockRequestRepository construye el adaptador.
func NewStockRequestRepository(q Querier) *StockRequestRepo {
	return &StockRequestRepo{q: q}
}

func scanStockRequest(row pgx.Row) (*entity.StockRequest, error) {
	var r entity.StockRequest
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.ItemCode, &r.Brand, &r.Model, &r.Quantity, &r.FromLocation, &r.ToLocation,
		&r.Status, &r.RequestedBy, &r.RequestedAt, &r.SourceStockID, &r.ApprovedBy, &r.ApprovedAt,
		&r.RejectedBy, &r.RejectedAt, &r.RejectionReason, &r.FailureReason, &r.FailedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *StockRequestRepo) Create(ctx context.Context, req *entity.StockRequest) error {
	query := `
		INSERT INTO stock_requests (` + stockRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.CompanyID, req.ItemCode, req.Brand, req.Model, req.Quantity, req.FromLocation, req.ToLocation,
		req.Status, req.RequestedBy, req.RequestedAt, req.SourceStockID, req.ApprovedBy, req.ApprovedAt,
		req.RejectedBy, req.RejectedAt, req.RejectionReason, req.FailureReason, req.FailedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock request: %w", err)
	}
	return nil
}

func (r *StockRequestRepo) GetByID(ctx context.Context, id string) (*entity.StockRequest, error) {
	query := `SELECT ` + stockRequestColumns + ` FROM stock_requests WHERE id = $1`
	req, err := scanStockRequest(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock request: %w", err)
	}
	return req, nil
}

// UpdateStatus compare-and-set sobre status. Con dos aprobadores simultáneos solo uno ve la fila
// todavía pending; el otro recibe ErrConflict.
func (r *StockRequestRepo) UpdateStatus(ctx context.Context, req *entity.StockRequest, expectedStatus string) error {
	query := `
		UPDATE stock_requests
		SET status = $3, source_stock_id = $4, approved_by = $5, approved_at = $6,
			rejected_by = $7, rejected_at = $8, rejection_reason = $9,
			failure_reason = $10, failed_at = $11, updated_at = $12
		WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(ctx, query,
		req.ID, expectedStatus, req.Status, req.SourceStockID, req.ApprovedBy, req.ApprovedAt,
		req.RejectedBy, req.RejectedAt, req.RejectionReason,
		req.FailureReason, req.FailedAt, req.UpdatedAt,
	)
	if err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update stock request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *StockRequestRepo) ListByStatus(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.StockRequest, error) {
	query := `SELECT ` + stockRequestColumns + ` FROM stock_requests
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY requested_at ASC, id ASC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, status, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list stock requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRequest
	for rows.Next() {
		req, err := scanStockRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock request: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

func (r *StockRequestRepo) CountByStatus(ctx context.Context, companyID string) (map[string]int, error) {
	rows, err := r.q.Query(ctx,
		`SELECT status, COUNT(*) FROM stock_requests WHERE company_id = $1 GROUP BY status`, companyID)
	if err != nil {
		return nil, fmt.Errorf("count stock requests: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
