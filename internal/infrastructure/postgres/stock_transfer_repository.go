package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

const stockTransferColumns = `id, company_id, request_id, item_code, brand, model, quantity,
	from_location, to_location, type, source_stock_id, source_stock_before, source_stock_after,
	destination_stock_id, destination_stock_before, destination_stock_after, destination_created,
	reason, transferred_by, transferred_at`

// StockTransferRepo historial append-only sobre PostgreSQL: solo INSERT y SELECT.
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador.
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (` + stockTransferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.CompanyID, t.RequestID, t.ItemCode, t.Brand, t.Model, t.Quantity,
		t.FromLocation, t.ToLocation, t.Type, t.SourceStockID, t.SourceStockBefore, t.SourceStockAfter,
		t.DestinationStockID, t.DestinationStockBefore, t.DestinationStockAfter, t.DestinationCreated,
		t.Reason, t.TransferredBy, t.TransferredAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock transfer: %w", err)
	}
	return nil
}

func (r *StockTransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, error) {
	conds := []string{"company_id = $1"}
	args := []any{f.CompanyID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.Location != "" {
		args = append(args, f.Location)
		conds = append(conds, fmt.Sprintf("(from_location = $%d OR to_location = $%d)", len(args), len(args)))
	}
	if f.ItemCode != "" {
		add("item_code = $%d", f.ItemCode)
	}
	if f.RequestID != "" {
		add("request_id = $%d", f.RequestID)
	}
	if f.From != nil {
		add("transferred_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("transferred_at <= $%d", *f.To)
	}
	args = append(args, limitArg(f.Limit), f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM stock_transfers WHERE %s
		ORDER BY transferred_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		stockTransferColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockTransfer
	for rows.Next() {
		var t entity.StockTransfer
		if err := rows.Scan(
			&t.ID, &t.CompanyID, &t.RequestID, &t.ItemCode, &t.Brand, &t.Model, &t.Quantity,
			&t.FromLocation, &t.ToLocation, &t.Type, &t.SourceStockID, &t.SourceStockBefore, &t.SourceStockAfter,
			&t.DestinationStockID, &t.DestinationStockBefore, &t.DestinationStockAfter, &t.DestinationCreated,
			&t.Reason, &t.TransferredBy, &t.TransferredAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock transfer: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
