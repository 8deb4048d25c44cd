package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ops-api/internal/domain"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

const stockItemColumns = `id, company_id, item_code, brand, model, category, quantity,
	cost_price, retail_price, wholesale_price, min_stock_level, reorder_quantity,
	location, is_active, version, last_transfer_in, last_transfer_out,
	transferred_from, original_stock_id, added_by, created_at, updated_at`

// StockItemRepo implementación de StockItemRepository sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var s entity.StockItem
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.ItemCode, &s.Brand, &s.Model, &s.Category, &s.Quantity,
		&s.CostPrice, &s.RetailPrice, &s.WholesalePrice, &s.MinStockLevel, &s.ReorderQuantity,
		&s.Location, &s.IsActive, &s.Version, &s.LastTransferIn, &s.LastTransferOut,
		&s.TransferredFrom, &s.OriginalStockID, &s.AddedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserta la línea. El índice único parcial (company_id, item_code, location) WHERE is_active
// garantiza una sola línea activa por clave.
func (r *StockItemRepo) Create(ctx context.Context, item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (` + stockItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.CompanyID, item.ItemCode, item.Brand, item.Model, item.Category, item.Quantity,
		item.CostPrice, item.RetailPrice, item.WholesalePrice, item.MinStockLevel, item.ReorderQuantity,
		item.Location, item.IsActive, item.Version, item.LastTransferIn, item.LastTransferOut,
		item.TransferredFrom, item.OriginalStockID, item.AddedBy, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

func (r *StockItemRepo) GetByID(ctx context.Context, id string) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items WHERE id = $1`
	s, err := scanStockItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return s, nil
}

func (r *StockItemRepo) FindActive(ctx context.Context, companyID, itemCode, location string) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items
		WHERE company_id = $1 AND item_code = $2 AND location = $3 AND is_active`
	s, err := scanStockItem(r.q.QueryRow(ctx, query, companyID, itemCode, location))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active stock item: %w", err)
	}
	return s, nil
}

// UpdateQuantity compare-and-set sobre version: 0 filas afectadas = otro escritor llegó antes.
// Bajo READ COMMITTED un UPDATE bloqueado por otra tx re-evalúa el WHERE contra la fila confirmada,
// así que el perdedor ve 0 filas y no pisa la cantidad.
func (r *StockItemRepo) UpdateQuantity(ctx context.Context, item *entity.StockItem, expectedVersion int64) error {
	query := `
		UPDATE stock_items
		SET quantity = $3, last_transfer_in = $4, last_transfer_out = $5, updated_at = $6, version = version + 1
		WHERE id = $1 AND version = $2`
	tag, err := r.q.Exec(ctx, query,
		item.ID, expectedVersion, item.Quantity, item.LastTransferIn, item.LastTransferOut, item.UpdatedAt,
	)
	if err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update stock quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	item.Version = expectedVersion + 1
	return nil
}

func (r *StockItemRepo) List(ctx context.Context, f repository.StockItemFilter) ([]*entity.StockItem, error) {
	conds := []string{"company_id = $1"}
	args := []any{f.CompanyID}
	if f.OnlyActive {
		conds = append(conds, "is_active")
	}
	if f.Location != "" {
		args = append(args, f.Location)
		conds = append(conds, fmt.Sprintf("location = $%d", len(args)))
	}
	if f.ItemCode != "" {
		args = append(args, f.ItemCode)
		conds = append(conds, fmt.Sprintf("item_code = $%d", len(args)))
	}
	args = append(args, limitArg(f.Limit), f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM stock_items WHERE %s ORDER BY item_code, location LIMIT $%d OFFSET $%d`,
		stockItemColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockItem
	for rows.Next() {
		s, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
