package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
)

var _ repository.ApprovalSettingsRepository = (*ApprovalSettingsRepo)(nil)

// ApprovalSettingsRepo configuración de aprobación, una fila por empresa.
type ApprovalSettingsRepo struct {
	q Querier
}

// NewApprovalSettingsRepository construye el adaptador.
func NewApprovalSettingsRepository(q Querier) *ApprovalSettingsRepo {
	return &ApprovalSettingsRepo{q: q}
}

func (r *ApprovalSettingsRepo) Get(ctx context.Context, companyID string) (*entity.ApprovalSettings, error) {
	query := `
		SELECT company_id, require_approval, auto_approve_below, allowed_locations, updated_at, updated_by
		FROM approval_settings WHERE company_id = $1`
	var s entity.ApprovalSettings
	err := r.q.QueryRow(ctx, query, companyID).Scan(
		&s.CompanyID, &s.RequireApproval, &s.AutoApproveBelow, &s.AllowedLocations, &s.UpdatedAt, &s.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get approval settings: %w", err)
	}
	return &s, nil
}

func (r *ApprovalSettingsRepo) Save(ctx context.Context, s *entity.ApprovalSettings) error {
	query := `
		INSERT INTO approval_settings (company_id, require_approval, auto_approve_below, allowed_locations, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id) DO UPDATE SET
			require_approval = EXCLUDED.require_approval,
			auto_approve_below = EXCLUDED.auto_approve_below,
			allowed_locations = EXCLUDED.allowed_locations,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`
	_, err := r.q.Exec(ctx, query,
		s.CompanyID, s.RequireApproval, s.AutoApproveBelow, locationsArg(s.AllowedLocations), s.UpdatedAt, s.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("save approval settings: %w", err)
	}
	return nil
}

func (r *ApprovalSettingsRepo) CreateIfAbsent(ctx context.Context, s *entity.ApprovalSettings) (bool, error) {
	query := `
		INSERT INTO approval_settings (company_id, require_approval, auto_approve_below, allowed_locations, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id) DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		s.CompanyID, s.RequireApproval, s.AutoApproveBelow, locationsArg(s.AllowedLocations), s.UpdatedAt, s.UpdatedBy,
	)
	if err != nil {
		return false, fmt.Errorf("create approval settings: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// locationsArg evita NULL en la columna text[] NOT NULL.
func locationsArg(l []string) []string {
	if l == nil {
		return []string{}
	}
	return l
}
