package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/retail-ops-api/internal/application/settings"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
)

var _ settings.Cache = (*SettingsCache)(nil)

const settingsKeyPrefix = "approval_settings:"

// SettingsCache guarda la configuración de aprobación por empresa como JSON con TTL.
type SettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSettingsCache construye la caché. ttl <= 0 significa sin expiración.
func NewSettingsCache(client *redis.Client, ttl time.Duration) *SettingsCache {
	return &SettingsCache{client: client, ttl: ttl}
}

type cachedSettings struct {
	CompanyID        string    `json:"company_id"`
	RequireApproval  bool      `json:"require_approval"`
	AutoApproveBelow int       `json:"auto_approve_below"`
	AllowedLocations []string  `json:"allowed_locations"`
	UpdatedAt        time.Time `json:"updated_at"`
	UpdatedBy        string    `json:"updated_by"`
}

func settingsKey(companyID string) string {
	return settingsKeyPrefix + companyID
}

// Get devuelve nil, nil si no hay entrada.
func (c *SettingsCache) Get(ctx context.Context, companyID string) (*entity.ApprovalSettings, error) {
	raw, err := c.client.Get(ctx, settingsKey(companyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings cache: %w", err)
	}
	var cs cachedSettings
	if err := json.Unmarshal(raw, &cs); err != nil {
		// Entrada corrupta: se trata como ausente y se elimina.
		_ = c.client.Del(ctx, settingsKey(companyID)).Err()
		return nil, nil
	}
	return &entity.ApprovalSettings{
		CompanyID:        cs.CompanyID,
		RequireApproval:  cs.RequireApproval,
		AutoApproveBelow: cs.AutoApproveBelow,
		AllowedLocations: cs.AllowedLocations,
		UpdatedAt:        cs.UpdatedAt,
		UpdatedBy:        cs.UpdatedBy,
	}, nil
}

func (c *SettingsCache) Set(ctx context.Context, s *entity.ApprovalSettings) error {
	raw, err := json.Marshal(cachedSettings{
		CompanyID:        s.CompanyID,
		RequireApproval:  s.RequireApproval,
		AutoApproveBelow: s.AutoApproveBelow,
		AllowedLocations: s.AllowedLocations,
		UpdatedAt:        s.UpdatedAt,
		UpdatedBy:        s.UpdatedBy,
	})
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, settingsKey(s.CompanyID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set settings cache: %w", err)
	}
	return nil
}

func (c *SettingsCache) Delete(ctx context.Context, companyID string) error {
	if err := c.client.Del(ctx, settingsKey(companyID)).Err(); err != nil {
		return fmt.Errorf("delete settings cache: %w", err)
	}
	return nil
}
