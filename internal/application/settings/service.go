// Package settings administra la configuración de aprobación de traslados por empresa:
// valores por defecto, lectura con caché, guardado explícito y recarga.
package settings

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/domain"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
)

// Cache caché opcional de la configuración (Get devuelve nil, nil si no hay entrada).
type Cache interface {
	Get(ctx context.Context, companyID string) (*entity.ApprovalSettings, error)
	Set(ctx context.Context, settings *entity.ApprovalSettings) error
	Delete(ctx context.Context, companyID string) error
}

// Defaults valores usados mientras la empresa no guardó su configuración.
type Defaults struct {
	RequireApproval  bool
	AutoApproveBelow int
	AllowedLocations []string
}

// Service implementa transfer.SettingsProvider.
type Service struct {
	repo     repository.ApprovalSettingsRepository
	cache    Cache
	defaults Defaults
	log      zerolog.Logger
	now      func() time.Time
}

// NewService construye el servicio. cache puede ser nil.
func NewService(repo repository.ApprovalSettingsRepository, cache Cache, defaults Defaults, log zerolog.Logger) *Service {
	return &Service{repo: repo, cache: cache, defaults: defaults, log: log, now: time.Now}
}

func (s *Service) defaultsFor(companyID string) entity.ApprovalSettings {
	return entity.ApprovalSettings{
		CompanyID:        companyID,
		RequireApproval:  s.defaults.RequireApproval,
		AutoApproveBelow: s.defaults.AutoApproveBelow,
		AllowedLocations: normalizeLocations(s.defaults.AllowedLocations),
	}
}

// Current devuelve la configuración vigente: caché, luego BD, luego valores por defecto.
// Un error de caché no es fatal.
func (s *Service) Current(ctx context.Context, companyID string) (entity.ApprovalSettings, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, companyID)
		if err != nil {
			s.log.Warn().Err(err).Str("company_id", companyID).Msg("caché de configuración no disponible")
		} else if cached != nil {
			return *cached, nil
		}
	}
	stored, err := s.repo.Get(ctx, companyID)
	if err != nil {
		return entity.ApprovalSettings{}, err
	}
	if stored == nil {
		return s.defaultsFor(companyID), nil
	}
	s.store(ctx, stored)
	return *stored, nil
}

// Get igual que Current pero en forma de DTO.
func (s *Service) Get(ctx context.Context, companyID string) (*dto.ApprovalSettingsResponse, error) {
	cur, err := s.Current(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return toResponse(cur), nil
}

// EnsureDefaults crea la configuración de la empresa con los valores por defecto si no existe.
func (s *Service) EnsureDefaults(ctx context.Context, companyID string, actor entity.Principal) (bool, error) {
	def := s.defaultsFor(companyID)
	def.UpdatedAt = s.now()
	def.UpdatedBy = actor.ID
	created, err := s.repo.CreateIfAbsent(ctx, &def)
	if err != nil {
		return false, err
	}
	if created {
		s.log.Info().Str("company_id", companyID).Str("by", actor.ID).Msg("configuración de aprobación inicializada")
		s.invalidate(ctx, companyID)
	}
	return created, nil
}

// Save aplica los campos presentes en la entrada sobre la configuración vigente y la persiste.
func (s *Service) Save(ctx context.Context, companyID string, in dto.UpdateApprovalSettingsRequest, actor entity.Principal) (*dto.ApprovalSettingsResponse, error) {
	cur, err := s.Current(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if in.RequireApproval != nil {
		cur.RequireApproval = *in.RequireApproval
	}
	if in.AutoApproveBelow != nil {
		if *in.AutoApproveBelow < 0 {
			return nil, domain.ErrInvalidInput
		}
		cur.AutoApproveBelow = *in.AutoApproveBelow
	}
	if in.AllowedLocations != nil {
		locs := normalizeLocations(in.AllowedLocations)
		if len(locs) == 0 {
			return nil, domain.ErrInvalidInput
		}
		cur.AllowedLocations = locs
	}
	cur.CompanyID = companyID
	cur.UpdatedAt = s.now()
	cur.UpdatedBy = actor.ID
	if err := s.repo.Save(ctx, &cur); err != nil {
		return nil, err
	}
	s.invalidate(ctx, companyID)
	return toResponse(cur), nil
}

// Reload descarta la caché y vuelve a leer desde la BD.
func (s *Service) Reload(ctx context.Context, companyID string) (*dto.ApprovalSettingsResponse, error) {
	s.invalidate(ctx, companyID)
	return s.Get(ctx, companyID)
}

func (s *Service) store(ctx context.Context, cur *entity.ApprovalSettings) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cur); err != nil {
		s.log.Warn().Err(err).Str("company_id", cur.CompanyID).Msg("no se pudo cachear la configuración")
	}
}

func (s *Service) invalidate(ctx context.Context, companyID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, companyID); err != nil {
		s.log.Warn().Err(err).Str("company_id", companyID).Msg("no se pudo invalidar la caché de configuración")
	}
}

// normalizeLocations normaliza y elimina duplicados conservando el orden.
func normalizeLocations(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, l := range in {
		n := entity.NormalizeLocation(l)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func toResponse(s entity.ApprovalSettings) *dto.ApprovalSettingsResponse {
	return &dto.ApprovalSettingsResponse{
		RequireApproval:  s.RequireApproval,
		AutoApproveBelow: s.AutoApproveBelow,
		AllowedLocations: s.Locations(),
		UpdatedAt:        s.UpdatedAt,
		UpdatedBy:        s.UpdatedBy,
	}
}
