package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/domain"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
	"github.com/jhoicas/retail-ops-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// SettingsBootstrapper crea la configuración de aprobación por defecto de una empresa.
type SettingsBootstrapper interface {
	EnsureDefaults(ctx context.Context, companyID string, actor entity.Principal) (bool, error)
}

// BootstrapAdmin datos del superadmin inicial.
type BootstrapAdmin struct {
	CompanyID string
	Email     string
	Password  string
	Name      string
}

// AuthUseCase casos de uso de autenticación.
type AuthUseCase struct {
	userRepo repository.UserRepository
	settings SettingsBootstrapper
	jwtCfg   JWTConfig
	log      zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth. settings puede ser nil.
func NewAuthUseCase(userRepo repository.UserRepository, settings SettingsBootstrapper, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, settings: settings, jwtCfg: jwtCfg, log: log}
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// En el primer login de un superadmin se crea la configuración de aprobación de su empresa.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Subject{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
		Name:      user.Name,
		Email:     user.Email,
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}

	if user.Role == entity.RoleSuperAdmin && uc.settings != nil {
		created, err := uc.settings.EnsureDefaults(ctx, user.CompanyID, user.Principal())
		if err != nil {
			// el login no depende de la configuración
			uc.log.Error().Err(err).Str("company_id", user.CompanyID).Msg("no se pudo crear la configuración de aprobación")
		} else if created {
			uc.log.Info().Str("company_id", user.CompanyID).Msg("configuración de aprobación creada")
		}
	}

	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// EnsureAdmin crea el superadmin si no existe un usuario con ese email. Devuelve true si lo creó.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, in BootstrapAdmin) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" || in.CompanyID == "" {
		return false, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	name := in.Name
	if name == "" {
		name = email
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    in.CompanyID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         entity.RoleSuperAdmin,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
