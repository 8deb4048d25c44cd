package settings_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/application/settings"
	"github.com/jhoicas/retail-ops-api/internal/domain"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/infrastructure/cache"
	"github.com/jhoicas/retail-ops-api/internal/infrastructure/memory"
)

const companyID = "00000000-0000-0000-0000-000000000002"

var admin = entity.Principal{ID: "u-super", Name: "Super", Email: "super@example.com"}

var testDefaults = settings.Defaults{
	RequireApproval:  true,
	AutoApproveBelow: 10,
	AllowedLocations: []string{"lilongwe", "Blantyre", "Mzuzu", "Zomba"},
}

func newService(t *testing.T) (*settings.Service, *memory.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := memory.NewStore()
	svc := settings.NewService(store.ApprovalSettings(), cache.NewSettingsCache(client, time.Minute), testDefaults, zerolog.Nop())
	return svc, store, mr
}

func TestCurrent_SinConfiguracion_DevuelveDefaults(t *testing.T) {
	svc, store, _ := newService(t)
	cur, err := svc.Current(context.Background(), companyID)
	require.NoError(t, err)
	assert.True(t, cur.RequireApproval)
	assert.Equal(t, 10, cur.AutoApproveBelow)
	assert.Equal(t, []string{"Lilongwe", "Blantyre", "Mzuzu", "Zomba"}, cur.AllowedLocations)

	stored, err := store.ApprovalSettings().Get(context.Background(), companyID)
	require.NoError(t, err)
	assert.Nil(t, stored, "leer no debe persistir los defaults")
}

func TestEnsureDefaults_SoloLaPrimeraVez(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	created, err := svc.EnsureDefaults(ctx, companyID, admin)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureDefaults(ctx, companyID, admin)
	require.NoError(t, err)
	assert.False(t, created, "la segunda vez no debe sobrescribir")

	stored, err := store.ApprovalSettings().Get(ctx, companyID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, admin.ID, stored.UpdatedBy)
}

func TestSave_ActualizaEInvalidaCache(t *testing.T) {
	svc, _, mr := newService(t)
	ctx := context.Background()

	// Llena la caché.
	_, err := svc.Current(ctx, companyID)
	require.NoError(t, err)

	threshold := 4
	requireApproval := false
	out, err := svc.Save(ctx, companyID, dto.UpdateApprovalSettingsRequest{
		RequireApproval:  &requireApproval,
		AutoApproveBelow: &threshold,
		AllowedLocations: []string{" zomba ", "Zomba", "mzuzu"},
	}, admin)
	require.NoError(t, err)
	assert.False(t, out.RequireApproval)
	assert.Equal(t, 4, out.AutoApproveBelow)
	assert.Equal(t, []string{"Zomba", "Mzuzu"}, out.AllowedLocations)

	cur, err := svc.Current(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 4, cur.AutoApproveBelow, "la lectura posterior ve el valor guardado")
	assert.True(t, mr.Exists("approval_settings:"+companyID))
}

func TestSave_ValoresInvalidos(t *testing.T) {
	svc, _, _ := newService(t)
	negative := -1
	_, err := svc.Save(context.Background(), companyID, dto.UpdateApprovalSettingsRequest{AutoApproveBelow: &negative}, admin)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Save(context.Background(), companyID, dto.UpdateApprovalSettingsRequest{AllowedLocations: []string{" "}}, admin)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Un cambio hecho directo en la BD se ve solo después de Reload.
func TestReload_DescartaCache(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	_, err := svc.EnsureDefaults(ctx, companyID, admin)
	require.NoError(t, err)
	_, err = svc.Current(ctx, companyID)
	require.NoError(t, err)

	require.NoError(t, store.ApprovalSettings().Save(ctx, &entity.ApprovalSettings{
		CompanyID:        companyID,
		RequireApproval:  true,
		AutoApproveBelow: 25,
	}))
	cur, err := svc.Current(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 10, cur.AutoApproveBelow, "todavía en caché")

	out, err := svc.Reload(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 25, out.AutoApproveBelow)
	assert.Equal(t, entity.DefaultLocations, out.AllowedLocations)
}

func TestCurrent_RedisCaido_UsaBD(t *testing.T) {
	svc, _, mr := newService(t)
	ctx := context.Background()
	_, err := svc.EnsureDefaults(ctx, companyID, admin)
	require.NoError(t, err)

	mr.Close()
	cur, err := svc.Current(ctx, companyID)
	require.NoError(t, err, "un error de caché no es fatal")
	assert.Equal(t, 10, cur.AutoApproveBelow)
}
