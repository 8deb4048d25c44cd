package transfer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/domain"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
)

func TestListRequests_MarcaElegiblesYCuenta(t *testing.T) {
	f := newFixture(t, defaultSettings(), nil, nil)
	eligible := f.seedRequest(t, "A", 5, entity.LocationLilongwe, entity.LocationBlantyre)
	f.seedRequest(t, "A", 1, entity.LocationLilongwe, entity.LocationBlantyre)
	f.seedRequest(t, "A", 40, entity.LocationLilongwe, entity.LocationBlantyre)

	out, err := f.history.ListRequests(context.Background(), testCompanyID, entity.RequestStatusPending, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2, "la página respeta el límite")
	assert.Equal(t, 1, out.EligibleCount, "el conteo cubre todas las pendientes")
	assert.Equal(t, eligible.ID, out.Items[0].ID)
	assert.True(t, out.Items[0].AutoApprovable)
	assert.False(t, out.Items[1].AutoApprovable)

	_, err = f.history.ListRequests(context.Background(), testCompanyID, "abierta", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListHistory_MasRecientePrimeroYFiltros(t *testing.T) {
	f := newFixture(t, defaultSettings(), nil, nil)
	f.seedStock(t, "A", entity.LocationLilongwe, 20)
	first := f.seedRequest(t, "A", 3, entity.LocationLilongwe, entity.LocationBlantyre)
	second := f.seedRequest(t, "A", 4, entity.LocationLilongwe, entity.LocationZomba)
	third := f.seedRequest(t, "A", 5, entity.LocationLilongwe, entity.LocationMzuzu)

	ctx := context.Background()
	_, err := f.executor.ApproveTransfer(ctx, testCompanyID, first.ID, approver)
	require.NoError(t, err)
	_, err = f.executor.RejectTransfer(ctx, testCompanyID, second.ID, "no", approver)
	require.NoError(t, err)
	_, err = f.executor.ApproveTransfer(ctx, testCompanyID, third.ID, approver)
	require.NoError(t, err)

	out, err := f.history.ListHistory(ctx, testCompanyID, dto.TransferHistoryQuery{})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	for i := 1; i < len(out.Items); i++ {
		assert.False(t, out.Items[i].TransferredAt.After(out.Items[i-1].TransferredAt), "orden descendente")
	}

	out, err = f.history.ListHistory(ctx, testCompanyID, dto.TransferHistoryQuery{Type: entity.TransferTypeRejected})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, second.ID, out.Items[0].RequestID)

	out, err = f.history.ListHistory(ctx, testCompanyID, dto.TransferHistoryQuery{Location: "mzuzu"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, third.ID, out.Items[0].RequestID)

	_, err = f.history.ListHistory(ctx, testCompanyID, dto.TransferHistoryQuery{Type: "otro"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummary_ConteosPorEstado(t *testing.T) {
	f := newFixture(t, defaultSettings(), nil, nil)
	f.seedStock(t, "A", entity.LocationLilongwe, 3)
	ok := f.seedRequest(t, "A", 2, entity.LocationLilongwe, entity.LocationBlantyre)
	short := f.seedRequest(t, "A", 9, entity.LocationLilongwe, entity.LocationBlantyre)
	f.seedRequest(t, "A", 6, entity.LocationLilongwe, entity.LocationBlantyre)
	f.seedRequest(t, "A", 30, entity.LocationLilongwe, entity.LocationBlantyre)

	ctx := context.Background()
	_, err := f.executor.ApproveTransfer(ctx, testCompanyID, ok.ID, approver)
	require.NoError(t, err)
	_, err = f.executor.ApproveTransfer(ctx, testCompanyID, short.ID, approver)
	require.NoError(t, err)

	sum, err := f.history.Summary(ctx, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Pending)
	assert.Equal(t, 1, sum.EligibleForAuto)
	assert.Equal(t, 1, sum.Approved)
	assert.Equal(t, 1, sum.Rejected)
	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, 10, sum.AutoApproveBelow)
}

func TestGetRequest_OtraEmpresa_NotFound(t *testing.T) {
	f := newFixture(t, defaultSettings(), nil, nil)
	req := f.seedRequest(t, "A", 2, entity.LocationLilongwe, entity.LocationBlantyre)

	got, err := f.history.GetRequest(context.Background(), testCompanyID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)

	_, err = f.history.GetRequest(context.Background(), "otra", req.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
