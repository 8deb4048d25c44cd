// Package memory implementa los repositorios en memoria con commit optimista.
// Se usa en pruebas y con STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/retail-ops-api/internal/application/transfer"
	"github.com/jhoicas/retail-ops-api/internal/domain"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
)

var _ transfer.TxRunner = (*Store)(nil)

type stockKey struct {
	companyID string
	itemCode  string
	location  string
}

func keyOf(i *entity.StockItem) stockKey {
	return stockKey{companyID: i.CompanyID, itemCode: i.ItemCode, location: i.Location}
}

// Store datos compartidos por todos los repositorios en memoria.
type Store struct {
	mu        sync.RWMutex
	items     map[string]*entity.StockItem
	active    map[stockKey]string // clave compuesta -> id de la línea activa
	requests  map[string]*entity.StockRequest
	reqOrder  []string
	transfers []*entity.StockTransfer
	settings  map[string]*entity.ApprovalSettings
	users     map[string]*entity.User
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		items:    make(map[string]*entity.StockItem),
		active:   make(map[stockKey]string),
		requests: make(map[string]*entity.StockRequest),
		settings: make(map[string]*entity.ApprovalSettings),
		users:    make(map[string]*entity.User),
	}
}

// Run ejecuta fn sobre una vista aislada. Las escrituras se validan (versiones, estados, unicidad)
// y aplican juntas al final; si fn falla o la validación no pasa no se aplica nada.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockItemRepository,
	requestRepo repository.StockRequestRepository,
	transferRepo repository.StockTransferRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newTxn(s)
	if err := fn(&stockItemRepo{tx: tx}, &stockRequestRepo{tx: tx}, &stockTransferRepo{tx: tx}); err != nil {
		return err
	}
	return tx.commit()
}

// StockItems repositorio de stock fuera de transacción (cada llamada confirma sola).
func (s *Store) StockItems() repository.StockItemRepository { return &stockItemRepo{store: s} }

// StockRequests repositorio de solicitudes fuera de transacción.
func (s *Store) StockRequests() repository.StockRequestRepository {
	return &stockRequestRepo{store: s}
}

// StockTransfers repositorio del historial fuera de transacción.
func (s *Store) StockTransfers() repository.StockTransferRepository {
	return &stockTransferRepo{store: s}
}

// ApprovalSettings repositorio de configuración.
func (s *Store) ApprovalSettings() repository.ApprovalSettingsRepository {
	return &approvalSettingsRepo{store: s}
}

// Users repositorio de usuarios.
func (s *Store) Users() repository.UserRepository { return &userRepo{store: s} }

// autoCommit ejecuta una operación aislada como su propia transacción.
func (s *Store) autoCommit(ctx context.Context, fn func(tx *txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newTxn(s)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

// txn escrituras pendientes y las precondiciones a validar al confirmar.
type txn struct {
	s *Store

	items        map[string]*entity.StockItem
	itemVersions map[string]int64 // versión leída de líneas existentes
	newItems     []string

	requests    map[string]*entity.StockRequest
	reqStatuses map[string]string // estado leído de solicitudes existentes
	newRequests []string

	transfers []*entity.StockTransfer
}

func newTxn(s *Store) *txn {
	return &txn{
		s:            s,
		items:        make(map[string]*entity.StockItem),
		itemVersions: make(map[string]int64),
		requests:     make(map[string]*entity.StockRequest),
		reqStatuses:  make(map[string]string),
	}
}

func (t *txn) getItem(id string) *entity.StockItem {
	if it, ok := t.items[id]; ok {
		return cloneItem(it)
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if it, ok := t.s.items[id]; ok {
		return cloneItem(it)
	}
	return nil
}

func (t *txn) findActive(k stockKey) *entity.StockItem {
	for _, it := range t.items {
		if it.IsActive && keyOf(it) == k {
			return cloneItem(it)
		}
	}
	t.s.mu.RLock()
	id, ok := t.s.active[k]
	t.s.mu.RUnlock()
	if !ok {
		return nil
	}
	it := t.getItem(id)
	if it == nil || !it.IsActive || keyOf(it) != k {
		return nil
	}
	return it
}

func (t *txn) getRequest(id string) *entity.StockRequest {
	if r, ok := t.requests[id]; ok {
		return cloneRequest(r)
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if r, ok := t.s.requests[id]; ok {
		return cloneRequest(r)
	}
	return nil
}

func (t *txn) isNewItem(id string) bool {
	for _, n := range t.newItems {
		if n == id {
			return true
		}
	}
	return false
}

func (t *txn) isNewRequest(id string) bool {
	for _, n := range t.newRequests {
		if n == id {
			return true
		}
	}
	return false
}

// commit valida las precondiciones bajo el lock de escritura y aplica todo o nada.
func (t *txn) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, v := range t.itemVersions {
		cur, ok := s.items[id]
		if !ok || cur.Version != v {
			return domain.ErrConflict
		}
	}
	for _, id := range t.newItems {
		if _, ok := s.items[id]; ok {
			return domain.ErrDuplicate
		}
		it := t.items[id]
		if it.IsActive {
			if _, ok := s.active[keyOf(it)]; ok {
				return domain.ErrDuplicate
			}
		}
	}
	for id, st := range t.reqStatuses {
		cur, ok := s.requests[id]
		if !ok || cur.Status != st {
			return domain.ErrConflict
		}
	}
	for _, id := range t.newRequests {
		if _, ok := s.requests[id]; ok {
			return domain.ErrDuplicate
		}
	}

	for id, it := range t.items {
		if prev, ok := s.items[id]; ok && prev.IsActive && !it.IsActive {
			delete(s.active, keyOf(prev))
		}
		s.items[id] = it
		if it.IsActive {
			s.active[keyOf(it)] = id
		}
	}
	for id, r := range t.requests {
		s.requests[id] = r
	}
	s.reqOrder = append(s.reqOrder, t.newRequests...)
	s.transfers = append(s.transfers, t.transfers...)
	return nil
}

// stockItemRepo implementa repository.StockItemRepository sobre una txn o en auto-commit.
type stockItemRepo struct {
	tx    *txn
	store *Store
}

var _ repository.StockItemRepository = (*stockItemRepo)(nil)

func (r *stockItemRepo) run(ctx context.Context, fn func(tx *txn) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return r.store.autoCommit(ctx, fn)
}

func (r *stockItemRepo) Create(ctx context.Context, item *entity.StockItem) error {
	return r.run(ctx, func(tx *txn) error {
		if tx.getItem(item.ID) != nil {
			return domain.ErrDuplicate
		}
		if item.IsActive && tx.findActive(keyOf(item)) != nil {
			return domain.ErrDuplicate
		}
		tx.items[item.ID] = cloneItem(item)
		tx.newItems = append(tx.newItems, item.ID)
		return nil
	})
}

func (r *stockItemRepo) GetByID(ctx context.Context, id string) (*entity.StockItem, error) {
	var out *entity.StockItem
	err := r.run(ctx, func(tx *txn) error {
		out = tx.getItem(id)
		return nil
	})
	return out, err
}

func (r *stockItemRepo) FindActive(ctx context.Context, companyID, itemCode, location string) (*entity.StockItem, error) {
	var out *entity.StockItem
	err := r.run(ctx, func(tx *txn) error {
		out = tx.findActive(stockKey{companyID: companyID, itemCode: itemCode, location: location})
		return nil
	})
	return out, err
}

func (r *stockItemRepo) UpdateQuantity(ctx context.Context, item *entity.StockItem, expectedVersion int64) error {
	return r.run(ctx, func(tx *txn) error {
		cur := tx.getItem(item.ID)
		if cur == nil {
			return domain.ErrNotFound
		}
		if cur.Version != expectedVersion {
			return domain.ErrConflict
		}
		if _, staged := tx.items[item.ID]; !staged && !tx.isNewItem(item.ID) {
			tx.itemVersions[item.ID] = expectedVersion
		}
		cur.Quantity = item.Quantity
		cur.LastTransferIn = cloneStamp(item.LastTransferIn)
		cur.LastTransferOut = cloneStamp(item.LastTransferOut)
		cur.UpdatedAt = item.UpdatedAt
		cur.Version = expectedVersion + 1
		tx.items[item.ID] = cur
		item.Version = cur.Version
		return nil
	})
}

func (r *stockItemRepo) List(ctx context.Context, filter repository.StockItemFilter) ([]*entity.StockItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	if s == nil {
		s = r.tx.s
	}
	s.mu.RLock()
	out := make([]*entity.StockItem, 0)
	for _, it := range s.items {
		if it.CompanyID != filter.CompanyID {
			continue
		}
		if filter.OnlyActive && !it.IsActive {
			continue
		}
		if filter.Location != "" && it.Location != filter.Location {
			continue
		}
		if filter.ItemCode != "" && it.ItemCode != filter.ItemCode {
			continue
		}
		out = append(out, cloneItem(it))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemCode != out[j].ItemCode {
			return out[i].ItemCode < out[j].ItemCode
		}
		return out[i].Location < out[j].Location
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

// stockRequestRepo implementa repository.StockRequestRepository.
type stockRequestRepo struct {
	tx    *txn
	store *Store
}

var _ repository.StockRequestRepository = (*stockRequestRepo)(nil)

func (r *stockRequestRepo) run(ctx context.Context, fn func(tx *txn) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return r.store.autoCommit(ctx, fn)
}

func (r *stockRequestRepo) Create(ctx context.Context, req *entity.StockRequest) error {
	return r.run(ctx, func(tx *txn) error {
		if tx.getRequest(req.ID) != nil {
			return domain.ErrDuplicate
		}
		tx.requests[req.ID] = cloneRequest(req)
		tx.newRequests = append(tx.newRequests, req.ID)
		return nil
	})
}

func (r *stockRequestRepo) GetByID(ctx context.Context, id string) (*entity.StockRequest, error) {
	var out *entity.StockRequest
	err := r.run(ctx, func(tx *txn) error {
		out = tx.getRequest(id)
		return nil
	})
	return out, err
}

func (r *stockRequestRepo) UpdateStatus(ctx context.Context, req *entity.StockRequest, expectedStatus string) error {
	return r.run(ctx, func(tx *txn) error {
		cur := tx.getRequest(req.ID)
		if cur == nil {
			return domain.ErrNotFound
		}
		if cur.Status != expectedStatus {
			return domain.ErrConflict
		}
		if _, staged := tx.requests[req.ID]; !staged && !tx.isNewRequest(req.ID) {
			tx.reqStatuses[req.ID] = expectedStatus
		}
		tx.requests[req.ID] = cloneRequest(req)
		return nil
	})
}

func (r *stockRequestRepo) snapshot() (*Store, []*entity.StockRequest) {
	s := r.store
	if s == nil {
		s = r.tx.s
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.StockRequest, 0, len(s.reqOrder))
	for _, id := range s.reqOrder {
		out = append(out, cloneRequest(s.requests[id]))
	}
	return s, out
}

func (r *stockRequestRepo) ListByStatus(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.StockRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, all := r.snapshot()
	out := make([]*entity.StockRequest, 0)
	for _, req := range all {
		if req.CompanyID != companyID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, req)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return paginate(out, limit, offset), nil
}

func (r *stockRequestRepo) CountByStatus(ctx context.Context, companyID string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, all := r.snapshot()
	counts := make(map[string]int)
	for _, req := range all {
		if req.CompanyID == companyID {
			counts[req.Status]++
		}
	}
	return counts, nil
}

// stockTransferRepo historial append-only.
type stockTransferRepo struct {
	tx    *txn
	store *Store
}

var _ repository.StockTransferRepository = (*stockTransferRepo)(nil)

func (r *stockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	cp := *t
	if r.tx != nil {
		r.tx.transfers = append(r.tx.transfers, &cp)
		return nil
	}
	return r.store.autoCommit(ctx, func(tx *txn) error {
		tx.transfers = append(tx.transfers, &cp)
		return nil
	})
}

func (r *stockTransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	if s == nil {
		s = r.tx.s
	}
	s.mu.RLock()
	out := make([]*entity.StockTransfer, 0)
	for _, t := range s.transfers {
		if t.CompanyID != f.CompanyID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.Location != "" && t.FromLocation != f.Location && t.ToLocation != f.Location {
			continue
		}
		if f.ItemCode != "" && t.ItemCode != f.ItemCode {
			continue
		}
		if f.RequestID != "" && t.RequestID != f.RequestID {
			continue
		}
		if f.From != nil && t.TransferredAt.Before(*f.From) {
			continue
		}
		if f.To != nil && t.TransferredAt.After(*f.To) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TransferredAt.Equal(out[j].TransferredAt) {
			return out[i].TransferredAt.After(out[j].TransferredAt)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, f.Limit, f.Offset), nil
}

// approvalSettingsRepo configuración por empresa.
type approvalSettingsRepo struct {
	store *Store
}

var _ repository.ApprovalSettingsRepository = (*approvalSettingsRepo)(nil)

func (r *approvalSettingsRepo) Get(ctx context.Context, companyID string) (*entity.ApprovalSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if s, ok := r.store.settings[companyID]; ok {
		return cloneSettings(s), nil
	}
	return nil, nil
}

func (r *approvalSettingsRepo) Save(ctx context.Context, s *entity.ApprovalSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.settings[s.CompanyID] = cloneSettings(s)
	return nil
}

func (r *approvalSettingsRepo) CreateIfAbsent(ctx context.Context, s *entity.ApprovalSettings) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.settings[s.CompanyID]; ok {
		return false, nil
	}
	r.store.settings[s.CompanyID] = cloneSettings(s)
	return true, nil
}

// userRepo usuarios; email único global.
type userRepo struct {
	store *Store
}

var _ repository.UserRepository = (*userRepo)(nil)

func (r *userRepo) Create(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	cp := *u
	r.store.users[u.ID] = &cp
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if u, ok := r.store.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}
