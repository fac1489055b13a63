package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/screening"
	"github.com/vlk/settlecore/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDTxFunc     func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateBalanceFunc func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	ListFunc          func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; ok {
		return domain.ErrAccountExists
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDTxFunc != nil {
		return m.GetByIDTxFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.Version++
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// MockTransferRepository is a mock implementation of TransferRepository.
type MockTransferRepository struct {
	mu          sync.RWMutex
	transfers   map[string]*domain.Transfer
	byMessageID map[string]string

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.Transfer, error)
	GetByMessageIDFunc func(ctx context.Context, messageID string) (*domain.Transfer, error)
	UpdateStatusFunc   func(ctx context.Context, tx usecase.Transaction, id string, status domain.TransferStatus, completedAt *time.Time, updatedAt time.Time) error
	ListByStatusFunc   func(ctx context.Context, status domain.TransferStatus, limit, offset int) ([]*domain.Transfer, error)
}

func NewMockTransferRepository() *MockTransferRepository {
	return &MockTransferRepository{
		transfers:   make(map[string]*domain.Transfer),
		byMessageID: make(map[string]string),
	}
}

func (m *MockTransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byMessageID[transfer.MessageID]; ok {
		return domain.ErrDuplicateMessage
	}
	cp := *transfer
	m.transfers[transfer.ID] = &cp
	m.byMessageID[transfer.MessageID] = transfer.ID
	return nil
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transfers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrTransferNotFound
}

func (m *MockTransferRepository) GetByMessageID(ctx context.Context, messageID string) (*domain.Transfer, error) {
	if m.GetByMessageIDFunc != nil {
		return m.GetByMessageIDFunc(ctx, messageID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byMessageID[messageID]; ok {
		cp := *m.transfers[id]
		return &cp, nil
	}
	return nil, domain.ErrTransferNotFound
}

func (m *MockTransferRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransferStatus, completedAt *time.Time, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, completedAt, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transfers[id]
	if !ok {
		return domain.ErrTransferNotFound
	}
	if t.Status.Terminal() {
		return domain.ErrInvalidStatusTransition
	}
	t.Status = status
	t.CompletedAt = completedAt
	t.UpdatedAt = updatedAt
	return nil
}

func (m *MockTransferRepository) ListByStatus(ctx context.Context, status domain.TransferStatus, limit, offset int) ([]*domain.Transfer, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var transfers []*domain.Transfer
	for _, t := range m.transfers {
		if t.Status == status {
			cp := *t
			transfers = append(transfers, &cp)
		}
	}
	sort.Slice(transfers, func(i, j int) bool { return transfers[i].ID < transfers[j].ID })
	return transfers, nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries []*domain.LedgerEntry

	CreateFunc func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *MockEntryRepository) GetByTransfer(ctx context.Context, transferID string) ([]*domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.TransferID == transferID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockEntryRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockEntryRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.AccountID == accountID {
			sum = sum.Add(e.SignedAmount())
		}
	}
	return sum, nil
}

// MockSanctionsRepository is a mock implementation of SanctionsRepository.
type MockSanctionsRepository struct {
	mu      sync.RWMutex
	entries []*domain.SanctionsEntry

	UpsertFunc  func(ctx context.Context, entries []*domain.SanctionsEntry) error
	ListAllFunc func(ctx context.Context) ([]*domain.SanctionsEntry, error)
}

func NewMockSanctionsRepository() *MockSanctionsRepository {
	return &MockSanctionsRepository{}
}

func (m *MockSanctionsRepository) Upsert(ctx context.Context, entries []*domain.SanctionsEntry) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, entries)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *MockSanctionsRepository) ListAll(ctx context.Context) ([]*domain.SanctionsEntry, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.SanctionsEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// MockAuditRepository is a mock implementation of AuditRepository. The
// default behavior keeps real per-entity chains so recorder and
// verifier behavior can be exercised without a database, including the
// append lock: LatestHashForUpdate holds a per-chain lock until the
// given MockTransaction ends, matching the postgres advisory lock.
type MockAuditRepository struct {
	mu         sync.RWMutex
	records    map[string][]*domain.AuditRecord
	chainLocks map[string]*sync.Mutex

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, record *domain.AuditRecord) error
	LatestHashForUpdateFunc func(ctx context.Context, tx usecase.Transaction, entityType, entityID string) (string, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{
		records:    make(map[string][]*domain.AuditRecord),
		chainLocks: make(map[string]*sync.Mutex),
	}
}

func chainKey(entityType, entityID string) string {
	return entityType + "/" + entityID
}

func (m *MockAuditRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.AuditRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	key := chainKey(record.EntityType, record.EntityID)
	m.records[key] = append(m.records[key], &cp)
	return nil
}

func (m *MockAuditRepository) LatestHashForUpdate(ctx context.Context, tx usecase.Transaction, entityType, entityID string) (string, error) {
	if m.LatestHashForUpdateFunc != nil {
		return m.LatestHashForUpdateFunc(ctx, tx, entityType, entityID)
	}

	lock := m.chainLock(entityType, entityID)
	lock.Lock()
	if mt, ok := tx.(*MockTransaction); ok {
		mt.OnEnd(lock.Unlock)
	} else {
		// No transaction to scope the lock to: plain head read.
		defer lock.Unlock()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	chain := m.records[chainKey(entityType, entityID)]
	if len(chain) == 0 {
		return domain.ZeroHash, nil
	}
	return chain[len(chain)-1].CurrHash, nil
}

func (m *MockAuditRepository) chainLock(entityType, entityID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := chainKey(entityType, entityID)
	if m.chainLocks[key] == nil {
		m.chainLocks[key] = &sync.Mutex{}
	}
	return m.chainLocks[key]
}

func (m *MockAuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain := m.records[chainKey(entityType, entityID)]
	out := make([]*domain.AuditRecord, len(chain))
	copy(out, chain)
	return out, nil
}

func (m *MockAuditRepository) ListEntityRefs(ctx context.Context, limit, offset int) ([]domain.EntityRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var refs []domain.EntityRef
	for key := range m.records {
		for i := 0; i < len(key); i++ {
			if key[i] == '/' {
				refs = append(refs, domain.EntityRef{EntityType: key[:i], EntityID: key[i+1:]})
				break
			}
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].EntityType != refs[j].EntityType {
			return refs[i].EntityType < refs[j].EntityType
		}
		return refs[i].EntityID < refs[j].EntityID
	})
	if offset >= len(refs) {
		return nil, nil
	}
	refs = refs[offset:]
	if len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

// Corrupt overwrites one stored payload byte-for-byte, for tamper tests.
func (m *MockAuditRepository) Corrupt(entityType, entityID string, index int, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chain := m.records[chainKey(entityType, entityID)]
	if index >= 0 && index < len(chain) {
		chain[index].Payload = payload
	}
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *event
	m.events = append(m.events, &cp)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

// Events returns a snapshot of all recorded events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	SumEntriesFunc      func(ctx context.Context) (decimal.Decimal, error)
	SumBalanceDriftFunc func(ctx context.Context) (decimal.Decimal, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) SumEntries(ctx context.Context) (decimal.Decimal, error) {
	if m.SumEntriesFunc != nil {
		return m.SumEntriesFunc(ctx)
	}
	return decimal.Zero, nil
}

func (m *MockLedgerRepository) SumBalanceDrift(ctx context.Context) (decimal.Decimal, error) {
	if m.SumBalanceDriftFunc != nil {
		return m.SumBalanceDriftFunc(ctx)
	}
	return decimal.Zero, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction. Cleanup
// functions registered with OnEnd run once, when the transaction first
// commits or rolls back, mirroring resources a database scopes to the
// transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	mu    sync.Mutex
	ended bool
	onEnd []func()
}

// OnEnd registers a cleanup to run when the transaction ends.
func (m *MockTransaction) OnEnd(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnd = append(m.onEnd, f)
}

func (m *MockTransaction) end() {
	m.mu.Lock()
	cleanups := m.onEnd
	ended := m.ended
	m.ended = true
	m.onEnd = nil
	m.mu.Unlock()

	if ended {
		return
	}
	for _, f := range cleanups {
		f()
	}
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	defer m.end()
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	defer m.end()
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	mu           sync.Mutex
	counter      int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}

// MockLockManager is a mock implementation of LockManager.
type MockLockManager struct {
	AcquireFunc func(ctx context.Context, timeout time.Duration, keys ...string) (func(), error)
}

func NewMockLockManager() *MockLockManager {
	return &MockLockManager{}
}

func (m *MockLockManager) Acquire(ctx context.Context, timeout time.Duration, keys ...string) (func(), error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, timeout, keys...)
	}
	return func() {}, nil
}

// MockResultCache is a mock implementation of ResultCache.
type MockResultCache struct {
	mu      sync.RWMutex
	results map[string]*domain.ProcessingResult

	GetFunc func(ctx context.Context, messageID string) (*domain.ProcessingResult, error)
	SetFunc func(ctx context.Context, messageID string, result *domain.ProcessingResult, ttl time.Duration) error
}

func NewMockResultCache() *MockResultCache {
	return &MockResultCache{results: make(map[string]*domain.ProcessingResult)}
}

func (m *MockResultCache) Get(ctx context.Context, messageID string) (*domain.ProcessingResult, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, messageID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.results[messageID], nil
}

func (m *MockResultCache) Set(ctx context.Context, messageID string, result *domain.ProcessingResult, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, messageID, result, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[messageID] = result
	return nil
}

// MockSearcher is a mock implementation of SanctionsSearcher.
type MockSearcher struct {
	BestMatchFunc func(normalizedQuery string, threshold float64) (*screening.Match, bool)
}

func NewMockSearcher() *MockSearcher {
	return &MockSearcher{}
}

func (m *MockSearcher) BestMatch(normalizedQuery string, threshold float64) (*screening.Match, bool) {
	if m.BestMatchFunc != nil {
		return m.BestMatchFunc(normalizedQuery, threshold)
	}
	return nil, false
}

func (m *MockSearcher) Size() int { return 0 }
