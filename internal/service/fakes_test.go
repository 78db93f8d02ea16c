package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fjod/quickbites/internal/catalog"
	"github.com/fjod/quickbites/internal/domain"
	"github.com/fjod/quickbites/internal/gateway"
	"github.com/fjod/quickbites/internal/store"
	"github.com/shopspring/decimal"
)

type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	findErr  error
	saveErr  error
	saves    int
	creates  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*domain.Session{}}
}

func (f *fakeStore) Find(_ context.Context, key string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	s, ok := f.sessions[key]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (f *fakeStore) Create(_ context.Context, session *domain.Session) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.sessions[session.Key] = session.Clone()
	return session, nil
}

func (f *fakeStore) Save(_ context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.sessions[session.Key] = session.Clone()
	return nil
}

func (f *fakeStore) FindByReference(_ context.Context, reference string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, s := range f.sessions {
		if _, _, ok := s.OrderByReference(reference); ok {
			return s.Clone(), nil
		}
	}
	return nil, store.ErrSessionNotFound
}

func (f *fakeStore) get(key string) *domain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[key].Clone()
}

type fakeCatalog struct {
	items   []domain.Item
	listErr error
}

func seedCatalog() *fakeCatalog {
	return &fakeCatalog{items: []domain.Item{
		{ID: 4, Name: "Beef Burger", BasePrice: decimal.NewFromInt(1000)},
		{ID: 3, Name: "Chicken Sandwich", BasePrice: decimal.NewFromInt(900)},
		{ID: 2, Name: "Fried Rice", BasePrice: decimal.NewFromInt(1300)},
		{ID: 1, Name: "Jollof Rice", BasePrice: decimal.NewFromInt(1200)},
	}}
}

func (f *fakeCatalog) List(context.Context) ([]domain.Item, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	for _, it := range f.items {
		if it.ID == id {
			item := it
			return &item, nil
		}
	}
	return nil, catalog.ErrItemNotFound
}

func (f *fakeCatalog) setPrice(id int64, price int64) {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].BasePrice = decimal.NewFromInt(price)
		}
	}
}

func (f *fakeCatalog) remove(id int64) {
	kept := f.items[:0]
	for _, it := range f.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	f.items = kept
}

type fakeGateway struct {
	mu          sync.Mutex
	initReqs    []gateway.InitializeRequest
	initErr     error
	verifyCalls int
	verifyErr   error
	tx          gateway.Transaction
}

func (f *fakeGateway) Initialize(_ context.Context, req gateway.InitializeRequest) (*gateway.InitializeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initReqs = append(f.initReqs, req)
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &gateway.InitializeResult{
		AuthorizationURL: "https://checkout.paystack.com/" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (f *fakeGateway) Verify(_ context.Context, reference string) (*gateway.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	tx := f.tx
	tx.Reference = reference
	return &tx, nil
}

type fakeEvents struct {
	placed []int
	paid   []int
	err    error
}

func (f *fakeEvents) OrderPlaced(_ context.Context, _ string, number int, _ domain.PlacedOrder) error {
	f.placed = append(f.placed, number)
	return f.err
}

func (f *fakeEvents) OrderPaid(_ context.Context, _ string, number int, _ domain.PlacedOrder) error {
	f.paid = append(f.paid, number)
	return f.err
}

var errStoreDown = errors.New("store down")

// fixedClock advances one second per reading.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type harness struct {
	engine  *Engine
	store   *fakeStore
	catalog *fakeCatalog
	gateway *fakeGateway
	events  *fakeEvents
}

func newHarness() *harness {
	h := &harness{
		store:   newFakeStore(),
		catalog: seedCatalog(),
		gateway: &fakeGateway{tx: gateway.Transaction{Status: "success", AmountMinor: 250000, Currency: "NGN", Channel: "card", TransactionDate: "2024-01-01T10:00:00.000Z"}},
		events:  &fakeEvents{},
	}
	clock := &fixedClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	h.engine = NewEngine(h.store, h.catalog, h.gateway, h.events, Config{
		CallbackURL:   "http://localhost:3000/paystack/callback",
		CustomerEmail: "customer@example.com",
	}, WithClock(clock.Now))
	return h
}
