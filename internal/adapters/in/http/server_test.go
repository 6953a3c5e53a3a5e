package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	httpadapter "exchange/internal/adapters/in/http"
	"exchange/internal/adapters/out/memlock"
	"exchange/internal/core/application/usecases/commands"
	"exchange/internal/core/application/usecases/queries"
	"exchange/internal/core/domain/model/kernel"
	"exchange/internal/core/domain/model/order"
	"exchange/internal/core/ports"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory persistence fakes. Orders are stored as snapshots; Get restores
// a fresh aggregate, Commit folds staged changes back in.
type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*storedOrder
}

type storedOrder struct {
	id        kernel.UUID
	code      order.Code
	mode      order.Mode
	state     order.State
	reason    order.Reason
	updatedAt time.Time
	expiresAt *time.Time
	history   []order.HistoryEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[string]*storedOrder)}
}

func (s *fakeStore) add(o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orders {
		if existing.code == o.Code() {
			return ports.ErrOrderCodeTaken
		}
	}
	s.orders[o.ID().String()] = snapshot(o)
	return nil
}

func (s *fakeStore) fold(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.orders[o.ID().String()]
	updated := snapshot(o)
	updated.history = append(append([]order.HistoryEntry(nil), stored.history...), o.UncommittedHistory()...)
	s.orders[o.ID().String()] = updated
}

func (s *fakeStore) restore(id kernel.UUID) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[id.String()]
	if !ok {
		return nil, errsNotFound(id)
	}
	history := append([]order.HistoryEntry(nil), stored.history...)
	return order.RestoreOrder(
		stored.id, stored.code, stored.mode, stored.state, stored.reason,
		stored.updatedAt, stored.expiresAt, nil, history,
	)
}

func snapshot(o *order.Order) *storedOrder {
	return &storedOrder{
		id:        o.ID(),
		code:      o.Code(),
		mode:      o.Mode(),
		state:     o.State(),
		reason:    o.StateReason(),
		updatedAt: o.StateUpdatedAt(),
		expiresAt: o.StateExpiresAt(),
		history:   append([]order.HistoryEntry(nil), o.History()...),
	}
}

type fakeUoW struct {
	store  *fakeStore
	added  *order.Order
	staged *order.Order
}

func (u *fakeUoW) Begin(context.Context) error    { return nil }
func (u *fakeUoW) Rollback(context.Context) error { return nil }

func (u *fakeUoW) Commit(context.Context) error {
	if u.added != nil {
		if err := u.store.add(u.added); err != nil {
			return err
		}
	}
	if u.staged != nil {
		u.store.fold(u.staged)
	}
	return nil
}

func (u *fakeUoW) OrderRepository() ports.OrderRepository { return &fakeRepo{uow: u} }

type fakeRepo struct {
	uow *fakeUoW
}

func (r *fakeRepo) Add(_ context.Context, o *order.Order) error {
	// surface collisions at Add time like the real repository
	r.uow.store.mu.Lock()
	for _, existing := range r.uow.store.orders {
		if existing.code == o.Code() {
			r.uow.store.mu.Unlock()
			return ports.ErrOrderCodeTaken
		}
	}
	r.uow.store.mu.Unlock()

	r.uow.added = o
	return nil
}

func (r *fakeRepo) Update(_ context.Context, o *order.Order) error {
	r.uow.staged = o
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	return r.uow.store.restore(id)
}

func (r *fakeRepo) GetExpired(context.Context, time.Time) ([]*order.Order, error) {
	return nil, errors.New("not implemented in fake")
}

func (r *fakeRepo) GetDueForReminder(context.Context, time.Time, time.Duration) ([]*order.Order, error) {
	return nil, errors.New("not implemented in fake")
}

type fakeUoWFactory struct {
	store *fakeStore
}

func (f *fakeUoWFactory) Create() commands.OrderUoW { return &fakeUoW{store: f.store} }

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.OrderStateChangedEvent
}

func (p *recordingPublisher) PublishStateChanged(_ context.Context, event ports.OrderStateChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) PublishExpirationReminder(context.Context, ports.OrderExpirationReminderEvent) error {
	return nil
}

func errsNotFound(id kernel.UUID) error {
	return notFoundError{id: id.String()}
}

type notFoundError struct{ id string }

func (e notFoundError) Error() string { return "order not found: " + e.id }

func newTestServer(store *fakeStore, publisher ports.OrderEventPublisher) *echo.Echo {
	factory := &fakeUoWFactory{store: store}
	server := httpadapter.NewServer(
		commands.NewCreateOrderCommandHandler(factory),
		commands.NewTransitionOrderCommandHandler(memlock.NewOrderLocker(), factory),
		queries.GetOrderQueryHandler{},
		queries.GetOrdersByStateQueryHandler{},
		publisher,
	)

	e := echo.New()
	server.RegisterRoutes(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func seedOrder(t *testing.T, store *fakeStore, state order.State) kernel.UUID {
	t.Helper()

	o, err := order.NewOrder(kernel.NewUUID(), order.NewCode(), order.ModeBuy, time.Now().UTC())
	require.NoError(t, err)

	now := time.Now().UTC()
	switch state {
	case order.StatePending:
	case order.StateSubmitted:
		require.NoError(t, o.Submit(now))
	case order.StateApproved:
		require.NoError(t, o.Submit(now))
		require.NoError(t, o.Approve(now))
	default:
		t.Fatalf("unsupported seed state %s", state)
	}

	require.NoError(t, store.add(o))
	return o.ID()
}

func TestServer_CreateOrder(t *testing.T) {
	store := newFakeStore()
	e := newTestServer(store, &recordingPublisher{})

	rec := doJSON(t, e, http.MethodPost, "/api/v1/orders", `{"mode":"buy"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var response httpadapter.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "pending", response.State)
	assert.Equal(t, "buy", response.Mode)
	assert.Len(t, response.Code, order.CodeLength)
	assert.NotNil(t, response.StateExpiresAt)
	require.Len(t, response.History, 1)
	assert.Equal(t, "pending", response.History[0].State)
}

func TestServer_CreateOrder_UnknownMode(t *testing.T) {
	e := newTestServer(newFakeStore(), &recordingPublisher{})

	rec := doJSON(t, e, http.MethodPost, "/api/v1/orders", `{"mode":"lease"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var response httpadapter.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "validation", response.Category)
}

func TestServer_TransitionEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		seedState  order.State
		action     string
		body       string
		wantStatus int
		wantState  string
		wantReason string
	}{
		{"submit pending", order.StatePending, "submit", "", http.StatusOK, "submitted", ""},
		{"abandon pending", order.StatePending, "abandon", "", http.StatusOK, "abandoned", ""},
		{"approve submitted", order.StateSubmitted, "approve", "", http.StatusOK, "approved", ""},
		{"revert submitted to pending", order.StateSubmitted, "revert", "", http.StatusOK, "pending", ""},
		{"revert approved to submitted", order.StateApproved, "revert", "", http.StatusOK, "submitted", ""},
		{
			"reject with explicit reason", order.StateSubmitted, "reject",
			`{"reason":"seller_rejected_offer_too_low"}`,
			http.StatusOK, "canceled", "seller_rejected_offer_too_low",
		},
		{
			"reject without reason uses default", order.StateSubmitted, "reject", "",
			http.StatusOK, "canceled", "seller_rejected_other",
		},
		{"seller lapse", order.StateSubmitted, "seller_lapse", "", http.StatusOK, "canceled", "seller_lapsed"},
		{"buyer lapse", order.StateSubmitted, "buyer_lapse", "", http.StatusOK, "canceled", "buyer_lapsed"},
		{
			"cancel with reason", order.StateSubmitted, "cancel", `{"reason":"admin_canceled"}`,
			http.StatusOK, "canceled", "admin_canceled",
		},
		{"fulfill approved", order.StateApproved, "fulfill", "", http.StatusOK, "fulfilled", ""},
		{"refund approved", order.StateApproved, "refund", "", http.StatusOK, "refunded", ""},
		{"approve pending is illegal", order.StatePending, "approve", "", http.StatusUnprocessableEntity, "", ""},
		{"refund pending is illegal", order.StatePending, "refund", "", http.StatusUnprocessableEntity, "", ""},
		{
			"cancel with unknown reason", order.StateSubmitted, "cancel", `{"reason":"changed_mind"}`,
			http.StatusUnprocessableEntity, "", "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			publisher := &recordingPublisher{}
			e := newTestServer(store, publisher)
			id := seedOrder(t, store, tt.seedState)

			rec := doJSON(t, e, http.MethodPost, "/api/v1/orders/"+id.String()+"/"+tt.action, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus != http.StatusOK {
				return
			}

			var response httpadapter.OrderResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, tt.wantState, response.State)
			assert.Equal(t, tt.wantReason, response.StateReason)

			require.Len(t, publisher.events, 1)
			assert.Equal(t, tt.wantState, publisher.events[0].State)
		})
	}
}

func TestServer_Transition_BadOrderID(t *testing.T) {
	e := newTestServer(newFakeStore(), &recordingPublisher{})

	rec := doJSON(t, e, http.MethodPost, "/api/v1/orders/not-a-uuid/approve", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_GetOrders_BadStates(t *testing.T) {
	e := newTestServer(newFakeStore(), &recordingPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?states=pending,shipped", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var response httpadapter.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "invalid_states_params", response.Code)
}
