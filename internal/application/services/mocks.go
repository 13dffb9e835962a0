package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/domain"
)

// MemStore is an in-memory implementation of the persistence ports used
// by the service test suites. A single mutex serializes transactions,
// which models the row-lock discipline coarsely but faithfully: no two
// writers ever interleave on the same row. WithTransaction snapshots the
// maps and restores them when the callback fails, so rollback semantics
// are observable in tests.
type MemStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]domain.Booking
	slots    map[uuid.UUID]domain.Slot
	users    map[uuid.UUID]domain.User
}

func NewMemStore() *MemStore {
	return &MemStore{
		bookings: make(map[uuid.UUID]domain.Booking),
		slots:    make(map[uuid.UUID]domain.Slot),
		users:    make(map[uuid.UUID]domain.User),
	}
}

// Seed helpers; safe to call from test setup.

func (st *MemStore) PutSlot(s *domain.Slot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.slots[s.ID] = *s
}

func (st *MemStore) PutBooking(b *domain.Booking) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.bookings[b.ID] = *b
}

func (st *MemStore) PutUser(u *domain.User) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.users[u.ID] = *u
}

func (st *MemStore) GetBooking(id uuid.UUID) (domain.Booking, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	b, ok := st.bookings[id]
	return b, ok
}

func (st *MemStore) GetSlot(id uuid.UUID) (domain.Slot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.slots[id]
	return s, ok
}

func (st *MemStore) Repositories() application.Repositories {
	return application.Repositories{
		Bookings: &memBookingRepo{st: st, locked: false},
		Slots:    &memSlotRepo{st: st, locked: false},
		Users:    &memUserRepo{st: st},
	}
}

// WithTransaction implements application.TransactionCoordinator.
func (st *MemStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos application.Repositories) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	snapBookings := make(map[uuid.UUID]domain.Booking, len(st.bookings))
	for k, v := range st.bookings {
		snapBookings[k] = v
	}
	snapSlots := make(map[uuid.UUID]domain.Slot, len(st.slots))
	for k, v := range st.slots {
		snapSlots[k] = v
	}

	repos := application.Repositories{
		Bookings: &memBookingRepo{st: st, locked: true},
		Slots:    &memSlotRepo{st: st, locked: true},
		Users:    &memUserRepo{st: st, locked: true},
	}
	if err := fn(ctx, repos); err != nil {
		st.bookings = snapBookings
		st.slots = snapSlots
		return err
	}
	return nil
}

var errMemNotFound = domain.NewMissingRequiredFieldError("row")

type memBookingRepo struct {
	st     *MemStore
	locked bool // true when already inside WithTransaction
}

func (r *memBookingRepo) withLock(fn func()) {
	if !r.locked {
		r.st.mu.Lock()
		defer r.st.mu.Unlock()
	}
	fn()
}

func (r *memBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	r.withLock(func() { r.st.bookings[b.ID] = *b })
	return nil
}

func (r *memBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	r.withLock(func() { r.st.bookings[b.ID] = *b })
	return nil
}

func (r *memBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var out *domain.Booking
	r.withLock(func() {
		if b, ok := r.st.bookings[id]; ok {
			c := b
			out = &c
		}
	})
	if out == nil {
		return nil, errMemNotFound
	}
	return out, nil
}

func (r *memBookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *memBookingRepo) FindByCheckoutSessionID(ctx context.Context, sessionID string) (*domain.Booking, error) {
	var out *domain.Booking
	r.withLock(func() {
		for _, b := range r.st.bookings {
			if b.CheckoutSessionID != nil && *b.CheckoutSessionID == sessionID {
				c := b
				out = &c
				return
			}
		}
	})
	if out == nil {
		return nil, errMemNotFound
	}
	return out, nil
}

func (r *memBookingRepo) HasActiveForSlot(ctx context.Context, slotID uuid.UUID) (bool, error) {
	var active bool
	r.withLock(func() {
		for _, b := range r.st.bookings {
			if b.SlotID != nil && *b.SlotID == slotID &&
				(b.Status == domain.BookingPendingPayment || b.Status == domain.BookingConfirmed) {
				active = true
				return
			}
		}
	})
	return active, nil
}

func (r *memBookingRepo) FindByStudentID(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*domain.Booking, error) {
	var out []*domain.Booking
	r.withLock(func() {
		for _, b := range r.st.bookings {
			if b.StudentID == studentID {
				c := b
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *memBookingRepo) FindByMentorID(ctx context.Context, mentorID uuid.UUID, limit, offset int) ([]*domain.Booking, error) {
	var out []*domain.Booking
	r.withLock(func() {
		for _, b := range r.st.bookings {
			if b.MentorID == mentorID {
				c := b
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *memBookingRepo) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error) {
	var out []*domain.Booking
	r.withLock(func() {
		for _, b := range r.st.bookings {
			if b.Status == domain.BookingPendingPayment && b.CreatedAt.Before(cutoff) {
				c := b
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *memBookingRepo) FindOverdueConfirmed(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	var out []*domain.Booking
	r.withLock(func() {
		for _, b := range r.st.bookings {
			if b.Status == domain.BookingConfirmed && b.BookedEndTime.Before(now) {
				c := b
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

type memSlotRepo struct {
	st     *MemStore
	locked bool
}

func (r *memSlotRepo) withLock(fn func()) {
	if !r.locked {
		r.st.mu.Lock()
		defer r.st.mu.Unlock()
	}
	fn()
}

func (r *memSlotRepo) Create(ctx context.Context, s *domain.Slot) error {
	r.withLock(func() { r.st.slots[s.ID] = *s })
	return nil
}

func (r *memSlotRepo) Update(ctx context.Context, s *domain.Slot) error {
	r.withLock(func() { r.st.slots[s.ID] = *s })
	return nil
}

func (r *memSlotRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	var out *domain.Slot
	r.withLock(func() {
		if s, ok := r.st.slots[id]; ok {
			c := s
			out = &c
		}
	})
	if out == nil {
		return nil, errMemNotFound
	}
	return out, nil
}

func (r *memSlotRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	return r.FindByID(ctx, id)
}

func (r *memSlotRepo) FindByMentorID(ctx context.Context, mentorID uuid.UUID) ([]*domain.Slot, error) {
	var out []*domain.Slot
	r.withLock(func() {
		for _, s := range r.st.slots {
			if s.MentorID == mentorID {
				c := s
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *memSlotRepo) FindAvailableByMentorID(ctx context.Context, mentorID uuid.UUID) ([]*domain.Slot, error) {
	var out []*domain.Slot
	r.withLock(func() {
		for _, s := range r.st.slots {
			if s.MentorID == mentorID && s.Status == domain.SlotAvailable {
				c := s
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *memSlotRepo) HasOverlap(ctx context.Context, mentorID uuid.UUID, start, end time.Time) (bool, error) {
	var overlap bool
	r.withLock(func() {
		for _, s := range r.st.slots {
			if s.MentorID == mentorID && s.Status != domain.SlotCancelled && s.Overlaps(start, end) {
				overlap = true
				return
			}
		}
	})
	return overlap, nil
}

type memUserRepo struct {
	st     *MemStore
	locked bool
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	find := func() {
		if u, ok := r.st.users[id]; ok {
			c := u
			out = &c
		}
	}
	if r.locked {
		find()
	} else {
		r.st.mu.Lock()
		find()
		r.st.mu.Unlock()
	}
	if out == nil {
		return nil, errMemNotFound
	}
	return out, nil
}

// MockPaymentGateway is a fn-overridable gateway double. The default
// behavior returns deterministic ids; override the Fn fields to inject
// failures. Call counts are recorded under a mutex so concurrency tests
// can assert on them.
type MockPaymentGateway struct {
	mu sync.Mutex

	CreateCheckoutSessionFn func(ctx context.Context, req application.CheckoutSessionRequest) (*application.CheckoutSession, error)
	CreateRefundFn          func(ctx context.Context, req application.RefundRequest) (*application.Refund, error)

	CheckoutCalls []application.CheckoutSessionRequest
	RefundCalls   []application.RefundRequest
}

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{}
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, req application.CheckoutSessionRequest) (*application.CheckoutSession, error) {
	m.mu.Lock()
	m.CheckoutCalls = append(m.CheckoutCalls, req)
	m.mu.Unlock()
	if m.CreateCheckoutSessionFn != nil {
		return m.CreateCheckoutSessionFn(ctx, req)
	}
	return &application.CheckoutSession{
		ID:          "cs_test_" + uuid.NewString(),
		RedirectURL: "https://checkout.example.com/pay/" + req.ClientReferenceID,
	}, nil
}

func (m *MockPaymentGateway) CreateRefund(ctx context.Context, req application.RefundRequest) (*application.Refund, error) {
	m.mu.Lock()
	m.RefundCalls = append(m.RefundCalls, req)
	m.mu.Unlock()
	if m.CreateRefundFn != nil {
		return m.CreateRefundFn(ctx, req)
	}
	return &application.Refund{ID: "re_test_" + uuid.NewString(), Status: "succeeded"}, nil
}

func (m *MockPaymentGateway) CheckoutCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CheckoutCalls)
}

func (m *MockPaymentGateway) RefundCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RefundCalls)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) BookingConfirmed(context.Context, *domain.Booking) {}

func (NopNotifier) BookingCancelled(context.Context, *domain.Booking, int64) {}

func (NopNotifier) BookingCompleted(context.Context, *domain.Booking) {}
