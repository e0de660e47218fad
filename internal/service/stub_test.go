package service

import (
	"context"
	"sync"

	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/push"
	"kamenko/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces. Each fake keeps just enough
// state for the behavior under test and lets individual tests override a
// method with a func field.

// --- SessionRepository ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session

	createErr error
	getErrFor map[string]error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (f *fakeSessionRepo) put(session *domain.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.ID] = &copied
}

func (f *fakeSessionRepo) CreateIfAbsent(ctx context.Context, session *domain.Session) (bool, error) {
	if f.createErr != nil {
		return false, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.sessions[session.ID]; exists {
		return false, nil
	}
	copied := *session
	f.sessions[session.ID] = &copied
	return true, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	if err, ok := f.getErrFor[id]; ok {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepo) GetByDateRange(ctx context.Context, fromDate, toDate string) ([]domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Session
	for _, session := range f.sessions {
		if session.Date >= fromDate && session.Date <= toDate {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) GetScheduledByDate(ctx context.Context, date string) ([]domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Session
	for _, session := range f.sessions {
		if session.Date == date && session.Status == domain.SessionScheduled {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) Cancel(ctx context.Context, id string, cancelNote string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	session.Status = domain.SessionCancelled
	session.CancelNote = cancelNote
	return nil
}

func (f *fakeSessionRepo) UpdateDetails(ctx context.Context, id, startTime, endTime, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	session.StartTime = startTime
	session.EndTime = endTime
	session.Location = location
	return nil
}

// --- SlotRepository ---

type fakeSlotRepo struct {
	slots []domain.Slot
}

func (f *fakeSlotRepo) Create(ctx context.Context, slot *domain.Slot) error {
	f.slots = append(f.slots, *slot)
	return nil
}

func (f *fakeSlotRepo) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	for i := range f.slots {
		if f.slots[i].ID == id {
			copied := f.slots[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSlotRepo) GetAll(ctx context.Context) ([]domain.Slot, error) {
	return f.slots, nil
}

func (f *fakeSlotRepo) Update(ctx context.Context, slot *domain.Slot) error {
	for i := range f.slots {
		if f.slots[i].ID == slot.ID {
			f.slots[i] = *slot
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeSlotRepo) SetActive(ctx context.Context, id string, active bool) error {
	for i := range f.slots {
		if f.slots[i].ID == id {
			f.slots[i].Active = active
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- BookingRepository ---

type fakeBookingRepo struct {
	bookings     map[string]*domain.Booking
	getErr       error
	setCheckedIn []string
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*domain.Booking)}
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	booking, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) GetByUserID(ctx context.Context, userID string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			out = append(out, *booking)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) GetConfirmedBySessionID(ctx context.Context, sessionID string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, booking := range f.bookings {
		if booking.SessionID == sessionID && booking.Status == domain.BookingConfirmed {
			out = append(out, *booking)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) SetCheckedIn(ctx context.Context, id string, checkedIn bool) error {
	booking, ok := f.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	booking.CheckedIn = checkedIn
	f.setCheckedIn = append(f.setCheckedIn, id)
	return nil
}

// --- BookingLedger ---

type fakeLedger struct {
	reserveFunc func(ctx context.Context, sessionID, userID, userName string) (*domain.Booking, error)
	releaseFunc func(ctx context.Context, bookingID string) (bool, error)

	releaseCalls int
}

func (f *fakeLedger) Reserve(ctx context.Context, sessionID, userID, userName string) (*domain.Booking, error) {
	return f.reserveFunc(ctx, sessionID, userID, userName)
}

func (f *fakeLedger) Release(ctx context.Context, bookingID string) (bool, error) {
	f.releaseCalls++
	return f.releaseFunc(ctx, bookingID)
}

// --- FanOut recorders ---

// recordingFanOut captures fan-out invocations on channels so tests can wait
// for the asynchronous goroutine without sleeping.
type recordingFanOut struct {
	confirmed chan *domain.Booking
	cancelled chan cancelledEvent
}

type cancelledEvent struct {
	booking       *domain.Booking
	wasAtCapacity bool
}

func newRecordingFanOut() *recordingFanOut {
	return &recordingFanOut{
		confirmed: make(chan *domain.Booking, 8),
		cancelled: make(chan cancelledEvent, 8),
	}
}

func (r *recordingFanOut) BookingConfirmed(ctx context.Context, booking *domain.Booking) {
	r.confirmed <- booking
}

func (r *recordingFanOut) BookingCancelled(ctx context.Context, booking *domain.Booking, wasAtCapacity bool) {
	r.cancelled <- cancelledEvent{booking: booking, wasAtCapacity: wasAtCapacity}
}

type recordingSessionFanOut struct {
	cancelled chan *domain.Session
}

func newRecordingSessionFanOut() *recordingSessionFanOut {
	return &recordingSessionFanOut{cancelled: make(chan *domain.Session, 8)}
}

func (r *recordingSessionFanOut) SessionCancelled(ctx context.Context, session *domain.Session) {
	r.cancelled <- session
}

// --- UserRepository ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User

	removedEndpoints []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (f *fakeUserRepo) put(user *domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *user
	f.users[user.ID] = &copied
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, repository.RepositoryError("duplicate email")
		}
	}
	id := primitive.NewObjectID()
	user.ID = id
	copied := *user
	f.users[id] = &copied
	return id, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, user := range f.users {
		if user.Role == role {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) AddPushSubscription(ctx context.Context, userID primitive.ObjectID, sub domain.PushSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.PushSubscriptions = append(user.PushSubscriptions, sub)
	user.NotificationsEnabled = true
	return nil
}

func (f *fakeUserRepo) RemovePushSubscription(ctx context.Context, userID primitive.ObjectID, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	var kept []domain.PushSubscription
	for _, sub := range user.PushSubscriptions {
		if sub.Endpoint != endpoint {
			kept = append(kept, sub)
		}
	}
	user.PushSubscriptions = kept
	f.removedEndpoints = append(f.removedEndpoints, endpoint)
	return nil
}

func (f *fakeUserRepo) SetNotificationsEnabled(ctx context.Context, userID primitive.ObjectID, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.NotificationsEnabled = enabled
	return nil
}

// --- NotificationRepository ---

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []domain.Notification

	createErr error
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeNotificationRepo) GetForUser(ctx context.Context, userID string, limit int64) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.created {
		if n.UserID == userID || n.UserID == domain.BroadcastUserID {
			out = append(out, n)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error {
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

// byType filters the captured notifications.
func (f *fakeNotificationRepo) byType(notifType domain.NotificationType) []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.created {
		if n.Type == notifType {
			out = append(out, n)
		}
	}
	return out
}

// --- push.Dispatcher ---

type fakeDispatcher struct {
	mu    sync.Mutex
	sends []fakeSend

	result push.Result
}

type fakeSend struct {
	subscriptions []domain.PushSubscription
	title         string
	body          string
}

func (f *fakeDispatcher) Send(ctx context.Context, subscriptions []domain.PushSubscription, title, body string) push.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, fakeSend{subscriptions: subscriptions, title: title, body: body})
	return f.result
}
