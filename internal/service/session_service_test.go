package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kamenko/gym-app/internal/domain"
)

func mondaySlot(id string, capacity int) domain.Slot {
	return domain.Slot{
		ID:          id,
		DayOfWeek:   1,
		StartTime:   "18:00",
		EndTime:     "19:00",
		Location:    "Main hall",
		MaxCapacity: capacity,
		Active:      true,
	}
}

func TestEnsureSessionsForWeekCreatesOnePerActiveSlot(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	svc := NewSessionService(sessionRepo, &fakeSlotRepo{}, newRecordingSessionFanOut())

	weekStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // a Monday
	slots := []domain.Slot{
		mondaySlot("slot-a", 10),
		{ID: "slot-b", DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00", MaxCapacity: 6, Active: true},
		{ID: "slot-c", DayOfWeek: 3, StartTime: "07:00", EndTime: "08:00", MaxCapacity: 8, Active: false},
	}

	if err := svc.EnsureSessionsForWeek(context.Background(), slots, weekStart); err != nil {
		t.Fatalf("ensure week: %v", err)
	}

	if len(sessionRepo.sessions) != 2 {
		t.Fatalf("expected 2 sessions (inactive slot skipped), got %d", len(sessionRepo.sessions))
	}

	monday, err := sessionRepo.GetByID(context.Background(), "slot-a_2024-01-01")
	if err != nil {
		t.Fatalf("monday session: %v", err)
	}
	if monday.MaxCapacity != 10 || monday.StartTime != "18:00" || monday.Location != "Main hall" {
		t.Fatalf("slot fields not copied onto session: %+v", monday)
	}
	if monday.BookingCount != 0 || monday.Status != domain.SessionScheduled {
		t.Fatalf("new session must start scheduled and empty: %+v", monday)
	}

	// Sunday slot lands on the window's last day.
	if _, err := sessionRepo.GetByID(context.Background(), "slot-b_2024-01-07"); err != nil {
		t.Fatalf("sunday session: %v", err)
	}
}

func TestEnsureSessionsForWeekIsIdempotent(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	svc := NewSessionService(sessionRepo, &fakeSlotRepo{}, newRecordingSessionFanOut())

	weekStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	slots := []domain.Slot{mondaySlot("slot-a", 10)}

	if err := svc.EnsureSessionsForWeek(context.Background(), slots, weekStart); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Simulate live state accrued between runs.
	session, _ := sessionRepo.GetByID(context.Background(), "slot-a_2024-01-01")
	session.BookingCount = 7
	sessionRepo.put(session)

	if err := svc.EnsureSessionsForWeek(context.Background(), slots, weekStart); err != nil {
		t.Fatalf("second run: %v", err)
	}

	after, _ := sessionRepo.GetByID(context.Background(), "slot-a_2024-01-01")
	if after.BookingCount != 7 {
		t.Fatalf("re-materialization must not touch the existing session, got count %d", after.BookingCount)
	}
	if len(sessionRepo.sessions) != 1 {
		t.Fatalf("expected 1 session after repeat run, got %d", len(sessionRepo.sessions))
	}
}

func TestEnsureSessionsForWeekCapacityChangeOnlyAffectsNewWeeks(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	svc := NewSessionService(sessionRepo, &fakeSlotRepo{}, newRecordingSessionFanOut())

	week1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	week2 := week1.AddDate(0, 0, 7)

	slot := mondaySlot("slot-a", 10)
	if err := svc.EnsureSessionsForWeek(context.Background(), []domain.Slot{slot}, week1); err != nil {
		t.Fatalf("week 1: %v", err)
	}

	slot.MaxCapacity = 5
	if err := svc.EnsureSessionsForWeek(context.Background(), []domain.Slot{slot}, week2); err != nil {
		t.Fatalf("week 2: %v", err)
	}

	old, _ := sessionRepo.GetByID(context.Background(), "slot-a_2024-01-01")
	if old.MaxCapacity != 10 {
		t.Fatalf("existing session capacity must stay 10, got %d", old.MaxCapacity)
	}
	fresh, _ := sessionRepo.GetByID(context.Background(), "slot-a_2024-01-08")
	if fresh.MaxCapacity != 5 {
		t.Fatalf("new week session must pick up capacity 5, got %d", fresh.MaxCapacity)
	}
}

func TestGetWeekSessionsAlignsAndMaterializes(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	slotRepo := &fakeSlotRepo{slots: []domain.Slot{mondaySlot("slot-a", 10)}}
	svc := NewSessionService(sessionRepo, slotRepo, newRecordingSessionFanOut())

	// Ask mid-week; the service must align back to Monday before listing.
	midWeek := time.Date(2024, 1, 4, 13, 0, 0, 0, time.UTC) // Thursday
	sessions, err := svc.GetWeekSessions(context.Background(), midWeek, true)
	if err != nil {
		t.Fatalf("get week: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Date != "2024-01-01" {
		t.Fatalf("expected session on the aligned Monday, got %s", sessions[0].Date)
	}
}

func TestGetWeekSessionsWithoutMaterializeListsOnly(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	slotRepo := &fakeSlotRepo{slots: []domain.Slot{mondaySlot("slot-a", 10)}}
	svc := NewSessionService(sessionRepo, slotRepo, newRecordingSessionFanOut())

	sessions, err := svc.GetWeekSessions(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false)
	if err != nil {
		t.Fatalf("get week: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected empty week without materialization, got %d", len(sessions))
	}
	if len(sessionRepo.sessions) != 0 {
		t.Fatal("listing must not create sessions")
	}
}

func TestCancelSessionNotifiesOnce(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	fanOut := newRecordingSessionFanOut()
	svc := NewSessionService(sessionRepo, &fakeSlotRepo{}, fanOut)

	sessionRepo.put(&domain.Session{
		ID:        "slot-a_2024-01-01",
		Date:      "2024-01-01",
		StartTime: "18:00",
		Status:    domain.SessionScheduled,
	})

	if err := svc.CancelSession(context.Background(), "slot-a_2024-01-01", "Coach is sick"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	select {
	case cancelled := <-fanOut.cancelled:
		if cancelled.CancelNote != "Coach is sick" {
			t.Fatalf("expected cancel note on fan-out, got %q", cancelled.CancelNote)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected session-cancelled fan-out")
	}

	// Cancelling again is a no-op and must not re-notify.
	if err := svc.CancelSession(context.Background(), "slot-a_2024-01-01", "again"); err != nil {
		t.Fatalf("repeat cancel: %v", err)
	}
	select {
	case <-fanOut.cancelled:
		t.Fatal("repeat cancel must not fan out")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelSessionNotFound(t *testing.T) {
	svc := NewSessionService(newFakeSessionRepo(), &fakeSlotRepo{}, newRecordingSessionFanOut())

	err := svc.CancelSession(context.Background(), "missing", "")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpdateSessionDetailsValidatesTime(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	sessionRepo.put(&domain.Session{ID: "s1", Status: domain.SessionScheduled})
	svc := NewSessionService(sessionRepo, &fakeSlotRepo{}, newRecordingSessionFanOut())

	if err := svc.UpdateSessionDetails(context.Background(), "s1", "25:00", "19:00", "Hall"); err == nil {
		t.Fatal("expected invalid start time to be rejected")
	}

	if err := svc.UpdateSessionDetails(context.Background(), "s1", "18:30", "19:30", "Hall B"); err != nil {
		t.Fatalf("valid update: %v", err)
	}
	session, _ := sessionRepo.GetByID(context.Background(), "s1")
	if session.StartTime != "18:30" || session.Location != "Hall B" {
		t.Fatalf("details not applied: %+v", session)
	}
}
