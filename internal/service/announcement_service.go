package service

import (
	"context"
	"errors"
	"time"

	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/repository"
)

var ErrNoAnnouncement = errors.New("no announcement has been posted")

// AnnouncementFanOut receives a newly posted announcement. Best-effort.
type AnnouncementFanOut interface {
	AnnouncementPosted(ctx context.Context, announcement *domain.Announcement)
}

// AnnouncementService manages the single pinned announcement.
type AnnouncementService interface {
	GetAnnouncement(ctx context.Context) (*domain.Announcement, error)
	// PostAnnouncement replaces the current announcement and fans out to
	// every user except the poster.
	PostAnnouncement(ctx context.Context, message, postedBy, postedByUID string) (*domain.Announcement, error)
}

type announcementService struct {
	announcementRepo repository.AnnouncementRepository
	fanOut           AnnouncementFanOut
}

// NewAnnouncementService creates a new instance of announcementService.
func NewAnnouncementService(announcementRepo repository.AnnouncementRepository, fanOut AnnouncementFanOut) AnnouncementService {
	return &announcementService{
		announcementRepo: announcementRepo,
		fanOut:           fanOut,
	}
}

// GetAnnouncement returns the current announcement.
func (s *announcementService) GetAnnouncement(ctx context.Context) (*domain.Announcement, error) {
	announcement, err := s.announcementRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoAnnouncement
		}
		return nil, err
	}
	return announcement, nil
}

// PostAnnouncement stores and broadcasts a new announcement.
func (s *announcementService) PostAnnouncement(ctx context.Context, message, postedBy, postedByUID string) (*domain.Announcement, error) {
	if message == "" {
		return nil, errors.New("announcement message cannot be empty")
	}

	announcement := &domain.Announcement{
		Message:     message,
		PostedBy:    postedBy,
		PostedByUID: postedByUID,
		PostedAt:    time.Now().UTC(),
	}

	if err := s.announcementRepo.Set(ctx, announcement); err != nil {
		return nil, err
	}

	go func() {
		fanCtx, cancel := context.WithTimeout(context.Background(), fanOutTimeout)
		defer cancel()
		s.fanOut.AnnouncementPosted(fanCtx, announcement)
	}()

	return announcement, nil
}
