package push

import (
	"context"

	"kamenko/gym-app/internal/domain"
)

// URL every push notification deep-links to. The PWA routes all push taps
// to the schedule view.
const NotificationURL = "/schedule"

// Payload is the standard push message body delivered to the service worker.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Result tallies one batch send. Delivery is best-effort: individual
// endpoint failures never block delivery to the rest of the batch, they are
// only counted, and permanently-gone endpoints are reported back so the
// caller can prune them from the owning user's registry.
type Result struct {
	Success int
	Failed  int
	// StaleEndpoints are endpoints the push gateway rejected with 404 or
	// 410, meaning the subscription no longer exists and should be removed.
	StaleEndpoints []string
}

// Dispatcher sends a push message to a batch of subscription endpoints.
type Dispatcher interface {
	Send(ctx context.Context, subscriptions []domain.PushSubscription, title, body string) Result
}
