package push

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"kamenko/gym-app/internal/config"
	"kamenko/gym-app/internal/domain"

	"github.com/SherClockHolmes/webpush-go"
)

func testDispatcher(send sendFunc) *webpushDispatcher {
	return &webpushDispatcher{
		cfg: config.VAPIDConfig{
			Subscriber: "mailto:coach@example.com",
			PublicKey:  "pub",
			PrivateKey: "priv",
		},
		send: send,
	}
}

func subscription(endpoint string) domain.PushSubscription {
	return domain.PushSubscription{
		Endpoint: endpoint,
		Keys:     domain.PushSubscriptionKeys{P256dh: "p256dh", Auth: "auth"},
	}
}

func response(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
	}
}

func TestSendTalliesPerEndpoint(t *testing.T) {
	var mu sync.Mutex
	statusByEndpoint := map[string]int{
		"https://push/a": http.StatusCreated,
		"https://push/b": http.StatusCreated,
		"https://push/c": http.StatusInternalServerError,
	}

	d := testDispatcher(func(ctx context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		return response(statusByEndpoint[sub.Endpoint]), nil
	})

	result := d.Send(context.Background(), []domain.PushSubscription{
		subscription("https://push/a"),
		subscription("https://push/b"),
		subscription("https://push/c"),
	}, "Title", "Body")

	if result.Success != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 success / 1 failed, got %d / %d", result.Success, result.Failed)
	}
	if len(result.StaleEndpoints) != 0 {
		t.Fatalf("5xx is transient, not stale: %v", result.StaleEndpoints)
	}
}

func TestSendReportsGoneEndpointsAsStale(t *testing.T) {
	var mu sync.Mutex
	statusByEndpoint := map[string]int{
		"https://push/live": http.StatusCreated,
		"https://push/410":  http.StatusGone,
		"https://push/404":  http.StatusNotFound,
	}

	d := testDispatcher(func(ctx context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		return response(statusByEndpoint[sub.Endpoint]), nil
	})

	result := d.Send(context.Background(), []domain.PushSubscription{
		subscription("https://push/live"),
		subscription("https://push/410"),
		subscription("https://push/404"),
	}, "Title", "Body")

	if result.Success != 1 || result.Failed != 2 {
		t.Fatalf("expected 1 success / 2 failed, got %d / %d", result.Success, result.Failed)
	}
	if len(result.StaleEndpoints) != 2 {
		t.Fatalf("expected both gone endpoints reported stale, got %v", result.StaleEndpoints)
	}
	for _, endpoint := range result.StaleEndpoints {
		if endpoint != "https://push/410" && endpoint != "https://push/404" {
			t.Fatalf("unexpected stale endpoint %q", endpoint)
		}
	}
}

func TestSendTransportErrorCountsAsFailure(t *testing.T) {
	d := testDispatcher(func(ctx context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
		return nil, context.DeadlineExceeded
	})

	result := d.Send(context.Background(), []domain.PushSubscription{subscription("https://push/a")}, "Title", "Body")

	if result.Success != 0 || result.Failed != 1 {
		t.Fatalf("expected 0 success / 1 failed, got %d / %d", result.Success, result.Failed)
	}
	if len(result.StaleEndpoints) != 0 {
		t.Fatalf("transport errors must not mark endpoints stale: %v", result.StaleEndpoints)
	}
}

func TestSendEmptyBatch(t *testing.T) {
	called := false
	d := testDispatcher(func(ctx context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
		called = true
		return response(http.StatusCreated), nil
	})

	result := d.Send(context.Background(), nil, "Title", "Body")

	if called {
		t.Fatal("empty batch must not hit the gateway")
	}
	if result.Success != 0 || result.Failed != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestSendPayloadShape(t *testing.T) {
	var mu sync.Mutex
	var captured []byte
	d := testDispatcher(func(ctx context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
		mu.Lock()
		captured = message
		mu.Unlock()
		return response(http.StatusCreated), nil
	})

	d.Send(context.Background(), []domain.PushSubscription{subscription("https://push/a")}, "Session Today", "Your 18:00 session is today!")

	var payload Payload
	if err := json.Unmarshal(captured, &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.Title != "Session Today" || payload.Body != "Your 18:00 session is today!" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.URL != NotificationURL {
		t.Fatalf("expected payload URL %q, got %q", NotificationURL, payload.URL)
	}
}
