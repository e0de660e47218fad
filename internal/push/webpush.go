package push

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"

	"kamenko/gym-app/internal/config"
	"kamenko/gym-app/internal/domain"

	"github.com/SherClockHolmes/webpush-go"
)

// sendFunc is the low-level single-endpoint send. Injectable so tests can
// exercise the batch/pruning logic without a live push gateway.
type sendFunc func(ctx context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

// webpushDispatcher implements Dispatcher over the Web Push protocol with
// VAPID authentication.
type webpushDispatcher struct {
	cfg  config.VAPIDConfig
	send sendFunc

	initOnce sync.Once
	opts     *webpush.Options
}

// NewWebPushDispatcher creates a Dispatcher signing with the configured
// VAPID key pair. The signing options are built once, on first use.
func NewWebPushDispatcher(cfg config.VAPIDConfig) Dispatcher {
	return &webpushDispatcher{
		cfg:  cfg,
		send: webpush.SendNotificationWithContext,
	}
}

// options lazily initializes the VAPID signing options. One-time,
// idempotent; there is nothing to tear down.
func (d *webpushDispatcher) options() *webpush.Options {
	d.initOnce.Do(func() {
		d.opts = &webpush.Options{
			Subscriber:      d.cfg.Subscriber,
			VAPIDPublicKey:  d.cfg.PublicKey,
			VAPIDPrivateKey: d.cfg.PrivateKey,
			TTL:             3600,
		}
	})
	return d.opts
}

// Send delivers the payload to every subscription in the batch, each on its
// own goroutine. Per-endpoint failures are tallied and logged, never
// returned as errors: push delivery is fire-and-forget relative to whatever
// state change triggered it.
func (d *webpushDispatcher) Send(ctx context.Context, subscriptions []domain.PushSubscription, title, body string) Result {
	if len(subscriptions) == 0 {
		return Result{}
	}

	message, err := json.Marshal(Payload{Title: title, Body: body, URL: NotificationURL})
	if err != nil {
		log.Printf("ERROR: Failed to marshal push payload: %v", err)
		return Result{Failed: len(subscriptions)}
	}

	opts := d.options()

	var (
		mu     sync.Mutex
		result Result
		wg     sync.WaitGroup
	)

	for _, sub := range subscriptions {
		wg.Add(1)
		go func(sub domain.PushSubscription) {
			defer wg.Done()

			wpSub := &webpush.Subscription{
				Endpoint: sub.Endpoint,
				Keys: webpush.Keys{
					P256dh: sub.Keys.P256dh,
					Auth:   sub.Keys.Auth,
				},
			}

			resp, err := d.send(ctx, message, wpSub, opts)
			if resp != nil {
				// Drain so the transport can reuse the connection
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed++
			case isEndpointGone(resp.StatusCode):
				// The gateway says this subscription no longer exists;
				// report it for removal from the user's registry.
				result.Failed++
				result.StaleEndpoints = append(result.StaleEndpoints, sub.Endpoint)
			case resp.StatusCode >= 400:
				result.Failed++
			default:
				result.Success++
			}
		}(sub)
	}

	wg.Wait()

	log.Printf("Push sent: %d success, %d failure", result.Success, result.Failed)
	return result
}

// isEndpointGone reports whether the gateway status means the subscription
// is permanently dead (as opposed to a transient delivery failure).
func isEndpointGone(statusCode int) bool {
	return statusCode == http.StatusGone || statusCode == http.StatusNotFound
}
