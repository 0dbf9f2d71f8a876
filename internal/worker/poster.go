package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"invproc/internal/event"
)

// Poster delivers processing events to the gateway. Delivery is best-effort,
// at-most-once: implementations must not block job processing on a failed
// post.
type Poster interface {
	Post(ctx context.Context, env event.Envelope)
}

// HTTPPoster posts events to the gateway's internal ingress over HTTP.
// Failed posts are logged and dropped; losing an intermediate progress frame
// is acceptable, and a lost terminal event is recovered by the queue's retry
// of the whole job.
type HTTPPoster struct {
	client     *http.Client
	gatewayURL string
	secret     string
}

var _ Poster = (*HTTPPoster)(nil)

// NewHTTPPoster constructs a poster for the gateway at gatewayURL.
func NewHTTPPoster(gatewayURL, secret string) *HTTPPoster {
	return &HTTPPoster{
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		gatewayURL: gatewayURL,
		secret:     secret,
	}
}

func (p *HTTPPoster) Post(ctx context.Context, env event.Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		logJSON(map[string]any{
			"component": "worker",
			"event":     "event_post_failed",
			"status":    "error",
			"error":     err.Error(),
		})
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.gatewayURL+"/api/v1/internal/events", bytes.NewReader(body))
	if err != nil {
		logJSON(map[string]any{
			"component": "worker",
			"event":     "event_post_failed",
			"status":    "error",
			"error":     err.Error(),
		})
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(event.SecretHeader, p.secret)

	resp, err := p.client.Do(req)
	if err != nil {
		logJSON(map[string]any{
			"component":  "worker",
			"event":      "event_post_failed",
			"status":     "error",
			"event_kind": string(env.Event),
			"error":      err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logJSON(map[string]any{
			"component":   "worker",
			"event":       "event_post_rejected",
			"status":      "error",
			"event_kind":  string(env.Event),
			"status_code": resp.StatusCode,
		})
	}
}
