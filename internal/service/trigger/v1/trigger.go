// Package trigger implements the best-effort automation trigger firing an
// external CI event after link mutations.
package trigger

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/localan/shortener/internal/config"
	"github.com/localan/shortener/internal/service/trigger"
)

// Check interface implementation explicitly
var (
	_ trigger.Notifier = (*Trigger)(nil)
)

const dispatchEventType = "sync-redirects"

// dispatchPayload is the repository_dispatch body expected by the CI
// workflow that regenerates and deploys the manifest.
type dispatchPayload struct {
	EventType     string        `json:"event_type"`
	ClientPayload clientPayload `json:"client_payload"`
}

type clientPayload struct {
	TriggeredBy string `json:"triggered_by"`
	Timestamp   string `json:"timestamp"`
}

// Trigger struct defines data structure handling and provides support for
// adding new implementations.
type Trigger struct {
	cfg    *config.TriggerConfig
	client *resty.Client
	log    *zap.Logger
}

// InitTrigger initializes a Trigger object with a resty client carrying an
// explicit request timeout; expiry counts as a failed trigger.
func InitTrigger(cfg *config.TriggerConfig, log *zap.Logger) *Trigger {
	client := resty.New()
	client.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	return &Trigger{cfg: cfg, client: client, log: log}
}

// Trigger fires the configured automation endpoints. All failures are
// caught, logged and converted to false; nothing is retried.
func (t *Trigger) Trigger(ctx context.Context) bool {
	configured := false
	ok := true
	if t.cfg.DispatchURL != "" {
		configured = true
		ok = t.fireDispatch(ctx) && ok
	}
	if t.cfg.DeployHookURL != "" {
		configured = true
		ok = t.fireDeployHook(ctx) && ok
	}
	return configured && ok
}

// TriggerAsync fires the trigger on its own goroutine with a fresh
// context; callers never await or observe the outcome.
func (t *Trigger) TriggerAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(t.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
		t.Trigger(ctx)
	}()
}

func (t *Trigger) fireDispatch(ctx context.Context) bool {
	payload := dispatchPayload{
		EventType: dispatchEventType,
		ClientPayload: clientPayload{
			TriggeredBy: "api_link_update",
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		},
	}
	req := t.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	if t.cfg.DispatchToken != "" {
		req.SetHeader("Authorization", "token "+t.cfg.DispatchToken)
	}
	res, err := req.Post(t.cfg.DispatchURL)
	if err != nil {
		t.log.Warn("automation dispatch failed", zap.Error(err))
		return false
	}
	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		t.log.Warn("automation dispatch rejected", zap.Int("status", res.StatusCode()))
		return false
	}
	t.log.Info("automation dispatch triggered")
	return true
}

func (t *Trigger) fireDeployHook(ctx context.Context) bool {
	res, err := t.client.R().SetContext(ctx).Post(t.cfg.DeployHookURL)
	if err != nil {
		t.log.Warn("deploy hook failed", zap.Error(err))
		return false
	}
	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		t.log.Warn("deploy hook rejected", zap.Int("status", res.StatusCode()))
		return false
	}
	t.log.Info("deploy hook triggered")
	return true
}
