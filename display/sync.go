// Package display renders the dashboard for the e-ink device and pushes it
// to the device backend.
package display

import (
	"context"
	"strings"
	"time"

	"github.com/andocmdo/eink-display-control-panel/log"
	"github.com/andocmdo/eink-display-control-panel/models"
)

var logger = log.GetLogger("Display")

// DeviceConfig holds the backend credentials and screen options
type DeviceConfig struct {
	BaseURL  string
	Username string
	Password string
	ScreenID string

	// Optional screen attributes, omitted when empty
	Label   string
	Name    string
	ModelID string

	// TokenPath is a JSONPath into the login response
	TokenPath string
	Timeout   time.Duration
}

// Validate reports the required settings that are missing
func (c DeviceConfig) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"base_url", c.BaseURL},
		{"username", c.Username},
		{"password", c.Password},
		{"screen_id", c.ScreenID},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// Loader provides the snapshot to render
type Loader interface {
	Load(ctx context.Context) (*models.Snapshot, error)
}

// Notifier is told about the result of each sync
type Notifier interface {
	NotifyDisplaySynced(screenID string, ok bool, stage string)
}

// Outcome describes a successful sync
type Outcome struct {
	Stage          Stage  `json:"stage"`
	ScreenID       string `json:"screen_id"`
	ServerResponse any    `json:"server_response,omitempty"`
}

// Pipeline authenticates, renders and pushes the dashboard. It never retries;
// a failed sync is reported and left to the next trigger.
type Pipeline struct {
	cfg      DeviceConfig
	loader   Loader
	client   *Client
	now      func() time.Time
	notifier Notifier
}

// NewPipeline creates a pipeline for one screen
func NewPipeline(cfg DeviceConfig, loader Loader) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		loader: loader,
		client: NewClient(cfg.BaseURL, cfg.Timeout, cfg.TokenPath),
		now:    time.Now,
	}
}

// SetNotifier registers a sync notifier
func (p *Pipeline) SetNotifier(n Notifier) {
	p.notifier = n
}

// Preview loads and renders the dashboard without contacting the device
func (p *Pipeline) Preview(ctx context.Context) (Content, error) {
	snap, err := p.loader.Load(ctx)
	if err != nil {
		return Content{}, err
	}
	return Render(snap, p.now()), nil
}

// Sync pushes the current dashboard to the screen. Failures are returned as
// *SyncError carrying the stage that failed.
func (p *Pipeline) Sync(ctx context.Context) (*Outcome, error) {
	return p.run(ctx, func(ctx context.Context) (string, error) {
		snap, err := p.loader.Load(ctx)
		if err != nil {
			return "", err
		}
		return Render(snap, p.now()).HTML, nil
	})
}

// PushContent pushes pre-rendered HTML to the screen
func (p *Pipeline) PushContent(ctx context.Context, content string) (*Outcome, error) {
	return p.run(ctx, func(context.Context) (string, error) {
		return content, nil
	})
}

func (p *Pipeline) run(ctx context.Context, render func(context.Context) (string, error)) (*Outcome, error) {
	start := time.Now()

	if err := p.cfg.Validate(); err != nil {
		return nil, p.fail(StageNotConfigured, err)
	}

	token, err := p.client.Login(ctx, p.cfg.Username, p.cfg.Password)
	if err != nil {
		return nil, p.fail(StageAuthenticating, err)
	}

	content, err := render(ctx)
	if err != nil {
		return nil, p.fail(StageRendering, err)
	}

	ack, err := p.client.UpdateScreen(ctx, token, p.cfg.ScreenID, ScreenUpdate{
		Content: content,
		Label:   p.cfg.Label,
		Name:    p.cfg.Name,
		ModelID: p.cfg.ModelID,
	})
	if err != nil {
		return nil, p.fail(StagePushing, err)
	}

	logger.Info().
		Str("screen", p.cfg.ScreenID).
		Int("status", ack.StatusCode).
		Int("bytes", len(content)).
		Dur("took", time.Since(start)).
		Msg("display updated")

	if p.notifier != nil {
		p.notifier.NotifyDisplaySynced(p.cfg.ScreenID, true, string(StageSucceeded))
	}
	return &Outcome{Stage: StageSucceeded, ScreenID: p.cfg.ScreenID, ServerResponse: ack.Body}, nil
}

func (p *Pipeline) fail(stage Stage, err error) error {
	logger.Warn().Err(err).Str("stage", string(stage)).Str("screen", p.cfg.ScreenID).Msg("display sync failed")
	if p.notifier != nil {
		p.notifier.NotifyDisplaySynced(p.cfg.ScreenID, false, string(stage))
	}
	return &SyncError{Stage: stage, Err: err}
}
