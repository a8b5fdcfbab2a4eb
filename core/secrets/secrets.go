package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Config holds configuration for the secrets service.
type Config struct {
	// URL is the secrets service root. Empty disables the provider.
	URL string `mapstructure:"url" default:""`
	// Header is the auth header name.
	Header string `mapstructure:"header" default:"X-Secrets-Token"`
	// Token is the auth header value.
	Token string `mapstructure:"token" default:""`
	// Env selects the "<env>/" key prefix.
	Env string `mapstructure:"env" default:"dev"`
	// MaxAttempts bounds the startup retry loop.
	MaxAttempts int `mapstructure:"max_attempts" default:"6"`
	// InitialIntervalMs is the first retry delay.
	InitialIntervalMs int `mapstructure:"initial_interval_ms" default:"500"`
	// TimeoutSeconds bounds each request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}

// Database holds the relational store credentials.
type Database struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// MAL holds MyAnimeList API access settings.
type MAL struct {
	BaseURL  string
	Header   string
	ClientID string
}

// Secrets is the subset of the secrets service the backend consumes.
type Secrets struct {
	Database *Database
	MAL      *MAL
	Streamer string
	APIKey   string
	// Missing lists the expected keys the service did not return.
	Missing []string
}

var errStatus = errors.New("unexpected status from secrets service")

// Provider fetches secrets over HTTP.
type Provider struct {
	cfg    Config
	client *fasthttp.Client
	logger *zap.Logger
}

// New creates a provider.
func New(cfg Config, logger *zap.Logger) *Provider {
	return &Provider{cfg: cfg, client: &fasthttp.Client{Name: "pwsi"}, logger: logger}
}

// Enabled reports whether a secrets service is configured.
func (p *Provider) Enabled() bool {
	return p.cfg.URL != ""
}

// Fetch loads the secrets, retrying with exponential backoff while the
// service is unreachable or answers with a server error.
func (p *Provider) Fetch(ctx context.Context) (*Secrets, error) {
	policy := backoff.NewExponentialBackOff()
	if p.cfg.InitialIntervalMs > 0 {
		policy.InitialInterval = time.Duration(p.cfg.InitialIntervalMs) * time.Millisecond
	}
	attempts := p.cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	return backoff.Retry(ctx, func() (*Secrets, error) {
		s, err := p.fetch()
		var status statusError
		if errors.As(err, &status) && status.code < 500 {
			return nil, backoff.Permanent(err)
		}
		return s, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			p.logger.Warn("Secrets service not ready, retrying", zap.Duration("next", next), zap.Error(err))
		}),
	)
}

type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("%s: %d", errStatus.Error(), e.code)
}

func (e statusError) Unwrap() error {
	return errStatus
}

func (p *Provider) fetch() (*Secrets, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("search", p.cfg.Env+"/")

	req.SetRequestURI(strings.TrimRight(p.cfg.URL, "/") + "/api/secrets?" + args.String())
	req.Header.SetMethod(fasthttp.MethodGet)
	if p.cfg.Header != "" {
		req.Header.Set(p.cfg.Header, p.cfg.Token)
	}

	timeout := time.Duration(p.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if err := p.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("secrets request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, statusError{code: resp.StatusCode()}
	}
	return p.parse(resp.Body())
}

func (p *Provider) parse(body []byte) (*Secrets, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("secrets response is not json")
	}
	content := gjson.GetBytes(body, "content").Map()
	key := func(name string) string { return p.cfg.Env + "/" + name }

	s := &Secrets{}
	if v, ok := content[key("db/postgres")]; ok {
		s.Database = &Database{
			Host:     v.Get("host").String(),
			Port:     int(v.Get("port").Int()),
			User:     v.Get("user").String(),
			Password: v.Get("password").String(),
			Name:     v.Get("database").String(),
		}
	} else {
		s.Missing = append(s.Missing, key("db/postgres"))
	}

	if v, ok := content[key("mal")]; ok {
		s.MAL = &MAL{
			BaseURL:  v.Get("api_url").String(),
			Header:   v.Get("header").String(),
			ClientID: v.Get("client_id").String(),
		}
	} else {
		s.Missing = append(s.Missing, key("mal"))
	}

	if v, ok := content[key("streamer")]; ok {
		s.Streamer = v.Get("name").String()
	} else {
		s.Missing = append(s.Missing, key("streamer"))
	}

	if v, ok := content[key("auth")]; ok {
		s.APIKey = v.Get("admin_tmp_token").String()
	} else {
		s.Missing = append(s.Missing, key("auth"))
	}
	return s, nil
}
