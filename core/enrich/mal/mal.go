package mal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pwsi/core/enrich"
	"pwsi/core/metrics"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config holds configuration for the MyAnimeList client.
type Config struct {
	// Enabled turns outbound lookups on.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// BaseURL is the API root.
	BaseURL string `mapstructure:"base_url" default:"https://api.myanimelist.net/v2"`
	// Header is the auth header name.
	Header string `mapstructure:"header" default:"X-MAL-CLIENT-ID"`
	// ClientID is the auth header value.
	ClientID string `mapstructure:"client_id" default:""`
	// TimeoutSeconds bounds each request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// RPS limits outbound requests per second.
	RPS float64 `mapstructure:"rps" default:"2"`
	// Burst is the limiter bucket size.
	Burst int `mapstructure:"burst" default:"2"`
	// CacheSeconds is how long lookups are remembered.
	CacheSeconds int `mapstructure:"cache_seconds" default:"600"`
}

const fields = "mean,media_type,status,num_episodes"

var typeNames = map[string]string{
	"tv":      "Сериал",
	"movie":   "Фильм",
	"ova":     "OVA",
	"special": "Спецвыпуск",
}

// Info is the metadata learned about one anime.
type Info struct {
	Link     string
	Picture  string
	Type     string
	Episodes int
}

var errStatus = errors.New("unexpected status")

// Client looks anime up in the MyAnimeList API.
type Client struct {
	cfg     Config
	client  *fasthttp.Client
	limiter *rate.Limiter
	timeout time.Duration
	memo    *enrich.Memo[Info]
	logger  *zap.Logger
}

// New creates a client.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		cfg:     cfg,
		client:  &fasthttp.Client{Name: "pwsi"},
		limiter: rate.NewLimiter(limit, burst),
		timeout: timeout,
		memo:    enrich.NewMemo[Info](time.Duration(cfg.CacheSeconds) * time.Second),
		logger:  logger,
	}
}

// Lookup returns what the API knows about id. Every failure is logged and
// yields an empty Info.
func (c *Client) Lookup(ctx context.Context, id int64) Info {
	if !c.cfg.Enabled || !enrich.External(id) {
		return Info{}
	}
	info, err := c.memo.Do(ctx, fmt.Sprint(id), func(ctx context.Context) (Info, error) {
		return c.fetch(ctx, id)
	})
	if err != nil {
		metrics.Lookups.WithLabelValues("mal", metrics.Failed).Inc()
		c.logger.Warn("Error getting anime info from MAL", zap.Int64("id", id), zap.Error(err))
		return Info{}
	}
	metrics.Lookups.WithLabelValues("mal", metrics.OK).Inc()
	return info
}

func (c *Client) fetch(ctx context.Context, id int64) (Info, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Info{}, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/anime/%d?fields=%s", strings.TrimRight(c.cfg.BaseURL, "/"), id, fields))
	req.Header.SetMethod(fasthttp.MethodGet)
	if c.cfg.Header != "" {
		req.Header.Set(c.cfg.Header, c.cfg.ClientID)
	}

	if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		return Info{}, err
	}
	body := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		return Info{}, fmt.Errorf("%w %d: %s", errStatus, resp.StatusCode(), truncate(body, 200))
	}
	if !gjson.ValidBytes(body) {
		return Info{}, errors.New("invalid response body")
	}

	doc := gjson.ParseBytes(body)
	picture := doc.Get("main_picture.large")
	mediaType := doc.Get("media_type")
	episodes := doc.Get("num_episodes")
	if !picture.Exists() || !mediaType.Exists() || !episodes.Exists() {
		return Info{}, errors.New("incomplete anime details in response")
	}

	kind := mediaType.String()
	if name, ok := typeNames[strings.ToLower(kind)]; ok {
		kind = name
	}
	return Info{
		Link:     fmt.Sprintf("https://myanimelist.net/anime/%d", id),
		Picture:  picture.String(),
		Type:     kind,
		Episodes: int(episodes.Int()),
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
