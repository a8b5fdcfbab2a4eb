package steam

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pwsi/core/enrich"
	"pwsi/core/metrics"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Config holds configuration for the Steam page prober.
type Config struct {
	// Enabled turns outbound probing on.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// StoreURL is the store page prefix the app id is appended to.
	StoreURL string `mapstructure:"store_url" default:"https://store.steampowered.com/app"`
	// Pictures lists the comma separated CDN templates tried in order; %d is the app id.
	Pictures string `mapstructure:"pictures" default:"https://cdn.akamai.steamstatic.com/steam/apps/%d/capsule_616x353.jpg,https://cdn.akamai.steamstatic.com/steam/apps/%d/header.jpg,https://cdn.cloudflare.steamstatic.com/steam/apps/%d/header.jpg"`
	// TimeoutSeconds bounds each probe request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"5"`
	// CacheSeconds is how long probe results are remembered.
	CacheSeconds int `mapstructure:"cache_seconds" default:"600"`
}

// Info is what a probe learned about an app.
type Info struct {
	Link    string
	Picture string
}

// Prober resolves store links and capsule pictures for Steam app ids.
type Prober struct {
	cfg       Config
	templates []string
	client    *fasthttp.Client
	timeout   time.Duration
	memo      *enrich.Memo[Info]
	logger    *zap.Logger
}

// New creates a prober.
func New(cfg Config, logger *zap.Logger) *Prober {
	var templates []string
	for _, t := range strings.Split(cfg.Pictures, ",") {
		if t = strings.TrimSpace(t); t != "" {
			templates = append(templates, t)
		}
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{
		cfg:       cfg,
		templates: templates,
		client:    &fasthttp.Client{Name: "pwsi", NoDefaultUserAgentHeader: true},
		timeout:   timeout,
		memo:      enrich.NewMemo[Info](time.Duration(cfg.CacheSeconds) * time.Second),
		logger:    logger,
	}
}

// Probe returns the store link and the first reachable picture for id.
// Ids outside the catalog range yield an empty Info; network failures are
// logged and only leave the picture empty.
func (p *Prober) Probe(ctx context.Context, id int64) Info {
	if !p.cfg.Enabled || !enrich.External(id) {
		return Info{}
	}
	info, _ := p.memo.Do(ctx, fmt.Sprint(id), func(ctx context.Context) (Info, error) {
		return p.probe(ctx, id), nil
	})
	return info
}

func (p *Prober) probe(ctx context.Context, id int64) Info {
	info := Info{Link: fmt.Sprintf("%s/%d", strings.TrimRight(p.cfg.StoreURL, "/"), id)}

	for _, tmpl := range p.templates {
		if ctx.Err() != nil {
			break
		}
		url := fmt.Sprintf(tmpl, id)
		ok, err := p.available(url)
		if err != nil {
			metrics.Lookups.WithLabelValues("steam", metrics.Failed).Inc()
			p.logger.Warn("Steam picture probe failed", zap.Int64("id", id), zap.String("url", url), zap.Error(err))
			continue
		}
		if ok {
			metrics.Lookups.WithLabelValues("steam", metrics.OK).Inc()
			info.Picture = url
			return info
		}
	}
	metrics.Lookups.WithLabelValues("steam", metrics.Empty).Inc()
	p.logger.Warn("No valid picture for steam game", zap.Int64("id", id))
	return info
}

func (p *Prober) available(url string) (bool, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	// HEAD answers with the same status without sending the image.
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodHead)

	if err := p.client.DoTimeout(req, resp, p.timeout); err != nil {
		return false, err
	}
	return resp.StatusCode() == fasthttp.StatusOK, nil
}
