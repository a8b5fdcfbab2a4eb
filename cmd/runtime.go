package cmd

import (
	"context"
	"fmt"
	"maps"
	"time"

	"pwsi/core/config"
	"pwsi/core/database"
	"pwsi/core/enrich/mal"
	"pwsi/core/enrich/steam"
	"pwsi/core/loader"
	"pwsi/core/logger"
	"pwsi/core/registry"
	"pwsi/core/secrets"
	"pwsi/feature/anime"
	"pwsi/feature/auctions"
	"pwsi/feature/challenges"
	"pwsi/feature/credits"
	"pwsi/feature/dataparams"
	"pwsi/feature/games"
	"pwsi/feature/lore"
	"pwsi/feature/marathons"
	"pwsi/feature/merch"
	"pwsi/feature/roulette"
	"pwsi/feature/socials"
	"pwsi/feature/twitchbot"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// models lists every table the site owns, in migration order.
var models = []any{
	&anime.Title{},
	&auctions.Entry{},
	&challenges.Challenge{},
	&credits.Credit{},
	&dataparams.Param{},
	&games.Game{},
	&lore.Entry{},
	&marathons.Entry{},
	&merch.Item{},
	&roulette.Award{},
	&socials.Social{},
	&twitchbot.Item{},
	&twitchbot.Counter{},
}

type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

// bootstrap loads the configuration, overlays the secrets service and
// connects to the database.
func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(envDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	provider := secrets.New(cfg.Secrets, logg)
	if provider.Enabled() {
		s, err := provider.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch secrets: %w", err)
		}
		if len(s.Missing) > 0 {
			logg.Warn("Secrets service is missing keys", zap.Strings("keys", s.Missing))
		}
		cfg.Overlay(s)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}
	logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	return &runtime{cfg: cfg, logger: logg, db: db}, nil
}

// site is every resource feature wired to the registry.
type site struct {
	registry *registry.Registry
	features []loader.Feature
}

// buildSite creates every resource feature and registers its resources.
func buildSite(rt *runtime) (*site, error) {
	l, db := rt.logger, rt.db
	streamer := rt.cfg.Site.Streamer
	prober := steam.New(rt.cfg.Enrich.Steam, l)
	lookup := mal.New(rt.cfg.Enrich.MAL, l)
	delay := time.Duration(rt.cfg.Site.CounterDelaySeconds) * time.Second

	params := dataparams.NewFeature(db, l)
	animeF := anime.NewFeature(db, lookup, streamer, l)
	auctionsF := auctions.NewFeature(db, l)
	challengesF := challenges.NewFeature(db, l)
	creditsF := credits.NewFeature(db, l)
	gamesF := games.NewFeature(db, prober, streamer, l)
	loreF := lore.NewFeature(db, l)
	marathonsF := marathons.NewFeature(db, prober, l)
	merchF := merch.NewFeature(db, params.Service(), l)
	rouletteF := roulette.NewFeature(db, l)
	socialsF := socials.NewFeature(db, l)
	bot := twitchbot.NewFeature(db, delay, l)

	resources := map[registry.Name]registry.Resource{
		registry.Anime:      animeF.Service(),
		registry.Auctions:   auctionsF.Service(),
		registry.Challenges: challengesF.Service(),
		registry.Credits:    creditsF.Service(),
		registry.DataParams: params.Service(),
		registry.Games:      gamesF.Service(),
		registry.Lore:       loreF.Service(),
		registry.Marathons:  marathonsF.Service(),
		registry.Merch:      merchF.Service(),
		registry.Roulette:   rouletteF.Service(),
		registry.Socials:    socialsF.Service(),
	}
	maps.Copy(resources, bot.Resources())

	reg := registry.New()
	for name, res := range resources {
		if err := reg.Register(name, res); err != nil {
			return nil, err
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	return &site{
		registry: reg,
		features: []loader.Feature{
			params, animeF, auctionsF, challengesF, creditsF, gamesF,
			loreF, marathonsF, merchF, rouletteF, socialsF, bot,
		},
	}, nil
}
