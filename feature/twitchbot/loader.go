package twitchbot

import (
	"time"

	"pwsi/core/registry"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	lists    map[registry.Name]*List
	counters map[registry.Name]*Counters
	handler  *Handler
}

// NewFeature creates every bot list and counter type.
func NewFeature(db *gorm.DB, delay time.Duration, logger *zap.Logger) *Feature {
	f := &Feature{
		lists:    make(map[registry.Name]*List, len(ListNames)),
		counters: make(map[registry.Name]*Counters, len(CounterTypes)),
	}
	for _, n := range ListNames {
		f.lists[n] = NewList(db, n, logger)
	}
	for n := range CounterTypes {
		f.counters[n] = NewCounters(db, n, delay, logger)
	}
	f.handler = NewHandler(f.lists, f.counters, logger)
	return f
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "twitchbot"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Resources exposes every list and counter type for the registry.
func (f *Feature) Resources() map[registry.Name]registry.Resource {
	out := make(map[registry.Name]registry.Resource, len(f.lists)+len(f.counters))
	for n, l := range f.lists {
		out[n] = l
	}
	for n, c := range f.counters {
		out[n] = c
	}
	return out
}
