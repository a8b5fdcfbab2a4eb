// Package loader provides the feature loading system.
//
// Every resource of the site (socials, merch, anime, ...) is a Feature that
// registers its own routes. The Manager keeps them in registration order and
// loads the enabled ones at startup:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
package loader
