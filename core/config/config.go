package config

import (
	"reflect"
	"strings"

	"pwsi/core/backup"
	"pwsi/core/database"
	"pwsi/core/enrich/mal"
	"pwsi/core/enrich/steam"
	"pwsi/core/logger"
	"pwsi/core/secrets"
	"pwsi/core/server"
	"pwsi/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage keeping backups.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Enrich holds the external lookup services.
	Enrich Enrich `mapstructure:"enrich"`
	// Secrets holds the optional secrets service.
	Secrets secrets.Config `mapstructure:"secrets"`
	// Backup holds the snapshot schedule.
	Backup backup.Config `mapstructure:"backup"`
	// Site holds settings of the site itself.
	Site Site `mapstructure:"site"`
}

// Enrich groups the enrichment clients.
type Enrich struct {
	Steam steam.Config `mapstructure:"steam"`
	MAL   mal.Config   `mapstructure:"mal"`
}

// Site holds settings shared by the resource features.
type Site struct {
	// Streamer is the customer name used when an order has no author.
	Streamer string `mapstructure:"streamer" default:"Ksyshenka"`
	// CounterDelaySeconds is the minimal gap between two counter increments.
	CounterDelaySeconds int `mapstructure:"counter_delay_seconds" default:"30"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// SERVER_PORT -> server.port, ENRICH_MAL_CLIENT_ID -> enrich.mal.client_id
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Overlay replaces the locally configured credentials with the ones the
// secrets service returned. Values the service did not provide stay as
// configured.
func (c *Config) Overlay(s *secrets.Secrets) {
	if s == nil {
		return
	}
	if db := s.Database; db != nil {
		overlayString(&c.Database.Host, db.Host)
		overlayString(&c.Database.User, db.User)
		overlayString(&c.Database.Password, db.Password)
		overlayString(&c.Database.Name, db.Name)
		if db.Port > 0 {
			c.Database.Port = db.Port
		}
	}
	if m := s.MAL; m != nil {
		overlayString(&c.Enrich.MAL.BaseURL, m.BaseURL)
		overlayString(&c.Enrich.MAL.Header, m.Header)
		overlayString(&c.Enrich.MAL.ClientID, m.ClientID)
	}
	overlayString(&c.Site.Streamer, s.Streamer)
	overlayString(&c.Server.ApiKey, s.APIKey)
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
