// Package config provides configuration management for the site backend.
//
// It uses Viper for loading configuration from environment variables and an
// optional .env file. Defaults live in the `default` struct tags of every
// section and are registered by reflection.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, route prefix, metrics toggle
//   - Database: driver (postgres, mysql, sqlite) and connection details
//   - Storage: S3/MinIO credentials and the backup bucket
//   - Log: logging level and format
//   - Enrich: Steam and MyAnimeList clients
//   - Secrets: optional secrets service overlaying credentials
//   - Backup: snapshot schedule and retention
//   - Site: streamer name and counter settings
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
