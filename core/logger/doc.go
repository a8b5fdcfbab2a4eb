// Package logger builds the zap logger shared by the commands and the HTTP
// server.
//
// Level "debug" selects zap's development defaults, anything else the
// production ones. Format "console" prints colored human readable lines,
// "json" one object per entry with the keys level, time and message.
//
// Handlers tag their entries with the request's ray id:
//
//	log := logger.WithRayID(s.logger, c)
//	log.Warn("Batch rejected", zap.String("resource", "merch"), zap.Error(err))
package logger
