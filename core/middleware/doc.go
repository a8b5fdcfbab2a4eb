// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation for mutating and admin routes.
//   - rayid: tags every request with a ray id, set on the context and the
//     response headers for tracing.
//   - requestlog: logs every request with its ray id and counts it in the
//     request metrics.
package middleware
