// Package server builds the Fiber application the features mount on.
//
// New installs the shared middleware chain in order: ray id, request
// logging, the Prometheus endpoint at /metrics, a /health probe and API-key
// auth. Reads are public except below the admin path; every other request
// needs the key.
//
// # Configuration
//
// Config holds the port, the API key, the path prefix features are mounted
// under and the request body limit.
package server
