// Package server provides the HTTP server that fronts the uploader: Gin on a
// ServeMux with h2c, so HTTP/2 clients can stream bodies without TLS.
//
// The server implements component.Component and is started and stopped by
// the component registry alongside the uploader.
//
// # Middleware
//
// Applied at the handler level (server/middleware), covering every route:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - RequestLogger: method, path, status and duration per request
//
// # Endpoints
//
// Registered by RegisterDefaultEndpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /alive: liveness probe
//   - /ready: readiness probe
package server
