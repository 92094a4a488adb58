// Package server provides the HTTP API for the setlist service.
//
// # Router
//
// Routes are mounted on a [chi.Router] with a request-logging middleware.
// Handlers live on a single [Handler] struct holding the domain dependencies
// (song search, repositories) so tests can construct one over fakes.
//
// # Error mapping
//
// Handlers translate the shared error taxonomy to status codes:
//   - [shared.ErrNotFound] : 404
//   - [shared.ErrDuplicate] : 409
//   - [shared.ErrInvalidInput] and validation failures : 400
//   - anything else : 500
//
// A song search whose query is too short is not an error: it returns 200 with
// an empty list, and a catalog outage degrades the same search to local rows
// rather than failing the request.
package server
