// Package server exposes the harvest pipeline over HTTP.
//
// GET /compilations?from=mm/yyyy&to=mm/yyyy runs a harvest for that inclusive
// month range and returns the matches as JSON. A parameter that is absent takes
// its configured default; a parameter that is present but empty leaves that
// side of the range open. GET /health is a liveness probe and GET /metrics
// returns the in-process metrics snapshot.
package server
