// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, path, matched route, status and duration_ms, and records the
request in the schelling_point_http_request_duration_seconds histogram.

# CORS Middleware

	server := http.Server{Handler: middleware.CORS(mux)}

Allows GET, POST, PUT, DELETE, OPTIONS with headers Content-Type,
Authorization, X-Organizer-Key and X-Participant-Token.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.InsufficientCreditsResponse(w, msg, shortfall, remaining)

ParseJSONBody decodes at most 1 MiB.
*/
package middleware
