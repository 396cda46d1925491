// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("POST /vote/submit", middleware.WithLogging(handler))

Every request gets an X-Request-ID (kept if the client sent one). One
line is logged per request with the status, client IP and duration_ms.

# Admin Guard

Admin routes require an HS256 bearer token issued by POST /admin/login:

	mux.HandleFunc("GET /admin/voters", middleware.WithLogging(
		middleware.RequireAdmin(cfg, voterHandler.List)))

The admin email is available to the handler through AdminFromContext.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigin)(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Error bodies carry a message and an errorCode.

# Client IP Extraction

	ip := middleware.GetClientIP(r)
*/
package middleware
