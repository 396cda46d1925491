// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Violie election API.

# Route Registration

NewRouter wires the store, the election service and the mailer into a
configured http.ServeMux:

	mux := router.NewRouter(db, cfg, mailer.LogMailer{})

# Endpoints

Health:

	GET /health

Voter flow (public):

	POST /auth/login      - Identify voter and mail a code
	POST /auth/resend-otp - Replace and re-mail the pending code
	POST /auth/verify-otp - Consume the code
	POST /vote/submit     - Cast the single vote

Election data (public):

	GET /candidates
	GET /settings

Administration (Authorization: Bearer <token> from POST /admin/login):

	GET|POST /admin/candidates, GET|PUT|DELETE /admin/candidates/{id}
	GET|POST /admin/programs,   GET|PUT|DELETE /admin/programs/{code}
	GET|PUT  /admin/settings
	GET|POST /admin/voters,     DELETE /admin/voters/{nim}
	POST     /admin/voters/{nim}/reset-vote
*/
package router
