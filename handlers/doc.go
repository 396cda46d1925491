// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Violie election API.

# Handler Types

  - AuthHandler: voter login, code resend and code verification
  - VoteHandler: vote submission
  - AdminHandler: admin login (bcrypt password, JWT bearer token)
  - CandidateHandler: public candidate list and admin CRUD
  - ProgramHandler: allowed study programs
  - SettingsHandler: public and admin election settings
  - VoterHandler: voter list, registration, deletion and vote reset

Voter-facing handlers wrap an *election.Service; admin handlers use the
*store.Store directly:

	svc := election.NewService(st, m, cfg)
	authHandler := handlers.NewAuthHandler(svc)

# Voter Flow

	POST /auth/login      → Login (mails a 6 digit code)
	POST /auth/verify-otp → VerifyOTP
	POST /vote/submit     → Submit (returns auto_logout after 10s)

# Errors

Election errors are translated in one place (writeError) into a status
and a machine-readable errorCode:

	400 VALIDATION_ERROR, CREDENTIAL_MISMATCH, INVALID_OR_EXPIRED_OTP
	403 NOT_ELIGIBLE, ALREADY_VOTED, VERIFICATION_PENDING
	404 VOTER_NOT_FOUND, INVALID_CANDIDATE
	409 EMAIL_TAKEN
	429 RATE_LIMITED (with Retry-After)
	500 DELIVERY_FAILED, TRANSIENT_FAILURE
*/
package handlers
