// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - LoginRequest: nim, email (login and resend-otp)
  - VerifyOTPRequest: nim, otp
  - SubmitVoteRequest: nim, candidateId
  - AdminLoginRequest: email, password
  - CandidateRequest, ProgramRequest, SettingsRequest, RegisterVoterRequest

# Response Types

Types for JSON responses:

  - LoginResponse: message, nim, email, programName, alreadyVoted
  - VerifyOTPResponse: message, alreadyVoted, programName
  - SubmitVoteResponse: message, action, delay
  - AdminLoginResponse: token, expiresAt
  - VoterListResponse: voters, totalVoters, currentPage, totalPages
  - ErrorResponse: message, errorCode, attemptsRemaining, retryAfterSeconds

# Domain Types

Internal data structures:

  - Voter: identity, pending OTP (hash only, never serialized), vote flag
  - AllowedProgram: program code gating self-registration
  - Candidate: candidate pair with cabinet and platform
  - Vote: one per voter
  - AppSettings: title, logos, login method
  - AdminUser: admin account

# Constants

Login methods:

	LoginCampusEmailFormat = "campus_email_format"
	LoginDatabaseEmailList = "database_email_list"

Vote outcome:

	ActionAutoLogout  = "auto_logout"
	AutoLogoutDelayMS = 10000
*/
package models
