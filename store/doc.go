// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the relational data store behind the election.

All voter state lives in the database. Each call reads or writes it
directly and nothing is cached between requests.

# Atomic primitives

Three operations carry the election's correctness guarantees:

  - StoreOTP attaches a code only while the voter has not voted.
  - ConsumeOTP checks the lockout, clears a matching, unexpired code
    and records the failure or clears the counter in one transaction.
    Verifications for one NIM serialize on its otp_attempt row.
  - RecordVoteIfNotAlreadyVoted flips already_voted with a conditional
    update and inserts the vote in one transaction. vote.voter_nim is
    UNIQUE, so the database itself refuses a second vote.

Failed OTP verifications are counted in the otp_attempt table, so the
lockout holds across server instances and restarts.

# Errors

Constraint violations are translated into ErrConflict, ErrInUse and the
voter/candidate sentinels. Anything else is wrapped with context and
returned as is.
*/
package store
