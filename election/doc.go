// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election implements the voter workflow: login, OTP issuance,
OTP verification and the single vote.

# Login policies

The login method stored in app_settings selects a LoginPolicy:

  - CampusFormat ("campus_email_format"): the email's local part must be
    the NIM and the program code (first four NIM characters) must be an
    allowed program. Unseen NIMs register themselves.
  - CuratedList ("database_email_list"): the NIM and email must already
    be registered by an admin.

# Verification

A voter is verified when no code is pending and last_login_at is set.
Failed verifications are counted per NIM; reaching the configured
maximum within the window locks the NIM out. Wrong, expired and missing
codes are reported identically.

# Voting

SubmitVote delegates to a single store transaction that refuses voters
who already voted or still have a pending code. At most one vote per
voter is ever recorded, however many requests race.

Store errors never reach callers. They are logged and replaced with
ErrTransient.
*/
package election
