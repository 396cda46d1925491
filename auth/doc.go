// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides one-time codes, credential hashing and admin tokens.

# One-Time Codes

Codes are six random digits drawn from crypto/rand:

	code, err := auth.GenerateOTPCode()

Only an HMAC-SHA256 of the code, bound to the voter's NIM, is stored:

	hash := auth.HashOTP(nim, code, salt)
	ok := auth.OTPMatches(nim, submitted, hash, salt)

Since the hash is deterministic for a given NIM, code and salt, the store
can match a submitted code with a plain equality condition inside its
conditional update. OTPMatches compares in constant time.

# Admin Passwords

Admin passwords are hashed with bcrypt:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, password)

# Admin Tokens

Admin sessions are HS256 JWTs carrying the admin email:

	token, expiresAt, err := auth.IssueAdminToken(email, secret, time.Now())
	email, err := auth.ParseAdminToken(token, secret)

Tokens expire after AdminTokenTTL. Tokens signed with any other algorithm
are rejected.
*/
package auth
