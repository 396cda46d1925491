// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

var (
	ErrNotEligible         = errors.New("your study program is not eligible to vote in this election")
	ErrCredentialMismatch  = errors.New("NIM and email do not match")
	ErrEmailTaken          = errors.New("email is already registered to another NIM")
	ErrAlreadyVoted        = errors.New("you have already voted")
	ErrDeliveryFailed      = errors.New("verification code was created but the email could not be sent, please request a new code")
	ErrVoterNotFound       = errors.New("voter not found")
	ErrInvalidCandidate    = errors.New("candidate not found")
	ErrVerificationPending = errors.New("verify the code sent to your email before voting")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired verification code")
	ErrRateLimited         = errors.New("too many failed verification attempts")
	ErrTransient           = errors.New("temporary server error, please try again")
)

// ValidationError reports malformed input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InvalidOTPError is returned for every failed verification, whether the
// code was wrong, expired or never issued.
type InvalidOTPError struct {
	AttemptsRemaining int
}

func (e *InvalidOTPError) Error() string {
	return ErrInvalidOrExpiredOTP.Error()
}

func (e *InvalidOTPError) Is(target error) bool {
	return target == ErrInvalidOrExpiredOTP
}

// RateLimitedError is returned while a NIM is locked out
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s, try again in %d minutes", ErrRateLimited, e.RetryMinutes())
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryMinutes rounds the cooldown up to whole minutes
func (e *RateLimitedError) RetryMinutes() int {
	return int(math.Ceil(e.RetryAfter.Minutes()))
}

// RetrySeconds rounds the cooldown up to whole seconds
func (e *RateLimitedError) RetrySeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

// transient logs an unexpected store failure and hides it from callers
func transient(msg string, err error, args ...any) error {
	slog.Error(msg, append(args, "error", err)...)
	return ErrTransient
}
