// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/violie/server/auth"
	"github.com/violie/server/cliparse"
	"github.com/violie/server/mailer"
	"github.com/violie/server/models"
	"github.com/violie/server/store"
)

// MinNIMLength is the shortest NIM a program code can be derived from
const MinNIMLength = ProgramCodeLength

// Store is the data store the election runs on. *store.Store implements it.
type Store interface {
	GetSettings(ctx context.Context) (models.AppSettings, error)
	GetProgram(ctx context.Context, code string) (models.AllowedProgram, error)
	GetVoter(ctx context.Context, nim string) (models.Voter, error)
	CreateVoter(ctx context.Context, nim, email string, programCode *string, now time.Time) (models.Voter, error)
	StoreOTP(ctx context.Context, nim, otpHash string, expiresAt time.Time) error
	ConsumeOTP(ctx context.Context, nim, otpHash string, now time.Time, p store.AttemptPolicy) (store.OTPResult, error)
	RecordVoteIfNotAlreadyVoted(ctx context.Context, nim string, candidateID int64, now time.Time) (models.Vote, error)
	ResetVote(ctx context.Context, nim string) error
}

// Service runs the login, verification and vote workflow. It holds no
// per-voter state; every decision is made against the store.
type Service struct {
	store  Store
	mailer mailer.Mailer
	cfg    cliparse.Config
	now    func() time.Time
}

func NewService(st Store, m mailer.Mailer, cfg cliparse.Config) *Service {
	return &Service{
		store:  st,
		mailer: m,
		cfg:    cfg,
		now:    time.Now,
	}
}

// LoginResult is returned once a code has been issued and mailed
type LoginResult struct {
	NIM          string
	Email        string
	ProgramName  string
	AlreadyVoted bool
}

// VerifyResult is returned after a code was consumed
type VerifyResult struct {
	AlreadyVoted bool
	ProgramName  string
}

// VoteResult tells the client to end its session after Delay
type VoteResult struct {
	Message string
	Action  string
	Delay   int
}

// Login identifies the voter under the configured login policy and
// mails a fresh verification code. The code is never returned.
func (s *Service) Login(ctx context.Context, nim, email string) (LoginResult, error) {
	nim, email, err := normalizeCredentials(nim, email)
	if err != nil {
		return LoginResult{}, err
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return LoginResult{}, transient("failed to load settings", err)
	}

	policy, err := policyFor(settings.LoginMethod, s.store, s.now)
	if err != nil {
		return LoginResult{}, transient("invalid login configuration", err)
	}

	voter, err := policy.ResolveVoter(ctx, nim, email)
	if err != nil {
		return LoginResult{}, err
	}
	if voter.AlreadyVoted {
		return LoginResult{}, ErrAlreadyVoted
	}

	if err := s.issueOTP(ctx, voter, settings.ElectionTitle); err != nil {
		return LoginResult{}, err
	}

	slog.Info("otp issued", "nim", voter.NIM, "login_method", policy.Method())

	return LoginResult{
		NIM:          voter.NIM,
		Email:        voter.Email,
		ProgramName:  voter.DisplayProgram(),
		AlreadyVoted: voter.AlreadyVoted,
	}, nil
}

// ResendOTP replaces the pending code of a known voter and mails it again
func (s *Service) ResendOTP(ctx context.Context, nim, email string) error {
	nim, email, err := normalizeCredentials(nim, email)
	if err != nil {
		return err
	}

	voter, err := s.store.GetVoter(ctx, nim)
	if errors.Is(err, store.ErrVoterNotFound) {
		return ErrVoterNotFound
	}
	if err != nil {
		return transient("failed to load voter", err, "nim", nim)
	}
	if _, err := matchEmail(voter, email); err != nil {
		return err
	}
	if voter.AlreadyVoted {
		return ErrAlreadyVoted
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return transient("failed to load settings", err)
	}

	if err := s.issueOTP(ctx, voter, settings.ElectionTitle); err != nil {
		return err
	}

	slog.Info("otp reissued", "nim", voter.NIM)
	return nil
}

// issueOTP stores a new code then mails it. A delivery failure leaves
// the code in place so the voter can ask for a resend.
func (s *Service) issueOTP(ctx context.Context, voter models.Voter, electionTitle string) error {
	code, err := auth.GenerateOTPCode()
	if err != nil {
		return transient("failed to generate otp", err, "nim", voter.NIM)
	}

	expiresAt := s.now().Add(s.cfg.OTPTTL)
	err = s.store.StoreOTP(ctx, voter.NIM, auth.HashOTP(voter.NIM, code, s.cfg.OTPSalt), expiresAt)
	switch {
	case errors.Is(err, store.ErrAlreadyVoted):
		return ErrAlreadyVoted
	case errors.Is(err, store.ErrVoterNotFound):
		return ErrVoterNotFound
	case err != nil:
		return transient("failed to store otp", err, "nim", voter.NIM)
	}

	msg, err := mailer.RenderOTPEmail(voter.Email, mailer.OTPEmail{
		NIM:           voter.NIM,
		Code:          code,
		ElectionTitle: electionTitle,
		ValidFor:      s.cfg.OTPTTL,
	})
	if err != nil {
		slog.Error("failed to render otp email", "nim", voter.NIM, "error", err)
		return ErrDeliveryFailed
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Error("failed to deliver otp", "nim", voter.NIM, "error", err)
		return ErrDeliveryFailed
	}
	return nil
}

// VerifyOTP consumes the voter's pending code. Wrong, expired and missing
// codes all fail the same way and count towards the lockout.
func (s *Service) VerifyOTP(ctx context.Context, nim, code string) (VerifyResult, error) {
	nim = strings.TrimSpace(nim)
	code = strings.TrimSpace(code)
	if nim == "" || code == "" {
		return VerifyResult{}, invalid("otp", "NIM and OTP are required")
	}
	if !auth.ValidOTPFormat(code) {
		return VerifyResult{}, invalid("otp", "OTP must be 6 digits")
	}

	now := s.now()

	hash := auth.HashOTP(nim, code, s.cfg.OTPSalt)
	res, err := s.store.ConsumeOTP(ctx, nim, hash, now, s.attemptPolicy())
	if err != nil {
		return VerifyResult{}, transient("failed to consume otp", err, "nim", nim)
	}

	if !res.OK {
		if until := res.Attempt.LockedUntil; until != nil {
			slog.Warn("otp verification locked", "nim", nim, "until", *until)
			return VerifyResult{}, &RateLimitedError{RetryAfter: until.Sub(now)}
		}
		return VerifyResult{}, &InvalidOTPError{AttemptsRemaining: s.cfg.OTPMaxAttempts - res.Attempt.Failures}
	}

	slog.Info("otp verified", "nim", nim)

	return VerifyResult{
		AlreadyVoted: res.Voter.AlreadyVoted,
		ProgramName:  res.Voter.DisplayProgram(),
	}, nil
}

func (s *Service) attemptPolicy() store.AttemptPolicy {
	return store.AttemptPolicy{
		MaxFailures: s.cfg.OTPMaxAttempts,
		Window:      s.cfg.OTPAttemptWindow,
		Lockout:     s.cfg.OTPLockout,
	}
}

// SubmitVote records the voter's single vote. All checks run inside one
// store transaction; see store.RecordVoteIfNotAlreadyVoted.
func (s *Service) SubmitVote(ctx context.Context, nim string, candidateID int64) (VoteResult, error) {
	nim = strings.TrimSpace(nim)
	if nim == "" {
		return VoteResult{}, invalid("nim", "NIM is required")
	}
	if candidateID <= 0 {
		return VoteResult{}, invalid("candidateId", "candidateId must be a positive integer")
	}

	vote, err := s.store.RecordVoteIfNotAlreadyVoted(ctx, nim, candidateID, s.now())
	switch {
	case err == nil:
	case errors.Is(err, store.ErrAlreadyVoted):
		return VoteResult{}, ErrAlreadyVoted
	case errors.Is(err, store.ErrVoterNotFound):
		return VoteResult{}, ErrVoterNotFound
	case errors.Is(err, store.ErrCandidateNotFound):
		return VoteResult{}, ErrInvalidCandidate
	case errors.Is(err, store.ErrVerificationPending):
		return VoteResult{}, ErrVerificationPending
	default:
		return VoteResult{}, transient("failed to record vote", err, "nim", nim)
	}

	slog.Info("vote recorded", "nim", nim, "vote_id", vote.ID)

	return VoteResult{
		Message: "Your vote has been recorded. Thank you for voting!",
		Action:  models.ActionAutoLogout,
		Delay:   models.AutoLogoutDelayMS,
	}, nil
}

// Eligible reports whether voters of programCode may self-register
func (s *Service) Eligible(ctx context.Context, programCode string) (bool, error) {
	return eligible(ctx, s.store, programCode)
}

// ResetVote is the admin override: the vote is deleted and the flag
// cleared in one transaction.
func (s *Service) ResetVote(ctx context.Context, nim string) error {
	err := s.store.ResetVote(ctx, nim)
	if errors.Is(err, store.ErrVoterNotFound) {
		return ErrVoterNotFound
	}
	if err != nil {
		return transient("failed to reset vote", err, "nim", nim)
	}
	slog.Info("vote reset", "nim", nim)
	return nil
}

// normalizeCredentials trims both fields, lowercases the email and checks
// their shape
func normalizeCredentials(nim, email string) (string, string, error) {
	nim = strings.TrimSpace(nim)
	email = strings.ToLower(strings.TrimSpace(email))

	if nim == "" || email == "" {
		return "", "", invalid("nim", "NIM and email are required")
	}
	if len(nim) < MinNIMLength {
		return "", "", invalid("nim", "NIM must be at least 4 characters")
	}
	if !ValidEmail(email) {
		return "", "", invalid("email", "invalid email format")
	}
	return nim, email, nil
}

// ValidEmail accepts a bare address such as name@example.ac.id
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	_, domain, ok := strings.Cut(email, "@")
	return ok && strings.Contains(domain, ".")
}
