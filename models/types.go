package models

import "time"

// Login method constants
const (
	LoginCampusEmailFormat = "campus_email_format"
	LoginDatabaseEmailList = "database_email_list"
)

// Vote submission outcome
const (
	ActionAutoLogout  = "auto_logout"
	AutoLogoutDelayMS = 10000
)

// Voter list status filters
const (
	StatusVoted    = "voted"
	StatusNotVoted = "not_voted"
)

// Request types

type LoginRequest struct {
	NIM   string `json:"nim"`
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	NIM string `json:"nim"`
	OTP string `json:"otp"`
}

type SubmitVoteRequest struct {
	NIM         string `json:"nim"`
	CandidateID int64  `json:"candidateId"`
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CandidateRequest struct {
	Chair     string  `json:"chair"`
	ViceChair string  `json:"viceChair"`
	Cabinet   *string `json:"cabinet"`
	Vision    *string `json:"vision"`
	Mission   *string `json:"mission"`
	ImageURL  *string `json:"imageUrl"`
}

type ProgramRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type SettingsRequest struct {
	ElectionTitle    string  `json:"electionTitle"`
	LoginMethod      string  `json:"loginMethod"`
	LoginPageLogoURL *string `json:"loginPageLogoUrl"`
	HeaderLogo1URL   *string `json:"headerLogo1Url"`
	HeaderLogo2URL   *string `json:"headerLogo2Url"`
}

type RegisterVoterRequest struct {
	NIM         string  `json:"nim"`
	Email       string  `json:"email"`
	ProgramCode *string `json:"programCode"`
}

// Response types

type LoginResponse struct {
	Message      string `json:"message"`
	NIM          string `json:"nim"`
	Email        string `json:"email"`
	ProgramName  string `json:"programName"`
	AlreadyVoted bool   `json:"alreadyVoted"`
}

type VerifyOTPResponse struct {
	Message      string `json:"message"`
	AlreadyVoted bool   `json:"alreadyVoted"`
	ProgramName  string `json:"programName"`
}

type SubmitVoteResponse struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Delay   int    `json:"delay"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type CandidateResponse struct {
	Message   string    `json:"message"`
	Candidate Candidate `json:"candidate"`
}

type ProgramResponse struct {
	Message string         `json:"message"`
	Program AllowedProgram `json:"program"`
}

type SettingsResponse struct {
	Message  string      `json:"message"`
	Settings AppSettings `json:"settings"`
}

type VoterListResponse struct {
	Voters      []Voter `json:"voters"`
	TotalVoters int     `json:"totalVoters"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
}

// PublicSettings is what the login and voting pages need
type PublicSettings struct {
	ElectionTitle    string  `json:"electionTitle"`
	LoginMethod      string  `json:"loginMethod"`
	LoginPageLogoURL *string `json:"loginPageLogoUrl,omitempty"`
	HeaderLogo1URL   *string `json:"headerLogo1Url,omitempty"`
	HeaderLogo2URL   *string `json:"headerLogo2Url,omitempty"`
}

// Domain types

type Voter struct {
	NIM          string     `json:"nim"`
	Email        string     `json:"email"`
	ProgramCode  *string    `json:"programCode,omitempty"`
	ProgramName  *string    `json:"programName,omitempty"`
	OTPHash      *string    `json:"-"` // Never expose in JSON
	OTPExpiresAt *time.Time `json:"-"` // Never expose in JSON
	AlreadyVoted bool       `json:"alreadyVoted"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// DisplayProgram returns the program name, falling back to the code
func (v Voter) DisplayProgram() string {
	if v.ProgramName != nil && *v.ProgramName != "" {
		return *v.ProgramName
	}
	if v.ProgramCode != nil {
		return *v.ProgramCode
	}
	return ""
}

// HasPendingOTP reports whether an issued code has not been consumed yet
func (v Voter) HasPendingOTP() bool {
	return v.OTPHash != nil
}

type AllowedProgram struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Candidate struct {
	ID        int64     `json:"id"`
	Chair     string    `json:"chair"`
	ViceChair string    `json:"viceChair"`
	Cabinet   *string   `json:"cabinet,omitempty"`
	Vision    *string   `json:"vision,omitempty"`
	Mission   *string   `json:"mission,omitempty"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Vote struct {
	ID          string    `json:"id"`
	VoterNIM    string    `json:"voterNim"`
	CandidateID int64     `json:"candidateId"`
	CastAt      time.Time `json:"castAt"`
}

type AppSettings struct {
	ElectionTitle    string    `json:"electionTitle"`
	LoginMethod      string    `json:"loginMethod"`
	LoginPageLogoURL *string   `json:"loginPageLogoUrl,omitempty"`
	HeaderLogo1URL   *string   `json:"headerLogo1Url,omitempty"`
	HeaderLogo2URL   *string   `json:"headerLogo2Url,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Public strips admin-only fields
func (s AppSettings) Public() PublicSettings {
	return PublicSettings{
		ElectionTitle:    s.ElectionTitle,
		LoginMethod:      s.LoginMethod,
		LoginPageLogoURL: s.LoginPageLogoURL,
		HeaderLogo1URL:   s.HeaderLogo1URL,
		HeaderLogo2URL:   s.HeaderLogo2URL,
	}
}

type AdminUser struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// VoterFilter narrows the admin voter list
type VoterFilter struct {
	Search  string
	Program string
	Status  string
	Page    int
	Limit   int
}

// Error response

type ErrorResponse struct {
	Message           string `json:"message"`
	ErrorCode         string `json:"errorCode,omitempty"`
	AttemptsRemaining *int   `json:"attemptsRemaining,omitempty"`
	RetryAfterSeconds *int   `json:"retryAfterSeconds,omitempty"`
}
