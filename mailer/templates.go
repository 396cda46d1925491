// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// OTPSubject is the subject line of verification code emails
const OTPSubject = "Kode Verifikasi Pemilihan Ketua dan Wakil Himpunan"

// OTPEmail holds what the verification email shows. ValidFor must be
// the same lifetime the server enforces.
type OTPEmail struct {
	NIM           string
	Code          string
	ElectionTitle string
	ValidFor      time.Duration
}

func (e OTPEmail) Minutes() int {
	return int(e.ValidFor.Round(time.Minute) / time.Minute)
}

var otpHTML = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h2 style="color: #3949ab; text-align: center;">Kode Verifikasi Login</h2>
  <p>Hai Mahasiswa dengan NIM {{.NIM}},</p>
  <p>Kode verifikasi untuk login ke {{.ElectionTitle}} adalah:</p>
  <div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px;">{{.Code}}</div>
  <p>Kode ini berlaku selama {{.Minutes}} menit.</p>
  <p>Jika Anda tidak merasa melakukan permintaan ini, silakan abaikan email ini.</p>
  <p style="margin-top: 20px; font-size: 12px; color: #757575; text-align: center;">Ini adalah email otomatis dari sistem Violie. Mohon untuk tidak membalas email ini.</p>
</div>
`))

// RenderOTPEmail builds the verification email for one voter
func RenderOTPEmail(to string, e OTPEmail) (Message, error) {
	if e.ElectionTitle == "" {
		e.ElectionTitle = "sistem Pemilihan Ketua dan Wakil Himpunan"
	}

	var html bytes.Buffer
	if err := otpHTML.Execute(&html, e); err != nil {
		return Message{}, fmt.Errorf("failed to render otp email: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hai Mahasiswa dengan NIM %s,\n\n", e.NIM)
	fmt.Fprintf(&text, "Kode verifikasi untuk login ke %s adalah: %s\n", e.ElectionTitle, e.Code)
	fmt.Fprintf(&text, "Kode ini berlaku selama %d menit.\n\n", e.Minutes())
	text.WriteString("Jika Anda tidak merasa melakukan permintaan ini, silakan abaikan email ini.\n")

	return Message{
		To:      to,
		Subject: OTPSubject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
