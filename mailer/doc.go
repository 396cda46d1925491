// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package mailer delivers verification codes by email.

SMTPMailer sends through an SMTP relay with gomail. LogMailer only logs
and is used when no SMTP host is configured. RenderOTPEmail produces the
HTML and plain text bodies; the validity it prints comes from the same
OTP lifetime the server enforces.
*/
package mailer
