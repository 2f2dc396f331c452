// Copyright (c) 2026 Murof. All rights reserved.

package mail

import "fmt"

// # Message Templates
//
// Plaintext on purpose: transactional auth mail renders everywhere and
// survives aggressive spam filtering better than HTML.

const verificationBody = `Hi there %s,

Thank you for signing up to Murof! Please click the link below to verify your email:

%s

This link will expire in 24 hours. If you did not sign up for Murof, you can safely ignore this email.

Best,
The Murof Team
`

const warningBody = `Hi there %s,

We noticed that someone tried to sign up for Murof using your email address.

What now?
- If this was not you, you can safely ignore this email.
- If this was you, please login using your existing account: https://murof.net/auth/login
- If you've forgotten your password and can't login, reset your password: https://murof.net/auth/reset/request
- If you have any questions or concerns, please contact us: contact@murof.net

Best,
The Murof Team
`

const resetBody = `Hi there %s,

We received a request to reset your password on Murof. Please click the link below to reset your password:

%s

This link will expire in 10 minutes. If you did not request a password reset, you can safely ignore this email.

Best,
The Murof Team
`

// VerificationMessage builds the account-activation mail.
func VerificationMessage(username, verificationLink string) (subject, body string) {
	return "Activating your Murof account",
		fmt.Sprintf(verificationBody, username, verificationLink)
}

// WarningMessage builds the mail sent to an existing account's address when
// someone attempts to register with it again. The attempted registration
// itself receives a normal success response, so this mail is the only signal
// the legitimate owner gets.
func WarningMessage(username string) (subject, body string) {
	return "Murof account warning",
		fmt.Sprintf(warningBody, username)
}

// ResetMessage builds the password-reset mail.
func ResetMessage(username, resetLink string) (subject, body string) {
	return "Resetting your Murof password",
		fmt.Sprintf(resetBody, username, resetLink)
}
