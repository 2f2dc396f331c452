// Copyright (c) 2026 Murof. All rights reserved.

package auth

import "strings"

// MaskEmail obscures the local part of an email address for use in responses
// that must not disclose the full address: every character between the first
// and last of the local part is replaced with an asterisk, so
// "johndoe@example.com" becomes "j*****e@example.com".
//
// Local parts shorter than three characters are returned unchanged, as is any
// input without an "@".
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email
	}
	local := email[:at]
	if len(local) < 3 {
		return email
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + email[at:]
}
