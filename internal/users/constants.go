// Copyright (c) 2026 Trailforge. All rights reserved.

package users

import "time"

const (
	// maxFailedLoginAttempts is the counter value that triggers a lockout.
	maxFailedLoginAttempts = 5

	// resetTokenBytes is the entropy of the emailed reset token
	// (hex-encoded, so the URL carries twice as many characters).
	resetTokenBytes = 32

	// resetTokenTTL is the validity window of a reset token.
	resetTokenTTL = 10 * time.Minute

	// passwordChangedSkew is subtracted from the password-change timestamp
	// so a token issued in the same instant is not judged stale.
	passwordChangedSkew = time.Second

	// minPasswordLength is the minimum accepted password length.
	minPasswordLength = 6
)
