package consts

import "time"

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/8 11:41
 * @file: consts.go
 * @description: shared cache key namespaces and limits
 */

const (
	// OtpFailedAttemptsKey prefixes the per-user failed OTP challenge counter.
	// Full key: otp_failed_attempts_{userId}, integer, 900s rolling TTL.
	OtpFailedAttemptsKey = "otp_failed_attempts_"

	// OtpPendingKey prefixes suspended login state awaiting OTP verification.
	// Full key: otp_pending_{stateToken}.
	OtpPendingKey = "otp_pending_"
)

const (
	// OtpMaxFailedAttempts is the lockout threshold within the attempt window.
	OtpMaxFailedAttempts = 5

	// OtpAttemptWindow is the rolling expiry of the failed-attempt counter.
	OtpAttemptWindow = 900 * time.Second

	// OtpPendingTTL bounds how long a suspended login may wait for its challenge.
	OtpPendingTTL = 10 * time.Minute
)

const (
	// InvitationTokenBytes is the entropy of an invitation bearer token.
	InvitationTokenBytes = 48

	// InvitationDefaultTTL is the default invitation expiry window.
	InvitationDefaultTTL = 7 * 24 * time.Hour

	// BackupCodeBatchSize is how many recovery codes one generation produces.
	BackupCodeBatchSize = 10
)
