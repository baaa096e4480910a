// Copyright 2025 Keel Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import "errors"

// Domain error taxonomy. Routers translate these onto the response code
// catalog; none of them should ever escape as an unhandled fault.
var (
	// ErrNotFound covers absent or inactive entities. Deliberately generic
	// so responses do not leak existence.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means an authorization predicate failed.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState means the entity cannot take this transition
	// (invitation no longer pending, disable without a device).
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyMember means the accepting user already holds a membership.
	ErrAlreadyMember = errors.New("already a member of this team")

	// ErrInvalidOperation covers business-rule violations: last-owner
	// protection, self-modification, member limits.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrSlugExists means the requested team slug is taken.
	ErrSlugExists = errors.New("team slug already exists")

	// ErrDuplicateInvite means a pending, non-expired invitation already
	// exists for this (team, email).
	ErrDuplicateInvite = errors.New("pending invitation already exists")

	// ErrInvalidCredentials covers unknown user, wrong password and disabled
	// accounts alike; login failures are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrOtpCodeIncorrect means the submitted code matched neither a TOTP
	// device nor a backup code.
	ErrOtpCodeIncorrect = errors.New("invalid verification code")

	// ErrOtpNotEnabled means the operation needs an enabled second factor.
	ErrOtpNotEnabled = errors.New("two-factor authentication is not enabled")

	// ErrOtpLockedOut means the challenge session was terminated after too
	// many failures; the user must restart from password login.
	ErrOtpLockedOut = errors.New("too many failed attempts")

	// ErrOtpSessionInvalid means no suspended login matches the state token.
	ErrOtpSessionInvalid = errors.New("invalid otp login session")
)
