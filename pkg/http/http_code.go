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

package http

var (
	Failed                        = failed(500, "Request failed")
	InternalError                 = failed(5000, "Internal error, please contact the administrator")
	RequestParameterParsingFailed = failed(5001, "Request parameter parsing failed")
	TeamIdIsEmpty                 = failed(5002, "Team id is empty")
	InvitationTokenIsEmpty        = failed(5003, "Invitation token is empty")
	MembershipIdIsEmpty           = failed(5004, "Membership id is empty")

	// Unauthorized 401
	Unauthorized         = failed(4401, "Unauthorized")
	AuthenticationFailed = failed(4402, "Authentication failed")
	AuthorizationEmpty   = failed(4404, "Authorization is empty")
	InvalidToken         = failed(4405, "Invalid token")
	TokenBeEmpty         = failed(4406, "Token cannot be empty")
	TokenExpired         = failed(4407, "Token is expired")

	// BadRequest 400
	BadRequest = failed(4000, "Bad request")
	NotFound   = failed(4004, "Not found")

	// Forbidden 403
	Forbidden        = failed(4030, "Forbidden")
	PermissionDenied = failed(4031, "Permission denied")

	UserNotExist                  = failed(4041, "User does not exist")
	UserAlreadyExist              = failed(4042, "User already exists")
	UserIncorrectPassword         = failed(4043, "User incorrect password")
	UsernameArePasswordIsRequired = failed(4045, "Username and password are required")

	// business-rule violations
	InvalidState     = failed(4601, "Operation not allowed in the current state")
	AlreadyMember    = failed(4602, "Already a member of this team")
	InvalidOperation = failed(4603, "Invalid operation")
	SlugAlreadyExist = failed(4604, "Team slug already exists")
	DuplicateInvite  = failed(4605, "A pending invitation for this email already exists")

	// OTP challenge flow
	OtpChallengeRequired = failed(4610, "One-time password required")
	OtpSessionInvalid    = failed(4611, "Invalid OTP login session")
	OtpCodeIncorrect     = failed(4612, "Invalid verification code")
	OtpLockedOut         = failed(4613, "Too many failed attempts, restart login")
	OtpNotEnabled        = failed(4614, "Two-factor authentication is not enabled")
)

var (
	Success = success(200, "Request Success")
)

func failed(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}

func success(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}
