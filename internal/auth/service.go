// Copyright (c) 2026 Murof. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/murof-net/backend/internal/mail"
	"github.com/murof-net/backend/internal/platform/apperr"
	"github.com/murof-net/backend/internal/platform/constants"
	"github.com/murof-net/backend/internal/platform/ctxutil"
	"github.com/murof-net/backend/internal/platform/sec"
	"github.com/murof-net/backend/internal/platform/token"
	"github.com/murof-net/backend/internal/platform/validate"
	"github.com/murof-net/backend/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and verifying the signed
// tokens the subsystem hands out. Satisfied by [token.Codec].
type TokenProvider interface {
	// Issue creates a signed token of the given kind for the subject.
	Issue(subject string, kind token.Kind) (string, error)

	// IssueWithUsername creates a signed token carrying a username claim.
	IssueWithUsername(subject, username string, kind token.Kind) (string, error)

	// Verify parses a token string and checks signature, expiry, and kind.
	Verify(tokenString string, expected token.Kind) (*token.Claims, error)

	// TTL reports the configured lifetime for the given token kind.
	TTL(kind token.Kind) time.Duration
}

// Service implements the authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// issuance, or the enumeration-resistance policy must be reviewed before
// merging.
type Service struct {
	identities IdentityRepository
	guard      TokenGuard
	tokens     TokenProvider
	sender     mail.Sender
	baseURL    string
}

// NewService constructs a new [Service] with necessary dependencies.
// baseURL is the public origin used to build verification and reset links.
func NewService(
	identities IdentityRepository,
	guard TokenGuard,
	tokens TokenProvider,
	sender mail.Sender,
	baseURL string,
) *Service {
	return &Service{
		identities: identities,
		guard:      guard,
		tokens:     tokens,
		sender:     sender,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegistrationAck is the uniform response to a registration attempt. It is
// identical whether a new identity was created or the email was already
// registered, so the endpoint discloses nothing about existing accounts.
type RegistrationAck struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

/*
Register validates, hashes, and persists a brand new identity.

Description: Enrolls a new member in the PendingVerification state and emails
them an activation link. If the email already belongs to an account, nothing
is created, the owner receives a warning email, and the caller gets the exact
same acknowledgement.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *RegistrationAck: Uniform acknowledgement
  - err: Validation errors, UsernameTaken, or storage failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*RegistrationAck, error) {

	// Reject malformed input before touching the store.
	v := &validate.Validator{}
	v.Username(FieldUsername, input.Username).
		Email(FieldEmail, input.Email).
		Password(FieldPassword, input.Password, validate.MinPasswordLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	// Existing email: warn the owner, acknowledge as if enrollment happened.
	// NOTE: The email branch is checked first so a request colliding on both
	// fields stays silent rather than disclosing the username conflict.
	if existing, err := service.identities.FindByEmail(context, input.Email); err == nil {
		if err := service.sendWarning(context, existing); err != nil {
			return nil, err
		}
		return registrationAck(input.Email), nil
	}

	// Duplicate usernames are safe to disclose.
	if _, err := service.identities.FindByUsername(context, input.Username); err == nil {
		return nil, apperr.UsernameTaken()
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new identity. Time-sortable ID to prevent PG index fragmentation.
	identity := &Identity{
		ID:           uuidv7.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		IsVerified:   false,
		CreatedAt:    time.Now().UTC(),
	}

	// Persist the identity. The unique indexes arbitrate concurrent
	// registrations that slipped past the pre-checks above.
	if err := service.identities.Create(context, identity); err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			if existing, ferr := service.identities.FindByEmail(context, input.Email); ferr == nil {
				if serr := service.sendWarning(context, existing); serr != nil {
					return nil, serr
				}
			}
			return registrationAck(input.Email), nil
		case errors.Is(err, ErrUsernameExists):
			return nil, apperr.UsernameTaken()
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Email delivery failure does not roll back the enrollment: the identity
	// stays pending and the member can request a fresh verification link, but
	// the failure is surfaced so the caller knows no mail is coming.
	if err := service.sendVerification(context, identity); err != nil {
		return nil, err
	}

	return registrationAck(input.Email), nil
}

func registrationAck(email string) *RegistrationAck {
	return &RegistrationAck{
		Message: "User registration successful",
		Email:   email,
	}
}

// # Email Verification Flow

/*
VerifyEmail activates a pending identity from an emailed verification token.

Description: Checks signature, expiry, and kind of the token, then flips the
identity to the verified state. Re-submitting the link for an already-verified
identity succeeds without touching the store, so double-clicked emails never
error.

Parameters:
  - context: context.Context
  - tokenString: string

Returns:
  - err: InvalidToken, NotFound, or storage failures
*/
func (service *Service) VerifyEmail(context context.Context, tokenString string) error {
	claims, err := service.tokens.Verify(tokenString, token.KindEmailVerification)
	if err != nil {
		return err
	}

	// The token subject is the email address the link was sent to.
	identity, err := service.identities.FindByEmail(context, claims.Subject)
	if err != nil {
		return apperr.NotFound("User")
	}

	// Idempotent: the state transition is monotonic.
	if identity.IsVerified {
		return nil
	}

	if err := service.identities.MarkVerified(context, identity.ID); err != nil {
		return fmt.Errorf("auth_service_verify_failed: %w", err)
	}

	return nil
}

/*
ResendVerification emails a fresh verification link to an unverified identity.

Description: Succeeds with an identical outward result whether the identifier
exists, is already verified, or was asked again too soon; only an unverified
identity outside its throttle window actually receives mail. The throttle
keeps the endpoint from being a free email cannon.

Parameters:
  - context: context.Context
  - identifier: string (username or email)

Returns:
  - err: Storage failures only; lookup misses are deliberately silent
*/
func (service *Service) ResendVerification(context context.Context, identifier string) error {
	identity, err := service.findByIdentifier(context, identifier)
	if err != nil {
		return nil
	}
	if identity.IsVerified {
		return nil
	}

	allowed, err := service.guard.ThrottleResend(context, identity.Email, constants.ResendThrottleInterval)
	if err != nil {
		return fmt.Errorf("auth_service_resend_throttle_failed: %w", err)
	}
	if !allowed {
		ctxutil.GetLogger(context).DebugContext(context, "verification resend throttled",
			"email", MaskEmail(identity.Email))
		return nil
	}

	// Unlike registration, a delivery failure here is logged, not surfaced:
	// the endpoint's response must stay identical across every branch.
	if err := service.sendVerification(context, identity); err != nil {
		service.logNotificationFailure(context, "verification_resend", identity, err)
	}
	return nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt. Identifier
// may be a username or an email address.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// TokenPair is a successfully issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

/*
Login validates credentials and issues an access/refresh token pair.

Description: Resolves the identifier, performs constant-time password
comparison, requires a verified email, and records the login time. Unknown
identifier and wrong password collapse into one indistinguishable err.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *TokenPair: Transport-ready bearer credentials
  - err: InvalidCredentials, EmailNotVerified, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*TokenPair, error) {
	identity, err := service.findByIdentifier(context, input.Identifier)

	// Generic message to prevent enumeration. bcrypt's comparison is
	// constant-time so the two failure paths stay indistinguishable.
	if err != nil || !sec.CheckPasswordHash(input.Password, identity.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	// Correct credentials on a pending identity get a distinct, actionable err:
	// the password was proven, so disclosing the verification state leaks nothing.
	if !identity.IsVerified {
		return nil, apperr.EmailNotVerified()
	}

	accessToken, err := service.tokens.IssueWithUsername(identity.ID, identity.Username, token.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokens.IssueWithUsername(identity.ID, identity.Username, token.KindRefresh)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Best-effort bookkeeping: a failed timestamp update must not void a
	// correct login.
	if err := service.identities.UpdateLastLogin(context, identity.ID, time.Now().UTC()); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "failed to record last login",
			"user_id", identity.ID, "error", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    constants.BearerTokenType,
	}, nil
}

/*
RefreshAccessToken exchanges a valid refresh token for a fresh access token.

Description: Verifies the refresh token and mints a new access token for its
subject. The refresh token is returned unchanged; it stays valid until its
own expiry and is not rotated.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *TokenPair: New access token alongside the original refresh token
  - err: InvalidToken or signing failures
*/
func (service *Service) RefreshAccessToken(context context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := service.tokens.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return nil, err
	}

	accessToken, err := service.tokens.IssueWithUsername(claims.Subject, claims.Username, token.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    constants.BearerTokenType,
	}, nil
}

// # Password Recovery

// ResetAck acknowledges a password-reset request. Email carries the masked
// address the link was (nominally) sent to.
type ResetAck struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Emails a short-lived reset link to the account matching the
identifier. Unknown identifiers get the same acknowledgement with no mail
sent, so the endpoint cannot be used to probe which accounts exist.

Parameters:
  - context: context.Context
  - identifier: string (username or email)

Returns:
  - *ResetAck: Uniform acknowledgement with a masked email
  - err: Signing failures only
*/
func (service *Service) RequestPasswordReset(context context.Context, identifier string) (*ResetAck, error) {
	identity, err := service.findByIdentifier(context, identifier)
	if err != nil {
		// Unknown account: acknowledge anyway. Mask the identifier itself
		// when it looks like an email so the response shape matches.
		masked := ""
		if strings.Contains(identifier, "@") {
			masked = MaskEmail(identifier)
		}
		return resetAck(masked), nil
	}

	resetToken, err := service.tokens.Issue(identity.Email, token.KindPasswordReset)
	if err != nil {
		return nil, fmt.Errorf("auth_service_reset_token_failed: %w", err)
	}

	link := service.baseURL + constants.ResetLinkPath + "?token=" + resetToken
	subject, body := mail.ResetMessage(identity.Username, link)
	if err := service.sender.Send(context, identity.Email, subject, body); err != nil {
		service.logNotificationFailure(context, "password_reset", identity, err)
	}

	return resetAck(MaskEmail(identity.Email)), nil
}

func resetAck(maskedEmail string) *ResetAck {
	return &ResetAck{
		Message: "Password reset link sent to your email",
		Email:   maskedEmail,
	}
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the reset token, rejects reuse of the current password,
consumes the token, and stores the new hash. Each reset token authorizes at
most one successful password change; failed attempts do not spend it.

Parameters:
  - context: context.Context
  - tokenString: string
  - newPassword: string

Returns:
  - err: InvalidToken, NotFound, SamePassword, validation or storage failures
*/
func (service *Service) ResetPassword(context context.Context, tokenString, newPassword string) error {
	claims, err := service.tokens.Verify(tokenString, token.KindPasswordReset)
	if err != nil {
		return err
	}

	v := &validate.Validator{}
	v.Password(FieldNewPassword, newPassword, validate.MinPasswordLength)
	if err := v.Err(); err != nil {
		return err
	}

	identity, err := service.identities.FindByEmail(context, claims.Subject)
	if err != nil {
		return apperr.NotFound("User")
	}

	// bcrypt hashes are salted, so comparing two hashes of the same password
	// is meaningless; verifying the candidate against the stored hash is the
	// reliable equality check.
	if sec.CheckPasswordHash(newPassword, identity.PasswordHash) {
		return apperr.SamePassword()
	}

	// Consume the token only once the new password is accepted, so a rejected
	// attempt (e.g. SamePassword) leaves the link usable for a retry. The
	// guard entry outlives the token's own expiry.
	firstUse, err := service.guard.MarkUsed(context, claims.ID, service.tokens.TTL(token.KindPasswordReset))
	if err != nil {
		return fmt.Errorf("auth_service_reset_guard_failed: %w", err)
	}
	if !firstUse {
		return apperr.InvalidToken(errors.New("auth: reset token already used"))
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.identities.UpdatePassword(context, identity.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	return nil
}

// # Account Access

/*
CurrentUser returns the profile of the authenticated identity.

Description: Resolves the subject of a verified access token to its stored
profile. A subject that no longer exists (account deleted after the token was
issued) is treated as unauthenticated, not as a lookup miss.

Parameters:
  - context: context.Context
  - userID: string (the access token's subject)

Returns:
  - *Profile: Username and email
  - err: Unauthenticated
*/
func (service *Service) CurrentUser(context context.Context, userID string) (*Profile, error) {
	identity, err := service.identities.FindByID(context, userID)
	if err != nil {
		return nil, apperr.Unauthenticated()
	}
	return &Profile{Username: identity.Username, Email: identity.Email}, nil
}

/*
DeleteCurrentUser permanently removes the authenticated identity.

Description: Hard-deletes the credential record. Outstanding tokens for the
subject become useless because every authenticated operation re-resolves the
subject against the store.

Parameters:
  - context: context.Context
  - userID: string (the access token's subject)

Returns:
  - err: Unauthenticated or storage failures
*/
func (service *Service) DeleteCurrentUser(context context.Context, userID string) error {
	identity, err := service.identities.FindByID(context, userID)
	if err != nil {
		return apperr.Unauthenticated()
	}

	if err := service.identities.Delete(context, identity.ID); err != nil {
		return fmt.Errorf("auth_service_delete_failed: %w", err)
	}

	return nil
}

// # Internal Helpers

// findByIdentifier resolves a username-or-email identifier. The "@" rune is
// illegal in usernames, so its presence decides the lookup unambiguously.
func (service *Service) findByIdentifier(context context.Context, identifier string) (*Identity, error) {
	if strings.Contains(identifier, "@") {
		return service.identities.FindByEmail(context, identifier)
	}
	return service.identities.FindByUsername(context, identifier)
}

// sendVerification issues a fresh verification token and emails the
// activation link. A delivery failure comes back as a NotificationFailed
// err; how loudly that propagates is the caller's policy.
func (service *Service) sendVerification(context context.Context, identity *Identity) error {
	verifyToken, err := service.tokens.Issue(identity.Email, token.KindEmailVerification)
	if err != nil {
		return fmt.Errorf("auth_service_verification_token_failed: %w", err)
	}

	link := service.baseURL + constants.VerifyLinkPath + "?token=" + verifyToken
	subject, body := mail.VerificationMessage(identity.Username, link)
	if err := service.sender.Send(context, identity.Email, subject, body); err != nil {
		return apperr.NotificationFailed(err)
	}
	return nil
}

// sendWarning notifies the owner of an existing account that someone tried to
// register with their email address.
func (service *Service) sendWarning(context context.Context, identity *Identity) error {
	subject, body := mail.WarningMessage(identity.Username)
	if err := service.sender.Send(context, identity.Email, subject, body); err != nil {
		return apperr.NotificationFailed(err)
	}
	return nil
}

func (service *Service) logNotificationFailure(context context.Context, kind string, identity *Identity, err error) {
	ctxutil.GetLogger(context).ErrorContext(context, "failed to send notification email",
		"kind", kind,
		"user_id", identity.ID,
		"email", MaskEmail(identity.Email),
		"error", err)
}
