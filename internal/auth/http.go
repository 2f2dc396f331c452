// Copyright (c) 2026 Murof. All rights reserved.

/*
HTTP delivery layer for the authentication subsystem.

The handler acts as a thin mediation layer between the web and the domain
service:
  - Protocol: Standard RESTful JSON interface, plus an OAuth2-style
    form-encoded login endpoint.
  - Security: Every security decision lives in [Service]; this layer only
    maps inputs and outcomes onto transport.
  - Verification: Enforces input shape before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/

package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/murof-net/backend/internal/platform/middleware"
	requestutil "github.com/murof-net/backend/internal/platform/request"
	"github.com/murof-net/backend/internal/platform/respond"
	"github.com/murof-net/backend/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST   /register                    : Creates a new account.
//   - GET    /verify/{token}              : Activates an account from an emailed link.
//   - POST   /verify/resend               : Re-sends the verification email.
//   - POST   /token                       : Authenticates and returns a token pair.
//   - POST   /refresh                     : Exchanges a refresh token for a new access token.
//   - GET    /reset/request/{identifier}  : Starts the forgot-password flow.
//   - POST   /reset/password              : Completes the forgot-password flow.
//   - GET    /me                          : Returns the authenticated profile.
//   - DELETE /me                          : Removes the authenticated account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Get("/verify/{token}", handler.verifyEmail)
	router.Post("/verify/resend", handler.resendVerification)
	router.Post("/token", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Get("/reset/request/{identifier}", handler.requestPasswordReset)
	router.Post("/reset/password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.currentUser)
		r.Delete("/me", handler.deleteCurrentUser)
	})

	return router
}

// # Request Payloads

type resendVerificationRequest struct {
	Identifier string `json:"identifier"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

/*
register handles the creation of a new account.

POST /auth/register

Description: Validates input shape and delegates enrollment. The response is
identical whether an account was created or the email was already taken.

Request:
  - Body: RegisterInput (Username, Email, Password)

Response:
  - 201: RegistrationAck
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: UsernameTaken
  - 502: NotificationFailed: The verification email could not be sent
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	ack, err := handler.authService.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, ack)
}

/*
verifyEmail activates an account from an emailed verification link.

GET /auth/verify/{token}

Response:
  - 200: messageResponse
  - 401: InvalidToken
  - 404: NotFound: Token subject no longer exists
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	tokenString := requestutil.Param(request, "token")

	if err := handler.authService.VerifyEmail(request.Context(), tokenString); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Email verified successfully"})
}

/*
resendVerification re-sends the verification email for a pending account.

POST /auth/verify/resend

Description: Responds identically regardless of whether the identifier exists,
is already verified, or is inside its throttle window.

Request:
  - Body: resendVerificationRequest (Identifier)

Response:
  - 200: messageResponse (always, unless input is malformed)
  - 400: ErrInvalidJSON
*/
func (handler *Handler) resendVerification(writer http.ResponseWriter, request *http.Request) {
	var input resendVerificationRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, input.Identifier)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResendVerification(request.Context(), input.Identifier); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Verification email sent"})
}

/*
login authenticates a member and returns a bearer token pair.

POST /auth/token

Description: Accepts either a JSON body (identifier, password) or an
OAuth2-style form body (username, password). The identifier may be a username
or an email address.

Response:
  - 200: TokenPair
  - 400: ErrInvalidJSON or validation failure
  - 401: InvalidCredentials or EmailNotVerified
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	input, err := decodeLogin(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, input.Identifier).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

// decodeLogin reads credentials from either encoding of the login endpoint.
// Form bodies follow the OAuth2 password-grant field names, where the
// "username" field carries the identifier.
func decodeLogin(request *http.Request) (LoginInput, error) {
	contentType := request.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if err := request.ParseForm(); err != nil {
			return LoginInput{}, validate.ErrInvalidJSON
		}
		return LoginInput{
			Identifier: request.PostFormValue("username"),
			Password:   request.PostFormValue("password"),
		}, nil
	}

	var input LoginInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		return LoginInput{}, validate.ErrInvalidJSON
	}
	return input, nil
}

/*
refresh exchanges a refresh token for a fresh access token.

POST /auth/refresh

Response:
  - 200: TokenPair (the refresh token is returned unrotated)
  - 400: ErrInvalidJSON
  - 401: InvalidToken
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRefreshToken, input.RefreshToken)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.RefreshAccessToken(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
requestPasswordReset starts the forgot-password flow.

GET /auth/reset/request/{identifier}

Response:
  - 200: ResetAck (identical whether or not the account exists)
*/
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.Param(request, "identifier")

	ack, err := handler.authService.RequestPasswordReset(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, ack)
}

/*
resetPassword completes the forgot-password flow.

POST /auth/reset/password

Request:
  - Body: resetPasswordRequest (Token, NewPassword)

Response:
  - 200: messageResponse
  - 400: ErrInvalidJSON or validation failure
  - 401: InvalidToken (including a token spent by an earlier reset)
  - 422: SamePassword
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Required(FieldNewPassword, input.NewPassword)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Password reset successfully"})
}

/*
currentUser returns the authenticated member's profile.

GET /auth/me

Response:
  - 200: Profile
  - 401: Unauthenticated
*/
func (handler *Handler) currentUser(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.authService.CurrentUser(request.Context(), claims.Subject)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
deleteCurrentUser permanently removes the authenticated account.

DELETE /auth/me

Response:
  - 204: No content
  - 401: Unauthenticated
*/
func (handler *Handler) deleteCurrentUser(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.DeleteCurrentUser(request.Context(), claims.Subject); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
