// Copyright (c) 2026 Murof. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/murof-net/backend/internal/platform/apperr"
	"github.com/murof-net/backend/internal/platform/ctxutil"
	"github.com/murof-net/backend/internal/platform/token"
	"github.com/murof-net/backend/internal/platform/validate"
)

// DecodeJSON reads the request body and decodes it into the target structure.
//
// Returns [validate.ErrInvalidJSON] if decoding fails, keeping malformed-body
// failures on the same response path as validation failures.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Claims extracts the authenticated token claims from the request context.
//
// Returns nil if the request is not authenticated.
func Claims(request *http.Request) *token.Claims {
	return ctxutil.GetAuthUser(request.Context())
}

// RequiredClaims ensures the request carries a verified access token and
// returns its claims, or [apperr.Unauthenticated] otherwise.
func RequiredClaims(request *http.Request) (*token.Claims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthenticated()
	}
	return claims, nil
}

// RequiredUserID returns the identity ID of the currently logged-in user.
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
