package api

import (
	"errors"
	"net/http"

	"github.com/alexivanou/cityinfo-api/internal/auth"
	"go.uber.org/zap"
)

// AuthenticationRequest is the body of POST /api/authentication/authenticate
type AuthenticationRequest struct {
	UserName string `json:"userName" xml:"userName"`
	Password string `json:"password" xml:"password"`
}

// AuthHandler issues bearer tokens. A nil token service answers 503.
type AuthHandler struct {
	responder
	tokens      *auth.TokenService
	credentials auth.CredentialValidator
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(tokens *auth.TokenService, credentials auth.CredentialValidator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		responder:   responder{logger: logger},
		tokens:      tokens,
		credentials: credentials,
	}
}

// Authenticate handles POST /api/authentication/authenticate
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil {
		h.writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "Token issuing is not available.", nil)
		return
	}

	var req AuthenticationRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeProblem(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	user, err := h.credentials.ValidateCredentials(r.Context(), req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.writeProblem(w, http.StatusUnauthorized, "Unauthorized", "", nil)
			return
		}
		h.writeInternalError(w, r, "Error validating credentials", err)
		return
	}

	token, err := h.tokens.Issue(*user)
	if err != nil {
		h.writeInternalError(w, r, "Error issuing token", err)
		return
	}

	h.logger.Info("Token issued", zap.String("user", user.UserName))
	h.respond(w, r, http.StatusOK, token, nil)
}
