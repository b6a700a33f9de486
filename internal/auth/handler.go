package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"

	"github.com/claudiu-deving/APIServer/internal/identity"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	service *Service
	issuer  *Issuer
	tracker *AttemptTracker
}

func NewHandler(service *Service, issuer *Issuer, tracker *AttemptTracker) *Handler {
	return &Handler{service: service, issuer: issuer, tracker: tracker}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registrationRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type federatedRequest struct {
	IDToken string `json:"id_token"`
}

// Token authenticates a username/password pair and responds with a signed
// session token. Throttled callers get 403 before credentials are checked.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if !decodeJSONBody(w, r, &body) {
		return
	}

	if !h.tracker.CheckAndRecord(body.Username) {
		writeError(w, http.StatusForbidden, "too many login attempts")
		return
	}

	account, err := h.service.Verify(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.respondWithToken(w, account)
}

// Register creates a new account with the default role.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body registrationRequest
	if !decodeJSONBody(w, r, &body) {
		return
	}

	account, err := h.service.Register(r.Context(), body.Username, body.Password, body.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingField):
			writeError(w, http.StatusBadRequest, "username or password is missing")
		case errors.Is(err, ErrDuplicateUsername):
			writeError(w, http.StatusBadRequest, "username already exists")
		case errors.Is(err, ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "email already exists")
		default:
			sentry.CaptureException(err)
			writeError(w, http.StatusInternalServerError, "failed to register")
		}
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// FederatedLogin exchanges a verified third-party identity assertion for a
// session token. Accounts are never created on this path.
func (h *Handler) FederatedLogin(w http.ResponseWriter, r *http.Request) {
	var body federatedRequest
	if !decodeJSONBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.IDToken) == "" {
		writeError(w, http.StatusBadRequest, "id token is missing")
		return
	}

	account, err := h.service.FederatedLogin(r.Context(), body.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidAssertion):
			writeError(w, http.StatusBadRequest, "invalid identity token")
		case errors.Is(err, ErrAccountNotFound):
			writeError(w, http.StatusBadRequest, "no account matches the verified email")
		case errors.Is(err, ErrAudienceNotConfigured):
			sentry.CaptureException(err)
			writeError(w, http.StatusInternalServerError, "federated login is not configured")
		default:
			sentry.CaptureException(err)
			writeError(w, http.StatusInternalServerError, "failed to login")
		}
		return
	}

	h.respondWithToken(w, account)
}

// Role reports the calling token's account role, username, and email.
func (h *Handler) Role(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing token claims")
		return
	}

	account, err := h.service.Get(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to load role")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"role":     account.Role.Name,
		"username": account.Username,
		"email":    account.Email,
	})
}

// Lookup resolves a username to its account id.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountByPathUsername(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, account.ID)
}

// IsAdmin reports whether the named account holds an admin role.
func (h *Handler) IsAdmin(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountByPathUsername(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, account.Role.IsAdmin)
}

func (h *Handler) accountByPathUsername(w http.ResponseWriter, r *http.Request) (Account, bool) {
	account, err := h.service.Lookup(r.Context(), r.PathValue("username"))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return Account{}, false
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return Account{}, false
	}
	return account, true
}

func (h *Handler) respondWithToken(w http.ResponseWriter, account Account) {
	token, err := h.issuer.Issue(account)
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
