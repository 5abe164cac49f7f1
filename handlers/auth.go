package handlers

import (
	"errors"
	"net/http"
	"strings"

	"cinematch/internal/auth"
	"cinematch/services/accounts"
	"cinematch/services/sessions"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	accounts *accounts.Service
	sessions *sessions.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accountsSvc *accounts.Service, sessionsSvc *sessions.Service) *AuthHandler {
	return &AuthHandler{
		accounts: accountsSvc,
		sessions: sessionsSvc,
	}
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents the account creation request body.
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginResponse represents the login response.
type LoginResponse struct {
	Token       string `json:"token"`
	ExpiresAt   string `json:"expiresAt"`
	AccountID   string `json:"accountId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	IsMaster    bool   `json:"isMaster"`
}

// AccountResponse represents account info response.
type AccountResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	IsMaster    bool   `json:"isMaster"`
}

// Register creates a new account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	account, err := h.accounts.Create(req.Username, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrUsernameExists):
			writeError(w, http.StatusConflict, "username already exists")
		case errors.Is(err, accounts.ErrUsernameRequired), errors.Is(err, accounts.ErrPasswordRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create account")
		}
		return
	}

	session, err := h.sessions.Create(account.ID, account.IsMaster, r.Header.Get("User-Agent"), getClientIPAddress(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, LoginResponse{
		Token:       session.Token,
		ExpiresAt:   session.ExpiresAt.Format("2006-01-02T15:04:05Z"),
		AccountID:   account.ID,
		Username:    account.Username,
		DisplayName: account.DisplayName,
		IsMaster:    account.IsMaster,
	})
}

// Login authenticates a user and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	account, err := h.accounts.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	session, err := h.sessions.Create(account.ID, account.IsMaster, r.Header.Get("User-Agent"), getClientIPAddress(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:       session.Token,
		ExpiresAt:   session.ExpiresAt.Format("2006-01-02T15:04:05Z"),
		AccountID:   account.ID,
		Username:    account.Username,
		DisplayName: account.DisplayName,
		IsMaster:    account.IsMaster,
	})
}

// Logout invalidates the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		writeError(w, http.StatusBadRequest, "no session token")
		return
	}

	if err := h.sessions.Revoke(token); err != nil && !errors.Is(err, sessions.ErrSessionNotFound) {
		// Not-found is fine, the session may already be expired
		writeError(w, http.StatusInternalServerError, "failed to revoke session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// LogoutAll revokes every session belonging to the calling account.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	count := h.sessions.RevokeAllForAccount(auth.GetAccountID(r))
	writeJSON(w, http.StatusOK, map[string]any{"revoked": count})
}

// ListAccounts returns all registered accounts. Master only.
func (h *AuthHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	all := h.accounts.List()
	resp := make([]AccountResponse, 0, len(all))
	for _, a := range all {
		resp = append(resp, AccountResponse{
			ID:          a.ID,
			Username:    a.Username,
			DisplayName: a.DisplayName,
			IsMaster:    a.IsMaster,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": resp})
}

// ResetMasterPassword assigns the master account a fresh random password and
// returns it once in the response. Master only.
func (h *AuthHandler) ResetMasterPassword(w http.ResponseWriter, r *http.Request) {
	generated, err := h.accounts.ResetMasterPassword()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset master password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"password": generated})
}

// Me returns the current authenticated account info.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accounts.Get(auth.GetAccountID(r))
	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{
		ID:          account.ID,
		Username:    account.Username,
		DisplayName: account.DisplayName,
		IsMaster:    account.IsMaster,
	})
}

// ChangePasswordRequest represents password change request.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword changes the current account's password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	accountID := auth.GetAccountID(r)

	var req ChangePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	account, ok := h.accounts.Get(accountID)
	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	if _, err := h.accounts.Authenticate(account.Username, req.CurrentPassword); err != nil {
		writeError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	if err := h.accounts.ChangePassword(accountID, req.NewPassword); err != nil {
		if errors.Is(err, accounts.ErrPasswordRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// getClientIPAddress extracts the client IP address from the request.
func getClientIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
