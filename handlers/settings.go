package handlers

import (
	"net/http"

	"cinematch/services/settings"
)

// SettingsHandler exposes runtime credential settings. Master only.
type SettingsHandler struct {
	settings *settings.Service
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settingsSvc *settings.Service) *SettingsHandler {
	return &SettingsHandler{settings: settingsSvc}
}

// CredentialsResponse reports which credentials are configured. The key
// itself is never echoed back.
type CredentialsResponse struct {
	GroqAPIKeySet bool `json:"groqApiKeySet"`
}

// CredentialsRequest updates credentials.
type CredentialsRequest struct {
	GroqAPIKey *string `json:"groqApiKey"`
}

// GetCredentials reports whether the completion credential is configured.
func (h *SettingsHandler) GetCredentials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CredentialsResponse{GroqAPIKeySet: h.settings.HasGroqAPIKey()})
}

// UpdateCredentials sets or clears the completion credential.
func (h *SettingsHandler) UpdateCredentials(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.GroqAPIKey == nil {
		writeError(w, http.StatusBadRequest, "groqApiKey is required")
		return
	}

	if err := h.settings.SetGroqAPIKey(*req.GroqAPIKey); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save credentials")
		return
	}
	writeJSON(w, http.StatusOK, CredentialsResponse{GroqAPIKeySet: h.settings.HasGroqAPIKey()})
}
