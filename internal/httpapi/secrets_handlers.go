package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setSecretReq struct {
	Password string `json:"password"`
	Key      string `json:"key"`
}

func (h SecretsHandler) SetIMAPPassword(w http.ResponseWriter, r *http.Request) {
	var req setSecretReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "expected {\"password\": \"...\"}")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.SetIMAPPassword(secrets.IMAPKeyringAccount(cfg), req.Password); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_failed", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteIMAPPassword(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.DeleteIMAPPassword(secrets.IMAPKeyringAccount(cfg)); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetLLMKey stores the API key of /api/secrets/llm/{provider}.
func (h SecretsHandler) SetLLMKey(w http.ResponseWriter, r *http.Request) {
	provider := strings.ToLower(strings.TrimPrefix(r.URL.Path, "/api/secrets/llm/"))
	if _, ok := secrets.LLMKeyEnv[provider]; !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_provider", "unknown provider "+provider)
		return
	}

	var req setSecretReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "expected {\"key\": \"...\"}")
		return
	}
	if err := secrets.SetLLMKey(provider, req.Key); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
