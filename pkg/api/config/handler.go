package config

import (
	"net/http"

	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/agent"
	"obra_tracker/pkg/core/utils"
)

type Response struct {
	ActiveProvider string   `json:"active_provider"`
	Available      []string `json:"available"`
}

type SwitchRequest struct {
	Provider string `json:"provider" validate:"required"`
}

// ProviderSwitcher is the part of agent.Manager the endpoints use.
type ProviderSwitcher interface {
	GetActiveProvider() string
	SetGlobalProvider(name string) error
	Available() []string
}

var _ ProviderSwitcher = (*agent.Manager)(nil)

// Handler holds dependencies for config endpoints
type Handler struct {
	AgentMgr ProviderSwitcher
}

// NewHandler creates a new config handler
func NewHandler(agentMgr ProviderSwitcher) *Handler {
	return &Handler{
		AgentMgr: agentMgr,
	}
}

func (h *Handler) current() Response {
	return Response{
		ActiveProvider: h.AgentMgr.GetActiveProvider(),
		Available:      h.AgentMgr.Available(),
	}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	response.RespondWithJSON(w, http.StatusOK, h.current())
}

// HandleSwitch changes the provider used by agents without an override in models.yaml.
func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if !response.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := h.AgentMgr.SetGlobalProvider(req.Provider); err != nil {
		response.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Unknown provider",
			map[string][]string{"available": h.AgentMgr.Available()}, err)
		return
	}
	response.RespondWithJSON(w, http.StatusOK, h.current())
}
