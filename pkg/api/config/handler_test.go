package config

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"obra_tracker/pkg/core/agent"
	"obra_tracker/pkg/core/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopProvider struct{}

func (nopProvider) GenerateResponse(context.Context, string, string, map[string]interface{}) (string, error) {
	return "", nil
}

func newHandler() *Handler {
	mgr := agent.NewManagerWithProviders(agent.Config{ActiveProvider: "gemini"},
		map[string]llm.Provider{"gemini": nopProvider{}, "openai": nopProvider{}})
	return NewHandler(mgr)
}

func TestHandleConfig(t *testing.T) {
	h := newHandler()
	rec := httptest.NewRecorder()
	h.HandleConfig(rec, httptest.NewRequest(http.MethodGet, "/config/llm", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "gemini", resp.ActiveProvider)
	assert.Equal(t, []string{"gemini", "openai"}, resp.Available)
}

func TestHandleSwitch(t *testing.T) {
	h := newHandler()

	rec := httptest.NewRecorder()
	h.HandleSwitch(rec, httptest.NewRequest(http.MethodPost, "/config/llm", strings.NewReader(`{"provider":"openai"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "openai", resp.ActiveProvider)

	rec = httptest.NewRecorder()
	h.HandleSwitch(rec, httptest.NewRequest(http.MethodPost, "/config/llm", strings.NewReader(`{"provider":"deepseek"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "openai", h.AgentMgr.GetActiveProvider())

	rec = httptest.NewRecorder()
	h.HandleSwitch(rec, httptest.NewRequest(http.MethodPost, "/config/llm", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
