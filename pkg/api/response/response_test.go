package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"obra_tracker/pkg/core/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createUnit struct {
	Identifier string  `json:"identifier" validate:"required"`
	Area       float64 `json:"area" validate:"gt=0"`
}

func TestDecodeAndValidate(t *testing.T) {
	rec := httptest.NewRecorder()
	var dst createUnit
	ok := DecodeAndValidate(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"identifier":"A1","area":0}`)), &dst)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, utils.ErrCodeValidation, body.Code)
	assert.Equal(t, map[string]any{"Area": "gt"}, body.Details)

	rec = httptest.NewRecorder()
	assert.False(t, DecodeAndValidate(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)), &dst))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, utils.ErrCodeInvalidPayload, body.Code)

	rec = httptest.NewRecorder()
	assert.True(t, DecodeAndValidate(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"identifier":"A1","area":50}`)), &dst))
	assert.Equal(t, 50.0, dst.Area)
}

func TestHandleAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleAppError(rec, fmt.Errorf("load: %w", utils.ErrUnitAlreadySold))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, utils.ErrCodeConflict, body.Code)
}
