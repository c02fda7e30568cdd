package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type actionPayload struct {
	Action   string  `json:"action" validate:"required"`
	Value    float64 `json:"value" validate:"gte=0"`
	Progress int     `json:"progress" validate:"progress_step"`
}

func TestSmartParse(t *testing.T) {
	cases := map[string]string{
		"plain":          `{"action":"add_expense","value":10}`,
		"fenced":         "```json\n{\"action\":\"add_expense\",\"value\":10}\n```",
		"trailing comma": `{"action":"add_expense","value":10,}`,
		"unquoted keys":  `{action: "add_expense", value: 10}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			var p actionPayload
			out, err := SmartParse(input, &p)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
			assert.Equal(t, "add_expense", p.Action)
			assert.Equal(t, 10.0, p.Value)
		})
	}

	var p actionPayload
	_, err := SmartParse("not json at all", &p)
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`  {"a":1} `))
}

func TestValidateJSON(t *testing.T) {
	var ok actionPayload
	assert.NoError(t, ValidateJSON(`{"action":"update_progress","progress":40}`, &ok))

	var bad actionPayload
	err := ValidateJSON(`{"action":"update_progress","progress":45}`, &bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON_SCHEMA_VIOLATION")

	var missing actionPayload
	assert.Error(t, ValidateJSON(`{"value":3}`, &missing))

	var broken actionPayload
	err = ValidateJSON(`{"action":`, &broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON_STRUCTURAL_ERROR")
}

func TestRenderMarkdownAndPlainText(t *testing.T) {
	html, err := RenderMarkdown("# Slab poured\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Slab poured</h1>")
	assert.Contains(t, html, "<table>")
	assert.NotContains(t, html, "<script>")

	plain, err := PlainText("<p>Hello   <b>site</b>\n team</p>")
	require.NoError(t, err)
	assert.Equal(t, "Hello site team", plain)

	assert.True(t, ValidateMarkdown("**ok**"))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "Concrete delivered", Excerpt("**Concrete** delivered", 100))
	got := Excerpt("Rebar inspection approved by the engineer", 5)
	assert.Equal(t, "Rebar…", got)
	assert.True(t, strings.HasSuffix(Excerpt(strings.Repeat("a ", 50), 10), "…"))
}

func TestCleanMarkdown(t *testing.T) {
	assert.Equal(t, "# Title", CleanMarkdown("```markdown\n# Title\n```"))
	assert.Equal(t, "text", CleanMarkdown("  text  "))
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("load project: %w", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, AsAppError(wrapped).StatusCode)
	assert.Equal(t, http.StatusConflict, AsAppError(ErrUnitAlreadySold).StatusCode)
	assert.Equal(t, http.StatusBadRequest, AsAppError(ErrInvalidProgress).StatusCode)
	assert.Equal(t, http.StatusBadGateway, AsAppError(ErrExternalServiceFailure).StatusCode)
	assert.Equal(t, http.StatusInternalServerError, AsAppError(errors.New("boom")).StatusCode)

	custom := NewAppError(http.StatusTeapot, "teapot", "short and stout", nil)
	assert.Same(t, custom, AsAppError(fmt.Errorf("ctx: %w", custom)))
	assert.Equal(t, "short and stout", custom.Error())
}
