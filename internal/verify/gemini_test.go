package verify

import (
	"context"
	"net/http"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
)

const testBaseURL = "http://gemini.test"

func newTestGemini(key string) *Gemini {
	return NewGemini(Config{BaseURL: testBaseURL, Model: "test-model", APIKey: key})
}

func TestGemini_Verify(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).
		Post("/v1beta/models/test-model:generateContent").
		MatchHeader("x-goog-api-key", "secret").
		MatchType("json").
		BodyString(`What is Go\?`).
		Reply(http.StatusOK).
		JSON(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "Accurate."}}}},
			},
		})

	got := newTestGemini("secret").Verify(context.Background(), "What is Go?", "A language.")
	assert.Equal(t, "Accurate.", got)
	assert.True(t, gock.IsDone())
}

func TestGemini_FallbackOnError(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
	}{
		{
			name: "server error",
			setup: func() {
				gock.New(testBaseURL).
					Post("/v1beta/models/test-model:generateContent").
					Reply(http.StatusInternalServerError)
			},
		},
		{
			name: "no candidates",
			setup: func() {
				gock.New(testBaseURL).
					Post("/v1beta/models/test-model:generateContent").
					Reply(http.StatusOK).
					JSON(map[string]any{"candidates": []any{}})
			},
		},
		{
			name: "malformed body",
			setup: func() {
				gock.New(testBaseURL).
					Post("/v1beta/models/test-model:generateContent").
					Reply(http.StatusOK).
					BodyString("{oops")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer gock.Off()
			tt.setup()

			got := newTestGemini("secret").Verify(context.Background(), "q", "a")
			assert.Equal(t, Fallback, got)
		})
	}
}

func TestGemini_MissingKey(t *testing.T) {
	defer gock.Off()
	gock.New(testBaseURL).
		Post("/v1beta/models/test-model:generateContent").
		Reply(http.StatusOK)

	got := newTestGemini("").Verify(context.Background(), "q", "a")
	assert.Equal(t, Fallback, got)
	assert.False(t, gock.IsDone(), "no request without a key")
}

func TestPrompt(t *testing.T) {
	p := Prompt("Q1", "A1")
	assert.Contains(t, p, "Question: Q1\nAnswer: A1")
}
