// Package verify проверяет пару вопрос/ответ через внешнюю генеративную модель.
package verify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// Fallback возвращается при любой ошибке проверки.
const Fallback = "Verification unavailable."

const DefaultModel = "gemini-3-flash-preview"

var errNoClient = errors.New("gemini client is not configured")

// Verifier возвращает текстовый отзыв о точности пары вопрос/ответ.
// Verify никогда не возвращает ошибку: сбои превращаются в Fallback.
type Verifier interface {
	Verify(ctx context.Context, question, answer string) string
}

type Gemini struct {
	model  string
	client *genai.Client // nil, если ключ не задан
}

type Config struct {
	BaseURL string // пустой - адрес по умолчанию из SDK
	Model   string
	APIKey  string
	Timeout time.Duration
}

func NewGemini(cfg Config) *Gemini {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	g := &Gemini{model: cfg.Model}
	if cfg.APIKey == "" {
		return g
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		log.Errorf("[verify] failed to create gemini client: %v", err)
		return g
	}
	g.client = client
	return g
}

// Prompt строит запрос к модели.
func Prompt(question, answer string) string {
	return "Verify the accuracy of this Q&A pair and provide a brief suggestion for improvement if necessary. \n" +
		"Question: " + question + "\nAnswer: " + answer
}

func (g *Gemini) Verify(ctx context.Context, question, answer string) string {
	text, err := g.generate(ctx, Prompt(question, answer))
	if err != nil {
		log.Errorf("[verify] model %s: %v", g.model, err)
		return Fallback
	}
	return text
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", errNoClient
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}
