package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stylefeed/go-backend/internal/cfg"
	"github.com/stylefeed/go-backend/pkg/e"
	"github.com/stylefeed/go-backend/pkg/jitter"
	"github.com/stylefeed/go-backend/pkg/logger"
)

const (
	embeddingsPath      = "/v1/embeddings"
	chatCompletionsPath = "/v1/chat/completions"
)

// Client — клиент OpenAI-совместимого API: embeddings и structured generation.
// Повторяет запросы с экспоненциальной задержкой и джиттером.
type Client struct {
	cfg        *cfg.OpenAICfg
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg *cfg.OpenAICfg, logger logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// NewClientWithHTTPClient подменяет HTTP-клиент; нужен тестам, чтобы не ходить в сеть.
func NewClientWithHTTPClient(cfg *cfg.OpenAICfg, httpClient *http.Client, logger logger.Logger) *Client {
	c := NewClient(cfg, logger)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

type embeddingsRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed векторизует текст с retry-логикой и экспоненциальной задержкой.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "openai.Client.Embed"

	reqBody := embeddingsRequest{
		Model: c.cfg.EmbeddingModel,
		Input: text,
	}

	var resp embeddingsResponse
	if err := c.withRetries(ctx, op, func() error {
		return c.doJSON(ctx, embeddingsPath, reqBody, &resp)
	}); err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyVector)
	}

	return resp.Data[0].Embedding, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate выполняет один chat-completion запрос в JSON-режиме
// и возвращает сырое содержимое ответа модели.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) ([]byte, error) {
	const op = "openai.Client.Generate"

	reqBody := chatRequest{
		Model: c.cfg.ChatModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	var resp chatResponse
	if err := c.withRetries(ctx, op, func() error {
		return c.doJSON(ctx, chatCompletionsPath, reqBody, &resp)
	}); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, e.Wrap(op, fmt.Errorf("empty choices in model response"))
	}

	return []byte(resp.Choices[0].Message.Content), nil
}

// withRetries повторяет вызов до maxRetries раз с экспоненциальной задержкой.
func (c *Client) withRetries(ctx context.Context, op string, call func() error) error {
	const (
		baseJitter = 1 * time.Second
		maxJitter  = 30 * time.Second
	)

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		lastErr = call()
		if lastErr == nil {
			return nil
		}

		if attempt == c.cfg.MaxRetries-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(
			baseJitter,
			maxJitter,
			attempt,
			jitter.DefaultJitter,
		)

		c.logger.Warnf("%s failed, retrying in %v (attempt %d): %v", op, sleepTime, attempt+1, lastErr)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return e.Wrap(op, ctx.Err())
		}
	}

	return e.Wrap(op, fmt.Errorf("all %d attempts failed: %w", c.cfg.MaxRetries, lastErr))
}

func (c *Client) doJSON(ctx context.Context, path string, reqBody, out any) error {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.ApiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: unexpected status %d: %s", path, resp.StatusCode, truncate(body, 256))
	}

	return json.Unmarshal(body, out)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
