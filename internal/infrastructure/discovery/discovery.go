package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/stylefeed/go-backend/internal/cfg"
	"github.com/stylefeed/go-backend/internal/usecase"
	"github.com/stylefeed/go-backend/pkg/logger"
)

const searchPath = "/search"

// Client — клиент внешнего product-discovery сервиса.
// Выполняет ровно один HTTP-запрос на вызов; complementary retry —
// ответственность источника кандидатов.
type Client struct {
	cfg        *cfg.DiscoveryCfg
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg *cfg.DiscoveryCfg, logger logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// NewClientWithHTTPClient подменяет HTTP-клиент для тестов.
func NewClientWithHTTPClient(cfg *cfg.DiscoveryCfg, httpClient *http.Client, logger logger.Logger) *Client {
	c := NewClient(cfg, logger)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

// searchResponse — форма ответа discovery-сервиса.
type searchResponse struct {
	Results []struct {
		Title     string `json:"title"`
		Source    string `json:"source"`
		Price     string `json:"price"`
		Link      string `json:"link"`
		Thumbnail string `json:"thumbnail"`
	} `json:"results"`
}

// Search выполняет один поисковый запрос по URL либо по тексту.
func (c *Client) Search(ctx context.Context, req *usecase.DiscoverySearchReq) (*usecase.DiscoverySearchRes, error) {
	const op = "discovery.Client.Search"

	endpoint, err := c.buildURL(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c.cfg.ApiKey != "" {
		httpReq.Header.Set("X-API-KEY", c.cfg.ApiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	results := make([]usecase.DiscoveryItem, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, usecase.DiscoveryItem{
			Title:     r.Title,
			Source:    r.Source,
			Price:     r.Price,
			Link:      r.Link,
			Thumbnail: r.Thumbnail,
		})
	}

	return &usecase.DiscoverySearchRes{Results: results}, nil
}

func (c *Client) buildURL(req *usecase.DiscoverySearchReq) (string, error) {
	base := strings.TrimRight(c.cfg.BaseURL, "/") + searchPath

	query := url.Values{}
	switch {
	case req.URL != "":
		query.Set("url", req.URL)
	case req.Query != "":
		query.Set("q", req.Query)
	default:
		return "", fmt.Errorf("either url or query is required")
	}
	query.Set("num", strconv.Itoa(req.MaxResults))

	return base + "?" + query.Encode(), nil
}
