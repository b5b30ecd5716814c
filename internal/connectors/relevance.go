package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/xela07ax/relevance-backend/internal/domain"
	"github.com/xela07ax/relevance-backend/internal/infra"
)

// errorBodyLimit — сколько байт тела ошибки тащим в текст ошибки.
const errorBodyLimit = 4 << 10

// ErrMissingCredentials возвращается конструктором, если не хватает RAI_* переменных.
var ErrMissingCredentials = errors.New("relevance: api key, region and project are required")

// agentPayload — агент в JSON-ответе Relevance.
type agentPayload struct {
	AgentID     string  `json:"agent_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (p agentPayload) toRecord() *domain.AgentRecord {
	return &domain.AgentRecord{
		AgentID:     p.AgentID,
		Name:        p.Name,
		Description: p.Description,
		Metadata: &domain.AgentMetadata{
			Name:        p.Name,
			Description: p.Description,
		},
	}
}

type listAgentsResponse struct {
	Results []agentPayload `json:"results"`
}

type retrieveAgentResponse struct {
	Agent *agentPayload `json:"agent"`
}

// RelevanceClient — REST-клиент Relevance AI. Создаётся один раз на старте
// и дальше только читается; безопасен для конкурентного использования.
type RelevanceClient struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
	limiter    *rate.Limiter // nil — без ограничения
}

// Option настраивает RelevanceClient.
type Option func(*RelevanceClient)

// WithHTTPClient подменяет http.Client (тесты, кастомный транспорт).
func WithHTTPClient(c *http.Client) Option {
	return func(rc *RelevanceClient) {
		rc.httpClient = c
	}
}

// NewRelevanceClient создает клиент по кредам из конфига.
func NewRelevanceClient(cfg infra.RelevanceConfig, opts ...Option) (*RelevanceClient, error) {
	if cfg.APIKey == "" || cfg.Region == "" || cfg.Project == "" {
		return nil, ErrMissingCredentials
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://api-%s.stack.tryrelevance.com/latest", cfg.Region)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("relevance: invalid base url: %w", err)
	}

	c := &RelevanceClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		authHeader: cfg.Project + ":" + cfg.APIKey,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListAgents возвращает агентов проекта в порядке, в котором их отдал Relevance.
func (c *RelevanceClient) ListAgents(ctx context.Context) ([]*domain.AgentRecord, error) {
	var resp listAgentsResponse
	if err := c.do(ctx, "list agents", http.MethodPost, "/agents/list", struct{}{}, &resp); err != nil {
		return nil, err
	}

	records := make([]*domain.AgentRecord, 0, len(resp.Results))
	for _, p := range resp.Results {
		records = append(records, p.toRecord())
	}
	return records, nil
}

// RetrieveAgent возвращает одного агента по идентификатору.
func (c *RelevanceClient) RetrieveAgent(ctx context.Context, agentID string) (*domain.AgentRecord, error) {
	path := "/agents/" + url.PathEscape(agentID) + "/get"

	var resp retrieveAgentResponse
	if err := c.do(ctx, "retrieve agent", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Agent == nil {
		return nil, fmt.Errorf("relevance: agent %s missing from response", agentID)
	}
	return resp.Agent.toRecord(), nil
}

func (c *RelevanceClient) do(ctx context.Context, op, method, path string, body, out any) error {
	// 1. Rate Limiter (ждём, но не повторяем)
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("relevance: %s: rate limit wait: %w", op, err)
		}
	}

	// 2. Собираем запрос
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("relevance: %s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("relevance: %s: create request: %w", op, err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// 3. Выполняем вызов
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relevance: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &APIError{Operation: op, StatusCode: resp.StatusCode, Body: string(data)}
	}

	// 4. Разбираем ответ
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("relevance: %s: decode response: %w", op, err)
	}
	return nil
}
