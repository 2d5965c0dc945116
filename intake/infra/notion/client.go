// Package notion acessa a API REST do Notion (criação de páginas e consulta
// paginada de databases) e adapta essas chamadas às portas de intake/domain.
package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.notion.com"
	APIVersion     = "2022-06-28"

	// limite de requisições médias por integração documentado pelo Notion
	defaultRPS   = 3
	defaultBurst = 3
)

// APIError é o corpo de erro padrão do Notion
// ({"object":"error","status":400,"code":"validation_error","message":"..."}).
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion: status %d", e.Status)
	}
	return fmt.Sprintf("notion: status %d: %s: %s", e.Status, e.Code, e.Message)
}

type Client struct {
	rc      *resty.Client
	limiter *rate.Limiter
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.rc.SetBaseURL(u)
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.rc.SetTimeout(d) }
}

// WithRateLimit limita as chamadas de saída; rps <= 0 desliga o limite.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetryCount define quantas vezes uma resposta 429 é repetida.
func WithRetryCount(n int) Option {
	return func(c *Client) { c.rc.SetRetryCount(n) }
}

func New(token string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(DefaultBaseURL).
		SetAuthToken(token).
		SetHeader("Notion-Version", APIVersion).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		// só 429: o Notion não processou a requisição, então repetir não duplica página
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r != nil && r.StatusCode() == http.StatusTooManyRequests
		})

	c := &Client{
		rc:      rc,
		limiter: rate.NewLimiter(defaultRPS, defaultBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

type createPageRequest struct {
	Parent     parent     `json:"parent"`
	Properties Properties `json:"properties"`
}

type pageResponse struct {
	ID string `json:"id"`
}

// CreatePage cria uma página (linha) no database e devolve o ID dela.
func (c *Client) CreatePage(ctx context.Context, databaseID string, props Properties) (string, error) {
	var out pageResponse
	err := c.do(ctx, http.MethodPost, "/v1/pages", createPageRequest{
		Parent:     parent{DatabaseID: databaseID},
		Properties: props,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.ID, nil
}

type QueryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

type QueryResponse struct {
	Results    []json.RawMessage `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor *string           `json:"next_cursor"`
}

// QueryDatabase busca uma página de resultados do database.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, q QueryRequest) (QueryResponse, error) {
	var out QueryResponse
	err := c.do(ctx, http.MethodPost, "/v1/databases/"+databaseID+"/query", q, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("notion rate limiter: %w", err)
		}
	}

	apiErr := &APIError{}
	req := c.rc.R().SetContext(ctx).SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("notion %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode()
		}
		return apiErr
	}
	return nil
}
