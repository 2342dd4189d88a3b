// Package apiclient содержит небольшой HTTP-клиент для API AutoAssist,
// используемый командой smoketest.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/maynagashev/autoassist/internal/models"
)

// ErrAuthorization возвращается для ответов 401.
var ErrAuthorization = errors.New("authorization failed")

const defaultTimeout = 10 * time.Second

// Client определяет методы для работы с запущенным сервером.
type Client interface {
	Health(ctx context.Context) (*Envelope, error)
	Index(ctx context.Context) (*Envelope, error)
	ListCars(ctx context.Context, query url.Values) ([]models.Car, *models.Pagination, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Verify(ctx context.Context) (*models.User, error)
	SetAuthToken(token string)
}

// Envelope повторяет тело ответа сервера.
type Envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data,omitempty"`
	Error      string             `json:"error,omitempty"`
	Message    string             `json:"message,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// StatusError возвращается для неожиданных кодов ответа.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Message)
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// NewHTTPClient returns a Client for baseURL, e.g. "http://localhost:5000".
func NewHTTPClient(baseURL string) Client {
	return &httpClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (c *httpClient) SetAuthToken(token string) {
	c.authToken = token
}

func (c *httpClient) Health(ctx context.Context) (*Envelope, error) {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, false, http.StatusOK)
}

func (c *httpClient) Index(ctx context.Context) (*Envelope, error) {
	return c.do(ctx, http.MethodGet, "/api", nil, nil, false, http.StatusOK)
}

// ListCars вызывает GET /api/cars с переданными фильтрами.
func (c *httpClient) ListCars(ctx context.Context, query url.Values) ([]models.Car, *models.Pagination, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/cars", query, nil, false, http.StatusOK)
	if err != nil {
		return nil, nil, err
	}
	var cars []models.Car
	if err = json.Unmarshal(env.Data, &cars); err != nil {
		return nil, nil, fmt.Errorf("decode cars: %w", err)
	}
	return cars, env.Pagination, nil
}

// Login выполняет вход и сохраняет полученный токен для следующих запросов.
func (c *httpClient) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	body := models.LoginRequest{Email: email, Password: password}
	env, err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, false, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var res models.AuthResult
	if err = json.Unmarshal(env.Data, &res); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if res.Token == "" {
		return nil, errors.New("server returned an empty token")
	}
	c.authToken = res.Token
	return &res, nil
}

// Verify проверяет сохраненный токен.
func (c *httpClient) Verify(ctx context.Context) (*models.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/auth/verify", nil, nil, true, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var data struct {
		User *models.User `json:"user"`
	}
	if err = json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	return data.User, nil
}

func (c *httpClient) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
	auth bool,
	want int,
) (*Envelope, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("build URL for %s: %w", path, err)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return nil, fmt.Errorf("encode request for %s: %w", path, marshalErr)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		if c.authToken == "" {
			return nil, fmt.Errorf("%w: no token, log in first", ErrAuthorization)
		}
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env Envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %s", ErrAuthorization, env.Error)
	}
	if resp.StatusCode != want {
		return nil, &StatusError{Status: resp.StatusCode, Message: env.Error}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response from %s: %w", path, decodeErr)
	}
	return &env, nil
}
