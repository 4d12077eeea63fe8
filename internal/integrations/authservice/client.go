package authservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

// Client клиент внешнего сервиса авторизации
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента сервиса авторизации
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// ResolveCaller определяет пользователя и его роль по bearer токену
func (c *Client) ResolveCaller(ctx context.Context, token string) (domain.Caller, error) {
	url := fmt.Sprintf("%s/internal/auth/resolve", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("ResolveCaller: auth service unavailable: %v", err)
		return domain.Caller{}, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.Caller{}, ErrUnauthorized
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Caller{}, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var resolved ResolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&resolved); err != nil {
		return domain.Caller{}, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if resolved.UserID <= 0 {
		return domain.Caller{}, fmt.Errorf("%w: missing user id", ErrInvalidResponse)
	}

	return domain.Caller{UserID: resolved.UserID, Role: domain.ParseRole(resolved.Role)}, nil
}
