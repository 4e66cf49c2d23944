package functions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ranchbook/internal/domain/billing"
	"ranchbook/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("billing functions client not configured")
	ErrUnauthorized  = errors.New("billing functions unauthorized")
	ErrUpstream      = errors.New("billing functions upstream error")
)

// Config del cliente de serverless functions de billing.
// BaseURL y APIKey vienen de env en quien lo instancie.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client invoca las functions hosted que hablan con el proveedor de
// pagos: create-checkout-session y customer-portal. Este servicio nunca
// toca la API de pagos directo.
type Client struct {
	apiKey string
	http   *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		apiKey: strings.TrimSpace(cfg.APIKey),
		http:   hc,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// CreateCheckoutSession devuelve la URL de checkout para (tier, interval).
func (c *Client) CreateCheckoutSession(ctx context.Context, ranchID string, tier billing.Tier, interval string) (string, error) {
	return c.invoke(ctx, "/functions/v1/create-checkout-session", map[string]string{
		"ranchId":  ranchID,
		"tier":     string(tier),
		"interval": interval,
	})
}

// CustomerPortal devuelve la URL del portal de suscripción del ranch.
func (c *Client) CustomerPortal(ctx context.Context, ranchID string) (string, error) {
	return c.invoke(ctx, "/functions/v1/customer-portal", map[string]string{
		"ranchId": ranchID,
	})
}

func (c *Client) invoke(ctx context.Context, path string, body map[string]string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	var out struct {
		URL string `json:"url"`
	}

	err := c.http.DoJSON(ctx, http.MethodPost, path, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, body, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
				return "", ErrUnauthorized
			}
			return "", fmt.Errorf("%w: status=%d", ErrUpstream, httpErr.StatusCode)
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if strings.TrimSpace(out.URL) == "" {
		return "", fmt.Errorf("%w: response missing url", ErrUpstream)
	}
	return out.URL, nil
}
