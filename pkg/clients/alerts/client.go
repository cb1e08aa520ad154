package alerts

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Notifier delivers operational alerts to an external endpoint.
type Notifier interface {
	SendLowStockAlert(ctx context.Context, alert LowStockAlert) error
}

// LowStockAlert is the payload posted when a feed type runs below the
// configured threshold.
type LowStockAlert struct {
	FeedTypeID   string  `json:"feedTypeId"`
	ExternalCode string  `json:"externalCode"`
	Name         string  `json:"name"`
	StockPounds  float64 `json:"stockPounds"`
	Threshold    float64 `json:"threshold"`
}

// WebhookClient is a resty-backed Notifier posting JSON alerts to a webhook.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewWebhookClient builds a webhook notifier for the given URL.
func NewWebhookClient(url string) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		url:        url,
	}
}

// SendLowStockAlert posts the alert payload to the configured webhook.
func (c *WebhookClient) SendLowStockAlert(ctx context.Context, alert LowStockAlert) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send low stock alert: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("alert webhook error: status=%d, body=%s", resp.StatusCode(), resp.String())
	}
	return nil
}
