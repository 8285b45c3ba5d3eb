package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blindmatch/backend/internal/config"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

// Client sends outbound SMS through the Twilio REST API. Delivery is
// asynchronous: the immediate response carries a message SID; final status
// arrives later on the status callback webhook.
type Client struct {
	cfg        *config.TwilioConfig
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(cfg *config.TwilioConfig, log *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Message is the subset of Twilio's message resource the service records.
type Message struct {
	SID          string  `json:"sid"`
	To           string  `json:"to"`
	Status       string  `json:"status"`
	ErrorCode    *int    `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// SendSMS delivers one text message and returns the provider handle.
func (c *Client) SendSMS(ctx context.Context, to, body string) (*Message, error) {
	to = strings.TrimSpace(to)
	body = strings.TrimSpace(body)
	if to == "" {
		return nil, fmt.Errorf("twilio: recipient required")
	}
	if body == "" {
		return nil, fmt.Errorf("twilio: message body required")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.cfg.FromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Message != "" {
			return nil, fmt.Errorf("twilio http %d: %s (code=%d)", resp.StatusCode, ae.Message, ae.Code)
		}
		return nil, fmt.Errorf("twilio http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("twilio decode error: %w", err)
	}

	c.log.Debug("sms sent", zap.String("to", to), zap.String("sid", msg.SID))
	return &msg, nil
}
