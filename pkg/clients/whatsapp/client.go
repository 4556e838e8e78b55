package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/stockledger/internal/config"
)

// maxBodyRunes is the Cloud API limit on a text body.
const maxBodyRunes = 4096

// Client sends plain text messages.
type Client interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// APIClient talks to the WhatsApp Cloud API with resty.
type APIClient struct {
	http          *resty.Client
	phoneNumberID string
}

// NewClient builds a client for the configured sender number.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/") + "/" + cfg.APIVersion

	return &APIClient{
		http: resty.New().
			SetBaseURL(base).
			SetAuthToken(cfg.AccessToken).
			SetHeader("Content-Type", "application/json").
			SetTimeout(15 * time.Second),
		phoneNumberID: cfg.PhoneNumberID,
	}
}

type outgoingText struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type sendResult struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type sendError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText delivers body to the given number and returns the message id.
// Bodies over the API limit are cut with an ellipsis.
func (c *APIClient) SendText(ctx context.Context, to, body string) (string, error) {
	if r := []rune(body); len(r) > maxBodyRunes {
		body = string(r[:maxBodyRunes-1]) + "…"
	}

	msg := outgoingText{MessagingProduct: "whatsapp", To: to, Type: "text"}
	msg.Text.Body = body

	var (
		result sendResult
		apiErr sendError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(&result).
		SetError(&apiErr).
		Post(c.phoneNumberID + "/messages")
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return "", fmt.Errorf("whatsapp api error: code=%d, message=%s", code, apiErr.Error.Message)
	}

	if len(result.Messages) == 0 {
		return "", nil
	}
	return result.Messages[0].ID, nil
}
