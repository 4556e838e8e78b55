package appscript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Actions understood by the spreadsheet's bound script.
const (
	ActionCreateTicket = "create_ticket"
	ActionAddMaster    = "add_master"
)

// ErrNoEndpoint is returned when no script URL has been configured or discovered.
var ErrNoEndpoint = errors.New("script endpoint not configured")

// Client exposes the write actions of the Apps Script web app.
type Client interface {
	CreateTicket(ctx context.Context, rows [][]interface{}) error
	AddMaster(ctx context.Context, sheetName string, row []interface{}) error
	SetEndpoint(url string)
	Endpoint() string
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client

	mu       sync.RWMutex
	endpoint string
}

// NewClient builds a script client. endpoint may be empty and set later via
// SetEndpoint once it has been discovered from the spreadsheet.
func NewClient(endpoint string, timeout time.Duration) *APIClient {
	restyClient := resty.New()
	restyClient.
		// The web app only accepts "simple" requests, so the JSON body travels
		// as text/plain and is encoded by hand.
		SetHeader("Content-Type", "text/plain;charset=utf-8").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &APIClient{
		httpClient: restyClient,
		endpoint:   strings.TrimSpace(endpoint),
	}
}

// Response mirrors the script's {status, message} envelope.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type createTicketRequest struct {
	Action string          `json:"action"`
	Rows   [][]interface{} `json:"rows"`
}

type addMasterRequest struct {
	Action    string        `json:"action"`
	SheetName string        `json:"sheetName"`
	Row       []interface{} `json:"row"`
}

// SetEndpoint replaces the script URL used by subsequent calls.
func (c *APIClient) SetEndpoint(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoint = strings.TrimSpace(url)
}

// Endpoint returns the script URL currently in use.
func (c *APIClient) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint
}

// CreateTicket appends ledger rows through the create_ticket action.
func (c *APIClient) CreateTicket(ctx context.Context, rows [][]interface{}) error {
	return c.post(ctx, createTicketRequest{Action: ActionCreateTicket, Rows: rows})
}

// AddMaster appends one master-data row to sheetName.
func (c *APIClient) AddMaster(ctx context.Context, sheetName string, row []interface{}) error {
	return c.post(ctx, addMasterRequest{Action: ActionAddMaster, SheetName: sheetName, Row: row})
}

func (c *APIClient) post(ctx context.Context, payload any) error {
	endpoint := c.Endpoint()
	if endpoint == "" {
		return ErrNoEndpoint
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode script payload: %w", err)
	}

	result := new(Response)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		ForceContentType("application/json").
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("call script endpoint: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("script endpoint error: code=%d", resp.StatusCode())
	}

	if result.Status != "success" {
		message := result.Message
		if message == "" {
			message = "unknown script error"
		}
		return fmt.Errorf("script rejected request: status=%q, message=%s", result.Status, message)
	}

	return nil
}
