package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mamadbah2/stockledger/internal/config"
)

func TestSendText(t *testing.T) {
	var got outgoingText
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v20.0/123/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer server.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "tok", PhoneNumberID: "123", BaseURL: server.URL + "/", APIVersion: "v20.0"})
	id, err := client.SendText(context.Background(), "849", strings.Repeat("x", 5000))
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if id != "wamid.1" {
		t.Errorf("message id = %q", id)
	}
	if got.To != "849" || got.Type != "text" || len([]rune(got.Text.Body)) != maxBodyRunes {
		t.Errorf("payload to=%s type=%s body=%d", got.To, got.Type, len([]rune(got.Text.Body)))
	}
}

func TestSendTextAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","code":100}}`))
	}))
	defer server.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "tok", PhoneNumberID: "123", BaseURL: server.URL, APIVersion: "v20.0"})
	_, err := client.SendText(context.Background(), "1", "hi")
	if err == nil || !strings.Contains(err.Error(), "code=100") || !strings.Contains(err.Error(), "Invalid parameter") {
		t.Fatalf("err = %v", err)
	}
}
