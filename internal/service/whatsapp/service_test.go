package whatsapp

import (
	"context"
	"errors"
	"testing"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
)

type sentText struct {
	To   string
	Body string
}

type fakeClient struct {
	sent []sentText
	err  error
}

func (f *fakeClient) SendText(_ context.Context, to, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentText{To: to, Body: body})
	return "wamid.1", nil
}

func TestNotifyManager(t *testing.T) {
	fc := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{ManagerID: "84900"}, fc, nil)

	if err := svc.NotifyManager(context.Background(), "3 devices below zero"); err != nil {
		t.Fatalf("NotifyManager: %v", err)
	}
	if len(fc.sent) != 1 || fc.sent[0].To != "84900" || fc.sent[0].Body != "3 devices below zero" {
		t.Fatalf("sent = %+v", fc.sent)
	}
}

func TestSendOutboundErrors(t *testing.T) {
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, &fakeClient{}, nil)
	if err := svc.NotifyManager(context.Background(), "x"); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("err = %v, want ErrNoRecipient", err)
	}

	boom := errors.New("boom")
	svc = NewMetaWhatsAppService(config.WhatsAppConfig{}, &fakeClient{err: boom}, nil)
	if err := svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "1", Message: "x"}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want client error", err)
	}
}
