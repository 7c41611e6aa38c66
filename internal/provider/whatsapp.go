// internal/provider/whatsapp.go
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
)

// SendRequest carries everything the provider's send endpoint expects.
type SendRequest struct {
	APIKey       string
	From         string // business WhatsApp number
	To           string
	Message      string
	MessageType  model.MessageType
	TemplateName string
	MediaID      string
	MediaType    string
	ClientRef    string
}

// SendResponse is the provider's reply. Only the status marker and reason are
// interpreted; the ids are stored for callback matching.
type SendResponse struct {
	Status        string `json:"status"`
	Reason        string `json:"reason"`
	TransactionID string `json:"transaction_id"`
	MessageID     string `json:"message_id"`
}

// OK reports whether the provider accepted the message.
func (r *SendResponse) OK() bool {
	return strings.EqualFold(r.Status, "success")
}

// Sender sends one message through the external WhatsApp provider.
// Transport and timeout problems come back as an error; a provider-level
// rejection comes back as a non-success SendResponse.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (*SendResponse, error)
}

type HTTPSender struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSender(baseURL string) *HTTPSender {
	return &HTTPSender{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPSender) Send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	form := url.Values{}
	form.Set("api_key", req.APIKey)
	form.Set("from", req.From)
	form.Set("to", req.To)
	form.Set("message", req.Message)
	form.Set("type", string(req.MessageType))
	form.Set("client_ref", req.ClientRef)
	if req.TemplateName != "" {
		form.Set("template_name", req.TemplateName)
	}
	if req.MediaID != "" {
		form.Set("media_id", req.MediaID)
		form.Set("media_type", req.MediaType)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/messages/send", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var out SendResponse
	if err := json.Unmarshal(body, &out); err != nil || out.Status == "" {
		out.Status = "error"
		out.Reason = fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return &out, nil
	}

	if resp.StatusCode >= 300 && out.OK() {
		// Do not trust a success marker on a non-2xx response.
		out.Status = "error"
		if out.Reason == "" {
			out.Reason = fmt.Sprintf("http %d", resp.StatusCode)
		}
	}

	return &out, nil
}
