// internal/handler/message_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/Tasknova/What-app-Nandlal-sub001/internal/errors"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/repository"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/service"
)

// MessageHandler exposes ad hoc single sends (no owning campaign).
type MessageHandler struct {
	Dispatcher *service.Dispatcher
	Clients    repository.ClientRepositoryInterface
}

func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientID     int64             `json:"client_id"`
		Phone        string            `json:"phone"`
		Message      string            `json:"message"`
		MessageType  model.MessageType `json:"message_type"`
		TemplateName string            `json:"template_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	client, err := h.Clients.GetByID(body.ClientID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if client == nil || !client.Active {
		http.Error(w, "client not found or inactive", http.StatusNotFound)
		return
	}

	result, err := h.Dispatcher.Send(r.Context(), nil, client, body.Phone, body.Message, body.MessageType, body.TemplateName)
	if err != nil {
		if errors.Is(err, apperrors.ErrMissingCredentials) {
			http.Error(w, err.Error(), http.StatusPreconditionFailed)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
