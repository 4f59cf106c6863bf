package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gericke98/happy-customer/internal/answer"
	"github.com/gericke98/happy-customer/internal/classify"
	"github.com/gericke98/happy-customer/internal/geocode"
	"github.com/gericke98/happy-customer/internal/logger"
	"github.com/gericke98/happy-customer/internal/shopify"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	svc Service
	log logger.Logger
}

func NewHandler(svc Service, log logger.Logger) *Handler {
	return &Handler{svc: svc, log: log.With(map[string]interface{}{"component": "http"})}
}

// messageField accepts both widget payload shapes: a bare string and a
// wrapped {"text": ...} object.
type messageField struct {
	Text string
}

func (m *messageField) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &m.Text)
	}
	var wrapped struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	m.Text = wrapped.Text
	return nil
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("write response failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	h.writeJSON(w, status, errorBody{Error: msg, Code: code, RequestID: RequestIDFrom(r.Context())})
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "BODY_TOO_LARGE", "request body too large")
		return nil, false
	}
	return body, true
}

// HandleClassify runs classification only and returns the resolved intent,
// parameters and language without generating a reply.
func (h *Handler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	if err := validateBody(classifyLoader, body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	var payload struct {
		Message messageField    `json:"message"`
		Text    string          `json:"text"`
		Context []classify.Turn `json:"context"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}
	if payload.Message.Text == "" {
		payload.Message.Text = payload.Text
	}

	cm, err := h.svc.Classify(r.Context(), payload.Message.Text, payload.Context)
	if err != nil {
		if errors.Is(err, ErrClassificationTimeout) {
			h.writeError(w, r, http.StatusRequestTimeout, "CLASSIFICATION_TIMEOUT", "classification timed out")
			return
		}
		h.writeError(w, r, http.StatusInternalServerError, "INTERNAL", "classification failed")
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Intent     classify.Intent `json:"intent"`
		Parameters classify.Params `json:"parameters"`
		Language   string          `json:"language"`
		RequestID  string          `json:"requestId,omitempty"`
	}{cm.Intent, cm.Parameters, cm.Language, RequestIDFrom(r.Context())})
}

// HandleChat is the full pipeline: classify, run the intent handler, answer,
// and persist both sides when a ticket is attached.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	if err := validateBody(classifyLoader, body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	var payload struct {
		Message  messageField    `json:"message"`
		Text     string          `json:"text"`
		Context  []classify.Turn `json:"context"`
		TicketID string          `json:"ticketId"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}
	if payload.Message.Text == "" {
		payload.Message.Text = payload.Text
	}

	reply, err := h.svc.ProcessMessage(r.Context(), payload.Message.Text, payload.Context, payload.TicketID)
	if err != nil {
		if errors.Is(err, ErrClassificationTimeout) {
			h.writeError(w, r, http.StatusRequestTimeout, "CLASSIFICATION_TIMEOUT", "classification timed out")
			return
		}
		h.writeError(w, r, http.StatusInternalServerError, "INTERNAL", "message processing failed")
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Reply     string `json:"reply"`
		RequestID string `json:"requestId,omitempty"`
	}{reply, RequestIDFrom(r.Context())})
}

// HandleAnswer generates a reply for an already-classified message. Callers
// that fetched commerce data or hold a size chart pass them in the body.
func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	if err := validateBody(answerLoader, body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	var payload struct {
		Intent      string          `json:"intent"`
		Parameters  classify.Params `json:"parameters"`
		Message     string          `json:"message"`
		UserMessage string          `json:"userMessage"`
		Context     []classify.Turn `json:"context"`
		Language    string          `json:"language"`
		SizeCharts  string          `json:"sizeCharts"`
		ShopifyData *shopify.Order  `json:"shopifyData"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}
	if payload.Message == "" {
		payload.Message = payload.UserMessage
	}
	if payload.Language == "" {
		payload.Language = classify.LanguageEnglish
	}

	reply, cached := h.svc.Answer(r.Context(), answer.Request{
		Intent:      classify.ParseIntent(payload.Intent),
		Parameters:  payload.Parameters,
		UserMessage: payload.Message,
		Context:     payload.Context,
		Language:    payload.Language,
		SizeCharts:  payload.SizeCharts,
		Order:       payload.ShopifyData,
	})

	h.writeJSON(w, http.StatusOK, struct {
		Answer    string `json:"answer"`
		Cached    bool   `json:"cached"`
		Timestamp string `json:"timestamp"`
		RequestID string `json:"requestId,omitempty"`
	}{reply, cached, time.Now().UTC().Format(time.RFC3339), RequestIDFrom(r.Context())})
}

// HandleValidateAddress geocodes a free-form address.
func (h *Handler) HandleValidateAddress(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	if err := validateBody(validateAddressLoader, body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	var payload struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	res, err := h.svc.ValidateAddress(r.Context(), payload.Address)
	if err != nil {
		h.writeError(w, r, http.StatusBadGateway, "GEOCODER_ERROR", "address validation unavailable")
		return
	}

	type addressData struct {
		FormattedAddress   string   `json:"formattedAddress"`
		MultipleCandidates bool     `json:"multipleCandidates"`
		AddressCandidates  []string `json:"addressCandidates"`
		ValidationStatus   string   `json:"validationStatus"`
	}
	h.writeJSON(w, http.StatusOK, struct {
		Data addressData `json:"data"`
	}{addressData{res.FormattedAddress, res.MultipleCandidates, res.AddressCandidates, validationStatus(res)}})
}

func validationStatus(res *geocode.Result) string {
	switch {
	case res.MultipleCandidates:
		return "MULTIPLE_CANDIDATES"
	case res.FormattedAddress != "":
		return "VALID"
	default:
		return "INVALID"
	}
}

func (h *Handler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	if err := validateBody(createTicketLoader, body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	var payload struct {
		ShopID string `json:"shopId"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	ticket, err := h.svc.CreateTicket(r.Context(), payload.ShopID)
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "INTERNAL", "could not create ticket")
		return
	}

	h.writeJSON(w, http.StatusCreated, ticketResponse(ticket))
}

func (h *Handler) HandleTicketMessages(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	msgs, err := h.svc.TicketMessages(r.Context(), ticketID)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			h.writeError(w, r, http.StatusNotFound, "TICKET_NOT_FOUND", "ticket not found")
			return
		}
		h.writeError(w, r, http.StatusInternalServerError, "INTERNAL", "could not load messages")
		return
	}

	out := make([]map[string]interface{}, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse(&m))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleAddTicketMessage(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	if err := validateBody(ticketMessageLoader, body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	var payload struct {
		Sender string `json:"sender"`
		Text   string `json:"text"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	msg, err := h.svc.AddTicketMessage(r.Context(), ticketID, Sender(payload.Sender), payload.Text)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			h.writeError(w, r, http.StatusNotFound, "TICKET_NOT_FOUND", "ticket not found")
			return
		}
		h.writeError(w, r, http.StatusInternalServerError, "INTERNAL", "could not save message")
		return
	}

	h.writeJSON(w, http.StatusCreated, messageResponse(msg))
}

func (h *Handler) HandlePing(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func ticketResponse(t *Ticket) map[string]interface{} {
	return map[string]interface{}{
		"id":        t.ID,
		"shopId":    t.ShopID,
		"status":    t.Status,
		"createdAt": t.CreatedAt,
	}
}

func messageResponse(m *Message) map[string]interface{} {
	return map[string]interface{}{
		"id":        m.ID,
		"ticketId":  m.TicketID,
		"sender":    string(m.Sender),
		"text":      m.Text,
		"createdAt": m.CreatedAt,
	}
}
