package chat

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/ping", h.HandlePing)

	r.Post("/classify", h.HandleClassify)
	r.Post("/chat", h.HandleChat)
	r.Post("/answer", h.HandleAnswer)
	r.Post("/validate-address", h.HandleValidateAddress)

	r.Post("/tickets", h.HandleCreateTicket)
	r.Get("/tickets/{ticketID}/messages", h.HandleTicketMessages)
	r.Post("/tickets/{ticketID}/messages", h.HandleAddTicketMessage)
}
