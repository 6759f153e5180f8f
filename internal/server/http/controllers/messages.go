package controllers

import (
	"encoding/json"
	"net/http"

	greetersvc "github.com/rzbill/greetd/internal/services/greeter"
	"github.com/rzbill/greetd/pkg/log"
)

// MessagesController exposes the greeter operations over JSON and SSE.
//
// Sends and history are plain JSON; the live feed is a Server-Sent Events
// stream carrying one {"message": ...} event per broadcast.
type MessagesController struct {
	svc    *greetersvc.Service
	logger log.Logger
}

// NewMessagesController creates a new messages controller.
func NewMessagesController(svc *greetersvc.Service, logger log.Logger) *MessagesController {
	return &MessagesController{svc: svc, logger: logger}
}

// RegisterRoutes registers message routes with the given mux.
//
// This method sets up HTTP endpoints for:
// - Sending a greeting (POST /v1/messages)
// - Listing persisted greetings (GET /v1/messages)
// - Following live greetings (GET /v1/messages/stream)
func (c *MessagesController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/messages", c.handleMessages)
	mux.HandleFunc("/v1/messages/stream", c.handleStream)
}

func (c *MessagesController) handleMessages(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodPost {
		c.handleSend(w, r)
		return
	}
	c.handleList(w, r)
}

// handleSend greets the posted name.
//
// Expects a JSON body with a "name" field. Store failures do not fail the
// request; they are logged by the service.
func (c *MessagesController) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	writeJSON(w, messageResp{Message: c.svc.SendMessage(r.Context(), req.Name)})
}

// handleList returns every persisted greeting.
//
// Returns 500 Internal Server Error when the store cannot be read.
func (c *MessagesController) handleList(w http.ResponseWriter, r *http.Request) {
	texts, err := c.svc.ListMessages(r.Context())
	if err != nil {
		c.logger.Error("list messages failed", log.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}
	if texts == nil {
		texts = []string{}
	}
	writeJSON(w, listResp{Messages: texts})
}

// handleStream follows live greetings as Server-Sent Events.
//
// Nothing published before the request is replayed. The stream ends when the
// client disconnects or the server shuts down.
func (c *MessagesController) handleStream(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	sink := sseSink{w: w, r: r}
	_ = sink.Flush()
	if err := c.svc.ListMessagesStream(sink); err != nil {
		c.logger.Warn("sse feed ended with error", log.Err(err))
	}
}
