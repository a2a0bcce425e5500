package server

import (
	"net/http"

	"pushnotify/internal/types"
)

type healthResponse struct {
	Status string `json:"status"`
}

// HandlePush runs one notifier invocation for the pushed message.
//
// A completion of any kind is 200 so Pub/Sub acknowledges the message.
// Errors use the status mapped from their code.
func (s *Server) HandlePush(w http.ResponseWriter, r *http.Request) {
	var req types.PushRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}

	completion, err := s.Handler.Handle(r.Context(), req.Message)
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, r, http.StatusOK, APIResponse{Data: completion})
}

// HandleHealth reports liveness. The relay has no dependencies to probe.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
}
