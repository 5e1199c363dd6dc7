package api

import (
	"net/http"
)

func (s *Server) handleUserEvent(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, MaxEventBytes)
	if err := s.dispatcher.User(body); err != nil {
		s.errors.WriteErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleAdminEvent answers 422 when the event lacks its operation or
// resource type.
func (s *Server) handleAdminEvent(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, MaxEventBytes)
	if err := s.dispatcher.Admin(body); err != nil {
		s.errors.WriteErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
