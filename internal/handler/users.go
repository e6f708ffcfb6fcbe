package handler

import "net/http"

// UserRequest is the body of POST /admin/users.
type UserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateUser handles POST /admin/users.
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := s.users.Create(r.Context(), req.Username, req.Email)
	if err != nil {
		s.writeError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// GetUser handles GET /admin/users/{id}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	u, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
