package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/gorilla/mux"
)

type createUserRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"fullname"`
}

type createUserResponse struct {
	UserID  string `json:"user_id"`
	Success string `json:"success"`
}

type updateUserRequest struct {
	UserName *string `json:"username"`
	Password *string `json:"password"`
	Email    *string `json:"email"`
	FullName *string `json:"fullname"`
}

type loginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	user, err := s.users.Register(r.Context(), req.UserName, req.Password, req.Email, req.FullName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, createUserResponse{UserID: user.ID, Success: msgUserCreated})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	upd := models.UserUpdate{
		UserName: req.UserName,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
	}
	if err := s.users.Update(r.Context(), mux.Vars(r)["id"], upd); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: msgUserUpdated})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: msgUserDeleted})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	token, err := s.users.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: "JWT " + token})
}
