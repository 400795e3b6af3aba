package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Joseda-hg/lazytodo/internal/auth"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

func (s *Server) apiTasksHandler(w http.ResponseWriter, r *http.Request) {
	filter := filterFromRequest(r)
	tasks, err := s.listTasks(r.Context(), currentUser(r), filter)
	if err != nil {
		s.logf(r, "api list tasks: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	payload := struct {
		Tasks    []model.Task `json:"tasks"`
		Status   string       `json:"status"`
		Priority string       `json:"priority"`
	}{Tasks: tasks, Status: filter.StatusLabel(), Priority: filter.PriorityLabel()}

	writeJSON(w, payload)
}

func (s *Server) apiTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}

	userID := currentUser(r).UserID
	task, err := s.store.GetTask(r.Context(), userID, id)
	if err != nil {
		if isNotFound(err) {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		s.logf(r, "api get task: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	history, err := s.store.ListHistory(r.Context(), userID, id)
	if err != nil {
		s.logf(r, "api list history: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	payload := struct {
		Task    model.Task           `json:"task"`
		History []model.HistoryEntry `json:"history"`
	}{Task: task, History: history}

	writeJSON(w, payload)
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *Server) apiTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	_, token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSONError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		s.logf(r, "api token: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.auth.TokenTTL().Seconds()),
	})
}
