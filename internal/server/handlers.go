package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/osirenko/finch/internal/common"
	"github.com/osirenko/finch/internal/model"
	"github.com/osirenko/finch/internal/storage"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), payload.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		s.logger.Error("Failed to query user", "username", payload.Username, "error", err)
		http.Error(w, "Failed to query database", http.StatusInternalServerError)
		return
	}

	match, err := common.VerifyPassword(payload.Password, user.HashPassword)
	if err != nil || !match {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	token := uuid.NewString()
	if err := s.store.CreateSession(r.Context(), user.ID, token, r.UserAgent(), r.RemoteAddr); err != nil {
		s.logger.Error("Failed to create session", "username", payload.Username, "error", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ int64) {
	if err := s.store.DeleteSession(r.Context(), bearerToken(r)); err != nil {
		s.logger.Error("Failed to delete session", "error", err)
		http.Error(w, "Failed to delete session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request, userID int64) {
	transactions, err := s.store.ListTransactions(r.Context(), userID)
	if err != nil {
		s.logger.Error("Failed to list transactions", "user_id", userID, "error", err)
		http.Error(w, "Failed to query database", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, transactions)
}

func (s *Server) handleAddTransactions(w http.ResponseWriter, r *http.Request, userID int64) {
	var payload []model.NewTransaction
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(payload) == 0 {
		http.Error(w, "No transactions to add", http.StatusBadRequest)
		return
	}

	if err := s.store.AddTransactions(r.Context(), userID, payload); err != nil {
		s.logger.Error("Failed to add transactions", "user_id", userID, "error", err)
		http.Error(w, "Failed to insert transactions", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	var payload model.Transaction
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.ID == 0 {
		http.Error(w, "Transaction ID is required", http.StatusBadRequest)
		return
	}

	if err := s.store.UpdateTransaction(r.Context(), userID, payload); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		s.logger.Error("Failed to update transaction", "transaction_id", payload.ID, "error", err)
		http.Error(w, "Failed to update transaction", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.ID == 0 {
		http.Error(w, "Transaction ID is required", http.StatusBadRequest)
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), userID, payload.ID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		s.logger.Error("Failed to delete transaction", "transaction_id", payload.ID, "error", err)
		http.Error(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSetCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	var payload struct {
		TransactionIDs []int64 `json:"transaction_ids"`
		Category       string  `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(payload.TransactionIDs) == 0 {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.store.SetCategory(r.Context(), userID, payload.TransactionIDs, payload.Category); err != nil {
		s.logger.Error("Failed to set category", "category", payload.Category, "error", err)
		http.Error(w, "Failed to update category", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleManageTags(w http.ResponseWriter, r *http.Request, userID int64) {
	var payload struct {
		TransactionIDs []int64 `json:"transaction_ids"`
		Tag            string  `json:"tag"`
		Action         string  `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(payload.TransactionIDs) == 0 || payload.Tag == "" ||
		(payload.Action != storage.TagActionAdd && payload.Action != storage.TagActionRemove) {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.store.ManageTag(r.Context(), userID, payload.TransactionIDs, payload.Tag, payload.Action); err != nil {
		s.logger.Error("Failed to manage tag", "tag", payload.Tag, "action", payload.Action, "error", err)
		http.Error(w, "Failed to update tags", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request, userID int64) {
	categories, err := s.store.ListCategories(r.Context(), userID)
	if err != nil {
		s.logger.Error("Failed to list categories", "user_id", userID, "error", err)
		http.Error(w, "Failed to query database", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	s.writeJSON(w, categories)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}
