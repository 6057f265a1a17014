package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okulov/cipherpost/models"
	"github.com/okulov/cipherpost/service"
)

type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{Service: svc}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

type sendResponse struct {
	Success   bool   `json:"success"`
	MessageId string `json:"messageId"`
	Encrypted string `json:"encrypted"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Send(r.Context(), req.From, req.To, req.Message)
	if err != nil {
		log.Printf("Send failed: %v", err)
		h.sendError(w, statusForError(err), err.Error())
		return
	}

	h.sendResponse(w, sendResponse{
		Success:   true,
		MessageId: record.Id,
		Encrypted: record.Message,
		Timestamp: record.Timestamp,
	})
}

type listResponse struct {
	Success  bool             `json:"success"`
	Messages []models.Message `json:"messages"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	messages, err := h.Service.List(r.Context(), username)
	if err != nil {
		log.Printf("List failed for %s: %v", username, err)
		h.sendError(w, statusForError(err), err.Error())
		return
	}

	h.sendResponse(w, listResponse{
		Success:  true,
		Messages: messages,
	})
}

type decryptRequest struct {
	Username  string `json:"username"`
	MessageId string `json:"messageId"`
}

type decryptedMessage struct {
	models.Message
	DecryptedMessage string `json:"decryptedMessage"`
}

type decryptResponse struct {
	Success bool             `json:"success"`
	Message decryptedMessage `json:"message"`
}

func (h *Handler) HandleDecrypt(w http.ResponseWriter, r *http.Request) {
	var req decryptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, plaintext, err := h.Service.Decrypt(r.Context(), req.Username, req.MessageId)
	if err != nil {
		log.Printf("Decrypt failed for %s: %v", req.Username, err)
		h.sendError(w, statusForError(err), err.Error())
		return
	}

	h.sendResponse(w, decryptResponse{
		Success: true,
		Message: decryptedMessage{
			Message:          record,
			DecryptedMessage: plaintext,
		},
	})
}

type testResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) HandleTest(w http.ResponseWriter, r *http.Request) {
	path, err := h.Service.TestConnection(r.Context())
	if err != nil {
		log.Printf("Connectivity test failed: %v", err)
		h.sendError(w, statusForError(err), err.Error())
		return
	}

	h.sendResponse(w, testResponse{
		Success: true,
		Message: fmt.Sprintf("Wrote probe blob %s", path),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrMessageNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) sendResponse(w http.ResponseWriter, resp any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Success: false, Message: message})
}
