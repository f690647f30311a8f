// Package web holds the JSON response helpers and request-scoping glue
// shared by the feature handlers.
package web

import (
	"encoding/json"
	"net/http"
)

// Pagination mirrors the listing envelope's pagination block.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Envelope is the success body of every endpoint.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const maxBodyBytes = 1 << 20

// DecodeJSON reads a bounded JSON body into v. On false a 400 has been
// written.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		WriteValidation(w, []FieldError{{Field: "body", Message: "invalid JSON body"}})
		return false
	}
	return true
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteData(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

func WriteInternal(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "Internal Server Error")
}

func WriteValidation(w http.ResponseWriter, details []FieldError) {
	WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Validation Error", "details": details})
}

// NewPagination computes totalPages the way the listing clients expect
// (ceil(total/limit)).
func NewPagination(total, page, limit int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return &Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}
