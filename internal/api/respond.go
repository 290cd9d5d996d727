package api

import (
	"encoding/json"
	"net/http"
)

// envelope is the uniform response shape for every endpoint.
type envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Status: "success", Data: data})
}

func respondError(w http.ResponseWriter, err error) {
	respondErrorStatus(w, httpStatusFromDomainError(err), err.Error())
}

func respondErrorStatus(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Status: "error", Message: message})
}
