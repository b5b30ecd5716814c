package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse — тело ошибки. Клиенты ожидают поле detail.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse — ответ корневого маршрута.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON пишет v как JSON с заданным статусом.
func WriteJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", zap.Error(err))
	}
}

// WriteDetail пишет {"detail": ...}.
func WriteDetail(w http.ResponseWriter, logger *zap.Logger, status int, detail string) {
	WriteJSON(w, logger, status, ErrorResponse{Detail: detail})
}
