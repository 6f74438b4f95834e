package utils

import (
	"bytes"
	"encoding/json"
	"net/http"

	"clover-print-diag/internal/logger"

	"go.uber.org/zap"
)

// WriteJSON encodes v before writing the status, so an unencodable value
// becomes a 500 error body instead of an empty reply.
func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.L().Error("Failed to encode response", zap.Error(err))
		code = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"success":false,"error":"failed to encode response"}` + "\n")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.L().Warn("Failed to write response", zap.Error(err))
	}
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, map[string]interface{}{"success": false, "error": message})
}
