package api

import (
	"encoding/json"
	"net/http"

	"github.com/debemdeboas/archive-comments/internal/config"
)

// WriteData replies with a successful envelope wrapping data.
func WriteData(w http.ResponseWriter, status int, data any) {
	var raw json.RawMessage
	if data != nil {
		buf, err := json.Marshal(data)
		if err != nil {
			apiLogger.Error().Err(err).Msg("Failed to encode response data")
			WriteError(w, http.StatusInternalServerError, config.ErrInternalServerError)
			return
		}
		raw = buf
	}
	writeEnvelope(w, status, Response{Success: true, Data: raw})
}

// WriteError replies with a failed envelope carrying msg for the user.
func WriteError(w http.ResponseWriter, status int, msg string) {
	writeEnvelope(w, status, Response{Success: false, Msg: msg})
}

func writeEnvelope(w http.ResponseWriter, status int, res Response) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		apiLogger.Warn().Err(err).Msg("Failed to write response")
	}
}
