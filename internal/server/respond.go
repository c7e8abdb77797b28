package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"evidencechain/pkg/types"
)

const maxBodyBytes = 1 << 20

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) writeStatus(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, types.ErrorResponse{Success: false, Error: message})
}

// writeError maps a failure to its HTTP status by kind.
func (s *Service) writeError(w http.ResponseWriter, err error) {
	kind := types.KindOf(err)
	status := statusForKind(kind)

	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("request failed")
		if kind == "" {
			message = "internal server error"
		}
	}

	s.writeJSON(w, status, types.ErrorResponse{
		Success: false,
		Error:   message,
		Kind:    kind,
	})
}

func statusForKind(kind types.ErrorKind) int {
	switch kind {
	case types.ErrorKindMalformedRequest:
		return http.StatusBadRequest
	case types.ErrorKindNotFound, types.ErrorKindBlobNotFound:
		return http.StatusNotFound
	case types.ErrorKindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return types.NewError(types.ErrorKindMalformedRequest, "request body is required", nil)
		}
		return types.NewError(types.ErrorKindMalformedRequest, "invalid request body", err)
	}

	return nil
}
