package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/weather-history/internal/apperrors"
	"github.com/ukydev/weather-history/internal/middleware"
)

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindBadRequest:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps err to its status. Server errors are logged with the
// underlying cause, which never reaches the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var classified *apperrors.Error
	if !errors.As(apperrors.Classify(err), &classified) {
		classified = apperrors.Internal(err, "an unexpected error occurred")
	}
	status := statusFor(classified.Kind)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
	}
	middleware.WriteError(w, status, classified.Message)
}
