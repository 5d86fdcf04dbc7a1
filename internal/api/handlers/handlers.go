// Package handlers implements the JSON endpoints of the MoneyTrail API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/berlinbruno/money-trail/internal/api/middleware"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
)

var badRequest = []error{
	domain.ErrInvalidType,
	domain.ErrInvalidCategory,
	domain.ErrInvalidMode,
	domain.ErrInvalidAmount,
	domain.ErrInvalidThreshold,
	domain.ErrEmptyTitle,
	domain.ErrUnsupportedPeriod,
	domain.ErrUnsupportedFrequency,
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateAlert):
		return http.StatusConflict
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// writeServiceError reports err to the client. Server errors are logged and replaced
// by msg; client errors are returned verbatim.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg(msg)
		middleware.WriteError(w, status, msg)
		return
	}
	middleware.WriteError(w, status, err.Error())
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
