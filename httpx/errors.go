package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mbolis/survey-studio/database"
	"github.com/mbolis/survey-studio/log"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("x-content-type-options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorBody{Error: msg, Code: code}); err != nil {
		log.Warnf("%s.write: %s", code, err)
	}
}

// Will log an error, and send a 500 without leaking the cause
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	writeError(w, http.StatusInternalServerError, code, http.StatusText(http.StatusInternalServerError))
}

// Will log a debug message, and send a 404
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	writeError(w, http.StatusNotFound, code, http.StatusText(http.StatusNotFound))
}

// Will log an error code at the given level, and send
// an error response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	writeError(w, status, code, http.StatusText(status))
}

// Will log an error code and message at the given level,
// and send an error response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	writeError(w, status, code, errMsg)
}

// LogStoreError maps a store error to 404, 409 or 500.
func LogStoreError(w http.ResponseWriter, code string, id any, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		LogNotFound(w, code, id)
	case errors.Is(err, database.ErrConflict):
		LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "%s", err)
	default:
		LogInternalError(w, code, err)
	}
}
