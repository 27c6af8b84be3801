package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/truckersblacklist/blacklist_api/internal/engine"
	"github.com/truckersblacklist/blacklist_api/internal/identity"
	"github.com/truckersblacklist/blacklist_api/internal/store"
	"github.com/truckersblacklist/blacklist_api/util"
	"github.com/truckersblacklist/blacklist_api/util/tracing"
	"github.com/truckersblacklist/blacklist_api/util/values"
)

type ServerResponse struct {
	Message    string      `json:"message"`
	Status     string      `json:"status"`
	StatusCode int         `json:"-"`
	Data       interface{} `json:"data,omitempty"`
}

func respondWithError(err error, message string, status string, tc *tracing.Context) *ServerResponse {
	log.Println(tc, message, err)
	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
}

func writeJSONResponse(w http.ResponseWriter, resp []byte, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(resp)
}

func writeErrorResponse(w http.ResponseWriter, err error, status, message string) {
	log.Println(message, err)
	resp := ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
	respByte, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		http.Error(w, message, http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, respByte, resp.StatusCode)
}

// classifyError maps the engine's closed error set to a response status and
// user-facing message. Anything outside the set is a server error.
func classifyError(err error) (status, message string) {
	var pre *engine.PreconditionError
	if errors.As(err, &pre) {
		return values.Unprocessable, pre.Error()
	}

	var unavailable *store.UnavailableError
	if errors.As(err, &unavailable) {
		return values.Error, "The reporting service is unreachable. Please try again."
	}

	var idErr *identity.Error
	if errors.As(err, &idErr) {
		return identityStatus(idErr.Kind), idErr.Message()
	}

	return values.Error, "Something went wrong. Please try again."
}

func identityStatus(kind identity.Kind) string {
	switch kind {
	case identity.KindEmailInUse:
		return values.Conflict
	case identity.KindWeakCredential, identity.KindInvalidFormat,
		identity.KindCodeExpired, identity.KindCodeInvalid:
		return values.Unprocessable
	case identity.KindWrongCredential:
		return values.NotAuthorised
	case identity.KindNotFound:
		return values.NotFound
	default:
		return values.Error
	}
}
