package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/truckersblacklist/blacklist_api/internal/engine"
	"github.com/truckersblacklist/blacklist_api/internal/model"
	"github.com/truckersblacklist/blacklist_api/util"
	"github.com/truckersblacklist/blacklist_api/util/tracing"
	"github.com/truckersblacklist/blacklist_api/util/values"
)

func (api *API) ChatRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodGet, "/messages", Handler(api.ListMessages))
		r.Method(http.MethodPost, "/messages", Handler(api.SendMessage))
	})

	return mux
}

func (api *API) ListMessages(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	return &ServerResponse{
		Message:    "Messages fetched successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       api.ChatView.Messages(),
	}
}

func (api *API) SendMessage(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.SendMessageRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	sess := engine.NewSession(userID)
	messageID, err := api.Engine.SendMessage(r.Context(), sess, req.Text)
	if err != nil {
		status, message := classifyError(err)
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    "Message sent",
		Status:     values.Created,
		StatusCode: util.StatusCode(values.Created),
		Data:       map[string]string{"message_id": messageID},
	}
}
