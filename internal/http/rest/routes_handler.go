package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/truckersblacklist/blacklist_api/internal/model"
	"github.com/truckersblacklist/blacklist_api/util"
	"github.com/truckersblacklist/blacklist_api/util/tracing"
	"github.com/truckersblacklist/blacklist_api/util/values"
)

func (api *API) GpsRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/route", Handler(api.GenerateRoute))
	})

	return mux
}

// GenerateRoute returns advisory route text for a truck run. The output is
// free text, not turn-by-turn geometry.
func (api *API) GenerateRoute(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.RouteRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "start and end locations are required", values.BadRequestBody, &tc)
	}

	guidance, err := api.Deps.Route.GenerateRouteText(r.Context(), req)
	if err != nil {
		return respondWithError(err, "unable to generate route guidance", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Route guidance generated",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       model.RouteResponse{Guidance: guidance},
	}
}
