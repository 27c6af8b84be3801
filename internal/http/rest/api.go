package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/truckersblacklist/blacklist_api/config"
	deps "github.com/truckersblacklist/blacklist_api/internal/debs"
	"github.com/truckersblacklist/blacklist_api/internal/engine"
	"github.com/truckersblacklist/blacklist_api/internal/model"
	"github.com/truckersblacklist/blacklist_api/util/values"
	"github.com/truckersblacklist/blacklist_api/util/websockets"
)

const (
	defaultIdleTimeout    = time.Minute
	defaultReadTimeout    = 5 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultShutdownPeriod = 30 * time.Second
)

type Handler func(w http.ResponseWriter, r *http.Request) *ServerResponse

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := h(w, r)
	respByte, err := json.Marshal(resp)
	if err != nil {
		writeErrorResponse(w, err, values.Error, "unable to marshal server response")
		return
	}
	writeJSONResponse(w, respByte, resp.StatusCode)
}

type API struct {
	Server *http.Server
	Config *config.Config
	Deps   *deps.Dependencies
	Engine *engine.Engine

	ReportsView *engine.ReportsView
	ChatView    *engine.ChatView
	viewCancel  context.CancelFunc
}

// Init builds the engine and starts the server-held materialized views.
// Their change callbacks feed the websocket hub, so every connected client
// sees new reports, votes and messages without polling.
func (api *API) Init() error {
	api.Engine = engine.New(api.Deps.Store, api.Deps.Cloudinary)

	ctx, cancel := context.WithCancel(context.Background())
	api.viewCancel = cancel

	// The server-side view has no voting identity; it only materializes.
	api.ReportsView = engine.NewReportsView(api.Deps.Store, engine.NewSession(""))
	api.ReportsView.OnChange(func(reports []model.Report) {
		api.Deps.WebSocket.BroadcastUpdate(websockets.MsgTypeReportUpdate, reports)
	})
	if err := api.ReportsView.Start(ctx); err != nil {
		cancel()
		return err
	}

	api.ChatView = engine.NewChatView(api.Deps.Store)
	api.ChatView.OnChange(func(messages []model.ChatMessage) {
		api.Deps.WebSocket.BroadcastUpdate(websockets.MsgTypeChatUpdate, messages)
	})
	if err := api.ChatView.Start(ctx); err != nil {
		api.ReportsView.Close()
		cancel()
		return err
	}

	return nil
}

func (api *API) Serve() error {
	api.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.Config.Port),
		IdleTimeout:  defaultIdleTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		Handler:      api.setUpServerHandler(),
	}
	return api.Server.ListenAndServe()
}

func (api *API) setUpServerHandler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(RequestTracing)

	mux.Get("/",
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("Trucker's Blacklist API"))
		},
	)

	mux.Mount("/auth", api.AuthRoutes())
	mux.Mount("/reports", api.ReportRoutes())
	mux.Mount("/chat", api.ChatRoutes())
	mux.Mount("/gps", api.GpsRoutes())
	mux.Get("/ws", api.Deps.WebSocket.HandleConnections)

	return mux
}

func (a *API) Shutdown() error {
	a.ReportsView.Close()
	a.ChatView.Close()
	if a.viewCancel != nil {
		a.viewCancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownPeriod)
	defer cancel()

	return a.Server.Shutdown(ctx)
}
