package deps

import (
	"context"
	"log"

	"github.com/truckersblacklist/blacklist_api/config"
	"github.com/truckersblacklist/blacklist_api/internal/db"
	"github.com/truckersblacklist/blacklist_api/internal/identity"
	"github.com/truckersblacklist/blacklist_api/internal/route"
	"github.com/truckersblacklist/blacklist_api/internal/store"
	"github.com/truckersblacklist/blacklist_api/util/storage"
	"github.com/truckersblacklist/blacklist_api/util/websockets"
)

type Dependencies struct {
	Store      store.Store
	DB         *db.DB
	Cloudinary *storage.Cloudinary
	Identity   *identity.Client
	Route      *route.Client
	WebSocket  *websockets.WebSocketManager
}

func New(cfg *config.Config) *Dependencies {
	ctx := context.Background()

	var (
		documentStore store.Store
		database      *db.DB
	)
	switch cfg.StoreBackend {
	case "postgres":
		var err error
		database, err = db.New(cfg.Dsn)
		if err != nil {
			log.Panicln("failed to connect to database", "error", err)
		}
		documentStore = store.NewPostgresStore(database)
	case "memory":
		documentStore = store.NewMemoryStore()
	default:
		firestoreStore, err := store.NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.AppID, cfg.FirestoreCredFile)
		if err != nil {
			log.Panicln("failed to connect to firestore", "error", err)
		}
		documentStore = firestoreStore
	}

	routeClient, err := route.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Panicln("failed to create route client", "error", err)
	}

	deps := Dependencies{
		Store:      documentStore,
		DB:         database,
		Cloudinary: storage.NewCloudinary(cfg),
		Identity:   identity.NewClient(cfg),
		Route:      routeClient,
		WebSocket:  websockets.NewWebSocketManager(),
	}
	return &deps
}
