package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/surrealdb/surrealdb.go"

	"github.com/crewsync/crewsync/internal/chat"
	"github.com/crewsync/crewsync/internal/config"
	"github.com/crewsync/crewsync/internal/database"
	"github.com/crewsync/crewsync/internal/gateway"
	"github.com/crewsync/crewsync/internal/handlers"
	"github.com/crewsync/crewsync/internal/logging"
	"github.com/crewsync/crewsync/internal/notify"
	"github.com/crewsync/crewsync/internal/pubsub"
	"github.com/crewsync/crewsync/internal/push"
	"github.com/crewsync/crewsync/internal/session"
)

// Server holds the dependencies for the messaging backend.
type Server struct {
	E   *echo.Echo
	DB  *surrealdb.DB
	Cfg *config.Config

	registry      *session.Registry
	bus           *pubsub.WatermillBridge
	chatService   *chat.Service
	notifyService *notify.Service
	fanout        *push.Fanout
	gateway       *gateway.Gateway

	messageHandler      *handlers.MessageHandler
	notificationHandler *handlers.NotificationHandler
	userStore           *database.UserStore
}

// New creates a new Server instance with every component wired.
func New() *Server {
	logging.New()
	cfg := config.New()

	db, err := database.NewDB(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	messageStore := database.NewMessageStore(db)
	userStore := database.NewUserStore(db)
	groupStore := database.NewGroupStore(db)
	notificationStore := database.NewNotificationStore(db)

	registry := session.NewRegistry()
	bus := pubsub.NewWatermillBridge()

	chatService := chat.NewService(registry, messageStore, userStore, chat.NewRouter(groupStore), bus)
	notifyService := notify.NewService(notificationStore, registry, bus)

	sender := newPushSender(cfg)
	fanout := push.NewFanout(registry, userStore, sender)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	return &Server{
		E:                   e,
		DB:                  db,
		Cfg:                 cfg,
		registry:            registry,
		bus:                 bus,
		chatService:         chatService,
		notifyService:       notifyService,
		fanout:              fanout,
		gateway:             gateway.New(registry, chatService),
		messageHandler:      handlers.NewMessageHandler(chatService, messageStore),
		notificationHandler: handlers.NewNotificationHandler(notifyService),
		userStore:           userStore,
	}
}

// newPushSender builds the push provider from configuration. Without
// credentials the server runs with pushes disabled rather than refusing to
// start.
func newPushSender(cfg *config.Config) push.Sender {
	if cfg.FCMCredentials == "" {
		slog.Info("Push notifications disabled, no FCM credentials configured")
		return push.DisabledSender{}
	}

	sender, err := push.NewFCMSender(context.Background(), []byte(cfg.FCMCredentials))
	if err != nil {
		slog.Error("Failed to initialize push provider", "error", err)
		os.Exit(1)
	}
	return sender
}

// Registry is a getter for the session registry, useful for testing.
func (s *Server) Registry() *session.Registry {
	return s.registry
}

// ChatService is a getter for the chat service, useful for testing.
func (s *Server) ChatService() *chat.Service {
	return s.chatService
}
