package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"staymarket/internal/app/commands"
	bookingapp "staymarket/internal/app/handlers/booking"
	chatapp "staymarket/internal/app/handlers/chat"
	earningsapp "staymarket/internal/app/handlers/earnings"
	propertiesapp "staymarket/internal/app/handlers/properties"
	"staymarket/internal/app/middleware"
	appoutbox "staymarket/internal/app/outbox"
	"staymarket/internal/app/queries"
	authsvc "staymarket/internal/app/services/auth"
	"staymarket/internal/app/uow"
	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/domain/pricing"
	"staymarket/internal/domain/shared/money"
	domainuser "staymarket/internal/domain/user"
	"staymarket/internal/infra/broker/kafka"
	"staymarket/internal/infra/config"
	mongodb "staymarket/internal/infra/db/mongo"
	ginserver "staymarket/internal/infra/http/gin"
	"staymarket/internal/infra/obs"
	outboxmongo "staymarket/internal/infra/outbox"
	"staymarket/internal/infra/security"
	"staymarket/internal/infra/storage/memory"
	"staymarket/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	store, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	defer store.close()

	app := buildApplication(cfg, store, logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: store.ready,
	}, app)

	fixturesPath := getenv("PROPERTY_FIXTURES", "")
	if fixturesPath == "" {
		fixturesPath = defaultPropertyFixturesPath()
	}
	if err := loadPropertyFixtures(ctx, store.properties, fixturesPath, logger); err != nil {
		logger.Warn("property fixtures load failed", "error", err, "path", fixturesPath)
	}
	if err := bootstrapAdmin(ctx, store.users, logger); err != nil {
		logger.Warn("admin bootstrap failed", "error", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// storage bundles whichever persistence backend the configuration selected.
type storage struct {
	factory    uow.UoWFactory
	box        appoutbox.Outbox
	idStore    middleware.IdempotencyStore
	users      domainuser.Repository
	properties domainproperty.Repository
	ready      func() error
	close      func()
}

func buildStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	switch cfg.StorageMode {
	case "mongo":
		return buildMongoStorage(ctx, cfg, logger)
	default:
		factory := memory.NewFactory()
		return storage{
			factory:    factory,
			box:        memory.NewOutbox(),
			idStore:    memory.NewIdempotencyStore(),
			users:      factory.UserRepo,
			properties: factory.PropertyRepo,
			ready:      func() error { return nil },
			close:      func() {},
		}, nil
	}
}

func buildMongoStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, fmt.Errorf("mongo connect: %w", err)
	}
	factory := mongodb.NewFactory(client.DB)
	outboxStore := outboxmongo.NewStore(client.DB)

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return storage{}, fmt.Errorf("kafka producer: %w", err)
	}
	worker := &outboxmongo.Worker{
		Store:       outboxStore,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
	}
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	}()

	return storage{
		factory:    factory,
		box:        outboxStore,
		idStore:    memory.NewIdempotencyStore(),
		users:      factory.UserRepo,
		properties: factory.PropertyRepo,
		ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		},
		close: func() {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka producer close failed", "error", err)
			}
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		},
	}, nil
}

func buildApplication(cfg config.Config, store storage, logger *slog.Logger) ginserver.Handlers {
	fees := pricing.FeePolicy{
		CleaningFee:       money.Money{Amount: cfg.CleaningFeeCents, Currency: cfg.Currency},
		ServiceFeeRateBps: cfg.ServiceFeeBps,
		CommissionRateBps: cfg.CommissionBps,
	}
	hasher := security.BcryptHasher{}
	encoder := appoutbox.JSONEventEncoder{}

	uploader := buildUploader(cfg, logger)

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: store.factory,
		Fees:       fees,
		Outbox:     store.box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.CreateHostBookingCommand{}.Key(), &bookingapp.CreateHostBookingHandler{
		Fees:      fees,
		Passwords: hasher,
		Outbox:    store.box,
		Encoder:   encoder,
		Logger:    logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.SetBookingStatusCommand{}.Key(), &bookingapp.SetBookingStatusHandler{
		Outbox:  store.box,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.RemoveBookingCommand{}.Key(), &bookingapp.RemoveBookingHandler{
		Logger: logger,
	})
	commands.RegisterHandler(commandBus, propertiesapp.CreatePropertyCommand{}.Key(), &propertiesapp.CreatePropertyHandler{Logger: logger})
	commands.RegisterHandler(commandBus, propertiesapp.UpdatePropertyCommand{}.Key(), &propertiesapp.UpdatePropertyHandler{Logger: logger})
	commands.RegisterHandler(commandBus, propertiesapp.SetPropertyActiveCommand{}.Key(), &propertiesapp.SetPropertyActiveHandler{Logger: logger})
	commands.RegisterHandler(commandBus, propertiesapp.ApprovePropertyCommand{}.Key(), &propertiesapp.ApprovePropertyHandler{Logger: logger})
	commands.RegisterHandler(commandBus, earningsapp.RequestPayoutCommand{}.Key(), &earningsapp.RequestPayoutHandler{
		Fees:    fees,
		Outbox:  store.box,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, chatapp.StartConversationCommand{}.Key(), &chatapp.StartConversationHandler{Logger: logger})
	commands.RegisterHandler(commandBus, chatapp.SendMessageCommand{}.Key(), &chatapp.SendMessageHandler{
		Uploads: uploader,
		Logger:  logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(), &bookingapp.ListGuestBookingsHandler{UoWFactory: store.factory})
	queries.RegisterHandler(queryBus, bookingapp.ListHostBookingsQuery{}.Key(), &bookingapp.ListHostBookingsHandler{UoWFactory: store.factory, Logger: logger})
	queries.RegisterHandler(queryBus, bookingapp.QuoteBookingPriceQuery{}.Key(), &bookingapp.QuoteBookingPriceHandler{UoWFactory: store.factory, Fees: fees})
	queries.RegisterHandler(queryBus, propertiesapp.SearchCatalogQuery{}.Key(), &propertiesapp.SearchCatalogHandler{UoWFactory: store.factory})
	queries.RegisterHandler(queryBus, propertiesapp.GetPropertyQuery{}.Key(), &propertiesapp.GetPropertyHandler{UoWFactory: store.factory})
	queries.RegisterHandler(queryBus, propertiesapp.ListHostListingsQuery{}.Key(), &propertiesapp.ListHostListingsHandler{UoWFactory: store.factory})
	queries.RegisterHandler(queryBus, earningsapp.HostEarningsQuery{}.Key(), &earningsapp.HostEarningsHandler{UoWFactory: store.factory, Fees: fees, Logger: logger})
	queries.RegisterHandler(queryBus, earningsapp.ListPayoutsQuery{}.Key(), &earningsapp.ListPayoutsHandler{UoWFactory: store.factory})
	queries.RegisterHandler(queryBus, chatapp.ListConversationsQuery{}.Key(), &chatapp.ListConversationsHandler{UoWFactory: store.factory})
	queries.RegisterHandler(queryBus, chatapp.ListMessagesQuery{}.Key(), &chatapp.ListMessagesHandler{UoWFactory: store.factory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(),
		middleware.Idempotency(store.idStore, nil),
		middleware.Transaction(store.factory, nil),
		middleware.OutboxFlush(store.box),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	authService := &authsvc.Service{
		Users:      store.users,
		Sessions:   memory.NewSessionStore(),
		Passwords:  hasher,
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	return ginserver.Handlers{
		Auth:         &ginserver.AuthHandler{Service: authService, Logger: logger},
		Me:           ginserver.MeHandler{Queries: queryBusWithMiddleware},
		Property:     ginserver.PropertyHandler{Queries: queryBusWithMiddleware},
		HostProperty: ginserver.HostPropertyHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		Booking:      ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		HostBooking:  ginserver.HostBookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		Earnings:     ginserver.EarningsHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		Chat:         ginserver.ChatHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		Admin:        ginserver.AdminHandler{Commands: commandBusWithMiddleware},
		AuthMiddleware: ginserver.AuthMiddleware{
			Service: authService,
			Logger:  logger,
		}.Handle,
	}
}

func buildUploader(cfg config.Config, logger *slog.Logger) chatapp.Uploader {
	client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
	if err != nil {
		logger.Warn("object storage unavailable, attachments disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}

// bootstrapAdmin creates the moderation account on first start when the
// ADMIN_EMAIL / ADMIN_PASSWORD pair is present in the environment.
func bootstrapAdmin(ctx context.Context, users domainuser.Repository, logger *slog.Logger) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}
	if _, err := users.ByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return err
	}
	hash, err := security.BcryptHasher{}.Hash(password)
	if err != nil {
		return err
	}
	admin, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(fmt.Sprintf("admin-%d", time.Now().Unix())),
		Email:        email,
		Name:         getenv("ADMIN_NAME", "Administrator"),
		PasswordHash: hash,
		Roles:        []domainuser.Role{domainuser.RoleAdmin},
	})
	if err != nil {
		return err
	}
	if err := users.Save(ctx, admin); err != nil {
		return err
	}
	logger.Info("admin account bootstrapped", "email", email)
	return nil
}

type propertyFixture struct {
	ID               string `json:"id"`
	Host             string `json:"host"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Location         string `json:"location"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
	Currency         string `json:"currency"`
	Bedrooms         int    `json:"bedrooms"`
	Bathrooms        int    `json:"bathrooms"`
	GuestLimit       int    `json:"guest_limit"`
}

func loadPropertyFixtures(ctx context.Context, repo domainproperty.Repository, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("property fixtures file empty", "path", path)
		return nil
	}

	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		if _, err := repo.ByID(ctx, domainproperty.PropertyID(fx.ID)); err == nil {
			continue
		}
		currency := fx.Currency
		if currency == "" {
			currency = "USD"
		}
		rate, err := money.New(fx.NightlyRateCents, currency)
		if err != nil {
			logger.Error("fixture rate invalid", "property_id", fx.ID, "error", err)
			continue
		}
		prop, err := domainproperty.NewProperty(domainproperty.CreateParams{
			ID:          domainproperty.PropertyID(fx.ID),
			Host:        domainproperty.HostID(fx.Host),
			Title:       fx.Title,
			Description: fx.Description,
			Location:    fx.Location,
			NightlyRate: rate,
			Bedrooms:    fx.Bedrooms,
			Bathrooms:   fx.Bathrooms,
			GuestLimit:  fx.GuestLimit,
			Now:         now,
		})
		if err != nil {
			logger.Error("fixture invalid", "property_id", fx.ID, "error", err)
			continue
		}
		prop.Approve(now)
		prop.Activate(now)
		if err := repo.Save(ctx, prop); err != nil {
			logger.Error("cannot store fixture property", "property_id", fx.ID, "error", err)
			continue
		}
		logger.Info("property fixture imported", "property_id", prop.ID)
	}
	return nil
}

func defaultPropertyFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "properties.json"),
		filepath.Join("backend", "data", "properties.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
