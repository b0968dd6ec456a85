// internal/app/app.go

package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/adapter/events"
	"github.com/stelios-avg/locom/internal/adapter/ratelimit"
	"github.com/stelios-avg/locom/internal/adapter/storage"
	"github.com/stelios-avg/locom/internal/adapter/storage/cache"
	"github.com/stelios-avg/locom/internal/adapter/storage/memory"
	"github.com/stelios-avg/locom/internal/config"
	"github.com/stelios-avg/locom/internal/domain/profile"
	geoService "github.com/stelios-avg/locom/internal/service/geo"
	moderationService "github.com/stelios-avg/locom/internal/service/moderation"
	municipalityService "github.com/stelios-avg/locom/internal/service/municipality"
	postService "github.com/stelios-avg/locom/internal/service/post"
	profileService "github.com/stelios-avg/locom/internal/service/profile"
)

// App holds the wired services shared by the API server and the CLI
type App struct {
	Log        *zap.Logger
	Config     config.Config
	Filter     *moderationService.Filter
	Selector   *geoService.RadiusSelector
	Posts      *postService.PostManager
	Profiles   *profileService.ProfileManager
	Importer   *municipalityService.Importer
	Syncer     *municipalityService.Syncer
	Publisher  events.Publisher
	Subscriber events.Subscriber

	closers []func()
}

// NewLogger builds a development logger in development and a production logger otherwise
func NewLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// New connects the configured infrastructure and wires every service.
// Postgres, NATS and Redis are optional; without them the in-memory store,
// the local event bus and an unlimited rate limiter are used.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{Log: log, Config: cfg}

	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.Config

	// Content filter
	a.Filter = moderationService.NewFilter()
	if cfg.Moderation.DenylistFile != "" {
		denylist, err := moderationService.LoadDenylist(cfg.Moderation.DenylistFile)
		if err != nil {
			return fmt.Errorf("failed to load denylist: %w", err)
		}
		a.Filter = moderationService.NewFilterWithDenylist(denylist)
		a.Log.Info("Loaded denylist", zap.String("file", cfg.Moderation.DenylistFile), zap.Int("terms", denylist.Len()))
	}

	// Radius selector
	a.Selector = geoService.NewRadiusSelector(geoService.Config{
		DefaultRadius:   cfg.Feed.DefaultRadius,
		MaxRadius:       cfg.Feed.MaxRadius,
		DefaultObserver: cfg.Feed.DefaultObserver(),
	})

	// Event bus
	if cfg.NATS.URL != "" {
		natsConn, err := initNATS(cfg.NATS, a.Log)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		a.closers = append(a.closers, natsConn.Close)
		a.Publisher = events.NewNATSPublisher(natsConn, cfg.NATS.SubjectPrefix)
		a.Subscriber = events.NewNATSSubscriber(natsConn, cfg.NATS.SubjectPrefix)
	} else {
		bus := events.NewLocalBus()
		a.Publisher = bus
		a.Subscriber = bus
	}

	// Rate limiter
	var limiter postService.Limiter
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			a.Log.Warn("Redis unreachable, rate limits fail open until it returns", zap.Error(err))
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		limiter = ratelimit.NewLimiter(a.Log, client)
	}

	// Storage
	var (
		postStore         postService.PostStore
		commentStore      postService.CommentStore
		profileStore      profileService.ProfileStore
		municipalityStore municipalityService.Store
	)

	if cfg.Database.Enabled() {
		if cfg.Database.AutoMigrate {
			if err := storage.Migrate(cfg.Database.DSN()); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
		}

		db, err := initDatabase(ctx, cfg.Database.DSN(), cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		postStore = storage.NewPostStore(db)
		commentStore = storage.NewCommentStore(db)
		profileStore = storage.NewProfileStore(db)
		municipalityStore = storage.NewMunicipalityStore(db)
	} else {
		a.Log.Warn("No database configured, using the in-memory store")
		store := memory.NewStore(defaultNeighborhoods()...)
		postStore, commentStore, profileStore = store, store, store
		if cfg.Environment == "development" {
			municipalityStore = store
		}
	}

	// The importer may write through its own credential
	if cfg.Municipality.ServiceDSN != "" {
		serviceDB, err := initDatabase(ctx, cfg.Municipality.ServiceDSN, cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect municipality service database: %w", err)
		}
		a.closers = append(a.closers, serviceDB.Close)
		municipalityStore = storage.NewMunicipalityStore(serviceDB)
	}

	profileCache := cache.NewProfileCache(profileStore, cfg.Cache.ProfileTTL)
	a.closers = append(a.closers, profileCache.Close)

	// Services
	a.Profiles = profileService.NewProfileManager(a.Log, profileCache, a.Filter)

	managerConfig := postService.DefaultManagerConfig()
	managerConfig.FeedLimit = cfg.Feed.PageSize
	managerConfig.AdminLimit = cfg.Feed.AdminPageSize
	managerConfig.AdminIDs = cfg.Admin.UserIDs
	managerConfig.AutoApprove = cfg.Feed.AutoApprove
	managerConfig.PostRule.Limit = cfg.RateLimit.PostsPerWindow
	managerConfig.PostRule.Window = cfg.RateLimit.Window
	managerConfig.CommentRule.Limit = cfg.RateLimit.CommentsPerWindow
	managerConfig.CommentRule.Window = cfg.RateLimit.Window

	a.Posts = postService.NewPostManager(
		a.Log,
		postStore,
		commentStore,
		a.Profiles,
		a.Filter,
		a.Selector,
		limiter,
		a.Publisher,
		managerConfig,
	)

	// Municipality import
	location, err := cfg.Municipality.ParsedLocation()
	if err != nil {
		return fmt.Errorf("invalid municipality location: %w", err)
	}

	a.Importer = municipalityService.NewImporter(
		a.Log,
		municipalityStore,
		municipalityService.NewFetcher(cfg.Municipality.HTTPTimeout),
	)

	a.Syncer = municipalityService.NewSyncer(
		a.Log,
		a.Importer,
		a.Publisher,
		municipalityService.SyncConfig{
			FeedURL:          cfg.Municipality.FeedURL,
			OwnerID:          cfg.Municipality.OwnerID,
			Secret:           cfg.Municipality.SyncSecret,
			Location:         location,
			HasServiceAccess: municipalityStore != nil,
			Interval:         cfg.Municipality.SyncInterval,
		},
	)

	return nil
}

// Close releases connections in reverse order of acquisition
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Initialize database connection
func initDatabase(ctx context.Context, connString string, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, log *zap.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("locom-api"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

// defaultNeighborhoods seeds the in-memory store with the same rows as the migrations
func defaultNeighborhoods() []profile.Neighborhood {
	return []profile.Neighborhood{
		{ID: "1", Name: "Old Town", City: "Nicosia", Latitude: 35.1753, Longitude: 33.3642},
		{ID: "2", Name: "Strovolos", City: "Nicosia", Latitude: 35.1446, Longitude: 33.3390},
		{ID: "3", Name: "Aglantzia", City: "Nicosia", Latitude: 35.1534, Longitude: 33.3961},
		{ID: "4", Name: "Engomi", City: "Nicosia", Latitude: 35.1615, Longitude: 33.3201},
		{ID: "5", Name: "Lakatamia", City: "Nicosia", Latitude: 35.1170, Longitude: 33.3200},
		{ID: "6", Name: "Latsia", City: "Nicosia", Latitude: 35.0972, Longitude: 33.3700},
		{ID: "7", Name: "Germasogeia", City: "Limassol", Latitude: 34.7131, Longitude: 33.0867},
		{ID: "8", Name: "Mesa Geitonia", City: "Limassol", Latitude: 34.6963, Longitude: 33.0411},
		{ID: "9", Name: "Kato Polemidia", City: "Limassol", Latitude: 34.6925, Longitude: 32.9997},
		{ID: "10", Name: "Aradippou", City: "Larnaca", Latitude: 34.9514, Longitude: 33.5900},
		{ID: "11", Name: "Kato Paphos", City: "Paphos", Latitude: 34.7548, Longitude: 32.4066},
	}
}
