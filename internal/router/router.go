package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "get-a-pet/docs"
	"get-a-pet/internal/adapters/auth/bcrypt"
	"get-a-pet/internal/adapters/auth/jwtauth"
	mem "get-a-pet/internal/adapters/storage/memory"
	mdb "get-a-pet/internal/adapters/storage/mongodb"
	pg "get-a-pet/internal/adapters/storage/postgres"
	"get-a-pet/internal/adapters/uploads/disk"
	"get-a-pet/internal/config"
	"get-a-pet/internal/domain/pets"
	"get-a-pet/internal/domain/users"
	"get-a-pet/internal/middleware"
	"get-a-pet/internal/platform/logger"
	"get-a-pet/internal/ports/auth"
	"get-a-pet/internal/ports/uploads"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
)

type Options struct {
	Config config.Config
	Logger logger.Logger

	// Storage: Mongo tiene prioridad, luego Postgres. Sin ninguno, in-memory.
	Mongo *mongo.Database
	DB    *sql.DB

	// Opcional: habilita rate limit en register/login.
	Redis *redis.Client

	// Opcional: por defecto disco en Config.Uploads.DiskDir.
	Uploads uploads.Store

	// Opcionales: por defecto bcrypt y JWT según Config.Auth.
	Hasher auth.PasswordHasher
	Tokens users.TokenService
}

func NewRouter(opts Options) http.Handler {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	var (
		petRepo  pets.Repository
		userRepo users.Repository
	)
	switch {
	case opts.Mongo != nil:
		petRepo = mdb.NewPetsRepo(opts.Mongo)
		userRepo = mdb.NewUsersRepo(opts.Mongo)
	case opts.DB != nil:
		petRepo = pg.NewPetsRepo(opts.DB)
		userRepo = pg.NewUsersRepo(opts.DB)
	default:
		petRepo = mem.NewPetRepo()
		userRepo = mem.NewUserRepo()
	}

	store := opts.Uploads
	if store == nil {
		store = disk.New(cfg.Uploads.DiskDir)
	}

	hasher := opts.Hasher
	if hasher == nil {
		hasher = bcrypt.New(cfg.Auth.BcryptCost)
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = jwtauth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo, hasher, tokens, log)
	petsSvc := pets.NewService(petRepo, log)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	// Sin proxy de confianza los headers de forwarding son del cliente y
	// el rate limit tiene que usar RemoteAddr tal cual.
	if cfg.Server.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Recover(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.AuthContext(tokens, usersSvc, log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Solo el store en disco necesita que sirvamos los archivos nosotros.
	if ds, ok := store.(*disk.Store); ok {
		fs := http.StripPrefix("/images/", http.FileServer(http.Dir(ds.Root())))
		r.Handle("/images/*", fs)
	}

	var limiter func(http.Handler) http.Handler
	if opts.Redis != nil && cfg.Redis.RateLimitMax > 0 {
		window := cfg.Redis.RateLimitEvery
		if window <= 0 {
			window = time.Minute
		}
		limiter = middleware.RateLimit(middleware.NewRedisCounter(opts.Redis), cfg.Redis.RateLimitMax, window, log)
	}

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, store, limiter)
	pets.RegisterRoutes(r, petsSvc, store)

	return r
}

// EnsureSchema prepara el storage elegido (índices en Mongo, tablas en Postgres).
func EnsureSchema(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch {
	case opts.Mongo != nil:
		return mdb.EnsureIndexes(ctx, opts.Mongo)
	case opts.DB != nil:
		return pg.Migrate(ctx, opts.DB)
	}
	return nil
}
