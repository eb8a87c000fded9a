package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Eizen94/pokedex-api/internal/catalog"
	"github.com/Eizen94/pokedex-api/internal/config"
	"github.com/Eizen94/pokedex-api/internal/database"
	"github.com/Eizen94/pokedex-api/internal/handler"
	"github.com/Eizen94/pokedex-api/internal/logging"
	"github.com/Eizen94/pokedex-api/internal/middleware"
	"github.com/Eizen94/pokedex-api/internal/pokeapi"
	"github.com/Eizen94/pokedex-api/internal/queue"
	"github.com/Eizen94/pokedex-api/internal/repository"
	"github.com/Eizen94/pokedex-api/internal/router"
	queuepublisher "github.com/Eizen94/pokedex-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env always wins

	cfg := config.Load()
	logger := logging.New()

	// Identity store (users, refresh tokens).
	db, err := database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	defer db.Close()

	// Document store (favorites, profiles, settings).
	mdb, err := database.OpenMongo(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer mdb.Client().Disconnect(context.Background())

	// Redis is optional: nil disables response caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, response cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	favorites := repository.NewFavoriteRepo(mdb)
	profiles := repository.NewProfileRepo(mdb)

	// The unique (user_id, pokemon_id) index makes favorite inserts the
	// atomic duplicate check.
	idxCtx, idxCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := favorites.EnsureIndexes(idxCtx); err != nil {
		idxCancel()
		log.Fatalf("mongo indexes: %v", err)
	}
	idxCancel()

	client := pokeapi.NewClient(cfg.PokeAPIBaseURL, "pokedex-api/1.0", cfg.PokeAPIRPS, cfg.PokeAPIRetries)
	provider := catalog.NewProvider(client, cfg.PageSize, cfg.DetailTTL, cfg.DetailMaxEntries, logger)

	authHandler := handler.NewAuthHandler(cfg, users, tokens, profiles, logger)
	pokemonHandler := handler.NewPokemonHandler(provider, cfg.PageSize)
	favoriteHandler := handler.NewFavoriteHandler(favorites, profiles, queuepublisher.PublishFavoriteActivity, logger)
	profileHandler := handler.NewProfileHandler(profiles)

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limitMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterCatalog(e, pokemonHandler, cacheMW, limitMW, cfg.JWTSecret)
	router.RegisterUser(e, favoriteHandler, profileHandler, cfg.JWTSecret)

	// Audit-log consumer runs for the lifetime of the process and keeps
	// reconnecting on broker failures.
	go func() {
		if err := queue.StartFavoritesConsumer(); err != nil {
			logger.Error("favorites consumer stopped", "err", err)
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
