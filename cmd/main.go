package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gericke98/happy-customer/internal/ai"
	"github.com/gericke98/happy-customer/internal/answer"
	"github.com/gericke98/happy-customer/internal/cache"
	"github.com/gericke98/happy-customer/internal/chat"
	"github.com/gericke98/happy-customer/internal/classify"
	"github.com/gericke98/happy-customer/internal/config"
	"github.com/gericke98/happy-customer/internal/geocode"
	"github.com/gericke98/happy-customer/internal/logger"
	"github.com/gericke98/happy-customer/internal/shopify"
)

const (
	rateLimit       = 60
	rateLimitWindow = time.Minute
)

// sizeCharts is sent verbatim to the model for sizing questions. Height in cm,
// garment measurements flat.
const sizeCharts = `T-shirts & sweatshirts (chest width, cm): XS 50, S 53, M 56, L 59, XL 62, XXL 65
Hoodies (chest width, cm): S 55, M 58, L 61, XL 64
Height guide: under 165cm usually XS-S, 165-175cm S-M, 175-185cm M-L, over 185cm L-XL.
Between two sizes: recommend the larger one for a relaxed fit, the smaller for a fitted look.`

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel)

	// --- DB ---
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("db open error", map[string]interface{}{"error": err.Error()})
		return
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Error("db ping error", map[string]interface{}{"error": err.Error()})
		return
	}

	// --- Cache: redis when configured, in-process otherwise ---
	var store cache.Store = cache.NewMemoryStore(10_000)
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, falling back to in-memory cache", map[string]interface{}{
				"addr":  cfg.RedisAddr,
				"error": err.Error(),
			})
		} else {
			store = redisStore
		}
	}

	// --- Module wiring ---
	repo := chat.NewRepo(db)
	aiClient := ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.MaxRetries, cfg.RetryDelay, log)
	classifier := classify.NewClassifier(aiClient, cfg.ReturnsPortalURL, log)
	generator := answer.NewGenerator(aiClient, store, log)
	orders := shopify.NewClient(cfg.ShopifyStoreDomain, cfg.ShopifyAccessToken)
	addresses := geocode.NewValidator(cfg.GoogleMapsAPIKey)

	svc := chat.NewService(repo, classifier, generator, orders, addresses, sizeCharts, log)
	handler := chat.NewHandler(svc, log)

	// --- Router ---
	allowed, err := repo.AllowedOrigins(ctx)
	if err != nil {
		log.Warn("could not load allowed origins, allowing all", map[string]interface{}{"error": err.Error()})
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chat.RequestID)
	r.Use(chat.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			if len(allowed) == 0 {
				return true
			}
			for _, o := range allowed {
				if o == origin {
					return true
				}
			}
			return false
		},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	}))
	r.Use(chat.RequireJSON)
	r.Use(chat.RateLimit(cache.NewLimiter(store, rateLimit, rateLimitWindow), log))

	chat.RegisterRoutes(r, handler)
	r.Handle("/metrics", promhttp.Handler())

	log.Info("listening", map[string]interface{}{"port": cfg.Port})
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Error("server error", map[string]interface{}{"error": err.Error()})
	}
}
