package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/momentmaker/internal/api/handlers"
	"github.com/your-org/momentmaker/internal/api/ws"
	"github.com/your-org/momentmaker/internal/auth"
	"github.com/your-org/momentmaker/internal/faces"
	"github.com/your-org/momentmaker/internal/moment"
	"github.com/your-org/momentmaker/internal/queue"
	"github.com/your-org/momentmaker/internal/storage"
)

type RouterConfig struct {
	APIKey   string
	DB       *storage.PostgresStore
	MinIO    *storage.MinIOStore
	Producer *queue.Producer
	Hub      *ws.Hub
	Index    *faces.Index
	Moments  *moment.Service
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// WebSocket
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Moments
	momentH := handlers.NewMomentHandler(cfg.DB, cfg.MinIO, cfg.Moments)
	v1.GET("/moments", momentH.Create)
	v1.POST("/moments", momentH.Create)
	v1.GET("/moments/list", momentH.List)
	v1.GET("/moments/:id/file", momentH.Download)

	// Identities
	identityH := handlers.NewIdentityHandler(cfg.DB, cfg.MinIO, cfg.Index)
	v1.GET("/identities", identityH.List)
	v1.GET("/identities/occurrences", identityH.Occurrences)
	v1.GET("/identities/crop", identityH.Crop)

	// Assets
	assetH := handlers.NewAssetHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	v1.GET("/assets", assetH.List)
	v1.GET("/assets/songs", assetH.Songs)
	v1.POST("/assets/events", assetH.Event)

	// Detection jobs
	jobH := handlers.NewJobHandler(cfg.DB)
	v1.GET("/jobs/:id", jobH.Get)

	return r
}
