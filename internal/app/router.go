package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/internal/certificate"
	"github.com/aura-webinar/studytime/internal/export"
	"github.com/aura-webinar/studytime/internal/ingest"
	"github.com/aura-webinar/studytime/internal/middleware"
	"github.com/aura-webinar/studytime/internal/reconcile"
	"github.com/aura-webinar/studytime/pkg/response"
)

// RouterDeps are the collaborators of the HTTP API. Jobs, Presigner and Bucket are optional.
type RouterDeps struct {
	Loader       *ingest.Loader
	Rules        reconcile.Rules
	Certificates *certificate.Service
	Jobs         certificate.Enqueuer
	Presigner    certificate.Presigner
	Bucket       string
	CORSOrigins  string
	MaxUploadMB  int
	Logger       *zap.Logger
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(d RouterDeps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	if d.MaxUploadMB > 0 {
		router.MaxMultipartMemory = int64(d.MaxUploadMB) << 20
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Errors(logger))

	reconcileHandler := reconcile.NewHandler(d.Loader, d.Rules, logger)
	exportHandler := export.NewHandler(d.Loader, d.Rules, logger)
	tablesHandler := ingest.NewHandler(d.Loader.Tables())
	certificateHandler := certificate.NewHandler(d.Loader, d.Rules, d.Certificates, d.Jobs, d.Presigner, d.Bucket, logger)

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/tables", tablesHandler.ListTables)
	router.POST("/reconcile", reconcileHandler.Reconcile)
	router.POST("/exports/csv", exportHandler.CSV)
	router.POST("/certificates", certificateHandler.Create)

	router.NoRoute(func(c *gin.Context) { response.NotFound(c, http.StatusText(http.StatusNotFound)) })
	return router
}
