package router

import (
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/config"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/handler"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/infra"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/middleware"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/repository"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries what the composition root builds before the router: the
// ledger is shared with the worker pool, so it is not created here.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Ledger   service.StockLedger
	BrokerCB *infra.CircuitBreaker // nil when Kafka is disabled
}

// New wires the remaining dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(deps.DB)
	productoRepo := repository.NewProductoRepository(deps.DB)
	categoriaRepo := repository.NewCategoriaRepository(deps.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	catalogoSvc := service.NewCatalogoService(categoriaRepo, productoRepo, deps.Ledger)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	catalogoH := handler.NewCatalogoHandler(catalogoSvc)
	stockH := handler.NewStockHandler(deps.Ledger)
	variantesH := handler.NewVariantesHandler(deps.Ledger)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/health", handler.Health(deps.DB, deps.Redis, deps.BrokerCB))
	var loginCounter middleware.WindowCounter = middleware.NewMemoryCounter()
	if deps.Redis != nil {
		loginCounter = middleware.NewRedisCounter(deps.Redis)
	}
	api.POST("/auth/login", middleware.LoginRateLimiter(loginCounter), authH.Login)

	api.GET("/categorias", catalogoH.Categorias)
	api.GET("/productos", catalogoH.Productos)

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)

	variantes := api.Group("/variantes")
	{
		variantes.GET("", variantesH.Listar)
		variantes.GET("/:id/stock", variantesH.StockActual)
		variantes.DELETE("/:id", jwtMW, middleware.RequireRole("administrador", "encargado"), variantesH.Eliminar)
	}

	stock := api.Group("/stock")
	{
		stock.POST("/movimientos", jwtMW, stockH.RegistrarMovimiento)
		stock.GET("/movimientos", stockH.ListarMovimientos)
		stock.GET("/alertas", stockH.ObtenerAlertas)
		stock.GET("/reporte.xlsx", stockH.ReporteXLSX)
		stock.GET("/reporte.pdf", stockH.ReportePDF)
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
