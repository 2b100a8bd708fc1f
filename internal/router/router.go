package router

import (
	"time"

	"cipriano/internal/config"
	"cipriano/internal/handler"
	"cipriano/internal/infra"
	"cipriano/internal/middleware"
	"cipriano/internal/model"
	"cipriano/internal/repository"
	"cipriano/internal/service"
	"cipriano/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the long-lived resources built by main. Dispatcher, Redis and
// MailCB may be nil when Redis is unavailable.
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Dispatcher *worker.Dispatcher
	MailCB     *infra.CircuitBreaker
	Auth       service.AuthService
}

// New wires all dependencies and returns a configured Gin engine.
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
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(600, time.Minute))

	pins := service.AdminPins{Acciones: cfg.AdminActionsPIN, Override: cfg.AdminOverridePIN}

	// ── Repositories ─────────────────────────────────────────────────────────
	pizzaRepo := repository.NewPizzaRepository(deps.DB)
	loteRepo := repository.NewLoteRepository(deps.DB)
	eventoRepo := repository.NewEventoRepository(deps.DB)
	meseroRepo := repository.NewMeseroRepository(deps.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	scanSvc := service.NewScanService(pizzaRepo, eventoRepo, meseroRepo, pins)
	loteSvc := service.NewLoteService(loteRepo, pizzaRepo, pins, deps.Dispatcher)
	meseroSvc := service.NewMeseroService(meseroRepo)
	dashboardSvc := service.NewDashboardService(pizzaRepo, eventoRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(deps.Auth)
	escaneoH := handler.NewEscaneoHandler(scanSvc)
	lotesH := handler.NewLotesHandler(loteSvc)
	meserosH := handler.NewMeserosHandler(meseroSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(deps.DB, deps.Redis, deps.MailCB))

	r.POST("/v1/auth/login", middleware.LoginRateLimiter(), authH.Login)

	const (
		cocina = model.OperadorCocina
		ventas = model.OperadorVentas
		lotes  = model.OperadorLotes
		admin  = model.OperadorAdmin
	)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.POST("/scan", middleware.RequireRole(cocina, ventas, admin), escaneoH.Escanear)
		v1.GET("/pizzas/:id", escaneoH.Consultar)

		adm := v1.Group("/admin", middleware.RequireRole(cocina, ventas, lotes, admin), middleware.AdminPinRateLimiter())
		{
			adm.POST("/estado", escaneoH.CambiarEstado)
			adm.POST("/deshacer", escaneoH.Deshacer)
			adm.POST("/verificar-pin", escaneoH.VerificarPin)
		}

		lts := v1.Group("/lotes", middleware.RequireRole(lotes, admin))
		{
			lts.POST("", lotesH.Crear)
			lts.GET("/:codigo/etiquetas.pdf", lotesH.Etiquetas)
		}

		v1.GET("/meseros", middleware.RequireRole(ventas, lotes, admin), meserosH.Listar)
		mes := v1.Group("/meseros", middleware.RequireRole(lotes, admin))
		{
			mes.POST("", meserosH.Crear)
			mes.GET("/etiquetas.pdf", meserosH.Etiquetas)
		}

		v1.POST("/admin/jobs/reintentar", middleware.RequireRole(admin), handler.ReintentarJobs(deps.Redis))

		dash := v1.Group("/dashboard", middleware.RequireRole(ventas, admin))
		{
			dash.GET("", dashboardH.Resumen)
			dash.GET("/ventas.csv", dashboardH.ExportarVentas)
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
