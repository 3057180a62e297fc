package router

import (
	"time"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/config"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/handler"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/middleware"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/service"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
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
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, companyRepo, cfg)
	categorySvc := service.NewCategoryService(categoryRepo)
	productSvc := service.NewProductService(db, productRepo, categoryRepo, companyRepo, movementRepo, rdb)
	ledgerSvc := service.NewLedgerService(db, txRepo, userRepo, productRepo, movementRepo)
	ledgerSvc.SetLowStockNotifier(worker.NewLowStockDispatcher(dispatcher, companyRepo))
	posSvc := service.NewPOSService(db, saleRepo, productRepo, companyRepo, movementRepo, dispatcher)
	partnerSvc := service.NewPartnerService(userRepo, txRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	productsH := handler.NewProductsHandler(productSvc)
	transactionsH := handler.NewTransactionsHandler(ledgerSvc)
	posH := handler.NewPOSHandler(posSvc, productSvc)
	partnersH := handler.NewPartnersHandler(partnerSvc, ledgerSvc)

	// Role groups used across the route table.
	managers := []string{model.RoleCompanyManager, model.RolePlatformManager}
	approvers := []string{model.RoleAccountant, model.RoleCompanyManager, model.RolePlatformManager}
	ledgerWriters := []string{model.RoleRepresentative, model.RoleAccountant, model.RoleCompanyManager, model.RolePlatformManager}
	posOperators := []string{model.RoleCashier, model.RoleCompanyManager, model.RolePlatformManager}
	allStaff := []string{model.RoleCashier, model.RoleRepresentative, model.RoleMerchant, model.RoleAccountant, model.RoleCompanyManager, model.RolePlatformManager}

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes: every /v1 endpoint below requires a valid access
	// token, a company scope, and an active (or trial) subscription.
	v1 := r.Group("/v1",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireCompany(),
		middleware.RequireActiveSubscription(companyRepo),
	)
	{
		v1.GET("/auth/me", authH.Me)

		// Ledger transactions
		v1.POST("/transactions", middleware.RequireRole(ledgerWriters...), transactionsH.Create)
		v1.GET("/transactions", middleware.RequireRole(approvers...), transactionsH.List)
		v1.GET("/transactions/:id", middleware.RequireRole(ledgerWriters...), transactionsH.Get)
		v1.POST("/transactions/:id/approve", middleware.RequireRole(approvers...), transactionsH.Approve)
		v1.POST("/transactions/:id/reject", middleware.RequireRole(approvers...), transactionsH.Reject)
		v1.DELETE("/transactions/:id", middleware.RequireRole(approvers...), transactionsH.Delete)
		v1.POST("/transactions/:id/items", middleware.RequireRole(ledgerWriters...), transactionsH.AddItem)
		v1.PATCH("/transactions/:id/items/:itemId", middleware.RequireRole(ledgerWriters...), transactionsH.UpdateItem)
		v1.DELETE("/transactions/:id/items/:itemId", middleware.RequireRole(ledgerWriters...), transactionsH.RemoveItem)

		// Point of sale
		pos := v1.Group("/pos", middleware.RequireRole(posOperators...))
		{
			pos.POST("/checkout", posH.Checkout)
			pos.GET("/sales", posH.List)
			pos.GET("/sales/:id", posH.Get)
			pos.POST("/sales/:id/refund", posH.Refund)
			pos.GET("/summary", posH.DailySummary)
			pos.GET("/barcode/:barcode", posH.LookupBarcode)
		}

		// Catalog — reads open to all staff, writes manager-only
		v1.GET("/products", middleware.RequireRole(allStaff...), productsH.List)
		v1.GET("/products/:id", middleware.RequireRole(allStaff...), productsH.Get)
		v1.GET("/products/:id/movements", middleware.RequireRole(approvers...), productsH.ListMovements)
		v1.PATCH("/products/:id/stock", middleware.RequireRole(approvers...), productsH.AdjustStock)
		prods := v1.Group("/products", middleware.RequireRole(managers...))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Delete)
			prods.PATCH("/:id/deactivate", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
		}

		v1.GET("/categories", middleware.RequireRole(allStaff...), categoriesH.List)
		categories := v1.Group("/categories", middleware.RequireRole(managers...))
		{
			categories.POST("", categoriesH.Create)
			categories.PUT("/:id", categoriesH.Update)
			categories.DELETE("/:id", categoriesH.Delete)
		}

		// Partners — accountant surface
		partners := v1.Group("/partners", middleware.RequireRole(approvers...))
		{
			partners.GET("", partnersH.List)
			partners.GET("/:id", partnersH.Get)
			partners.GET("/:id/statement", partnersH.Statement)
			partners.POST("/:id/reconcile", partnersH.Reconcile)
		}

		// User administration — manager-only
		users := v1.Group("/users", middleware.RequireRole(managers...))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.GET("/:id", usersH.Get)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
