package routes

import (
	"net/http"
	"time"

	"woolcrafts-backend/cache"
	"woolcrafts-backend/events"
	"woolcrafts-backend/handlers"
	"woolcrafts-backend/middleware"
	"woolcrafts-backend/services"
	"woolcrafts-backend/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Accounts *services.AccountService
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	Cart     *services.CartService
	Stats    *services.StatsService
	Settings *services.SettingsService
	Blobs    storage.BlobStore
	// AuthLimiter throttles the credential endpoints. Nil disables throttling.
	AuthLimiter *middleware.RateLimiter
}

type Options struct {
	StatsCacheTTL     time.Duration
	LowStockThreshold int
}

func NewDependencies(db *gorm.DB, c cache.Cache, pub events.Publisher, blobs storage.BlobStore, opts Options) Dependencies {
	return Dependencies{
		Accounts: services.NewAccountService(db, c, pub),
		Catalog:  services.NewCatalogService(db),
		Orders:   services.NewOrderService(db, pub),
		Cart:     services.NewCartService(db),
		Stats:    services.NewStatsService(db, c, opts.StatsCacheTTL, opts.LowStockThreshold),
		Settings: services.NewSettingsService(db),
		Blobs:    blobs,
	}
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{Accounts: deps.Accounts}
	categoryHandler := &handlers.CategoryHandler{Catalog: deps.Catalog}
	subcategoryHandler := &handlers.SubcategoryHandler{Catalog: deps.Catalog}
	productHandler := &handlers.ProductHandler{Catalog: deps.Catalog}
	orderHandler := &handlers.OrderHandler{Orders: deps.Orders, Stats: deps.Stats}
	cartHandler := &handlers.CartHandler{Cart: deps.Cart}
	adminHandler := &handlers.AdminHandler{Stats: deps.Stats}
	settingsHandler := &handlers.SettingsHandler{Settings: deps.Settings, Blobs: deps.Blobs}

	throttle := func(c *gin.Context) { c.Next() }
	if deps.AuthLimiter != nil {
		throttle = deps.AuthLimiter.Middleware()
	}
	optionalAuth := middleware.OptionalAuth(deps.Accounts)

	// Public routes
	api := r.Group("/api")
	{
		// Auth routes
		api.POST("/signup", throttle, authHandler.Signup)
		api.POST("/login", throttle, authHandler.Login)
		api.POST("/admin/login", throttle, authHandler.AdminLogin)
		api.POST("/logout", optionalAuth, authHandler.Logout)
		api.POST("/forgot-password", throttle, authHandler.ForgotPassword)
		api.POST("/reset-password", throttle, authHandler.ResetPassword)

		// Catalog
		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/categories/:id", categoryHandler.GetCategory)
		api.GET("/subcategories", subcategoryHandler.GetSubcategories)
		api.GET("/subcategories/category/:categoryId", subcategoryHandler.GetSubcategoriesByCategory)
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/category/:categoryId", productHandler.GetProductsByCategory)
		api.GET("/products/subcategory/:subcategoryId", productHandler.GetProductsBySubcategory)
		api.GET("/products/:id", productHandler.GetProduct)

		api.GET("/settings/banners", settingsHandler.GetBanners)

		// Guests may order and pay
		api.POST("/orders", optionalAuth, orderHandler.CreateOrder)
		api.GET("/orders/:id", optionalAuth, orderHandler.GetOrder)
		api.PUT("/orders/:id/payment", optionalAuth, orderHandler.UpdatePayment)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.RequireAuth(deps.Accounts))
	{
		protected.GET("/auth/check", authHandler.CheckAuth)
		protected.GET("/user/profile", authHandler.GetProfile)
		protected.PUT("/user/profile", authHandler.UpdateProfile)
		protected.GET("/user/orders", orderHandler.GetUserOrders)
		protected.PUT("/orders/:id/cancel", orderHandler.CancelOrder)

		protected.POST("/products/:id/reviews", productHandler.AddReview)

		// Cart routes
		protected.GET("/cart", cartHandler.GetCart)
		protected.POST("/cart", cartHandler.AddToCart)
		protected.PUT("/cart/:itemId", cartHandler.UpdateCartItem)
		protected.DELETE("/cart/:itemId", cartHandler.RemoveFromCart)
		protected.DELETE("/cart", cartHandler.ClearCart)

		// Wishlist routes
		protected.GET("/wishlist", cartHandler.GetWishlist)
		protected.POST("/wishlist/:productId", cartHandler.AddToWishlist)
		protected.DELETE("/wishlist/:productId", cartHandler.RemoveFromWishlist)
	}

	// Admin routes (require admin role)
	admin := api.Group("")
	admin.Use(middleware.RequireAuth(deps.Accounts))
	admin.Use(middleware.AdminOnly())
	{
		// Catalog management
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)
		admin.POST("/subcategories", subcategoryHandler.CreateSubcategory)
		admin.PUT("/subcategories/:id", subcategoryHandler.UpdateSubcategory)
		admin.DELETE("/subcategories/:id", subcategoryHandler.DeleteSubcategory)
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)

		// Order management
		admin.GET("/orders", orderHandler.GetOrders)
		admin.PUT("/orders/:id", orderHandler.UpdateOrderStatus)
		admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
		admin.DELETE("/orders/:id", orderHandler.DeleteOrder)

		admin.GET("/admin/stats", adminHandler.GetStats)
		admin.GET("/users", authHandler.ListUsers)

		// Banners
		admin.POST("/upload/banner", settingsHandler.UploadBanner)
		admin.POST("/settings/banners", settingsHandler.SaveBanners)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
