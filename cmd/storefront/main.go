package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"

	_ "github.com/korichuko/storefront/docs"
	"github.com/korichuko/storefront/internal/admin"
	"github.com/korichuko/storefront/internal/auth"
	"github.com/korichuko/storefront/internal/cart"
	"github.com/korichuko/storefront/internal/catalog"
	"github.com/korichuko/storefront/internal/checkout"
	"github.com/korichuko/storefront/internal/config"
	"github.com/korichuko/storefront/internal/db"
	"github.com/korichuko/storefront/internal/httpx"
)

// @title Storefront API
// @version 1.0
// @description E-commerce storefront and staff administration portal.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	pool, err := db.NewPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	jwtMgr := auth.NewJWTManager(auth.JWTConfig{Secret: cfg.JWTSecret, AccessTTLMin: cfg.AccessTTLMin})
	sessions := auth.NewSessionStore(rdb, jwtMgr.TTL())

	userRepo := auth.NewPGRepo(pool)
	authHandler := auth.NewHandler(userRepo, jwtMgr, sessions)

	catRepo := catalog.NewPGRepo(pool)
	catHandler := catalog.NewHandler(catRepo, catalog.NewHomeCache(rdb))

	cartRepo := cart.NewPGRepo(pool)
	cartSvc := cart.NewService(cartRepo)
	cartHandler := cart.NewHandler(cartSvc, catRepo)

	gateway := checkout.NewRazorpayGateway(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	coordinator := checkout.NewCoordinator(cartSvc, cartRepo, gateway,
		cfg.RazorpayKeyID, cfg.PaymentCurrency, cfg.BaseURL)
	checkoutHandler := checkout.NewHandler(coordinator, cartSvc)

	adminRepo := admin.NewPGRepo(pool)
	adminHandler := admin.NewHandler(adminRepo, cartRepo)

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), httpx.CORS())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/swagger/*any", ginswagger.WrapHandler(swaggerfiles.Handler))

	// public storefront
	r.GET("/", catHandler.Home)
	r.GET("/shop", catHandler.Shop)
	r.GET("/products/:id", catHandler.ProductDetail)

	// auth
	r.POST("/signup", authHandler.Signup)
	r.POST("/login", authHandler.Login)

	required := auth.Middleware(jwtMgr, sessions)
	optional := auth.Optional(jwtMgr, sessions)

	r.POST("/logout", required, authHandler.Logout)
	r.GET("/me", required, authHandler.Me)

	// cart; add-to-cart answers anonymous AJAX with a soft payload
	r.POST("/cart/add/:pk", optional, cartHandler.AddToCart)
	r.GET("/cart", required, cartHandler.GetCart)
	r.POST("/cart/remove/:item_id", required, cartHandler.RemoveFromCart)
	r.POST("/cart/update-quantity/:item_id", required, cartHandler.UpdateQuantity)

	// checkout & payment
	r.GET("/checkout", required, checkoutHandler.ShowCheckout)
	r.POST("/checkout", required, checkoutHandler.Checkout)
	r.POST("/paymenthandler/:order_id", required, checkoutHandler.PaymentCallback)
	r.GET("/order-success/:order_id", required, checkoutHandler.OrderSuccess)

	// staff admin portal
	adm := r.Group("/admin")
	adm.POST("/login", authHandler.StaffLogin)
	staff := adm.Group("", required, auth.RequireStaff())
	{
		staff.GET("/dashboard", adminHandler.Dashboard)
		staff.GET("/api/metrics/orders-per-day", adminHandler.OrdersPerDayAPI)

		staff.GET("/orders", adminHandler.ListOrders)
		staff.GET("/orders/:id", adminHandler.OrderDetail)
		staff.POST("/orders/:id/toggle", adminHandler.ToggleCompleted)
		staff.GET("/customers", adminHandler.Customers)
		staff.GET("/customers/:user_id", adminHandler.CustomerDetail)

		staff.GET("/categories", catHandler.AdminListCategories)
		staff.POST("/categories", catHandler.AdminCreateCategory)
		staff.PUT("/categories/:id", catHandler.AdminUpdateCategory)
		staff.DELETE("/categories/:id", catHandler.AdminDeleteCategory)

		staff.GET("/subcategories", catHandler.AdminListSubCategories)
		staff.POST("/subcategories", catHandler.AdminCreateSubCategory)
		staff.PUT("/subcategories/:id", catHandler.AdminUpdateSubCategory)
		staff.DELETE("/subcategories/:id", catHandler.AdminDeleteSubCategory)

		staff.GET("/sizes", catHandler.AdminListSizes)
		staff.POST("/sizes", catHandler.AdminCreateSize)
		staff.PUT("/sizes/:id", catHandler.AdminUpdateSize)
		staff.DELETE("/sizes/:id", catHandler.AdminDeleteSize)

		staff.GET("/products", catHandler.AdminListProducts)
		staff.POST("/products", catHandler.AdminCreateProduct)
		staff.PUT("/products/:id", catHandler.AdminUpdateProduct)
		staff.DELETE("/products/:id", catHandler.AdminDeleteProduct)
	}

	log.Printf("storefront listening on %s", cfg.HTTPAddr)
	log.Fatal(r.Run(cfg.HTTPAddr))
}
