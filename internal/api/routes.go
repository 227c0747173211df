package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/metrics"
	"github.com/vikrantan5/FitSphere-sub000/internal/payment"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository"
	"github.com/vikrantan5/FitSphere-sub000/internal/service"
	"github.com/vikrantan5/FitSphere-sub000/internal/session"
)

// Dependencies is everything SetupRoutes wires into handlers.
type Dependencies struct {
	Store    repository.StateStore
	Sessions *session.Manager
	Backends service.Backends
	Metrics  *metrics.Metrics

	AuthService      service.AuthService
	CatalogService   service.CatalogService
	AdminService     service.AdminService
	MemberService    service.MemberService
	DashboardService service.DashboardService
	ExportService    service.ExportService
	ReceiptService   service.ReceiptService

	Cookie  CookieSettings
	Limiter *SessionLimiter
	Booking BookingSettings
	Chat    ChatSettings
}

// Merchant is shared by booking and cart checkout.
func (d Dependencies) merchant() payment.Merchant {
	return d.Booking.Merchant
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.AuthService)
	catalogHandler := NewCatalogHandler(deps.CatalogService)
	bookingHandler := NewBookingHandler(deps.Backends, deps.CatalogService, deps.MemberService, deps.ReceiptService, deps.Metrics, deps.Booking)
	cartHandler := NewCartHandler(deps.Store, deps.Backends, deps.CatalogService, deps.MemberService, deps.ReceiptService, deps.Metrics, deps.merchant())
	memberHandler := NewMemberHandler(deps.MemberService, deps.DashboardService)
	adminHandler := NewAdminHandler(deps.AdminService, deps.DashboardService, deps.ExportService)
	chatHandler := NewChatHandler(deps.AuthService, deps.Metrics, deps.Chat)

	signedIn := AccessMiddleware(deps.Sessions, "")
	adminOnly := AccessMiddleware(deps.Sessions, domain.RoleAdmin)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api")
	api.Use(SessionMiddleware(deps.Cookie), RateLimitMiddleware(deps.Limiter, deps.Metrics))
	{
		api.GET("/csrf", CSRFToken)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/admin/login", authHandler.AdminLogin)
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/logout", bookingHandler.Forget, cartHandler.Forget, authHandler.Logout)
			authGroup.GET("/session", authHandler.Session)
			authGroup.GET("/me", signedIn, authHandler.Me)
		}

		// --- Public catalog ---
		api.GET("/programs", catalogHandler.ListPrograms)
		api.GET("/programs/:id", catalogHandler.GetProgram)
		api.GET("/trainers", catalogHandler.ActiveTrainers)
		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/products/:id", catalogHandler.GetProduct)
		api.GET("/testimonials", catalogHandler.ListTestimonials)
		api.POST("/testimonials", catalogHandler.CreateTestimonial)

		// --- Cart (anonymous) ---
		cartGroup := api.Group("/cart")
		{
			cartGroup.GET("", cartHandler.GetCart)
			cartGroup.DELETE("", cartHandler.ClearCart)
			cartGroup.POST("/items", cartHandler.AddItem)
			cartGroup.PATCH("/items/:productId", cartHandler.UpdateQuantity)
			cartGroup.DELETE("/items/:productId", cartHandler.RemoveItem)

			cartGroup.POST("/checkout", signedIn, cartHandler.Checkout)
			cartGroup.POST("/checkout/result", signedIn, cartHandler.CheckoutResult)
		}

		// --- Signed-in member ---
		member := api.Group("")
		member.Use(signedIn)
		{
			member.GET("/dashboard", memberHandler.Dashboard)
			member.GET("/notifications", memberHandler.Notifications)
			member.PUT("/notifications/:id/read", memberHandler.MarkNotificationRead)
			member.GET("/chat/messages", memberHandler.ChatHistory)
			member.GET("/chat/ws", chatHandler.Connect)

			member.GET("/orders", cartHandler.MyOrders)
			member.GET("/orders/:id/receipt", cartHandler.Receipt)

			member.GET("/bookings", bookingHandler.MyBookings)
			member.POST("/bookings/:id/pay", bookingHandler.PayExisting)
			member.GET("/bookings/:id/receipt", bookingHandler.Receipt)

			attempts := member.Group("/booking/attempts")
			{
				attempts.POST("", bookingHandler.StartAttempt)
				attempts.GET("/current", bookingHandler.CurrentAttempt)
				attempts.PATCH("/current", bookingHandler.UpdateAttempt)
				attempts.DELETE("/current", bookingHandler.AbandonAttempt)
				attempts.POST("/current/device-location", bookingHandler.UseDeviceLocation)
				attempts.POST("/current/submit", bookingHandler.Submit)
				attempts.POST("/current/result", bookingHandler.PaymentResult)
			}
		}

		// --- Admin ---
		admin := api.Group("/admin")
		admin.Use(adminOnly)
		{
			admin.GET("/overview", adminHandler.Overview)
			admin.GET("/users", adminHandler.ListUsers)

			admin.GET("/bookings", adminHandler.ListBookings)
			admin.PATCH("/bookings/:id/status", adminHandler.UpdateBookingStatus)

			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/export", adminHandler.ExportOrders)
			admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)

			admin.POST("/programs", catalogHandler.CreateProgram)
			admin.PUT("/programs/:id", catalogHandler.UpdateProgram)
			admin.DELETE("/programs/:id", catalogHandler.DeleteProgram)

			admin.GET("/media/:kind", adminHandler.ListMedia)
			admin.POST("/media/:kind", adminHandler.UploadMedia)
			admin.PATCH("/media/:kind/:id", adminHandler.UpdateMedia)
			admin.DELETE("/media/:kind/:id", adminHandler.DeleteMedia)
		}
	}
}
