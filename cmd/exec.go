package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinema-ticket/config"
	"cinema-ticket/internal/events"
	"cinema-ticket/internal/handlers"
	"cinema-ticket/internal/services"
	"cinema-ticket/internal/store"
	_ "cinema-ticket/migrations"
	"cinema-ticket/models"
	"cinema-ticket/monitoring"
	"cinema-ticket/security"
	"cinema-ticket/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go/v7"
	"github.com/redis/go-redis/v9"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	redisClient, err := utils.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PubNubUUID))
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	// Initialize domain events
	logger := events.NewSlogAdapter(slog.Default())
	transport, err := newTransport(cfg, redisClient, logger)
	if err != nil {
		return err
	}
	defer transport.Close()

	bus, err := events.NewBus(transport.Publisher)
	if err != nil {
		return err
	}

	// Initialize services
	db := store.New(app)
	seatService := services.NewSeatService(redisClient, cfg.SeatLockTimeout)
	couponService := services.NewCouponService(db, redisClient)
	paymentService := services.NewPaymentService(redisClient, cfg.PaymentTimeout)
	bookingService := services.NewBookingService(db, db, seatService, couponService, paymentService, bus, cfg.MaxSeatsPerBooking)
	employeeService := services.NewEmployeeService(db)
	reportService := services.NewReportService(db)
	moderationService := services.NewModerationService(db, bus)
	messageService := services.NewMessageService(db, bus)
	preferenceService := services.NewPreferenceService(db)
	promotionService := services.NewPromotionService(db, db, bus)
	notifier := services.NewNotifier(preferenceService, services.NewPubNubPusher(pn))

	eventRouter, err := events.NewRouter(transport, notifier.Handlers(), logger)
	if err != nil {
		return err
	}

	// Initialize handlers
	movieHandler := handlers.NewMovieHandler(db)
	seatHandler := handlers.NewSeatHandler(bookingService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(bookingService, paymentService)
	couponHandler := handlers.NewCouponHandler(couponService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	reportHandler := handlers.NewReportHandler(reportService)
	moderationHandler := handlers.NewModerationHandler(moderationService)
	messageHandler := handlers.NewMessageHandler(messageService)
	notificationHandler := handlers.NewNotificationHandler(preferenceService)
	promotionHandler := handlers.NewPromotionHandler(promotionService)
	adminHandler := handlers.NewAdminHandler(bookingService, reportService)

	throttle := security.NewThrottle(redisClient, cfg.ThrottleLimit, cfg.ThrottleWindow)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.IsDevelopment(),
	})
	app.RootCmd.AddCommand(newSeedCommand(app, cfg, seatService))

	// Setup graceful shutdown
	go handleShutdown(cancel)

	setupRecordHooks(app)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Start background tasks
		go func() {
			if err := eventRouter.Run(ctx); err != nil {
				slog.Error("Event router stopped", "error", err)
			}
		}()
		go bookingService.RunExpirySweeper(ctx, cfg.PendingSweepInterval)
		if cfg.EnableMetrics {
			go monitoring.NewMonitor(redisClient, 30*time.Second).Run(ctx)
		}
		if cfg.PubNubSubscribeKey != "" {
			go services.ListenPaymentNotifications(ctx, pn, cfg.PaymentChannel, bookingService.HandlePaymentNotification)
		}

		staff := []models.Role{models.RoleModerator, models.RoleAdmin}

		api := e.Router.Group("/api/v1")
		api.Bind(throttle.Middleware())

		// Public catalogue
		api.GET("/movies", movieHandler.ListMovies)
		api.GET("/movies/{movieId}", movieHandler.GetMovie)
		api.GET("/movies/{movieId}/showtimes", movieHandler.ListShowtimes)
		api.GET("/showtimes", movieHandler.ListShowtimes)
		api.GET("/showtimes/{showtimeId}/seats", seatHandler.GetSeats)
		api.GET("/promotions/active", promotionHandler.Active)

		// Seat endpoints
		seats := api.Group("/seats").Bind(apis.RequireAuth())
		seats.POST("/lock", seatHandler.LockSeats)
		seats.POST("/unlock", seatHandler.UnlockSeats)
		seats.POST("/toggle", seatHandler.ToggleSeat)

		// Booking endpoints
		bookings := api.Group("/bookings").Bind(apis.RequireAuth())
		bookings.POST("/quote", bookingHandler.Quote)
		bookings.POST("", bookingHandler.ConfirmBooking)
		bookings.GET("", bookingHandler.GetBookingHistory)
		bookings.GET("/{bookingId}", bookingHandler.GetBooking)
		bookings.POST("/{bookingId}/cancel", bookingHandler.CancelBooking)

		// Payment endpoints
		payments := api.Group("/payments").Bind(apis.RequireAuth())
		payments.GET("/{paymentId}", paymentHandler.GetPaymentDetails)
		payments.GET("/{paymentId}/status", paymentHandler.CheckPaymentStatus)
		payments.POST("/{paymentId}/cancel", paymentHandler.CancelPayment)

		// Coupon lookup for checkout
		api.POST("/coupons/check", couponHandler.Check).Bind(apis.RequireAuth())

		// Sales report
		api.GET("/reports/sales", reportHandler.Sales).
			Bind(handlers.RequireRole(models.RoleAdmin, models.RoleSalesman))

		// Support tickets and reported reviews
		support := api.Group("/support").Bind(apis.RequireAuth())
		support.GET("/tickets", moderationHandler.ListTickets)
		support.POST("/tickets", moderationHandler.OpenTicket)
		support.GET("/tickets/{ticketId}", moderationHandler.GetTicket)
		support.PATCH("/tickets/{ticketId}", moderationHandler.UpdateTicket).Bind(handlers.RequireRole(staff...))
		support.POST("/reviews/report", moderationHandler.ReportReview)
		support.GET("/reviews/reports", moderationHandler.ListReports).Bind(handlers.RequireRole(staff...))
		support.POST("/reviews/reports/{reportId}/resolve", moderationHandler.ResolveReport).Bind(handlers.RequireRole(staff...))

		// Messaging
		conversations := api.Group("/conversations").Bind(apis.RequireAuth())
		conversations.GET("", messageHandler.ListConversations)
		conversations.POST("", messageHandler.StartConversation)
		conversations.GET("/{conversationId}/messages", messageHandler.Messages)
		conversations.POST("/{conversationId}/messages", messageHandler.Send)
		conversations.POST("/{conversationId}/read", messageHandler.MarkRead)

		// Notification preferences
		notifications := api.Group("/notifications").Bind(apis.RequireAuth())
		notifications.GET("/preferences", notificationHandler.GetPreferences)
		notifications.PUT("/preferences", notificationHandler.UpdatePreferences)

		// Admin endpoints
		admin := api.Group("/admin").Bind(handlers.RequireRole(models.RoleAdmin))
		admin.GET("/dashboard", adminHandler.GetDashboard)
		admin.POST("/seats/release", adminHandler.ReleaseSeat)
		admin.POST("/bookings/expire", adminHandler.ExpirePending)

		admin.GET("/coupons", couponHandler.List)
		admin.POST("/coupons", couponHandler.Create)
		admin.GET("/coupons/{couponId}", couponHandler.Get)
		admin.PATCH("/coupons/{couponId}", couponHandler.Update)
		admin.POST("/coupons/{couponId}/deactivate", couponHandler.Deactivate)
		admin.DELETE("/coupons/{couponId}", couponHandler.Delete)

		admin.GET("/employees", employeeHandler.List)
		admin.POST("/employees", employeeHandler.Create)
		admin.GET("/employees/{employeeId}", employeeHandler.Get)
		admin.PATCH("/employees/{employeeId}", employeeHandler.Update)
		admin.POST("/employees/{employeeId}/terminate", employeeHandler.Terminate)
		admin.GET("/employees/{employeeId}/salary", employeeHandler.SalaryHistory)
		admin.POST("/employees/{employeeId}/salary", employeeHandler.ChangeSalary)
		admin.GET("/employees/{employeeId}/reviews", employeeHandler.Reviews)
		admin.POST("/employees/{employeeId}/reviews", employeeHandler.AddReview)

		admin.GET("/promotions", promotionHandler.List)
		admin.POST("/promotions", promotionHandler.Create)
		admin.GET("/promotions/{promotionId}", promotionHandler.Get)
		admin.PATCH("/promotions/{promotionId}", promotionHandler.Update)
		admin.DELETE("/promotions/{promotionId}", promotionHandler.Delete)
		admin.POST("/promotions/{promotionId}/publish", promotionHandler.Publish)
		admin.POST("/promotions/{promotionId}/unpublish", promotionHandler.Unpublish)

		// Test endpoint for payment simulation
		if cfg.IsDevelopment() {
			api.POST("/test/simulate-payment", paymentHandler.SimulatePayment).Bind(apis.RequireAuth())
		}

		if cfg.EnableMetrics {
			e.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))
		}

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(e.Request.Context(), redisClient); err != nil {
				return e.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
		})

		slog.Info("Server routes registered", "environment", cfg.Environment)

		return e.Next()
	})

	return app.Start()
}

func newTransport(cfg *config.Config, redisClient redis.UniversalClient, logger *events.SlogAdapter) (*events.Transport, error) {
	if cfg.EventTransport == "memory" {
		return events.NewMemoryTransport(logger), nil
	}
	return events.NewRedisTransport(redisClient, logger)
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("Shutdown signal received, cleaning up...")
	cancel()
}
