package app

import (
	"context"
	"database/sql"

	"github.com/glbits/Rudraksha-Hospital-IMS/internal/attendance"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/credit"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/dispatch"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/identity"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/messaging/kafka"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/middleware"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/notify"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	ctx context.Context,
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	identityRepo := identity.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	dispatchRepo := dispatch.NewRepository(gormDB)
	creditRepo := credit.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Push Channel ---
	hub := notify.NewHub()
	var notifier notify.Publisher = hub
	if rdb != nil {
		bridge := notify.NewRedisBridge(rdb, hub)
		go bridge.Listen(ctx)
		notifier = bridge
	}

	// --- Services ---
	identityService := identity.NewService(identityRepo)
	attendanceService := attendance.NewService(db, attendanceRepo)
	dispatchService := dispatch.NewService(db, dispatchRepo, attendanceService, outboxRepo, notifier, rdb)
	creditService := credit.NewService(creditRepo)

	// --- Handlers ---
	identityHandler := identity.NewHandler(identityService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	dispatchHandler := dispatch.NewHandlerWithRedis(dispatchService, rdb)
	creditHandler := credit.NewHandler(creditService)
	notifyHandler := notify.NewHandler(hub)

	// --- Routes Registration ---
	api := router.Group("/api")
	api.Use(middleware.RequestID())
	{
		identity.RegisterRoutes(api, identityHandler, rbacService)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService)
		dispatch.RegisterRoutes(api, dispatchHandler, rbacService, rdb)
		credit.RegisterRoutes(api, creditHandler, rbacService)
		notify.RegisterRoutes(api, notifyHandler)
	}

	return nil
}
