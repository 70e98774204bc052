package main

import (
	"context"
	"os"
	"time"

	"github.com/glbits/Rudraksha-Hospital-IMS/internal/app"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/bootstrap"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()
	r := gin.Default()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.BuildApp(ctx, r); err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	auditLogger := bootstrap.NewStdoutAuditLogger()
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:        port,
			ReadTimeout: 5 * time.Second,
			// WriteTimeout stays zero so event streams are not cut off.
			IdleTimeout: 60 * time.Second,
		},
		auditLogger,
	)
}
