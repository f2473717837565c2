package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"coursehub/internal/config"
	"coursehub/internal/handlers"
	"coursehub/internal/logger"
	"coursehub/internal/services/recommend"
	"coursehub/internal/store"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 初始化日志系统
	if _, err := logger.InitLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, "coursehub"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// 打开数据库
	dataStore, err := store.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open database", logger.Fields{"error": err.Error()})
	}
	defer dataStore.Close()

	// 构建推荐引擎
	engine := recommend.NewEngine(dataStore, cfg.Recommendation)

	// 设置Gin模式
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建Gin实例
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// 注册路由
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.Check)

	recommendationHandler := handlers.NewRecommendationHandler(engine)
	api := r.Group("/api/v1")
	recommendationHandler.RegisterRoutes(api)

	// 启动服务器
	srv := &http.Server{
		Addr:         config.GetServerAddress(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 在goroutine中启动服务器
	go func() {
		logger.Info("Server starting", logger.Fields{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.Fields{"error": err.Error()})
		}
	}()

	// 等待中断信号优雅关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}
