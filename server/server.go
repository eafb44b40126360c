package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"OtoDist/cache"
	"OtoDist/config"
	"OtoDist/core/form"
	"OtoDist/core/reservation"
	"OtoDist/db"
	"OtoDist/logger"
	"OtoDist/model"
	"OtoDist/repository"
	"OtoDist/storage"

	"github.com/gorilla/mux"
)

// Start initializes dependencies and runs the HTTP server until interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.InfoLevel,
		OutputPath: "logs/otodist.log",
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	store, err := storage.NewMinioStore(cfg)
	if err != nil {
		logger.Fatal("初始化对象存储失败", logger.ErrorField(err))
	}

	gormDB, err := db.ConnectGorm(cfg)
	if err != nil {
		logger.Fatal("连接数据库失败", logger.ErrorField(err))
	}
	defer db.CloseGorm(gormDB)

	if err := db.AutoMigrate(gormDB, &model.Submission{}, &model.Song{}); err != nil {
		logger.Fatal("数据库迁移失败", logger.ErrorField(err))
	}

	sqlDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("连接数据库失败", logger.ErrorField(err))
	}
	defer sqlDB.Close()

	// Redis 不可用时降级为直查数据库
	var reservationCache *cache.ReservationCache
	if redisClient, err := cache.Connect(cfg); err != nil {
		logger.Warn("连接Redis失败，查询缓存停用", logger.ErrorField(err))
	} else {
		defer redisClient.Close()
		reservationCache = cache.NewReservationCache(redisClient)
	}

	submissionRepo := repository.NewGormSubmissionRepository(gormDB)
	statsRepo := repository.NewStatsRepository(sqlDB)
	svc := reservation.NewService(store, submissionRepo, reservationCache, cfg.AdminSecret)
	validator := form.NewValidator(cfg.MaxAudioMB)

	apiHandler := NewAPIHandler(svc, statsRepo, validator, cfg)

	router := mux.NewRouter()
	router.HandleFunc("/api/upload", apiHandler.UploadHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/reservations", apiHandler.GetReservationsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/reservations/{id}", apiHandler.DeleteReservationHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/download/{id}", apiHandler.DownloadHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/reservation/check", apiHandler.CheckReservationHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/reservation/admin", apiHandler.AdminListHandler).Methods(http.MethodPost)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      corsMiddleware(cfg.AllowedOrigins, router),
		ReadTimeout:  10 * time.Minute, // large multipart bodies
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("服务器启动", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("服务器启动失败", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("服务器强制关闭", logger.ErrorField(err))
	}

	logger.Info("服务器已停止")
}

// corsMiddleware answers preflight and tags allowed origins. Wrapping the
// router (instead of router.Use) keeps OPTIONS requests out of method
// matching.
func corsMiddleware(allowed []string, next http.Handler) http.Handler {
	allowedSet := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allowedSet[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowedSet[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
