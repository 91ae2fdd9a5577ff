package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/adapter/handler"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/adapter/storage"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/config"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/service"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/port"
)

type backends struct {
	store     port.Store
	cache     port.CacheRepository
	movements port.MovementRecorder
	shipments port.ShipmentService
	closers   []func() error
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open backends", zap.String("store", cfg.Store), zap.Error(err))
	}

	tracking := service.NewSequenceTrackingNumbers(b.cache)
	orders := service.NewFulfillmentService(b.store, b.cache, b.movements, b.shipments, tracking, logger)
	tasks := service.NewPickTaskService(b.store, b.movements, logger)
	inventory := service.NewInventoryService(b.store, b.movements, logger)

	// gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterFulfillmentServer(grpcServer, handler.NewGRPCHandler(orders, tasks, inventory, logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
		}
		go func() {
			logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", zap.Error(err))
			}
		}()
	}

	// HTTP server
	mux := http.NewServeMux()
	handler.NewHTTPHandler(orders, tasks, inventory, logger).Register(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
	if cfg.HTTPAddr != "" {
		go func() {
			logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", zap.Error(err))
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil {
			logger.Warn("close connection", zap.Error(err))
		}
	}
	logger.Info("connections closed")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func openBackends(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backends, error) {
	if cfg.Store == config.StoreMemory {
		logger.Info("using in-memory store")
		return &backends{
			store:     storage.NewMemoryStore(),
			cache:     storage.NewMemoryCache(),
			movements: storage.NewMemoryMovements(),
			shipments: storage.NewMemoryShipments(),
		}, nil
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("connected to mysql")

	store := storage.NewMySQLStore(db)
	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("schema migrated")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		db.Close()
		return nil, err
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	return &backends{
		store:     store,
		cache:     storage.NewRedisAdapter(rdb),
		movements: storage.NewMySQLMovements(db),
		shipments: storage.NewMySQLShipments(db),
		closers:   []func() error{rdb.Close, db.Close},
	}, nil
}
