package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/midi-parser/internal/api"
	"github.com/taoyao-code/midi-parser/internal/api/middleware"
	cfgpkg "github.com/taoyao-code/midi-parser/internal/config"
	"github.com/taoyao-code/midi-parser/internal/gateway"
	"github.com/taoyao-code/midi-parser/internal/health"
	"github.com/taoyao-code/midi-parser/internal/httpserver"
	"github.com/taoyao-code/midi-parser/internal/logging"
	"github.com/taoyao-code/midi-parser/internal/metrics"
	"github.com/taoyao-code/midi-parser/internal/session"
	redisstorage "github.com/taoyao-code/midi-parser/internal/storage/redis"
	"github.com/taoyao-code/midi-parser/internal/tcpserver"
)

func main() {
	// 1) 加载配置
	cfg, err := cfgpkg.Load("")
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 指标
	reg := metrics.NewRegistry()
	dm := metrics.NewDecoderMetrics(reg)
	var metricsHandler http.Handler
	if cfg.Metrics.Enable {
		metricsHandler = metrics.Handler(reg)
	}

	// 4) 会话管理（可选 Redis 快照）
	opts := []session.ManagerOption{session.WithMetrics(dm), session.WithManagerLogger(log)}
	agg := health.NewAggregator()
	if cfg.Redis.Enabled {
		client, err := redisstorage.NewClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal("redis init failed", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		opts = append(opts, session.WithStore(redisstorage.NewSnapshotStore(client, cfg.Redis.KeyPrefix, cfg.Redis.SnapshotTTL)))
		agg.AddChecker(health.NewRedisChecker(client))
		log.Info("session snapshots enabled", zap.String("addr", cfg.Redis.Addr))
	}
	sessions := session.NewManager(cfg.Session, opts...)
	agg.AddChecker(health.NewSessionChecker(sessions, cfg.Session.MaxSessions))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.Run(ctx)

	// 5) HTTP 服务
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, func() bool { return agg.Ready(context.Background()) }, log)
	health.RegisterHTTPRoutes(httpSrv.Engine(), agg)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RatePerSec, cfg.RateLimit.Burst)
	}
	authCfg := middleware.AuthConfig{Enabled: cfg.Auth.Enabled, APIKeys: cfg.Auth.APIKeys}
	api.RegisterParseRoutes(httpSrv.Engine(), api.NewParseHandler(sessions, dm, log), authCfg, limiter, log)

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server error", zap.Error(err))
		}
	}()

	// 6) TCP 原始字节流接入（可选）
	var tcpSrv *tcpserver.Server
	if cfg.TCP.Enabled {
		tcpSrv = tcpserver.New(cfg.TCP, log)
		tcpSrv.SetConnHandler(gateway.NewConnHandler(dm, log))
		tcpSrv.SetMetricsCallbacks(dm.OnAccept, dm.OnRecvBytes)
		if err := tcpSrv.Start(); err != nil {
			log.Fatal("tcp listen failed", zap.Error(err))
		}
		log.Info("tcp stream listening", zap.String("addr", cfg.TCP.Addr), zap.Int("max_conn", cfg.TCP.MaxConnections))
	}

	// 信号处理，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	if tcpSrv != nil {
		_ = tcpSrv.Shutdown(shutdownCtx)
	}
	cancel()
	log.Info("server stopped")
}
