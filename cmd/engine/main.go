package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	app "github.com/chetanguptaa/kaleshi/internal/app/engine"
	"github.com/chetanguptaa/kaleshi/internal/usecase/bootstrap"
	"github.com/chetanguptaa/kaleshi/internal/usecase/consumer"
	"github.com/chetanguptaa/kaleshi/internal/usecase/engine"
	"github.com/chetanguptaa/kaleshi/internal/usecase/eventpublisher"
	"github.com/chetanguptaa/kaleshi/internal/usecase/ledger"
	"github.com/chetanguptaa/kaleshi/internal/usecase/views"
	"github.com/chetanguptaa/kaleshi/pkg/config"
	"github.com/chetanguptaa/kaleshi/pkg/logger"
	"github.com/chetanguptaa/kaleshi/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	log = l
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	redisConfig := redis.DefaultConfig()
	redisConfig.Addrs = strings.Split(cfg.RedisConfig.Addrs, ",")
	redisConfig.Password = cfg.RedisConfig.Password
	redisConfig.Username = cfg.RedisConfig.Username
	redisConfig.DB = cfg.RedisConfig.DB

	rclient := redis.NewClient(log, redisConfig)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "connect_redis"})
		return
	}
	defer func() {
		if err := rclient.Disconnect(context.Background()); err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "disconnect_redis"})
		}
	}()

	matchingEngine := engine.NewEngine(log, engine.WithFairPriceCache(rclient))
	appender := ledger.NewAppender(rclient, log, cfg.EngineConfig.LedgerStream)
	replayer := ledger.NewReplayer(rclient, log, cfg.EngineConfig.LedgerStream)
	emitter := views.NewEmitter(rclient, log, cfg.EngineConfig.ViewChannel)

	publisher := eventpublisher.NewPublisher(cfg.KafkaConfig, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "close_publisher"})
		}
	}()

	var bootstrapper *bootstrap.Bootstrapper
	if cfg.PostgresConfig.URL != "" {
		store, err := bootstrap.NewPostgresStore(ctx, cfg.PostgresConfig.URL)
		if err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "connect_postgres"})
			return
		}
		defer store.Close()
		bootstrapper = bootstrap.NewBootstrapper(store, appender, log)
	}

	cons := consumer.NewConsumer(rclient, log, matchingEngine, appender, publisher, emitter, cfg.EngineConfig)

	engineApp := app.NewApp(log, matchingEngine, cons, replayer, appender, bootstrapper, cfg.EngineConfig)
	if err := engineApp.Init(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "init_engine"})
		return
	}
	if err := engineApp.Start(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "start_engine"})
		return
	}

	sig := <-sigChan
	log.Info("received shutdown signal", logger.Field{Key: "signal", Value: sig.String()})

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engineApp.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "stop_engine"})
	}

	log.Info("engine shutdown complete")
}
