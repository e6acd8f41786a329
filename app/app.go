package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/bookrent/rental-service/config"
	"github.com/bookrent/rental-service/internal/handler"
	"github.com/bookrent/rental-service/internal/repository"
	"github.com/bookrent/rental-service/internal/server"
	"github.com/bookrent/rental-service/internal/service"
	"github.com/bookrent/rental-service/migrations"
	"github.com/bookrent/rental-service/pkg/auth"
	"github.com/bookrent/rental-service/pkg/kafka"
	"github.com/bookrent/rental-service/pkg/logger"
	"github.com/bookrent/rental-service/pkg/postgres"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "rental")

	auth.JWTKey = []byte(cfg.JWTKey)

	loc, err := time.LoadLocation(cfg.Rental.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %v", cfg.Rental.Timezone, err)
	}

	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %v", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo rentals %v", err)
	}
	svc := service.NewService(repo, log, service.Config{
		Location:   loc,
		FinePerDay: cfg.Rental.FinePerDay,
	})

	var producer sarama.SyncProducer
	if len(cfg.Kafka.Addrs) > 0 {
		if producer, err = kafka.NewProducer(cfg.Kafka); err != nil {
			return fmt.Errorf("kafka producer %v", err)
		}
	}
	h := handler.New(svc, handler.NewEnqueuer(producer), log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("producer.Close", zap.Error(err))
		}
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return nil
}
