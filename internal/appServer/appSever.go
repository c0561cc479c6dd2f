// launching the HTTP server and the kafka processor
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/image-resizer/config"
	"github.com/ds124wfegd/image-resizer/internal/pkg/kafka"
	"github.com/ds124wfegd/image-resizer/internal/pkg/processor"
	"github.com/ds124wfegd/image-resizer/internal/pkg/storage"
	"github.com/ds124wfegd/image-resizer/internal/pkg/transfer"
	"github.com/ds124wfegd/image-resizer/internal/service"
	"github.com/ds124wfegd/image-resizer/internal/transport"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// NewLogger returns the JSON logger shared by every entry point.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(new(logrus.JSONFormatter))
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// NewTransformService wires the fetch, transform and upload stages.
func NewTransformService(cfg *config.Config, logger logrus.FieldLogger) service.TransformService {
	var files storage.FileStorage
	if cfg.Transform.StorageRoot != "" {
		files = storage.NewFileStorage(cfg.Transform.StorageRoot)
	}

	client := transfer.NewClient(transfer.Options{
		FetchTimeout:   cfg.Transform.FetchTimeout,
		UploadTimeout:  cfg.Transform.UploadTimeout,
		MaxSourceBytes: cfg.Transform.MaxSourceBytes,
	}, files, logger)
	imgProcessor := processor.NewImageProcessor(cfg.Transform.MaxDimension, cfg.Transform.MaxSourcePixels, logger)

	return service.NewTransformService(client, client, imgProcessor, logger)
}

func NewServer(cfg *config.Config) {

	logger := NewLogger(cfg.Server.LogLevel)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := transport.NewTransformHandler(NewTransformService(cfg, logger))

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(handler, logger, cfg.Server.RequestTimeout)); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logger.WithField("port", cfg.Server.Port).Info("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("App Shutting Down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("error occured on server shutting down: %s", err.Error())
	}
}

// NewProcessor consumes transform jobs from Kafka until SIGINT or SIGTERM.
func NewProcessor(cfg *config.Config) {

	logger := NewLogger(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ResultsTopic, logger)
	defer producer.Close()

	consumer := kafka.NewConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		cfg.Kafka.GroupID,
		cfg.Kafka.Workers,
		NewTransformService(cfg, logger),
		producer,
		logger,
	)
	defer consumer.Close()

	logger.WithFields(logrus.Fields{
		"brokers": cfg.Kafka.Brokers,
		"topic":   cfg.Kafka.Topic,
	}).Info("Processor Started")

	if err := consumer.Run(ctx); err != nil {
		logger.WithError(err).Error("processor stopped")
	}
	logger.Info("Processor Shutting Down")
}
