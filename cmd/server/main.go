package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/freebook/backend/internal/cache"
	"github.com/freebook/backend/internal/config"
	"github.com/freebook/backend/internal/handler"
	"github.com/freebook/backend/internal/kafka"
	"github.com/freebook/backend/internal/observability"
	"github.com/freebook/backend/internal/outbox"
	"github.com/freebook/backend/internal/repository"
	"github.com/freebook/backend/internal/repository/memory"
	"github.com/freebook/backend/internal/repository/mongodb"
	"github.com/freebook/backend/internal/security"
	"github.com/freebook/backend/internal/service"
	"github.com/freebook/backend/internal/storage"
	"github.com/freebook/backend/internal/tx"
)

type stores struct {
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	posts    repository.PostRepository
	outbox   repository.OutboxRepository
	tx       tx.Transactor
	ping     func(ctx context.Context) error
	close    func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		observability.InitLogger("freebook", "info")
		observability.Log.Fatal("config load failed", zap.Error(err))
	}

	// Observability
	observability.InitLogger(cfg.ServiceName, cfg.LogLevel)
	log := observability.Log
	defer log.Sync()

	if cfg.TracingEnabled {
		tp, err := observability.InitTracer(cfg.ServiceName, cfg.JaegerURL)
		if err != nil {
			log.Fatal("failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Error("failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal("store open failed", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	// HTTP Server for Observability (Metrics & Health)
	obsMux := chi.NewRouter()
	obsMux.Handle("/metrics", promhttp.Handler())
	obsMux.Get("/health/live", observability.HealthLiveHandler)
	obsMux.Get("/health/ready", observability.HealthReadyHandler(st.ping))

	obsSrv := &http.Server{Addr: cfg.ObsHTTPAddr, Handler: obsMux}
	go func() {
		log.Info("HTTP observability server started", zap.String("addr", cfg.ObsHTTPAddr))
		if err := obsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP observability server failed", zap.Error(err))
		}
	}()

	// Redis
	var profileCache service.ProfileCache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		rdb := cache.New(cfg.Redis.Addr)
		defer rdb.Close()
		profileCache = &cache.ProfileCache{R: rdb, TTL: cfg.Redis.ProfileTTL}
	}

	// Images
	var images service.ImageStore
	if cfg.S3.Endpoint != "" {
		is, err := storage.NewMinioImageStore(cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket, cfg.S3.PublicURL, cfg.S3.UseSSL)
		if err != nil {
			log.Fatal("minio client failed", zap.Error(err))
		}
		if err := is.EnsureBucket(ctx); err != nil {
			log.Warn("image bucket not ready", zap.String("bucket", cfg.S3.Bucket), zap.Error(err))
		}
		images = is
	}

	// Kafka producer + outbox publisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()

		publisher := outbox.NewPublisher(st.outbox, producer, cfg.Kafka.PollInterval, cfg.Kafka.BatchSize)
		go publisher.Start(ctx)
	} else {
		log.Info("no kafka brokers configured, events stay in the outbox")
	}

	// Services
	recorder := outbox.NewRecorder(st.outbox)
	tokens := security.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTTL)

	authSvc := service.NewAuthService(st.accounts, st.profiles, st.tx, recorder, tokens)
	postSvc := service.NewPostService(st.accounts, st.profiles, st.posts, st.tx, recorder, profileCache, images)
	interactionSvc := service.NewInteractionService(st.accounts, st.profiles, st.posts, st.tx, recorder, profileCache)
	profileSvc := service.NewProfileService(st.accounts, st.profiles, st.tx, recorder, profileCache)

	var imageSvc *service.ImageService
	if images != nil {
		imageSvc = service.NewImageService(st.accounts, st.profiles, images)
	}

	// HTTP server
	r := handler.NewRouter(cfg, handler.Handlers{
		Auth:   handler.NewAuthHandler(authSvc),
		Posts:  handler.NewPostHandler(postSvc, interactionSvc),
		Users:  handler.NewUserHandler(profileSvc),
		Images: handler.NewImageHandler(imageSvc),
	}, tokens)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		log.Info("freebook HTTP started", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("received signal, initiating shutdown")
	cancel() // stop outbox publisher

	ctxShut, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()

	if err := srv.Shutdown(ctxShut); err != nil {
		log.Error("HTTP shutdown failed", zap.Error(err))
	}
	if err := obsSrv.Shutdown(ctxShut); err != nil {
		log.Error("observability shutdown failed", zap.Error(err))
	}
	if err := st.close(ctxShut); err != nil {
		log.Error("store close failed", zap.Error(err))
	}
	log.Info("freebook stopped")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == "memory" {
		m := memory.NewStore()
		return &stores{
			accounts: m.Accounts(),
			profiles: m.Profiles(),
			posts:    m.Posts(),
			outbox:   m.Outbox(),
			tx:       m,
			ping:     m.Ping,
			close:    func(context.Context) error { return nil },
		}, nil
	}

	client, err := mongodb.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Mongo.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &stores{
		accounts: mongodb.NewAccountRepo(db),
		profiles: mongodb.NewProfileRepo(db),
		posts:    mongodb.NewPostRepo(db),
		outbox:   mongodb.NewOutboxRepo(db),
		tx:       &tx.Manager{Client: client},
		ping:     mongodb.Ping(client),
		close:    client.Disconnect,
	}, nil
}
