package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	httpctx "github.com/bayegaspard/datasite/internal/api/http/context"
	"github.com/bayegaspard/datasite/internal/api/http/handler"
	"github.com/bayegaspard/datasite/internal/api/http/router"
	httpServer "github.com/bayegaspard/datasite/internal/api/http/server"
	"github.com/bayegaspard/datasite/internal/config"
	"github.com/bayegaspard/datasite/internal/logger"
	"github.com/bayegaspard/datasite/internal/model"
	"github.com/bayegaspard/datasite/internal/notifier"
	"github.com/bayegaspard/datasite/internal/peer"
	"github.com/bayegaspard/datasite/internal/repository/postgres"
	"github.com/bayegaspard/datasite/internal/server"
	"github.com/bayegaspard/datasite/internal/service"
	"github.com/bayegaspard/datasite/internal/stash"
	storage "github.com/bayegaspard/datasite/internal/storage/minio"
	"github.com/bayegaspard/datasite/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userStash := stash.NewUserStash(postgres.NewUserRepository(db))
	settingsStash := stash.NewSettingsStash(postgres.NewSettingsRepository(db))
	peerStash := stash.NewPeerStash(postgres.NewPeerRepository(db))

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.SessionTTL)
	smtpNotifier := notifier.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, logger.Named("notifier"))
	ctxMgr := httpctx.NewManager()

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	blobStore, err := storage.NewBlobStore(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize blob store", "error", err)
	}

	userService := service.NewUser(
		userStash,
		settingsStash,
		smtpNotifier,
		tokenManager,
		model.ServerType(cfg.ServerType),
		cfg.ServerName,
		service.ResetTokenConfig{
			ASCII:   cfg.ResetToken.ASCII,
			Numbers: cfg.ResetToken.Numbers,
			Length:  cfg.ResetToken.Length,
			Expiry:  cfg.ResetToken.Expiry,
		},
		logger,
	)
	settingsService := service.NewSettings(settingsStash, userStash, logger)
	peerRouter := peer.NewRouter(peerStash, userStash, logger.Named("peer"))
	relay := peer.NewRelay(logger.Named("relay"))

	if err := settingsService.EnsureSettings(ctx, cfg.ServerName, cfg.Root.Email); err != nil {
		logger.Fatal("failed to bootstrap settings", "error", err)
	}
	if err := userService.EnsureRootAdmin(ctx, cfg.Root.Email, cfg.Root.Name, cfg.Root.Password); err != nil {
		logger.Fatal("failed to bootstrap root admin", "error", err)
	}

	userHandler := handler.NewUser(userService, ctxMgr, logger)
	settingsHandler := handler.NewSettings(settingsService, ctxMgr, logger)
	peerHandler := handler.NewPeer(peerRouter, relay, ctxMgr, logger)
	blobHandler := handler.NewBlob(blobStore, ctxMgr, logger)

	r := router.New(userHandler, settingsHandler, peerHandler, blobHandler, tokenManager, ctxMgr, logger)
	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
