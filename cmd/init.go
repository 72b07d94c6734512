package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Builder-Lawyers/site-moderation/internal/application"
	"github.com/Builder-Lawyers/site-moderation/internal/application/commands/moderation"
	"github.com/Builder-Lawyers/site-moderation/internal/application/commands/site"
	"github.com/Builder-Lawyers/site-moderation/internal/application/hooks"
	"github.com/Builder-Lawyers/site-moderation/internal/application/processors"
	"github.com/Builder-Lawyers/site-moderation/internal/application/query"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/auth"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/config"
	infradb "github.com/Builder-Lawyers/site-moderation/internal/infra/db"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/i18n"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/mail"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/nonce"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/storage"
	"github.com/Builder-Lawyers/site-moderation/internal/presentation/rest"
	"github.com/Builder-Lawyers/site-moderation/internal/presentation/scheduler"
	"github.com/Builder-Lawyers/site-moderation/pkg/db"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func Init() {
	ctx := context.Background()

	// DB
	pool, err := db.NewPool(ctx, db.NewConfig())
	if err != nil {
		log.Panicf("failed to connect to db: %v", err)
	}
	if err = infradb.Migrate(ctx, pool); err != nil {
		log.Panicf("failed to migrate db: %v", err)
	}
	uowFactory := db.NewUoWFactory(pool)

	// Configs
	platformConfig := config.NewPlatformConfig()
	moderationConfig := config.NewModerationConfig()
	mailConfig := mail.NewMailConfig()
	sessionConfig := auth.NewSessionConfig()
	outboxConfig := scheduler.NewOutboxConfig()
	if sessionConfig.Secret == "" {
		log.Panic("SESSION_SECRET must be set")
	}

	translator, err := i18n.LoadEmbedded()
	if err != nil {
		log.Panicf("failed to load translations: %v", err)
	}

	nonces, err := nonce.New(nonce.NewConfig())
	if err != nil {
		log.Panicf("failed to create nonce store: %v", err)
	}
	if err = nonces.Ping(ctx); err != nil {
		log.Panicf("failed to connect to redis: %v", err)
	}

	// AWS
	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Panic("can't load aws config", err)
	}
	s3 := storage.NewStorage(cfg, storage.NewStorageConfig())

	registry := hooks.NewRegistry()
	updateArchived := site.NewUpdateArchived(uowFactory, registry)
	deleteSite := site.NewDeleteSite(uowFactory, registry)
	moderator := moderation.New(moderation.Deps{
		UOWFactory: uowFactory,
		Platform:   platformConfig,
		Nonces:     nonces,
		Archiver:   updateArchived,
		Deleter:    deleteSite,
		Translator: translator,
	}, moderationConfig, moderation.Options{})
	moderator.Register(registry)

	handlers := &application.Handlers{
		CreateSite:       site.NewCreateSite(uowFactory, registry, platformConfig),
		UpdateArchived:   updateArchived,
		DeleteSite:       deleteSite,
		GetSite:          query.NewGetSite(uowFactory),
		ListSites:        query.NewListSites(uowFactory),
		GetSiteByAddress: query.NewGetSiteByAddress(uowFactory),
		GetIdentity:      query.NewGetIdentity(uowFactory, auth.NewIdentityProvider(sessionConfig)),
		Moderation:       moderator,
	}
	processorCollection := &application.Processors{
		SendMail:       processors.NewSendMail(mail.NewMailServer(mailConfig), uowFactory),
		PurgeSiteFiles: processors.NewPurgeSiteFiles(s3),
	}

	handler, err := rest.NewServer(handlers, platformConfig, translator)
	if err != nil {
		log.Panicf("failed to parse page templates: %v", err)
	}
	app := fiber.New(fiber.Config{
		IdleTimeout: 5 * time.Second,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     platformConfig.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	rest.RegisterHandlers(app, handler)

	outboxPoller := scheduler.NewOutboxPoller(processorCollection, uowFactory, outboxConfig)
	go outboxPoller.Start()

	go func() {
		if err := app.Listen(platformConfig.Addr); err != nil {
			log.Panic(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	_ = <-c
	fmt.Println("Gracefully shutting down...")
	_ = app.Shutdown()
	outboxPoller.Stop()

	fmt.Println("Running cleanup tasks...")

	_ = nonces.Close()
	uowFactory.Pool.Close()
	fmt.Println("Fiber was successfully shutdown.")
}
