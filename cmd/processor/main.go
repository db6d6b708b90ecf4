package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"termsync/auth"
	"termsync/config"
	"termsync/consumer"
	"termsync/db"
	"termsync/docusign"
	"termsync/logging"
	"termsync/notify"
	"termsync/processor"
	"termsync/resourceterms"
	"termsync/terms"
	"termsync/useragreement"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("bootstrap config: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database.URL, cfg.Database.PoolMaxSize)
	if err != nil {
		logger.Fatal("bootstrap database pool", zap.Error(err))
	}
	defer pool.Close()

	broker := redis.NewClient(&redis.Options{
		Addr:     cfg.Broker.Addr,
		Password: cfg.Broker.Password,
		DB:       cfg.Broker.DB,
	})
	defer broker.Close()

	tokens := auth.NewService(auth.Config{
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		Audience:     cfg.Auth.Audience,
		Issuer:       cfg.Auth.Issuer,
		CacheTime:    cfg.Auth.CacheTime,
	})

	notifier := notify.NewPublisher(broker, tokens, notify.Config{
		SupportTopic: cfg.Topics.EmailSupport,
		Originator:   cfg.App.Name,
		ToAddress:    cfg.Email.Recipient,
		FromAddress:  cfg.Email.Sender,
	}, logger)

	coordinator := processor.NewCoordinator(pool, notifier, logger)
	router := processor.NewRouter(coordinator, logger, processor.Routes(
		processor.Topics{
			TermsCreated:            cfg.Topics.TermsCreated,
			TermsUpdated:            cfg.Topics.TermsUpdated,
			TermsDeleted:            cfg.Topics.TermsDeleted,
			ResourceTermsCreated:    cfg.Topics.ResourceTermsCreated,
			ResourceTermsUpdated:    cfg.Topics.ResourceTermsUpdated,
			ResourceTermsDeleted:    cfg.Topics.ResourceTermsDeleted,
			UserAgreed:              cfg.Topics.UserAgreed,
			DocusignEnvelopeCreated: cfg.Topics.DocusignEnvelopeCreated,
			DocusignEnvelopeUpdated: cfg.Topics.DocusignEnvelopeUpdated,
		},
		processor.Subjects{
			TermsOfUse:       cfg.Email.TermsSubject,
			ResourceTerms:    cfg.Email.ResourceTermsSubject,
			UserTermsOfUse:   cfg.Email.UserTermsSubject,
			DocusignEnvelope: cfg.Email.DocusignEnvelopeSubject,
		},
		terms.NewService(terms.NewRepository(), logger),
		resourceterms.NewService(resourceterms.NewRepository(), logger),
		useragreement.NewService(useragreement.NewRepository(), logger),
		docusign.NewService(docusign.NewRepository(), logger),
	)...)

	group := consumer.NewGroup(broker, router, cfg.Broker.GroupID, router.Topics(), cfg.Broker.Block, logger)

	logger.Info("terms processor starting",
		zap.String("env", cfg.App.Env),
		zap.Strings("topics", router.Topics()),
		zap.String("group", cfg.Broker.GroupID))

	if err := group.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("consumer group stopped", zap.Error(err))
	}

	logger.Info("terms processor stopped")
}
