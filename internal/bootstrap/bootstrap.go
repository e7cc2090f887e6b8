package bootstrap

import (
	"context"
	"fmt"

	"github.com/mkravets/denial-appeals/internal/config"
	"github.com/mkravets/denial-appeals/internal/core/ports"
	"github.com/mkravets/denial-appeals/internal/core/usecase"
	"github.com/mkravets/denial-appeals/internal/infrastructure/email/resend"
	"github.com/mkravets/denial-appeals/internal/infrastructure/extractor/letterpdf"
	"github.com/mkravets/denial-appeals/internal/infrastructure/llm/openai"
	"github.com/mkravets/denial-appeals/internal/infrastructure/payments/stripe"
	"github.com/mkravets/denial-appeals/internal/infrastructure/queue/nats"
	"github.com/mkravets/denial-appeals/internal/infrastructure/reachability"
	"github.com/mkravets/denial-appeals/internal/infrastructure/render/pdfdoc"
	"github.com/mkravets/denial-appeals/internal/infrastructure/repository/postgres"
	"github.com/mkravets/denial-appeals/internal/infrastructure/resilience"
	s3storage "github.com/mkravets/denial-appeals/internal/infrastructure/storage/s3"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Repo     ports.LetterRepository
	Payments ports.PaymentGateway

	UploadUC  ports.LetterUploader
	AnalyzeUC ports.LetterAnalyzer
	RespondUC ports.AppealResponder
	DeliverUC ports.AppealDeliverer
	ConfirmUC ports.PaymentConfirmer
	Readiness ports.ReadinessChecker

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewLetterRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := s3storage.New(ctx, cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	generator := openai.New(openai.Options{
		BaseURL:  cfg.OpenAIBaseURL,
		APIKey:   cfg.OpenAIAPIKey,
		Model:    cfg.OpenAIModel,
		Timeout:  cfg.LLMTimeout,
		Executor: resilience.NewExecutor(resilience.GenerationConfig()),
	})
	gateway := stripe.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripePriceID)
	mailer := resend.New(cfg.ResendAPIKey, cfg.MailFrom)
	renderer := pdfdoc.New()
	extractor := letterpdf.NewExtractor(storage)

	uploadUC := usecase.NewUploadLetterUseCase(repo, storage)
	analyzeUC := usecase.NewAnalyzeLetterUseCase(repo, extractor, generator)
	respondUC := usecase.NewGenerateAppealUseCase(repo, generator)
	deliverUC := usecase.NewDeliverAppealUseCase(repo, renderer, mailer, storage)
	confirmUC := usecase.NewConfirmPaymentUseCase(repo, queue)

	readiness := usecase.NewReadinessAggregator(
		cfg.MissingRequired,
		cfg.ProbeTimeout,
		postgres.NewProbe(repo),
		openai.NewProbe(generator),
		stripe.NewProbe(gateway),
		resend.NewProbe(mailer),
		s3storage.NewProbe(storage),
		nats.NewProbe(queue),
		reachability.New(cfg.ReachabilityURL),
	)

	return &App{
		Config:   cfg,
		Queue:    queue,
		Repo:     repo,
		Payments: gateway,

		UploadUC:  uploadUC,
		AnalyzeUC: analyzeUC,
		RespondUC: respondUC,
		DeliverUC: deliverUC,
		ConfirmUC: confirmUC,
		Readiness: readiness,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
