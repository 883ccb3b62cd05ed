package bootstrap

import (
	"context"
	"fmt"

	"github.com/kito-labs/risiti/internal/config"
	"github.com/kito-labs/risiti/internal/core/ports"
	"github.com/kito-labs/risiti/internal/core/usecase"
	"github.com/kito-labs/risiti/internal/infrastructure/export"
	"github.com/kito-labs/risiti/internal/infrastructure/extractor/pdftext"
	"github.com/kito-labs/risiti/internal/infrastructure/llm/anthropic"
	"github.com/kito-labs/risiti/internal/infrastructure/queue/nats"
	"github.com/kito-labs/risiti/internal/infrastructure/repository/postgres"
	"github.com/kito-labs/risiti/internal/infrastructure/resilience"
	"github.com/kito-labs/risiti/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Repo  ports.BillRepository

	UploadUC *usecase.UploadBillUseCase
	ParseUC  *usecase.ParseReceiptUseCase
	EditUC   *usecase.EditBillUseCase
	ExportUC *usecase.ExportBillsUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewBillRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	extractor := anthropic.NewWithOptions(
		cfg.AnthropicBaseURL,
		cfg.AnthropicAPIKey,
		cfg.AnthropicModel,
		anthropic.Options{
			MaxTokens:          cfg.AnthropicMaxTokens,
			ResilienceExecutor: executor,
		},
	)

	accounts, err := export.LoadAccountMap(cfg.ExportAccountsPath)
	if err != nil {
		return nil, fmt.Errorf("load export account map: %w", err)
	}

	uploadUC := usecase.NewUploadBillUseCase(repo, storage, queue)
	parseUC := usecase.NewParseReceiptUseCase(repo, storage, extractor, pdftext.New())
	editUC := usecase.NewEditBillUseCase(repo)
	editUC.SetListLimit(cfg.ListLimit)
	exportUC := usecase.NewExportBillsUseCase(repo, export.New(accounts))

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		UploadUC: uploadUC,
		ParseUC:  parseUC,
		EditUC:   editUC,
		ExportUC: exportUC,

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
