package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"golang.org/x/sync/errgroup"

	"adventure-agent/handler"
	"adventure-agent/internal/config"
	"adventure-agent/internal/integrations/discord"
	"adventure-agent/internal/integrations/openai"
	"adventure-agent/internal/integrations/paramstore"
	"adventure-agent/internal/presence"
	"adventure-agent/internal/repository"
	"adventure-agent/internal/usecase"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	getter, err := secretGetter(ctx, cfg.ParamPrefix)
	if err != nil {
		return err
	}

	token, err := getter.GetParameter(ctx, config.EnvDiscordToken)
	if err != nil {
		return err
	}

	db, err := repository.Open(repository.DBConfig{
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
	})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	turns, err := repository.NewTurnStore(db)
	if err != nil {
		return err
	}
	summaries, err := repository.NewSummaryStore(db, log)
	if err != nil {
		return err
	}

	llm, err := openai.NewClient(getter, config.EnvAIAPIKey, openai.WithBaseURL(cfg.AIBaseURL))
	if err != nil {
		return err
	}

	compactor, err := usecase.NewCompactor(turns, summaries, llm, cfg.SummaryModel, cfg.SummaryInstruction, cfg.MaxTokens, log)
	if err != nil {
		return err
	}
	assembler, err := usecase.NewAssembler(turns, summaries, compactor, cfg.BotID, cfg.Persona, cfg.HistoryWindow, log)
	if err != nil {
		return err
	}

	ownership := usecase.NewThreadOwnership()
	session, err := discord.New(token, log)
	if err != nil {
		return err
	}

	router, err := usecase.NewRouter(assembler, turns, summaries, llm, session, ownership, usecase.RouterConfig{
		BotID:     cfg.BotID,
		Prefix:    cfg.Prefix,
		Persona:   cfg.Persona,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
	}, log)
	if err != nil {
		return err
	}

	h := handler.New(router, log)
	if err := session.Open(h); err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	rotator, err := presence.NewRotator(session, log)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rotator.Run(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		return ctx.Err()
	})

	log.Info("bot running", "botId", cfg.BotID, "prefix", cfg.Prefix)
	err = g.Wait()

	log.Info("shutting down, waiting for in-flight messages")
	h.Wait()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// secretGetter selects where secrets come from: SSM when a parameter prefix
// is configured, plain environment variables otherwise.
func secretGetter(ctx context.Context, paramPrefix string) (paramstore.Getter, error) {
	if paramPrefix == "" {
		return paramstore.Env{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return paramstore.NewSSM(ssm.NewFromConfig(awsCfg), paramPrefix)
}
