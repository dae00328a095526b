package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	config "slicebot/app/configs"
	"slicebot/app/core/dialogue"
	"slicebot/app/core/interaction/cli"
	"slicebot/app/core/interaction/gateway"
	httpchannel "slicebot/app/core/interaction/http"
	"slicebot/app/core/llm"
	"slicebot/app/core/nlp"
	"slicebot/app/core/queue"
	"slicebot/app/core/recommend"
	"slicebot/app/core/store"
	"slicebot/app/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfgManager, err := config.NewManager(config.DefaultPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := cfgManager.Get()

	if err := logger.Init(cfg.Storage.LogDir); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("Slicebot Starting...")

	for _, warning := range config.Audit(cfg) {
		logger.Info("Config warning: %s", warning)
	}

	st, err := store.Open(cfg.Storage.DataDir)
	if err != nil {
		logger.Error("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := st.Seed(ctx); err != nil {
		logger.Error("Failed to seed menu: %v", err)
		os.Exit(1)
	}
	logger.Info("Store initialized successfully")

	// Without an API key the bot runs pattern-only: no intent fallback and
	// handler messages instead of generated replies.
	var fallback nlp.Fallback
	var generator dialogue.Generator
	if key := strings.TrimSpace(os.Getenv("GROQ_API_KEY")); key != "" {
		provider := llm.NewProvider(llm.NewClient(llm.Options{
			APIKey:      key,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		}))
		fallback = provider
		generator = provider
		logger.Info("LLM fallback enabled (model %s)", cfg.LLM.Model)
	} else {
		logger.Info("GROQ_API_KEY not set, running pattern-only")
	}

	engine := dialogue.NewEngine(st, nlp.NewExtractor(fallback), recommend.NewEngine(st), generator)
	engine.SetLimits(cfg.Dialogue.HistoryLimit, cfg.Dialogue.PromptHistoryLimit, cfg.Dialogue.MaxRecommendations)
	agent := dialogue.NewAgent(cfg.Agent.Name, engine)

	gw := gateway.NewGateway(agent)

	// One worker serializes turns so concurrent messages from the same user
	// cannot interleave on session state.
	turnQueue := queue.New(64)
	if err := turnQueue.Start(ctx, 1); err != nil {
		logger.Error("Failed to start turn queue: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := turnQueue.Stop(3 * time.Second); err != nil {
			logger.Error("Turn queue shutdown: %v", err)
		}
	}()
	gw.SetExecutionQueue(turnQueue, gateway.QueueOptions{
		Enabled:        true,
		EnqueueTimeout: 2 * time.Second,
		AttemptTimeout: 90 * time.Second,
	})

	gw.RegisterChannel(cli.NewCLIChannel(cfg.Dialogue.CLIUserID))

	httpChannel := httpchannel.NewHTTPChannel(cfg.HTTP.Port)
	httpChannel.SetStatusProvider(func(context.Context) map[string]interface{} {
		health := gw.HealthStatus()
		return map[string]interface{}{
			"agent":              health.AgentName,
			"channels":           health.RegisteredChannels,
			"processed_messages": health.ProcessedMessages,
			"queue":              health.Queue,
		}
	})
	gw.RegisterChannel(httpChannel)

	go func() {
		if err := gw.Start(ctx); err != nil {
			logger.Error("Gateway crashed: %v", err)
			os.Exit(1)
		}
	}()

	logger.Info("Slicebot is ready to serve.")
	fmt.Println("- CLI Interface: Interactive")
	fmt.Printf("- HTTP Interface: http://localhost:%d/api/message (POST)\n", cfg.HTTP.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal: %v. Slicebot Shutting Down...", sig)
	cancel()
}
