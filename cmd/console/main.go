package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/xela07ax/relevance-backend/internal/connectors"
	"github.com/xela07ax/relevance-backend/internal/console/handler"
	"github.com/xela07ax/relevance-backend/internal/console/server"
	"github.com/xela07ax/relevance-backend/internal/console/service"
	"github.com/xela07ax/relevance-backend/internal/infra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, envFile string
	flag.StringVar(&configPath, "config", "", "path to config file (default: ./config.yaml or ./configs/config.yaml)")
	flag.StringVar(&envFile, "env-file", ".env", "path to dotenv file")
	flag.Parse()

	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig(configPath, envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// 2. Клиент Relevance AI: без кредов не стартуем
	client, err := connectors.NewRelevanceClient(cfg.Relevance)
	if err != nil {
		logger.Error("error initializing relevance AI client", zap.Error(err))
		return err
	}

	// 3. Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infra.NewMetrics(reg)

	// 4. Инициализация слоев (Dependency Injection)
	agentService := service.NewAgentService(client, metrics, logger)
	agentHandler := handler.NewAgentHandler(agentService, logger)
	srv := server.NewConsoleServer(cfg, logger, metrics, reg, agentHandler)

	// 5. Запуск сервера до SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return srv.Run(ctx)
}
