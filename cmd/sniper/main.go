package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"

	"raydium-sniper/internal/command"
	"raydium-sniper/internal/discovery"
	"raydium-sniper/internal/enrichment"
	"raydium-sniper/internal/filter"
	"raydium-sniper/internal/notify"
	"raydium-sniper/internal/observability"
	"raydium-sniper/internal/scheduler"
	"raydium-sniper/internal/sniper"
	"raydium-sniper/internal/solana"
	"raydium-sniper/internal/storage"
	chstore "raydium-sniper/internal/storage/clickhouse"
	"raydium-sniper/internal/storage/memory"
	"raydium-sniper/internal/storage/migrations"
	pgstore "raydium-sniper/internal/storage/postgres"
	redisstore "raydium-sniper/internal/storage/redis"
)

func main() {
	// Secrets and endpoints come from .env when present; flags override.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint")
	programID := flag.String("program", discovery.RaydiumAMMV4, "Program ID to watch for pool initializations")
	commitment := flag.String("commitment", "finalized", "Subscription commitment level")

	store := flag.String("store", "memory", "Staging store backend: memory, postgres, or redis")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address (host:port)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse DSN for the alert archive (empty to disable)")

	gracePeriod := flag.Duration("grace-period", scheduler.DefaultGracePeriod, "Minimum age before a staged token is evaluated")
	pollInterval := flag.Duration("poll-interval", scheduler.DefaultPollInterval, "Staging store poll interval")
	enrichInterval := flag.Duration("enrich-interval", enrichment.DefaultPollInterval, "Pool lookup poll interval")

	raydiumAPI := flag.String("raydium-api", "", "Raydium pools API base URL (default public API)")
	metadataAPI := flag.String("metadata-api", "", "DEX metadata API base URL (default public API)")

	botToken := flag.String("bot-token", os.Getenv("TELEGRAM_BOT_TOKEN"), "Telegram bot token")
	chatIDs := flag.String("chat-ids", os.Getenv("TELEGRAM_CHAT_IDS"), "Comma-separated Telegram chat IDs for alerts")
	enableBot := flag.Bool("enable-bot", true, "Run the Telegram command bot")

	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stdout, "[sniper] ", log.LstdFlags|log.Lshortfile)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err := run(ctx, logger, options{
		rpcEndpoint:    *rpcEndpoint,
		wsEndpoint:     *wsEndpoint,
		programID:      *programID,
		commitment:     *commitment,
		store:          *store,
		postgresDSN:    *postgresDSN,
		redisAddr:      *redisAddr,
		clickhouseDSN:  *clickhouseDSN,
		gracePeriod:    *gracePeriod,
		pollInterval:   *pollInterval,
		enrichInterval: *enrichInterval,
		raydiumAPI:     *raydiumAPI,
		metadataAPI:    *metadataAPI,
		botToken:       *botToken,
		chatIDs:        *chatIDs,
		enableBot:      *enableBot,
	})

	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

type options struct {
	rpcEndpoint    string
	wsEndpoint     string
	programID      string
	commitment     string
	store          string
	postgresDSN    string
	redisAddr      string
	clickhouseDSN  string
	gracePeriod    time.Duration
	pollInterval   time.Duration
	enrichInterval time.Duration
	raydiumAPI     string
	metadataAPI    string
	botToken       string
	chatIDs        string
	enableBot      bool
}

func run(ctx context.Context, logger *log.Logger, opts options) error {
	if opts.rpcEndpoint == "" {
		return fmt.Errorf("--rpc-endpoint (or SOLANA_RPC_ENDPOINT) is required")
	}
	if opts.wsEndpoint == "" {
		return fmt.Errorf("--ws-endpoint (or SOLANA_WS_ENDPOINT) is required")
	}
	if opts.botToken == "" {
		return fmt.Errorf("--bot-token (or TELEGRAM_BOT_TOKEN) is required")
	}

	rpc := solana.NewHTTPClient(opts.rpcEndpoint)

	ws, err := solana.NewWSClient(ctx, opts.wsEndpoint, &solana.WSClientConfig{
		ReconnectDelay: 5 * time.Second,
		PingInterval:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("create websocket client: %w", err)
	}
	defer ws.Close()

	staging, cleanup, err := buildStagingStore(ctx, logger, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	var archive storage.AlertArchive
	if opts.clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, opts.clickhouseDSN)
		if err != nil {
			return fmt.Errorf("connect to clickhouse: %w", err)
		}
		defer conn.Close()

		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			return fmt.Errorf("clickhouse migrations: %w", err)
		}
		archive = chstore.NewAlertArchive(conn)
		logger.Println("Alert archive enabled")
	}

	fetcher := enrichment.NewFetcher(
		enrichment.NewRaydiumClient(opts.raydiumAPI),
		enrichment.NewMetadataClient(opts.metadataAPI),
		enrichment.FetcherConfig{
			PollInterval: opts.enrichInterval,
			Logger:       logger,
		},
	)

	criteria := filter.NewCriteria()

	destinations, err := parseDestinations(opts.botToken, opts.chatIDs)
	if err != nil {
		return err
	}
	notifier := notify.NewNotifier(destinations, logger)
	logger.Printf("Broadcasting to %d destination(s)", len(destinations))

	var bot *command.Bot
	if opts.enableBot {
		bot = command.NewBot(opts.botToken, criteria, command.BotConfig{
			OnSnipe: func(chatID int64) {
				notifier.AddDestination(notify.NewTelegramDestination("", opts.botToken, chatID))
			},
			Logger: logger,
		})
	}

	runnerOpts := sniper.Options{
		WS:       ws,
		RPC:      rpc,
		Staging:  staging,
		Fetcher:  fetcher,
		Criteria: criteria,
		Notifier: notifier,
		Archive:  archive,

		ProgramID:    opts.programID,
		Commitment:   opts.commitment,
		GracePeriod:  opts.gracePeriod,
		PollInterval: opts.pollInterval,
		Logger:       logger,
	}
	if bot != nil {
		runnerOpts.Bot = bot
	}

	logger.Printf("Watching program %s (grace period %s)", opts.programID, opts.gracePeriod)
	return sniper.New(runnerOpts).Run(ctx)
}

// buildStagingStore creates the staging store backend selected by
// --store, plus its cleanup func.
func buildStagingStore(ctx context.Context, logger *log.Logger, opts options) (storage.StagingStore, func(), error) {
	switch opts.store {
	case "memory":
		return memory.NewStagingStore(), func() {}, nil

	case "postgres":
		if opts.postgresDSN == "" {
			return nil, nil, fmt.Errorf("--postgres-dsn is required for --store=postgres")
		}
		pool, err := pgstore.NewPool(ctx, opts.postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Println("Using PostgreSQL staging store")
		return pgstore.NewStagingStore(pool), pool.Close, nil

	case "redis":
		if opts.redisAddr == "" {
			return nil, nil, fmt.Errorf("--redis-addr is required for --store=redis")
		}
		client := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Println("Using Redis staging store")
		return redisstore.NewStagingStore(client), func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", opts.store)
	}
}

// parseDestinations builds the fixed destination list from the
// comma-separated chat ID string.
func parseDestinations(botToken, chatIDs string) ([]notify.Destination, error) {
	var destinations []notify.Destination
	for _, raw := range strings.Split(chatIDs, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse chat ID %q: %w", raw, err)
		}
		destinations = append(destinations, notify.NewTelegramDestination("", botToken, id))
	}
	return destinations, nil
}
