package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/agent"
	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/analysis"
	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/config"
	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/ingest"
	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/logger"
	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/sidechannel"
	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/transaction"
	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/voice"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		runChat(log)
	case "call":
		runCall(log)
	case "inspect":
		runInspect(log)
	case "listen":
		runListen(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Financial Coach Agent")
	fmt.Println("\nUsage:")
	fmt.Println("  coach <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  chat      Text conversation with the coach")
	fmt.Println("  call      Simulated voice call with side-channel data cards")
	fmt.Println("  inspect   Print the full analytics reports for the data set")
	fmt.Println("  listen    Consume data cards from the broker and print them")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'coach <command> -h' for more information on a command.")
}

// loadTransactions reads the configured data set, falling back to the
// built-in sample data when no path is given.
func loadTransactions(ctx context.Context, log zerolog.Logger, dataPath string) []transaction.Transaction {
	if dataPath == "" {
		log.Info().Msg("No data path configured, using generated sample data")
		return ingest.SampleData()
	}

	txns, err := ingest.Load(ctx, dataPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", dataPath).Msg("Failed to load transactions")
	}
	log.Info().Int("count", len(txns)).Str("path", dataPath).Msg("Loaded transactions")
	return txns
}

// buildCoach wires the full agent stack for a data set.
func buildCoach(ctx context.Context, log zerolog.Logger, cfg *config.Config, dataPath string) *agent.Coach {
	txns := loadTransactions(ctx, log, dataPath)

	analyzer, err := analysis.New(txns)
	if err != nil {
		log.Fatal().Err(err).Msg("Transaction data failed validation")
	}

	if err := cfg.RequireGeminiKey(); err != nil {
		log.Fatal().Err(err).Msg("Missing model credentials")
	}
	model, err := agent.NewGeminiModel(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create model client")
	}

	return agent.NewCoach(analyzer, model, cfg.UserID, log)
}

func runChat(log zerolog.Logger) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	dataPath := fs.String("data", "", "Transactions CSV (local path or gs:// URI); sample data when empty")
	fs.Parse(os.Args[2:])

	cfg := config.Load()
	if *dataPath == "" {
		*dataPath = cfg.DataPath
	}

	ctx := logger.WithContext(context.Background(), log)
	coach := buildCoach(ctx, log, cfg, *dataPath)

	fmt.Println("Financial coach ready. Ask about your spending, debt or budget.")
	fmt.Println("Type 'quit' to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		msg := strings.TrimSpace(scanner.Text())
		if msg == "" {
			continue
		}
		switch strings.ToLower(msg) {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return
		}

		turnCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		reply, err := coach.Chat(turnCtx, "", msg)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("Dialogue turn failed")
			continue
		}

		fmt.Printf("\nCoach: %s\n", reply.Spoken)
		if reply.Detail != reply.Spoken {
			fmt.Printf("\n--- details ---\n%s\n", reply.Detail)
		}
	}
}

func runCall(log zerolog.Logger) {
	fs := flag.NewFlagSet("call", flag.ExitOnError)
	dataPath := fs.String("data", "", "Transactions CSV (local path or gs:// URI); sample data when empty")
	amqpURL := fs.String("amqp", "", "AMQP broker URL for data cards (overrides AMQP_URL)")
	fs.Parse(os.Args[2:])

	cfg := config.Load()
	if *dataPath == "" {
		*dataPath = cfg.DataPath
	}
	if *amqpURL != "" {
		cfg.AMQPURL = *amqpURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	coach := buildCoach(ctx, log, cfg, *dataPath)

	publisher := newCardPublisher(ctx, log, cfg)
	defer publisher.Close()

	coord := voice.NewCoordinator(coach, publisher, log)
	log.Info().Str("session_id", coord.SessionID()).Msg("Call session started")

	fmt.Printf("[greeting instruction] %s\n", voice.GreetingInstruction)
	fmt.Println("Speak by typing; Ctrl-D hangs up.")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			utterance := strings.TrimSpace(scanner.Text())
			if utterance == "" {
				continue
			}

			turns := []voice.LiveTurn{{
				ID:      uuid.NewString(),
				Role:    "user",
				Content: voice.TextContent(utterance),
			}}
			spoken, handled, err := coord.OnGenerate(gctx, turns)
			if err != nil {
				log.Error().Err(err).Msg("Turn failed")
				continue
			}
			if !handled {
				continue
			}
			fmt.Printf("\nCoach: %s\n\n", spoken)
		}
		return scanner.Err()
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("Call loop ended with error")
	}

	log.Info().Msg("Hanging up, flushing data cards")
	coord.Flush()
}

// newCardPublisher connects to the broker when one is configured, and
// falls back to an in-process publisher that prints cards to stdout.
func newCardPublisher(ctx context.Context, log zerolog.Logger, cfg *config.Config) sidechannel.Publisher {
	if cfg.AMQPURL != "" {
		pub, err := sidechannel.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.CardTopic, log)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.AMQPURL).Msg("Failed to connect to broker")
		}
		log.Info().Str("exchange", cfg.AMQPExchange).Str("topic", cfg.CardTopic).Msg("Publishing data cards over AMQP")
		return pub
	}

	pub := sidechannel.NewChannelPublisher(16)
	if err := pub.Start(ctx, func(card *sidechannel.Card) {
		payload, err := json.MarshalIndent(card, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode data card")
			return
		}
		fmt.Printf("\n[data card]\n%s\n", payload)
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to start card publisher")
	}
	return pub
}

// runListen is the receiving end of the side channel: it prints every
// card a concurrent call session publishes, the way a client surface
// would render them.
func runListen(log zerolog.Logger) {
	fs := flag.NewFlagSet("listen", flag.ExitOnError)
	amqpURL := fs.String("amqp", "", "AMQP broker URL (overrides AMQP_URL)")
	fs.Parse(os.Args[2:])

	cfg := config.Load()
	if *amqpURL != "" {
		cfg.AMQPURL = *amqpURL
	}
	if cfg.AMQPURL == "" {
		log.Fatal().Msg("Error: an AMQP URL is required (set AMQP_URL or pass -amqp)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pub, err := sidechannel.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.CardTopic, log)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.AMQPURL).Msg("Failed to connect to broker")
	}
	defer pub.Close()

	log.Info().Str("topic", cfg.CardTopic).Msg("Listening for data cards")

	err = pub.ConsumeCards(ctx, func(card *sidechannel.Card) error {
		payload, err := json.MarshalIndent(card, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("\n[%s] session %s\n%s\n", card.Timestamp.Format(time.RFC3339), card.SessionID, payload)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("Consumer stopped")
	}
}

func runInspect(log zerolog.Logger) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dataPath := fs.String("data", "", "Transactions CSV (local path or gs:// URI); sample data when empty")
	fs.Parse(os.Args[2:])

	cfg := config.Load()
	if *dataPath == "" {
		*dataPath = cfg.DataPath
	}

	ctx := logger.WithContext(context.Background(), log)
	txns := loadTransactions(ctx, log, *dataPath)

	analyzer, err := analysis.New(txns)
	if err != nil {
		log.Fatal().Err(err).Msg("Transaction data failed validation")
	}

	registry := agent.NewRegistry(analyzer)
	for _, name := range []string{
		"get_spending_summary",
		"get_income_analysis",
		"get_debt_analysis",
		"identify_spending_issues",
		"get_budget_recommendations",
	} {
		out, err := registry.Execute(name)
		if err != nil {
			log.Fatal().Err(err).Str("report", name).Msg("Report failed")
		}
		fmt.Printf("\n=== %s ===\n%s\n", name, out)
	}
}
