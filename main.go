package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/arpitverma/loanflow/agent/agents/orchestrator"
	"github.com/arpitverma/loanflow/agent/prompt"
	"github.com/arpitverma/loanflow/agent/sanction"
	statex "github.com/arpitverma/loanflow/agent/state"
	"github.com/arpitverma/loanflow/agent/underwrite"
	configx "github.com/arpitverma/loanflow/pkg/config"
	_ "github.com/arpitverma/loanflow/pkg/logger/autoload"
)

type AppConfig struct {
	StoreBackend string `envconfig:"STORE_BACKEND" default:"memory"`
	LenderName   string `envconfig:"LENDER_NAME" default:""`
	BureauSeed   int64  `envconfig:"BUREAU_SEED" default:"0"`
	ApplicantID  string `envconfig:"APPLICANT_ID" default:""`
}

// Canned quick-intent turns, submitted verbatim as if typed.
var shortcuts = map[string]string{
	":holiday":  "I need a loan for holiday travel",
	":marriage": "I need a loan for marriage",
	":medical":  "I need a loan for medical expenses",
}

func main() {
	cfg := configx.MustNew[AppConfig]("LOANFLOW")

	store, cleanup := buildStore(cfg.StoreBackend)
	defer cleanup()

	orch, err := orchestrator.New(
		store,
		underwrite.NewRandomBureau(cfg.BureauSeed),
		sanction.NewRenderer(cfg.LenderName),
		prompt.MustLoad(),
		orchestrator.Config{ApplicantID: cfg.ApplicantID, ChannelType: "cli"},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	sessionID := uuid.NewString()
	ctx := context.Background()

	fmt.Println("Loan application assistant. Type a message, or:")
	fmt.Println("  :holiday | :marriage | :medical   quick loan requests")
	fmt.Println("  :history                          show the conversation")
	fmt.Println("  :letter <path>                    save the sanction letter")
	fmt.Println("  :reset                            start a new application")
	fmt.Println("  :quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if canned, ok := shortcuts[line]; ok {
			fmt.Println("you:", canned)
			line = canned
		}

		switch {
		case line == ":quit" || line == ":exit":
			return

		case line == ":reset":
			if err := orch.Reset(ctx, sessionID); err != nil {
				log.Warn().Err(err).Msg("reset failed")
				continue
			}
			fmt.Println("Started a new application.")

		case line == ":history":
			printHistory(ctx, orch, sessionID)

		case strings.HasPrefix(line, ":letter"):
			saveLetter(ctx, orch, sessionID, strings.TrimSpace(strings.TrimPrefix(line, ":letter")))

		default:
			reply, err := orch.HandleMessage(ctx, sessionID, line)
			if err != nil {
				log.Warn().Err(err).Msg("turn failed")
				continue
			}
			fmt.Printf("[%s] %s\n", reply.Stage, reply.Message)
			if len(reply.Artifact) > 0 {
				fmt.Println("(sanction letter rendered; use :letter <path> to save it)")
			}
		}
	}
}

func buildStore(backend string) (statex.Store, func()) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "memory":
		return statex.NewMemoryStore(), func() {}

	case "redis":
		cfg := configx.MustNew[statex.RedisStoreConfig]("LOANFLOW_REDIS")
		store, err := statex.NewRedisStore(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build redis store")
		}
		return store, func() {}

	case "postgres":
		cfg := configx.MustNew[statex.PostgresStoreConfig]("LOANFLOW_POSTGRES")
		store, err := statex.NewPostgresStore(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build postgres store")
		}
		if err := store.Init(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to init postgres store")
		}
		return store, func() { _ = store.Close() }

	default:
		log.Fatal().Str("backend", backend).Msg("unknown store backend")
		return nil, nil
	}
}

func printHistory(ctx context.Context, orch *orchestrator.Orchestrator, sessionID string) {
	turns, err := orch.History(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("history unavailable")
		return
	}
	for _, turn := range turns {
		if turn.Role == statex.RoleAgent {
			fmt.Printf("agent(%s): %s\n", turn.Stage, turn.Content)
		} else {
			fmt.Printf("user: %s\n", turn.Content)
		}
	}
}

func saveLetter(ctx context.Context, orch *orchestrator.Orchestrator, sessionID, path string) {
	if path == "" {
		fmt.Println("usage: :letter <path>")
		return
	}
	artifact, err := orch.Artifact(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("sanction letter unavailable")
		return
	}
	if err := os.WriteFile(path, artifact, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to write sanction letter")
		return
	}
	fmt.Println("Sanction letter saved to", path)
}
