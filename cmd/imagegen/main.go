package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/basel-ax/imagegen/internal/config"
	"github.com/basel-ax/imagegen/internal/domain"
	"github.com/basel-ax/imagegen/internal/infrastructure/genapi"
	"github.com/basel-ax/imagegen/internal/repository"
	"github.com/basel-ax/imagegen/internal/repository/kv"
	"github.com/basel-ax/imagegen/internal/service"
	"github.com/robfig/cron/v3"
)

const (
	maxPromptLength = 999
)

// truncatePrompt safely truncates a string to the specified length while preserving UTF-8 characters
func truncatePrompt(s string, length int) string {
	if utf8.RuneCountInString(s) <= length {
		return s
	}

	var size, n int
	for i := 0; i < length && n < len(s); i++ {
		_, size = utf8.DecodeRuneInString(s[n:])
		n += size
	}

	return s[:n]
}

func main() {
	// Parse command line flags
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	prompt := flag.String("prompt", "", "Prompt to generate images for")
	modelName := flag.String("model", "", "Model variant (dreamshaper, proteus, playground)")
	list := flag.Bool("list", false, "List generated images, newest first")
	favourite := flag.String("favourite", "", "Toggle the favourite flag of the image with this id")
	export := flag.String("export", "", "Export generated images as YAML to this file ('-' for stdout)")
	schedule := flag.String("cron", "", "Generate for -prompt on this cron schedule (with seconds field)")
	flag.Parse()

	// Configure logging
	if *verbose {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("Verbose logging enabled")
	} else {
		log.SetFlags(log.Ldate | log.Ltime)
	}

	if *prompt == "" && !*list && *favourite == "" && *export == "" {
		log.Fatal("Please specify an action: -prompt, -list, -favourite or -export")
	}
	if *schedule != "" && *prompt == "" {
		log.Fatal("-cron requires -prompt")
	}

	// Load configuration
	log.Println("Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully")

	model, err := domain.ParseModelVariant(cfg.DefaultModel)
	if *modelName != "" {
		model, err = domain.ParseModelVariant(*modelName)
	}
	if err != nil {
		log.Fatalf("Invalid model: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating shutdown...", sig)
		cancel()
	}()

	log.Printf("Opening %s storage...", cfg.Storage.Backend)
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	repo := repository.NewKVArtifactRepository(store, cfg.Storage.Key)

	policy := service.AllOrNothing
	if cfg.BestEffort {
		policy = service.BestEffort
	}
	client := genapi.NewClient(cfg.APIURL, cfg.APIKey, cfg.RequestTimeout)
	orchestrator := service.NewOrchestrator(client, cfg.Preferences(), service.WithPolicy(policy))
	session := service.NewSession(orchestrator, repo)

	if *favourite != "" {
		a, err := repo.ToggleFavourite(ctx, *favourite)
		if err != nil {
			log.Fatalf("Failed to toggle favourite: %v", err)
		}
		log.Printf("Image %s favourite: %t", a.ID, a.Favourite)
	}

	if *prompt != "" {
		p := truncatePrompt(*prompt, maxPromptLength)
		if len(p) != len(*prompt) {
			log.Printf("Prompt was truncated from %d to %d characters", utf8.RuneCountInString(*prompt), maxPromptLength)
		}

		if *schedule != "" {
			log.Println("Starting scheduled generation...")
			if err := startCronGeneration(ctx, session, *schedule, p, model); err != nil {
				log.Fatalf("Failed to schedule generation: %v", err)
			}
		} else if err := runGeneration(ctx, session, p, model); err != nil {
			log.Fatalf("Generation failed: %v", err)
		}
	}

	if *list {
		artifacts, err := repo.ReadAllSorted(ctx)
		if err != nil {
			log.Fatalf("Failed to read images: %v", err)
		}
		printArtifacts(os.Stdout, artifacts)
	}

	if *export != "" {
		if err := exportArtifacts(ctx, repo, *export); err != nil {
			log.Fatalf("Failed to export images: %v", err)
		}
	}
}

// openStore returns the configured key-value backing and its close function
func openStore(ctx context.Context, cfg *config.Config) (kv.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return kv.NewMemoryStore(), func() {}, nil
	case config.BackendFile:
		s, err := kv.NewFileStore(cfg.Storage.Path)
		return s, func() {}, err
	case config.BackendSQLite:
		s, err := kv.OpenSQLite(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case config.BackendPostgres:
		s, err := kv.OpenPostgres(ctx, cfg.GetDSN(), kv.PoolConfig{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

// runGeneration runs one batch through the session and reports the outcome
func runGeneration(ctx context.Context, session *service.Session, prompt string, model domain.ModelVariant) error {
	log.Printf("Generating images for prompt: %s", prompt)
	session.Generate(ctx, prompt, model)
	session.Wait()

	state := session.State()
	defer session.Reset()
	if state.Err != "" {
		return errors.New(state.Err)
	}
	for _, a := range state.Artifacts {
		log.Printf("Generated image %s: %s", a.ID, a.URL)
	}
	return nil
}

func startCronGeneration(ctx context.Context, session *service.Session, schedule, prompt string, model domain.ModelVariant) error {
	// Create a new cron scheduler
	c := cron.New(cron.WithSeconds())

	var cronMutex sync.Mutex

	_, err := c.AddFunc(schedule, func() {
		log.Println("[CRON] Attempting to start scheduled generation...")
		cronMutex.Lock()
		defer cronMutex.Unlock()
		log.Println("[CRON] Running scheduled generation...")
		if err := runGeneration(ctx, session, prompt, model); err != nil {
			log.Printf("[CRON] Generation failed: %v", err)
			return
		}
		log.Println("[CRON] Finished scheduled generation.")
	})
	if err != nil {
		return err
	}

	// Start the cron scheduler
	c.Start()
	log.Println("Cron scheduler started successfully")

	// Keep the scheduler running until context is cancelled
	<-ctx.Done()
	<-c.Stop().Done()
	log.Println("Cron scheduler stopped")
	return nil
}

func printArtifacts(w io.Writer, artifacts []domain.GeneratedArtifact) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tMODEL\tFAV\tPROMPT\tURL")
	for _, a := range artifacts {
		fav := ""
		if a.Favourite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.CreatedOn.Local().Format(time.DateTime), a.Config.Model, fav, a.Config.Prompt, a.URL)
	}
	tw.Flush()
}

func exportArtifacts(ctx context.Context, repo repository.ArtifactRepository, path string) error {
	artifacts, err := repo.ReadAllSorted(ctx)
	if err != nil {
		return err
	}
	if path == "-" {
		return repository.ExportYAML(os.Stdout, artifacts)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := repository.ExportYAML(f, artifacts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Exported %d image(s) to %s", len(artifacts), path)
	return nil
}
