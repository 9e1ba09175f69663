package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/qs3c/paywall_go_server/config"
	"github.com/qs3c/paywall_go_server/internal/database"
	"github.com/qs3c/paywall_go_server/internal/pkg/cron"
	"github.com/qs3c/paywall_go_server/internal/pkg/oss"
	"github.com/qs3c/paywall_go_server/internal/pkg/queue"
	"github.com/qs3c/paywall_go_server/internal/repository"
)

var (
	dryRun      = flag.Bool("dry-run", true, "Only report expired contents, don't deactivate or delete")
	retryDelete = flag.Bool("retry-delete", false, "Also drain the blob delete retry queue")
)

func main() {
	flag.Parse()

	log.Println("Starting expiry sweep...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	contentRepo := repository.NewContentRepository(db)
	now := time.Now().UTC()

	if *dryRun {
		expired, err := contentRepo.ListExpired(now)
		if err != nil {
			log.Fatalf("Failed to list expired contents: %v", err)
		}

		log.Println(strings.Repeat("=", 60))
		log.Printf("Found %d expired contents:", len(expired))
		for _, c := range expired {
			log.Printf("  - %s %q (expired %s, creator %d)",
				c.ID, c.Title, c.ExpiresAt.Format("2006-01-02"), c.CreatorID)
		}
		log.Println("DRY RUN MODE - nothing was deactivated or deleted")
		log.Println("Run with -dry-run=false to apply")
		log.Println(strings.Repeat("=", 60))
		return
	}

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}

	var blobStore cron.BlobStore
	if cfg.OSS.Endpoint != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Fatalf("Failed to init OSS client: %v", err)
		}
		blobStore = ossClient
	} else {
		log.Println("OSS not configured, skipping media deletion")
	}

	retryQueue := queue.NewDeleteRetryQueue(rdb, cfg.Queue.BlobDeleteQueue)
	sweeper := cron.NewService(contentRepo, blobStore, retryQueue)

	swept, err := sweeper.SweepExpired(now)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
	log.Printf("Deactivated %d expired contents", swept)

	if *retryDelete {
		log.Println("Draining blob delete retry queue...")
		sweeper.DrainDeleteRetries()
	}

	log.Println("Sweep completed")
}
