// cmd/triage/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"merchant-triage/internal/checks"
	"merchant-triage/internal/clients/gitea"
	"merchant-triage/internal/clients/osm"
	"merchant-triage/internal/clients/scraper"
	"merchant-triage/internal/common/aws"
	"merchant-triage/internal/common/config"
	"merchant-triage/internal/common/database"
	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/common/observability"
	"merchant-triage/internal/extract"
	"merchant-triage/internal/models"
	"merchant-triage/internal/outreach"
	"merchant-triage/internal/pipeline"
	"merchant-triage/internal/scoring"
	"merchant-triage/internal/store/archive"
	outreachstore "merchant-triage/internal/store/outreach"
	"merchant-triage/internal/store/search"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults to configs/config.yaml)")
	batchSize := flag.Int("issues", 0, "number of issues to process (defaults to batch.default_size)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting merchant triage...")

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Issue tracker client ---
	giteaClient, err := gitea.NewClient(cfg.Gitea, cfg.RateLimiting, log)
	if err != nil {
		zapLog.Fatal("gitea client init failed", zap.Error(err))
	}

	// --- Collaborators ---
	osmClient := osm.NewClient(cfg.OSM, log)
	siteScraper := scraper.New(config.GetDuration(cfg.OSM.Timeout), log)

	// --- Optional outreach delivery ---
	var emailSender outreach.EmailSender
	if cfg.Integrations.AWS.SES.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SES.FromEmail)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		emailSender = sesClient
		zapLog.Info("SES email delivery enabled")
	}

	// --- Optional outreach observation store (Redis) ---
	var observations outreach.ObservationStore
	var redisClient *database.RedisClient
	if cfg.Database.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		observations = outreachstore.NewStore(redisClient.Client)
		zapLog.Info("Redis observation store connected")
	}

	// --- Optional result sinks ---
	var sinks []pipeline.ResultSink

	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		archiveStore := archive.NewStore(pg.DB, log)
		if err := archiveStore.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("archive schema init failed", zap.Error(err))
		}
		sinks = append(sinks, pipeline.SinkFunc(archiveStore.SaveResult))
		zapLog.Info("PostgreSQL archive connected")
	}

	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}

		indexer := search.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.Index, log)
		sinks = append(sinks, pipeline.SinkFunc(indexer.IndexResult))
		zapLog.Info("Elasticsearch indexer connected")
	}

	// --- Metrics endpoint ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Metrics endpoint listening", zap.String("addr", cfg.App.MetricsAddr))
		if err := http.ListenAndServe(cfg.App.MetricsAddr, nil); err != nil {
			zapLog.Warn("metrics endpoint stopped", zap.Error(err))
		}
	}()

	// --- Wire the pipeline ---
	extractor := extract.New(log)
	battery := checks.NewBattery(cfg, osmClient, siteScraper, obs, log)
	coordinator := outreach.NewCoordinator(cfg.Outreach, cfg.Verification.Phase2Weights, emailSender, observations, log)
	scorer := scoring.NewScorer(cfg.Verification)

	p := pipeline.New(cfg, giteaClient, extractor, battery, coordinator, scorer, obs, sinks, log)

	summary, results, err := p.Run(ctx, *batchSize)
	if err != nil {
		zapLog.Fatal("triage run failed", zap.Error(err))
	}

	printSummary(summary, results)

	// --- Optional summary publication ---
	if cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(context.Background(), cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SNS.SummaryTopicARN)
		if err != nil {
			zapLog.Warn("sns client init failed", zap.Error(err))
		} else if err := snsClient.PublishSummary(context.Background(), summary); err != nil {
			zapLog.Warn("summary publication failed", zap.Error(err))
		}
	}
}

func printSummary(summary *models.BatchSummary, results []*models.TriageResult) {
	fmt.Println()
	fmt.Println("============================================================")
	fmt.Println("PROCESSING COMPLETE")
	fmt.Println("============================================================")
	fmt.Printf("\nTotal Issues Processed: %d\n", summary.Processed)
	fmt.Printf("Successful: %d\n", summary.Processed-summary.Errors)
	fmt.Printf("Errors: %d\n", summary.Errors)

	recommendations := map[string]int{}
	for _, r := range results {
		if r.Recommendation != "" {
			recommendations[r.Recommendation]++
		}
	}
	if len(recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		keys := make([]string, 0, len(recommendations))
		for k := range recommendations {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  - %s: %d\n", k, recommendations[k])
		}
	}

	fmt.Println("\n============================================================")
}
