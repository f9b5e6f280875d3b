package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"reelsmith/api"
	"reelsmith/cache"
	"reelsmith/config"
	"reelsmith/janitor"
	"reelsmith/kafka"
	"reelsmith/media"
	"reelsmith/prompts"
	"reelsmith/storage"
	"reelsmith/store"
	"reelsmith/tts"
	"reelsmith/videogen"
	"reelsmith/workflow"
)

func main() {
	_ = godotenv.Load()

	port := flag.String("port", config.GetEnv("PORT", "8000"), "HTTP API port")
	dbPath := flag.String("db", config.GetEnv("DB_PATH", "reelsmith.db"), "sqlite database path")
	cronSchedule := flag.String("cron", config.GetEnv("CRON_SCHEDULE", "*/10 * * * *"), "Cron schedule for maintenance runs")
	flag.Parse()

	if err := config.EnsureTempDirs(); err != nil {
		log.Fatalf("Failed to create temp directories: %v", err)
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	deps := api.Deps{Store: st}

	// Object storage
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		objects, err := storage.New(context.Background(), storage.Config{
			Bucket:        bucket,
			Region:        os.Getenv("AWS_REGION"),
			Profile:       os.Getenv("AWS_PROFILE"),
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			UsePathStyle:  os.Getenv("S3_PATH_STYLE") == "true",
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		})
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		deps.Objects = objects
	} else {
		log.Println("S3_BUCKET not set; object storage endpoints disabled")
	}

	// Prompt analysis
	var analyzer *prompts.Analyzer
	if apiKey := os.Getenv("COHERE_API_KEY"); apiKey != "" {
		analyzer, err = prompts.NewAnalyzer(apiKey, os.Getenv("COHERE_MODEL"))
		if err != nil {
			log.Fatalf("Failed to initialize prompt analyzer: %v", err)
		}
		deps.Analyzer = analyzer
	} else {
		log.Println("COHERE_API_KEY not set; prompt analysis disabled")
	}

	// Text-to-speech
	if credFile := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"); credFile != "" {
		speech, err := tts.NewService(context.Background(), credFile, st)
		if err != nil {
			log.Fatalf("Failed to initialize text-to-speech: %v", err)
		}
		deps.TTS = speech
	} else {
		log.Println("GOOGLE_SERVICE_ACCOUNT_FILE not set; text-to-speech disabled")
	}

	// Media post-processing
	composer, err := media.NewComposer()
	if err != nil {
		log.Fatalf("Failed to initialize media composer: %v", err)
	}
	deps.Media = composer

	// Redis status cache (optional; jobs still work from in-process state)
	var statusCache *cache.StatusCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		statusCache = cache.New(cache.RedisConfig{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := statusCache.Ping(context.Background()); err != nil {
			log.Printf("Redis unreachable (%v); job status will be in-process only", err)
			statusCache.Close()
			statusCache = nil
		}
	}

	var sink workflow.StatusSink
	if statusCache != nil {
		sink = statusCache
		deps.Cache = statusCache
	}
	manager := workflow.NewManager(sink)
	deps.Manager = manager

	// Video generation
	var gen *videogen.Client
	if apiKey := os.Getenv("VIDEO_API_KEY"); apiKey != "" {
		gen = videogen.NewClient(config.GetEnv("VIDEO_API_BASE_URL", config.DefaultGenerationBaseURL), apiKey)
	} else {
		log.Println("VIDEO_API_KEY not set; video generation disabled")
	}
	var runner *workflow.Runner
	if gen != nil && analyzer != nil && deps.Objects != nil {
		runner = workflow.NewRunner(manager, analyzer, gen, deps.Objects, st)
		deps.Runner = runner
	}

	// Kafka intake for generation requests
	var consumer *kafka.Consumer
	if runner != nil {
		brokers := strings.Split(config.GetEnv("KAFKA_BOOTSTRAP_SERVERS", "kafka:9092"), ",")
		consumer, err = kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: brokers,
			Topic:   config.GetEnv("KAFKA_TOPIC", "generation-requests"),
			GroupID: config.GetEnv("KAFKA_GROUP_ID", "reelsmith-consumer-group"),
			Handler: kafka.NewGenerationHandler(manager, runner),
		})
		if err != nil {
			log.Printf("Failed to create Kafka consumer: %v", err)
		} else if err := consumer.Start(context.Background()); err != nil {
			log.Printf("Failed to start Kafka consumer: %v", err)
			consumer = nil
		}
	}

	// Cron maintenance
	var maint *janitor.Janitor
	if gen != nil {
		maint = janitor.New(st, gen)
		if err := maint.Start(*cronSchedule); err != nil {
			log.Fatalf("Failed to start maintenance cron: %v", err)
		}
	}

	router := api.NewRouter(deps)
	server := &http.Server{
		Addr:    ":" + *port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	fmt.Printf("reelsmith\n")
	fmt.Printf("   API:           http://0.0.0.0:%s\n", *port)
	fmt.Printf("   Database:      %s\n", *dbPath)
	fmt.Printf("   Cron Schedule: %s\n", *cronSchedule)
	fmt.Println("\nPress Ctrl+C to shutdown")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Printf("Kafka consumer close error: %v", err)
		}
	}
	if maint != nil {
		maint.Stop()
	}
	if statusCache != nil {
		statusCache.Close()
	}
	fmt.Println("Server stopped")
}
