package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ai-processor/internal/budget"
	"ai-processor/internal/config"
	"ai-processor/internal/db"
	"ai-processor/internal/helper"
	"ai-processor/internal/llmservice"
	"ai-processor/internal/loader"
	"ai-processor/internal/models"
	"ai-processor/internal/processor"
	"ai-processor/internal/rag"
	"ai-processor/internal/splitter"
	"ai-processor/internal/store"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	filePath := flag.String("file", "", "Path to the document file")
	mode := flag.String("mode", "chat", "Processing mode: chat or embed")
	query := flag.String("search", "", "Query to answer from stored embeddings")
	dryRun := flag.Bool("dry-run", false, "Dry run, do not save to database")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if cfg.LogLevel != "" {
		if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	}

	ctx := context.Background()
	switch {
	case *query != "":
		searchDocuments(ctx, cfg, *query)
	case *filePath != "" && *mode == "chat":
		chatDocument(ctx, cfg, *filePath)
	case *filePath != "" && *mode == "embed":
		embedDocument(ctx, cfg, *filePath, *dryRun)
	default:
		log.Fatal().Msg("Please provide a document file using the -file flag or a query using the -search flag")
	}
}

// chatDocument runs the sequential chat pipeline over one document and
// prints the per-chunk results.
func chatDocument(ctx context.Context, cfg *config.Config, filePath string) {
	content, err := loader.Load(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading document")
	}

	client, err := llmservice.NewOpenAI(&cfg.Connection, cfg.Model.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing model client")
	}

	proc, err := processor.NewChat(cfg.Model.Name, cfg.Model.MaxTokens, cfg.Model.ResponseRatio, client)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat processor")
	}

	outcome, err := proc.Process(ctx, content, cfg.Prompts, cfg.Options)
	if err != nil {
		log.Fatal().Err(err).Msg("Error processing document")
	}

	helper.PrettyPrint(outcome)
}

// embedDocument splits one document against the embedder's token budget,
// embeds every chunk and persists the vectors.
func embedDocument(ctx context.Context, cfg *config.Config, filePath string, dryRun bool) {
	content, err := loader.Load(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading document")
	}

	client, err := newEmbedderClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	chunkSize, err := budget.ChunkSize(cfg.Embedder.MaxTokens, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Error computing chunk size")
	}
	chunks, err := splitter.New(chunkSize).Split(content, "", false)
	if err != nil {
		log.Fatal().Err(err).Msg("Error splitting document")
	}

	proc, err := processor.NewEmbeddings(cfg.Embedder.Model, cfg.Embedder.MaxTokens, client)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embeddings processor")
	}
	outcome, err := proc.Process(ctx, chunks)
	if err != nil {
		log.Fatal().Err(err).Msg("Error embedding document")
	}
	log.Info().Msgf("Embedded %d chunks from %s", len(outcome.Results), filePath)

	if dryRun {
		return
	}

	source := filepath.Base(filePath)
	storeResults(ctx, cfg, source, outcome.Results)
}

func storeResults(ctx context.Context, cfg *config.Config, source string, results []models.Result) {
	if err := helper.CreateFolder(cfg.Store.Path); err != nil {
		log.Fatal().Err(err).Msg("Error creating folder")
	}

	vs, err := store.NewVectorStore(&cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}
	if _, err := vs.GetOrCreateCollection(cfg.Store.Collection); err != nil {
		log.Fatal().Err(err).Msg("Error creating collection")
	}
	if err := vs.AddResults(ctx, source, results); err != nil {
		log.Fatal().Err(err).Msg("Error adding results to vector store")
	}
	if cfg.Store.InMemory {
		if err := vs.Export(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error exporting collection")
		}
	}

	if cfg.Database.URL == "" {
		return
	}

	sqldb, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	dbInstance := db.NewDB(sqldb, cfg.Database.Debug)
	defer dbInstance.Close()

	if err := db.InitDB(ctx, dbInstance); err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
	}

	docs := make([]db.Document, len(results))
	for i, res := range results {
		docs[i] = db.Document{
			Content:        res.InputText,
			Embedding:      res.Embedding,
			SourceFilename: source,
			ChunkID:        res.Index,
		}
	}
	if err := db.StoreDocuments(ctx, dbInstance, docs); err != nil {
		log.Fatal().Err(err).Msg("Error storing documents")
	}
}

// searchDocuments answers a query from the stored embeddings with one
// grounded chat call.
func searchDocuments(ctx context.Context, cfg *config.Config, query string) {
	vs, err := store.NewVectorStore(&cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}
	if _, err := vs.GetOrCreateCollection(cfg.Store.Collection); err != nil {
		log.Fatal().Err(err).Msg("Error creating collection")
	}

	embedClient, err := newEmbedderClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	chatClient, err := llmservice.NewOpenAI(&cfg.Connection, cfg.Model.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing model client")
	}

	r := rag.NewRAG(vs, embedClient, chatClient, cfg.Model.MaxTokens)
	response, err := r.Query(ctx, query, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Query)

	log.Info().Msg("Source: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Source)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Content)
}

func newEmbedderClient(cfg *config.Config) (*llmservice.Client, error) {
	if cfg.Embedder.Provider == "ollama" {
		return llmservice.NewOllama(&cfg.Embedder)
	}
	conn := config.Connection{Endpoint: cfg.Embedder.BaseURL, APIKey: cfg.Embedder.Key}
	return llmservice.NewOpenAI(&conn, cfg.Embedder.Model)
}
