// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/rankfuse"
	"github.com/poiesic/rankfuse/ai"
	"github.com/poiesic/rankfuse/backend/opensearch"
	"github.com/poiesic/rankfuse/core"
	"github.com/poiesic/rankfuse/ingestion"
	"github.com/poiesic/rankfuse/search"
)

func main() {
	app := &cli.App{
		Name:  "rankfuse",
		Usage: "Hybrid fusion-and-rerank document search over OpenSearch",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "opensearch",
				Usage: "OpenSearch cluster URL",
				Value: "http://localhost:9200",
			},
			&cli.StringFlag{
				Name:  "ai-host",
				Usage: "OpenAI-compatible service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
			&cli.StringFlag{
				Name:  "extractor-model",
				Usage: "Keyword extraction model name",
				Value: "qwen2.5:3b",
			},
			&cli.StringFlag{
				Name:  "rerank-model",
				Usage: "Cross-encoder rerank model name",
				Value: "bge-reranker-v2-m3",
			},
			&cli.StringFlag{
				Name:  "cache",
				Usage: "Directory for the persistent query-embedding cache (in-memory if empty)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "init-index",
				Usage:  "Create the document index with the hybrid-search mapping",
				Action: initIndexCommand,
				Flags: []cli.Flag{
					indexFlag(),
					&cli.IntFlag{
						Name:  "dimension",
						Usage: "Embedding vector dimension (probed from the embedder if 0)",
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Load JSONL documents, embed their contents and index them",
				Action: ingestCommand,
				Flags: []cli.Flag{
					indexFlag(),
					&cli.StringFlag{
						Name:     "glob",
						Usage:    "Glob pattern of JSONL files to ingest",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Documents per embedding call",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Embedding worker pool size",
						Value: 4,
					},
				},
			},
			{
				Name:   "pipeline-create",
				Usage:  "Create or update the server-side fusion search pipeline",
				Action: pipelineCreateCommand,
				Flags: []cli.Flag{
					pipelineFlag(),
					&cli.Float64Flag{
						Name:  "lexical-weight",
						Usage: "Weight of the lexical channel",
						Value: 0.3,
					},
					&cli.Float64Flag{
						Name:  "vector-weight",
						Usage: "Weight of the vector channel",
						Value: 0.7,
					},
				},
			},
			{
				Name:   "pipeline-delete",
				Usage:  "Delete the server-side fusion search pipeline",
				Action: pipelineDeleteCommand,
				Flags:  []cli.Flag{pipelineFlag()},
			},
			{
				Name:      "search",
				Usage:     "Run a hybrid search query",
				Action:    searchCommand,
				ArgsUsage: "QUERY",
				Flags: []cli.Flag{
					indexFlag(),
					&cli.StringFlag{
						Name:  "pipeline",
						Usage: "Delegate fusion to this server-side search pipeline",
					},
					&cli.Float64Flag{
						Name:  "lexical-weight",
						Usage: "Weight of the lexical channel",
						Value: 0.3,
					},
					&cli.Float64Flag{
						Name:  "vector-weight",
						Usage: "Weight of the vector channel",
						Value: 0.7,
					},
					&cli.IntFlag{
						Name:  "size",
						Usage: "Candidates per retrieval channel",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Records surviving fusion",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "rerank-top-k",
						Usage: "Records returned after reranking",
						Value: 3,
					},
					&cli.BoolFlag{
						Name:  "no-rerank",
						Usage: "Skip the cross-encoder stage",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func indexFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "index",
		Aliases: []string{"i"},
		Usage:   "Document index name",
		Value:   "regulations",
	}
}

func pipelineFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "id",
		Usage: "Search pipeline id",
		Value: "hybrid-minmax-pipeline",
	}
}

func newEngine(c *cli.Context) (*rankfuse.Engine, error) {
	opts := []rankfuse.EngineOption{
		rankfuse.WithBackendConfig(opensearch.NewConfig(
			opensearch.WithAddresses(c.String("opensearch")),
		)),
		rankfuse.WithAIConfig(ai.NewConfig(
			ai.WithHost(c.String("ai-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithExtractorModel(c.String("extractor-model")),
			ai.WithRerankModel(c.String("rerank-model")),
		)),
	}
	if cache := c.String("cache"); cache != "" {
		opts = append(opts, rankfuse.WithCachePath(cache))
	}
	return rankfuse.NewEngine(opts...)
}

func initIndexCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	dimension := c.Int("dimension")
	if dimension == 0 {
		pipeline, err := engine.NewIngestionPipeline()
		if err != nil {
			return err
		}
		defer pipeline.Release()

		dimension, err = pipeline.VectorDimension(ctx)
		if err != nil {
			return fmt.Errorf("failed to probe embedding dimension: %w", err)
		}
	}

	index := c.String("index")
	if err := engine.Backend().EnsureIndex(ctx, index, dimension); err != nil {
		return err
	}

	fmt.Printf("Index %q ready (dimension %d)\n", index, dimension)
	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	docs, err := ingestion.LoadJSONLGlob(c.String("glob"))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents matched %q", c.String("glob"))
	}

	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	pipeline, err := engine.NewIngestionPipeline(
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithPoolSize(c.Int("workers")),
	)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	index := c.String("index")
	dimension, err := pipeline.VectorDimension(ctx)
	if err != nil {
		return fmt.Errorf("failed to probe embedding dimension: %w", err)
	}
	if err := engine.Backend().EnsureIndex(ctx, index, dimension); err != nil {
		return err
	}

	if err := pipeline.Ingest(ctx, index, docs); err != nil {
		return err
	}

	fmt.Printf("Indexed %d documents into %q\n", len(docs), index)
	return nil
}

func pipelineCreateCommand(c *cli.Context) error {
	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	id := c.String("id")
	err = engine.Backend().EnsurePipeline(context.Background(), id,
		c.Float64("lexical-weight"), c.Float64("vector-weight"))
	if err != nil {
		return err
	}

	fmt.Printf("Search pipeline %q ready\n", id)
	return nil
}

func pipelineDeleteCommand(c *cli.Context) error {
	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	id := c.String("id")
	if err := engine.Backend().DeletePipeline(context.Background(), id); err != nil {
		return err
	}

	fmt.Printf("Search pipeline %q deleted\n", id)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := []search.Option{
		search.WithWeights(c.Float64("lexical-weight"), c.Float64("vector-weight")),
		search.WithChannelSize(c.Int("size")),
		search.WithTopK(c.Int("top-k")),
		search.WithRerankTopK(c.Int("rerank-top-k")),
	}
	if c.Bool("no-rerank") {
		opts = append(opts, search.WithoutRerank())
	}

	searcher, err := engine.NewSearcher(opts...)
	if err != nil {
		return err
	}
	defer searcher.Close()

	ctx := context.Background()
	index := c.String("index")

	var results []core.FusedRecord
	if pipeline := c.String("pipeline"); pipeline != "" {
		results, err = searcher.SearchWithPipeline(ctx, index, pipeline, query)
	} else {
		results, err = searcher.Search(ctx, index, query)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, record := range results {
		score := record.Combined
		label := "combined"
		if record.Reranked {
			score = record.RerankScore
			label = "rerank"
		}
		fmt.Printf("%d: %s / %s / %s (%s %.4f)\n", i+1,
			record.Doc.Title, record.Doc.Chapter, record.Doc.Article, label, score)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
