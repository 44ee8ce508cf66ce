package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/poiesic/rankfuse"
	"github.com/poiesic/rankfuse/core"
)

var demoCorpus = []*core.Document{
	{Title: "Employment Rules", Chapter: "Chapter 1 General Provisions", Article: "Article 1 Purpose", Content: "These rules establish the working conditions and service discipline of all employees."},
	{Title: "Employment Rules", Chapter: "Chapter 1 General Provisions", Article: "Article 3 Scope", Content: "These rules apply to every employee unless a separate contract provides otherwise."},
	{Title: "Employment Rules", Chapter: "Chapter 2 Employment", Article: "Article 7 Probation", Content: "A newly hired employee serves a probation period of three months from the date of joining."},
	{Title: "Employment Rules", Chapter: "Chapter 3 Working Hours", Article: "Article 12 Hours of Work", Content: "Regular working hours are eight hours per day and forty hours per week, excluding breaks."},
	{Title: "Employment Rules", Chapter: "Chapter 3 Working Hours", Article: "Article 14 Overtime", Content: "Overtime work requires prior approval and is compensated at one and a half times the regular wage."},
	{Title: "Employment Rules", Chapter: "Chapter 4 Leave", Article: "Article 18 Annual Leave", Content: "An employee who has worked at least eighty percent of a year is granted fifteen days of paid annual leave."},
	{Title: "Employment Rules", Chapter: "Chapter 4 Leave", Article: "Article 20 Sick Leave", Content: "Paid sick leave of up to sixty days may be granted with a medical certificate."},
	{Title: "Safety Management Rules", Chapter: "Chapter 1 General", Article: "Article 2 Responsibility", Content: "The safety manager oversees workplace hazard inspections and incident reporting."},
	{Title: "Safety Management Rules", Chapter: "Chapter 2 Training", Article: "Article 9 Safety Training", Content: "All employees receive safety training twice a year, and new employees within one week of joining."},
	{Title: "Document Control Rules", Chapter: "Chapter 2 Retention", Article: "Article 5 Retention Periods", Content: "Quality records are retained for five years and training records for three years."},
}

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	index := flag.String("index", "regulations", "document index name")
	pipeline := flag.String("pipeline", "hybrid-minmax-pipeline", "search pipeline id")
	flag.Parse()

	engine, err := rankfuse.NewEngine()
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	ingest, err := engine.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer ingest.Release()

	ctx := context.Background()

	dimension, err := ingest.VectorDimension(ctx)
	if err != nil {
		panic(err)
	}
	if err := engine.Backend().EnsureIndex(ctx, *index, dimension); err != nil {
		panic(err)
	}
	if err := engine.Backend().EnsurePipeline(ctx, *pipeline, 0.3, 0.7); err != nil {
		panic(err)
	}

	if err := ingest.Ingest(ctx, *index, demoCorpus); err != nil {
		panic(err)
	}

	slog.Info("seeded demo corpus", "index", *index, "documents", len(demoCorpus))
}
