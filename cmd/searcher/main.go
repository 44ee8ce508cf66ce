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
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/rankfuse"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	engine, err := rankfuse.NewEngine()
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	searcher, err := engine.NewSearcher()
	if err != nil {
		panic(err)
	}
	defer searcher.Close()

	query := "how many days of annual leave do I get"
	if len(os.Args) > 1 {
		query = strings.Join(os.Args[1:], " ")
	}

	results, err := searcher.Search(context.Background(), "regulations", query)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, record := range results {
		score := record.Combined
		if record.Reranked {
			score = record.RerankScore
		}
		fmt.Printf("%d: %s / %s / %s [%0.4f]\n", i+1,
			record.Doc.Title, record.Doc.Chapter, record.Doc.Article, score)
	}
}
