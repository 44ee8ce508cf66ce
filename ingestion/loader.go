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


package ingestion

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/rankfuse/core"
)

// jsonlRecord is the on-disk shape of one corpus chunk. Unknown fields
// land in the Extra side-map during conversion.
type jsonlRecord struct {
	Title   string `json:"title"`
	Chapter string `json:"chapter"`
	Article string `json:"article"`
	Content string `json:"content"`
}

// LoadJSONL reads documents from a JSONL file, one JSON object per line.
// Blank lines are skipped. Each document's SourceFile is set to the
// file's base name. A malformed line aborts the load with a line-numbered
// error rather than silently dropping data.
func LoadJSONL(path string) ([]*core.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	docs, err := ReadJSONL(file, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Default().Debug("loaded documents from jsonl", "path", path, "count", len(docs))
	return docs, nil
}

// ReadJSONL reads JSONL documents from a reader, tagging each with the
// given source name.
func ReadJSONL(r io.Reader, source string) ([]*core.Document, error) {
	var docs []*core.Document

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var record map[string]json.RawMessage
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var known jsonlRecord
		if err := json.Unmarshal(raw, &known); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		doc := &core.Document{
			Title:      known.Title,
			Chapter:    known.Chapter,
			Article:    known.Article,
			Content:    known.Content,
			SourceFile: source,
		}
		for key, value := range record {
			switch key {
			case "title", "chapter", "article", "content":
				continue
			}
			var text string
			if err := json.Unmarshal(value, &text); err != nil {
				continue // non-string extras are dropped
			}
			if doc.Extra == nil {
				doc.Extra = make(map[string]string)
			}
			doc.Extra[key] = text
		}

		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// LoadJSONLGlob loads every file matching the pattern, in glob order.
func LoadJSONLGlob(pattern string) ([]*core.Document, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var docs []*core.Document
	for _, path := range paths {
		loaded, err := LoadJSONL(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}
	return docs, nil
}
