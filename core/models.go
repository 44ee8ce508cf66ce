package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier derived from content hashing.
// It is used for cache keys and deterministic deduplication.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is one retrievable chunk of a source document.
// The named fields cover the corpus schema; Extra carries any
// forward-compatible fields the index returns beyond them.
type Document struct {
	Title      string            // Source document name
	Chapter    string            // Chapter heading within the document
	Article    string            // Article (section) heading within the chapter
	Content    string            // Body text of the chunk
	SourceFile string            // File the chunk was ingested from
	Vector     []float32         // Embedding vector (populated at ingestion, excluded from search hits)
	Extra      map[string]string // Extension fields not covered by the schema
}

// Identity returns the composite identity of the chunk: the concatenation
// of title, chapter and article. Two distinct chunks that share all three
// values collide and are merged during fusion; this is a known limitation
// of the corpus schema, kept until a stronger unique key is available.
func (d *Document) Identity() string {
	return d.Title + d.Chapter + d.Article
}

// RerankText returns the text blob scored by the cross-encoder:
// identifying fields followed by the body content, in a fixed order.
func (d *Document) RerankText() string {
	return strings.TrimSpace(d.Title + " " + d.Chapter + " " + d.Article + " " + d.Content)
}

// Candidate is one hit from a single retrieval channel.
// Score is channel-local and not comparable across channels.
// Candidates live only for the duration of one search request.
type Candidate struct {
	Identity string
	Score    float64
	Doc      *Document
}

// FusedRecord is a candidate after fusion of the lexical and vector
// channels. A record seen by only one channel carries 0 for the other
// channel's normalized score. RerankScore is populated by the rerank
// stage; Reranked reports whether it was.
type FusedRecord struct {
	Identity    string
	BM25Norm    float64 // Normalized lexical score in [0,1]
	VectorNorm  float64 // Normalized vector score in [0,1]
	Combined    float64 // BM25Norm*wLex + VectorNorm*wVec
	RerankScore float64
	Reranked    bool
	Doc         *Document
}
