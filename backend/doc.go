// Package backend defines the search backend abstraction: retrieval over
// lexical, vector and backend-fused hybrid channels, plus index and
// search-pipeline administration.
//
// The production implementation lives in backend/opensearch; backend/mock
// provides an in-memory implementation for tests.
package backend
