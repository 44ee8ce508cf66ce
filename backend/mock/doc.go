// Package mock provides an in-memory test double for backend.Backend.
//
// Tests load each retrieval channel with canned candidates or errors and
// assert on call counts, without a running OpenSearch cluster.
package mock
