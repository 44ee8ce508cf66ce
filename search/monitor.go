package search

import "github.com/poiesic/rankfuse/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterKeywordExtraction(keywords []string)
	AfterLexicalSearch(candidates []core.Candidate)
	AfterVectorSearch(candidates []core.Candidate)
	ChannelFailed(channel string, err error)
	AfterFusion(records []core.FusedRecord)
	Finish(results []core.FusedRecord)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                          {}
func (n *noopMonitor) AfterKeywordExtraction(_ []string)       {}
func (n *noopMonitor) AfterLexicalSearch(_ []core.Candidate)   {}
func (n *noopMonitor) AfterVectorSearch(_ []core.Candidate)    {}
func (n *noopMonitor) ChannelFailed(_ string, _ error)         {}
func (n *noopMonitor) AfterFusion(_ []core.FusedRecord)        {}
func (n *noopMonitor) Finish(_ []core.FusedRecord)             {}
