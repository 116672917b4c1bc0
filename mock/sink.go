package mock

import "github.com/fwojciec/drawgen"

// Interface compliance checks.
var (
	_ drawgen.ConversationSink = (*ConversationSink)(nil)
	_ drawgen.HistorySink      = (*HistorySink)(nil)
	_ drawgen.StatusSink       = (*StatusSink)(nil)
	_ drawgen.ArtifactLoader   = (*ArtifactLoader)(nil)
	_ drawgen.APITracker       = (*APITracker)(nil)
)

// ConversationSink is a test double for drawgen.ConversationSink.
type ConversationSink struct {
	CreateInFlightFn func() int
	AppendContentFn  func(index int, delta string)
	FinalizeFn       func(index int, status string, completed, errored bool)
}

// CreateInFlight delegates to CreateInFlightFn.
func (s *ConversationSink) CreateInFlight() int {
	return s.CreateInFlightFn()
}

// AppendContent delegates to AppendContentFn.
func (s *ConversationSink) AppendContent(index int, delta string) {
	s.AppendContentFn(index, delta)
}

// Finalize delegates to FinalizeFn.
func (s *ConversationSink) Finalize(index int, status string, completed, errored bool) {
	s.FinalizeFn(index, status, completed, errored)
}

// HistorySink is a test double for drawgen.HistorySink.
type HistorySink struct {
	ReplaceHistoryFn func(h drawgen.History)
}

// ReplaceHistory delegates to ReplaceHistoryFn.
func (s *HistorySink) ReplaceHistory(h drawgen.History) {
	s.ReplaceHistoryFn(h)
}

// StatusSink is a test double for drawgen.StatusSink.
type StatusSink struct {
	SetStatusFn func(s drawgen.Status)
}

// SetStatus delegates to SetStatusFn.
func (s *StatusSink) SetStatus(st drawgen.Status) {
	s.SetStatusFn(st)
}

// ArtifactLoader is a test double for drawgen.ArtifactLoader.
type ArtifactLoader struct {
	LoadXMLFn func(xml string) error
}

// LoadXML delegates to LoadXMLFn.
func (a *ArtifactLoader) LoadXML(xml string) error {
	return a.LoadXMLFn(xml)
}

// APITracker is a test double for drawgen.APITracker.
type APITracker struct {
	SetLastAPIFn func(api string)
	LastAPIFn    func() string
	MarkFailedFn func(api string)
}

// SetLastAPI delegates to SetLastAPIFn.
func (a *APITracker) SetLastAPI(api string) {
	a.SetLastAPIFn(api)
}

// LastAPI delegates to LastAPIFn.
func (a *APITracker) LastAPI() string {
	return a.LastAPIFn()
}

// MarkFailed delegates to MarkFailedFn.
func (a *APITracker) MarkFailed(api string) {
	a.MarkFailedFn(api)
}
