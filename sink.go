package drawgen

import "errors"

// ConversationSink is the transcript owner the dispatcher writes through.
//
// CreateInFlight is called once per generation call, before the request is
// sent, and returns an index that stays valid for the rest of the call.
// AppendContent is called once per content delta in stream order.
// Finalize is called at most once per call.
type ConversationSink interface {
	CreateInFlight() int
	AppendContent(index int, delta string)
	Finalize(index int, status string, completed, errored bool)
}

// HistorySink receives the canonical history on completion.
type HistorySink interface {
	ReplaceHistory(h History)
}

// StatusSink receives generation status transitions.
type StatusSink interface {
	SetStatus(s Status)
}

// ArtifactLoader hands a finished diagram to the editor.
type ArtifactLoader interface {
	LoadXML(xml string) error
}

// ArtifactLoaders fans a finished diagram out to several loaders. Every
// loader is called; the errors are joined.
type ArtifactLoaders []ArtifactLoader

// LoadXML calls LoadXML on each loader in order.
func (ls ArtifactLoaders) LoadXML(xml string) error {
	var errs []error
	for _, l := range ls {
		if err := l.LoadXML(xml); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
