package drawgen

import (
	"slices"
	"sync"
	"time"
)

// welcomeText seeds a fresh transcript.
const welcomeText = "Hi! I'm drawgen.\nDescribe the diagram you want, for example:\n" +
	"- \"a user login flow\"\n" +
	"- \"order processing pipeline\"\n" +
	"- \"payment system architecture\""

// ChangeKind identifies which part of a Session changed.
type ChangeKind int

const (
	ChangeRecordAdded ChangeKind = iota + 1
	ChangeRecordUpdated
	ChangeRecordFinalized
	ChangeRecordRemoved
	ChangeHistory
	ChangeStatus
	ChangeCleared
)

// Change describes one mutation. Index is the affected record, or -1.
type Change struct {
	Version uint64
	Kind    ChangeKind
	Index   int
}

// Session owns the conversation state a generation call mutates: the
// transcript, the canonical history and the generation status. It
// implements ConversationSink, HistorySink and StatusSink.
//
// All methods are safe for concurrent use. Observers call Subscribe to be
// told when something changed and read immutable copies with Records.
type Session struct {
	mu         sync.RWMutex
	records    []Record
	history    History
	status     Status
	lastPrompt string
	lastAPI    string
	failedAPIs []string
	version    uint64

	subs   map[int]chan Change
	nextID int

	now func() time.Time
}

// Interface compliance checks.
var (
	_ ConversationSink = (*Session)(nil)
	_ HistorySink      = (*Session)(nil)
	_ StatusSink       = (*Session)(nil)
)

// NewSession creates an empty Session with a ready status.
func NewSession() *Session {
	return &Session{
		status: Status{Kind: StatusReady, Label: LabelReady},
		subs:   make(map[int]chan Change),
		now:    time.Now,
	}
}

// SetClock replaces the time source used for record timestamps.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Subscribe returns a channel that receives a Change after every mutation,
// and a function that unsubscribes and closes the channel. Delivery never
// blocks the writer: when the subscriber lags, changes coalesce and only the
// most recent one is kept. Readers should treat a Change as a signal to
// re-read state, not as a complete log.
func (s *Session) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan Change, 1)
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// notify must be called with s.mu held for writing.
func (s *Session) notify(kind ChangeKind, index int) {
	s.version++
	c := Change{Version: s.version, Kind: kind, Index: index}
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
			// Drop the stale pending change and keep the newest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- c:
			default:
			}
		}
	}
}

// Version returns a counter that increases with every mutation.
func (s *Session) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// AddRecord appends a completed, non-streaming record and returns its index.
func (s *Session) AddRecord(role Role, content string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, Record{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	})
	idx := len(s.records) - 1
	s.notify(ChangeRecordAdded, idx)
	return idx
}

// AddWelcome replaces the transcript with a single greeting record.
func (s *Session) AddWelcome() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = []Record{{
		Role:      RoleAI,
		Content:   welcomeText,
		Timestamp: s.now(),
	}}
	s.notify(ChangeRecordAdded, 0)
}

// CreateInFlight appends an empty streaming AI record and returns its index.
func (s *Session) CreateInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, Record{
		Role:      RoleAI,
		Stream:    true,
		Timestamp: s.now(),
	})
	idx := len(s.records) - 1
	s.notify(ChangeRecordAdded, idx)
	return idx
}

// AppendContent appends delta to the record at index. Out-of-range indices
// and records that already reached a terminal state are ignored.
func (s *Session) AppendContent(index int, delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.records) {
		return
	}
	r := &s.records[index]
	if r.Completed || r.Error {
		return
	}
	r.Content += delta
	s.notify(ChangeRecordUpdated, index)
}

// Finalize applies the terminal transition to the record at index. A record
// is finalized at most once; later calls are ignored.
func (s *Session) Finalize(index int, status string, completed, errored bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.records) {
		return
	}
	r := &s.records[index]
	if r.Completed || r.Error {
		return
	}
	r.Status = status
	r.Completed = completed
	r.Error = errored
	s.notify(ChangeRecordFinalized, index)
}

// RemoveRecord deletes the record at index. Indices of later records shift
// down by one, so callers must not remove records while a generation call
// is in flight.
func (s *Session) RemoveRecord(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.records) {
		return
	}
	s.records = slices.Delete(s.records, index, index+1)
	s.notify(ChangeRecordRemoved, index)
}

// Records returns a copy of the transcript.
func (s *Session) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Record returns a copy of the record at index.
func (s *Session) Record(index int) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.records) {
		return Record{}, false
	}
	return s.records[index], true
}

// ReplaceHistory swaps the canonical history for h.
func (s *Session) ReplaceHistory(h History) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = h.Clone()
	s.notify(ChangeHistory, -1)
}

// History returns a copy of the canonical history.
func (s *Session) History() History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Clone()
}

// SetStatus records the generation status.
func (s *Session) SetStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	s.notify(ChangeStatus, -1)
}

// Status returns the current generation status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetLastPrompt remembers the most recent prompt for regeneration.
func (s *Session) SetLastPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPrompt = prompt
}

// LastPrompt returns the most recent prompt.
func (s *Session) LastPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPrompt
}

// SetLastAPI records the provider the server last announced.
func (s *Session) SetLastAPI(api string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAPI = api
}

// LastAPI returns the provider the server last announced.
func (s *Session) LastAPI() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAPI
}

// MarkFailed adds api to the set of providers the next request skips.
func (s *Session) MarkFailed(api string) {
	if api == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.failedAPIs, api) {
		return
	}
	s.failedAPIs = append(s.failedAPIs, api)
}

// FailedAPIs returns a copy of the providers to skip.
func (s *Session) FailedAPIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.failedAPIs)
}

// Clear resets the transcript, history and per-conversation state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.history = nil
	s.lastPrompt = ""
	s.lastAPI = ""
	s.failedAPIs = nil
	s.notify(ChangeCleared, -1)
}
