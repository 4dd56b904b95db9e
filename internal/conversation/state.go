// Package conversation holds the context that grounds follow-up questions:
// the serialized payload of the last successful suggestion call and the
// questions asked against it.
package conversation

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"
)

// Exchange is one follow-up question and the answer it received.
type Exchange struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Failed   bool      `json:"failed"`
	AskedAt  time.Time `json:"asked_at"`
}

// State is one conversation cell. The zero value is ready to use and holds
// no payload. Writes are last-write-wins.
type State struct {
	mu        sync.RWMutex
	payload   string
	has       bool
	gen       uint64
	exchanges []Exchange
}

// Remember stores raw as the context for later follow-ups and clears the
// exchanges made against the previous payload. Valid JSON is stored as is;
// anything else is stored as a JSON string literal.
func (s *State) Remember(raw []byte) {
	payload := serialize(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = payload
	s.has = true
	s.gen++
	s.exchanges = nil
}

// Generation counts Remember calls. An exchange started under one
// generation belongs to that payload only.
func (s *State) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Payload returns the stored context and whether one exists.
func (s *State) Payload() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payload, s.has
}

// Append records a follow-up exchange.
func (s *State) Append(e Exchange) {
	if e.AskedAt.IsZero() {
		e.AskedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, e)
}

// AppendAt records e only if no Remember happened since gen was read. It
// reports whether e was kept.
func (s *State) AppendAt(gen uint64, e Exchange) bool {
	if e.AskedAt.IsZero() {
		e.AskedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.exchanges = append(s.exchanges, e)
	return true
}

// Exchanges returns a copy of the recorded exchanges, oldest first.
func (s *State) Exchanges() []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Exchange, len(s.exchanges))
	copy(out, s.exchanges)
	return out
}

func serialize(raw []byte) string {
	if json.Valid(raw) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			return buf.String()
		}
	}
	quoted, _ := json.Marshal(string(raw))
	return string(quoted)
}
