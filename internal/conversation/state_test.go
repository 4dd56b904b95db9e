package conversation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroStateHasNoPayload(t *testing.T) {
	var s State
	_, ok := s.Payload()
	assert.False(t, ok)
	assert.Empty(t, s.Exchanges())
}

func TestRememberSerialization(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"json object kept", `{"success": true, "analysis": "x"}`, `{"success":true,"analysis":"x"}`},
		{"plain text quoted", "rate limited", `"rate limited"`},
		{"empty body quoted", "", `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s State
			s.Remember([]byte(tt.raw))
			got, ok := s.Payload()
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRememberIsLastWriteWins(t *testing.T) {
	var s State
	s.Remember([]byte(`{"analysis":"first"}`))
	s.Append(Exchange{Question: "why?", Answer: "because"})
	require.Len(t, s.Exchanges(), 1)

	s.Remember([]byte(`{"analysis":"second"}`))
	got, _ := s.Payload()
	assert.Equal(t, `{"analysis":"second"}`, got)
	assert.Empty(t, s.Exchanges(), "new payload starts a new conversation")
}

func TestAppendAtDropsStaleExchange(t *testing.T) {
	var s State
	s.Remember([]byte(`{"analysis":"first"}`))
	gen := s.Generation()

	assert.True(t, s.AppendAt(gen, Exchange{Question: "kept"}))

	s.Remember([]byte(`{"analysis":"second"}`))
	assert.False(t, s.AppendAt(gen, Exchange{Question: "stale"}))
	assert.Empty(t, s.Exchanges())

	assert.True(t, s.AppendAt(s.Generation(), Exchange{Question: "fresh"}))
	require.Len(t, s.Exchanges(), 1)
	assert.Equal(t, "fresh", s.Exchanges()[0].Question)
}

func TestExchangesReturnsCopy(t *testing.T) {
	var s State
	s.Append(Exchange{Question: "a"})
	got := s.Exchanges()
	got[0].Question = "mutated"
	assert.Equal(t, "a", s.Exchanges()[0].Question)
	assert.False(t, s.Exchanges()[0].AskedAt.IsZero())
}

func TestConcurrentAccess(t *testing.T) {
	var s State
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Remember([]byte(`{"analysis":"x"}`))
		}()
		go func() {
			defer wg.Done()
			s.Payload()
			s.Exchanges()
		}()
	}
	wg.Wait()
	_, ok := s.Payload()
	assert.True(t, ok)
}
