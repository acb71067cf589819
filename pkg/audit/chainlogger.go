// Package audit provides a tamper-evident trail of reconciliation
// mutations. Each event is hash-chained to its predecessor, so any
// after-the-fact edit of the trail breaks verification.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Event records one mutation of the ledger: who did what to which entity.
type Event struct {
	Timestamp    string `json:"timestamp"`
	PreviousHash string `json:"previous_hash"`
	Actor        string `json:"actor"`
	Operation    string `json:"operation"`
	Entity       string `json:"entity"`
	EntityID     int64  `json:"entity_id"`
	Detail       string `json:"detail"`
	Hash         string `json:"hash"`
}

// ChainLogger appends events to an in-memory hash chain.
type ChainLogger struct {
	mu           sync.Mutex
	previousHash string
	events       []*Event
}

// NewChainLogger starts a chain anchored at a zero hash.
func NewChainLogger() *ChainLogger {
	return &ChainLogger{previousHash: strings.Repeat("0", 64)}
}

// Append records an event and links it to the previous one.
func (c *ChainLogger) Append(actor, operation, entity string, entityID int64, detail string) *Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev := &Event{
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		PreviousHash: c.previousHash,
		Actor:        actor,
		Operation:    operation,
		Entity:       entity,
		EntityID:     entityID,
		Detail:       detail,
	}
	ev.Hash = eventHash(ev)

	c.previousHash = ev.Hash
	c.events = append(c.events, ev)
	return ev
}

// Events returns a snapshot of the chain so far.
func (c *ChainLogger) Events() []*Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Event, len(c.events))
	copy(out, c.events)
	return out
}

func eventHash(ev *Event) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%s|%d|%s",
		ev.PreviousHash, ev.Timestamp, ev.Actor, ev.Operation,
		ev.Entity, ev.EntityID, ev.Detail)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// VerifyChain reports whether the events form an unbroken, unmodified chain.
func VerifyChain(events []*Event) bool {
	for i, ev := range events {
		if i > 0 && ev.PreviousHash != events[i-1].Hash {
			return false
		}
		if eventHash(ev) != ev.Hash {
			return false
		}
	}
	return true
}
