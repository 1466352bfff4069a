// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"math/big"

	"github.com/luxfi/ids"
)

// EventKind discriminates ledger events.
type EventKind uint8

const (
	TransferEvent EventKind = iota
	ApprovalEvent
)

// Event records a value-denominated transfer or approval. Mints carry the
// zero address as From, burns as To.
type Event struct {
	Kind  EventKind
	From  ids.ShortID
	To    ids.ShortID
	Value *big.Int
}

// emit appends an event. Must be called with the lock held.
func (l *Ledger) emit(e Event) {
	l.events = append(l.events, e)
}

// Events returns a copy of all recorded events in order. The buffer is left
// in place; consumers that are done with a batch use DrainEvents so it does
// not grow without bound.
func (l *Ledger) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// DrainEvents returns all recorded events in order and clears the buffer.
func (l *Ledger) DrainEvents() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.events
	l.events = nil
	return out
}
