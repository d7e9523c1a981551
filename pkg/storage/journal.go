// Package storage persists executed trades. Book state itself is not
// persisted; the journal is an append-only record of what traded, for
// downstream consumers and audit.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
)

// TradeRecord is one executed fill as persisted in the journal. Seq is
// the journal's own sequence, independent of order IDs.
type TradeRecord struct {
	Seq     uint64 `json:"seq"`
	ID      string `json:"id"`
	Symbol  string `json:"symbol"`
	TakerID uint64 `json:"takerId"`
	MakerID uint64 `json:"makerId"`
	Price   int64  `json:"price"`
	Qty     int64  `json:"qty"`
	Ts      int64  `json:"ts"` // unix milliseconds
}

// TradeJournal is an append-only Pebble log of executed trades.
//
// Keys: t:<8-byte big-endian seq> for records, m:seq for the last
// issued sequence.
type TradeJournal struct {
	mu  sync.Mutex
	db  *pebble.DB
	seq uint64
}

var (
	keyLastSeq    = []byte("m:seq")
	tradePrefix   = []byte("t:")
	tradePrefixHi = []byte("t;") // ':' + 1, upper bound for iteration
)

func tradeKey(seq uint64) []byte {
	key := make([]byte, 0, len(tradePrefix)+8)
	key = append(key, tradePrefix...)
	return binary.BigEndian.AppendUint64(key, seq)
}

// OpenJournal opens (or creates) a journal at dir and recovers the
// last issued sequence.
func OpenJournal(dir string) (*TradeJournal, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &TradeJournal{db: db}

	val, closer, err := db.Get(keyLastSeq)
	switch err {
	case nil:
		j.seq = binary.BigEndian.Uint64(val)
		closer.Close()
	case pebble.ErrNotFound:
		// fresh journal
	default:
		db.Close()
		return nil, fmt.Errorf("recover journal seq: %w", err)
	}

	return j, nil
}

// Append assigns the record its journal sequence and writes it
// durably. The record and the sequence marker go in one synced batch.
func (j *TradeJournal) Append(t *TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	t.Seq = j.seq + 1

	val, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal trade: %w", err)
	}

	batch := j.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(tradeKey(t.Seq), val, nil); err != nil {
		return err
	}
	if err := batch.Set(keyLastSeq, binary.BigEndian.AppendUint64(nil, t.Seq), nil); err != nil {
		return err
	}
	if err := j.db.Apply(batch, pebble.Sync); err != nil {
		return fmt.Errorf("append trade: %w", err)
	}

	j.seq = t.Seq
	return nil
}

// Replay invokes fn for every journaled trade in sequence order,
// stopping at the first error.
func (j *TradeJournal) Replay(fn func(TradeRecord) error) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: tradePrefix,
		UpperBound: tradePrefixHi,
	})
	if err != nil {
		return fmt.Errorf("journal iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var t TradeRecord
		if err := json.Unmarshal(iter.Value(), &t); err != nil {
			return fmt.Errorf("decode trade at %x: %w", iter.Key(), err)
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return iter.Error()
}

// LastSeq returns the sequence of the most recently appended trade, 0
// when the journal is empty.
func (j *TradeJournal) LastSeq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq
}

func (j *TradeJournal) Close() error {
	return j.db.Close()
}
