package storage

import (
	"testing"
)

func TestJournalAppendAndReplay(t *testing.T) {
	j, err := OpenJournal(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()

	trades := []*TradeRecord{
		{ID: "a", Symbol: "BTC-USDT", TakerID: 3, MakerID: 1, Price: 100, Qty: 50, Ts: 1700000000000},
		{ID: "b", Symbol: "BTC-USDT", TakerID: 3, MakerID: 2, Price: 101, Qty: 25, Ts: 1700000000001},
		{ID: "c", Symbol: "ETH-USDT", TakerID: 9, MakerID: 4, Price: 55, Qty: 10, Ts: 1700000000002},
	}
	for _, tr := range trades {
		if err := j.Append(tr); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if got := j.LastSeq(); got != 3 {
		t.Errorf("last seq = %d, want 3", got)
	}

	var replayed []TradeRecord
	err = j.Replay(func(tr TradeRecord) error {
		replayed = append(replayed, tr)
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	if len(replayed) != len(trades) {
		t.Fatalf("replayed %d trades, want %d", len(replayed), len(trades))
	}
	for i, tr := range replayed {
		if tr.Seq != uint64(i+1) {
			t.Errorf("trade %d seq = %d, want %d", i, tr.Seq, i+1)
		}
		if tr.ID != trades[i].ID || tr.Symbol != trades[i].Symbol || tr.Price != trades[i].Price || tr.Qty != trades[i].Qty {
			t.Errorf("trade %d = %+v, want %+v", i, tr, *trades[i])
		}
	}
}

func TestJournalRecoversSequenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	j, err := OpenJournal(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := j.Append(&TradeRecord{Symbol: "BTC-USDT", Price: 10, Qty: 1}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	j, err = OpenJournal(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()

	if got := j.LastSeq(); got != 5 {
		t.Fatalf("recovered seq = %d, want 5", got)
	}

	tr := &TradeRecord{Symbol: "BTC-USDT", Price: 11, Qty: 2}
	if err := j.Append(tr); err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	if tr.Seq != 6 {
		t.Errorf("seq after reopen = %d, want 6", tr.Seq)
	}
}
