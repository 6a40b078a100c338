package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"poolScope/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "pools.jsonl")
	store := NewJsonlStorage(path)

	first := []model.PoolSnapshot{{Address: "0xA", Tick: -5, SqrtPriceX96: "79228162514264337593543950336"}}
	second := []model.PoolSnapshot{{Address: "0xB", Initialized: true}}
	if err := store.PutPoolSnapshots(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.PutPoolSnapshots(context.Background(), second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.PutPoolSnapshots(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error on empty batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var got []model.PoolSnapshot
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var snapshot model.PoolSnapshot
		if err := json.Unmarshal(scanner.Bytes(), &snapshot); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		got = append(got, snapshot)
	}
	if len(got) != 2 {
		t.Fatalf("line count mismatch: %d", len(got))
	}
	if got[0].Address != "0xA" || got[0].Tick != -5 || got[0].SqrtPriceX96 != first[0].SqrtPriceX96 {
		t.Fatalf("first record mismatch: %+v", got[0])
	}
	if got[1].Address != "0xB" || !got[1].Initialized {
		t.Fatalf("second record mismatch: %+v", got[1])
	}
}

func TestJsonlStorageCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewJsonlStorage(filepath.Join(t.TempDir(), "pools.jsonl"))
	if err := store.PutPoolSnapshots(ctx, []model.PoolSnapshot{{Address: "0xA"}}); err == nil {
		t.Fatalf("expected context error")
	}
}
