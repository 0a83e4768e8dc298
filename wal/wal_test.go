package wal

import (
	"errors"
	"testing"
)

func TestAppendAndReadBack(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := w.Append("requested", "i-1", map[string]string{"action": "accept"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := w.AppendError("failed", "i-1", map[string]string{"action": "accept"}, errors.New("backend down")); err != nil {
		t.Fatalf("AppendError() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	if entries[0].Type != "requested" || entries[0].AssetID != "i-1" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Error != "backend down" {
		t.Errorf("second entry should carry the failure, got %+v", entries[1])
	}
	if entries[0].Sequence >= entries[1].Sequence {
		t.Error("sequence numbers must be increasing")
	}
}

func TestSequenceResumesAcrossFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := w.Append("requested", "i-1", nil); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w2, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w2.Close() }()

	if err := w2.Append("requested", "i-2", nil); err != nil {
		t.Fatal(err)
	}

	entries, err := ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	last := entries[len(entries)-1]
	if last.Sequence != 4 {
		t.Errorf("sequence should resume at 4, got %d", last.Sequence)
	}
}
