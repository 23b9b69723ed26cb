package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingFileKeepsOneBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stakepool.log")
	w, err := newRotatingFile(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer w.Close()

	chunk := make([]byte, 512*1024)
	for i := 0; i < 3; i++ {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}

	live, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat live log: %v", err)
	}
	if live.Size() != int64(len(chunk)) {
		t.Fatalf("live log size = %d, want %d", live.Size(), len(chunk))
	}
	backup, err := os.Stat(path + ".1")
	if err != nil {
		t.Fatalf("stat backup log: %v", err)
	}
	if backup.Size() != 2*int64(len(chunk)) {
		t.Fatalf("backup size = %d, want %d", backup.Size(), 2*len(chunk))
	}
}

func TestRotatingFileAppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stakepool.log")
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := newRotatingFile(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	if _, err := w.Write([]byte("new\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "old\nnew\n" {
		t.Fatalf("log contents = %q", got)
	}
}
