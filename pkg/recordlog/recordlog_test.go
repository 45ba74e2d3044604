package recordlog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAppendReplayRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	w, err := OpenWrite(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	records := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, r := range records {
		if err := w.Append(r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var got [][]byte
	st, err := Replay(path, ReplayOptions{}, func(payload []byte) error {
		cp := make([]byte, len(payload))
		copy(cp, payload)
		got = append(got, cp)
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if st.Records != 3 {
		t.Fatalf("expected 3 records, got %d", st.Records)
	}
	for i, r := range records {
		if string(got[i]) != string(r) {
			t.Fatalf("record %d: got %q want %q", i, got[i], r)
		}
	}
}

func TestReplayMissingFileIsEmpty(t *testing.T) {
	st, err := Replay(filepath.Join(t.TempDir(), "absent.log"), ReplayOptions{}, func([]byte) error {
		t.Fatal("callback on missing file")
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if st.Records != 0 {
		t.Fatalf("expected 0 records, got %d", st.Records)
	}
}

func TestReplayDetectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.log")
	w, err := OpenWrite(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := w.Append([]byte("payload")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// flip one payload byte; the crc must catch it
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	b[len(b)-1] ^= 0xFF
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err = Replay(path, ReplayOptions{}, func([]byte) error { return nil })
	if err != ErrChecksumMismatch {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestReplayTruncatedTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "torn.log")
	w, err := OpenWrite(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := w.Append([]byte("whole")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// simulate a crash mid-append: a lone half header at the tail
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.Write([]byte{0x05, 0x00}); err != nil {
		t.Fatalf("write tail: %v", err)
	}
	_ = f.Close()

	st, err := Replay(path, ReplayOptions{AllowTruncatedTail: true}, func([]byte) error { return nil })
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if st.Records != 1 || !st.TruncatedTail {
		t.Fatalf("expected 1 record with truncated tail, got %+v", st)
	}

	// strict mode refuses the same file
	if _, err := Replay(path, ReplayOptions{}, func([]byte) error { return nil }); err != ErrCorruptHeader {
		t.Fatalf("expected corrupt header, got %v", err)
	}

	// repair then replay cleanly
	if err := TruncateTo(path, st.LastGoodOffset); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	st2, err := Replay(path, ReplayOptions{}, func([]byte) error { return nil })
	if err != nil {
		t.Fatalf("replay after repair: %v", err)
	}
	if st2.Records != 1 || st2.TruncatedTail {
		t.Fatalf("unexpected stats after repair: %+v", st2)
	}
}

func TestTruncateToNoops(t *testing.T) {
	// missing file: no-op
	if err := TruncateTo(filepath.Join(t.TempDir(), "absent.log"), 0); err != nil {
		t.Fatalf("truncate missing: %v", err)
	}
	// negative offset: error
	if err := TruncateTo(filepath.Join(t.TempDir(), "x.log"), -1); err == nil {
		t.Fatal("expected error for negative offset")
	}
}
