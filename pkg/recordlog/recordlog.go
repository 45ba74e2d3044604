// Package recordlog is a minimal append-only record file: each record is
// framed as len(4) + crc32(4) + payload, so a reader can detect corruption
// and a crash mid-append only ever loses the unfinished tail record.
package recordlog

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

const (
	headerSize      = 8 // len(4) + crc32(4)
	defaultFilePerm = 0o644
)

// DefaultMaxPayload bounds a single record so a corrupt length header cannot
// make Replay allocate unbounded memory.
const DefaultMaxPayload = 4 << 20 // 4MB

var (
	ErrCorruptHeader    = errors.New("recordlog: corrupt header")
	ErrCorruptPayload   = errors.New("recordlog: corrupt payload")
	ErrChecksumMismatch = errors.New("recordlog: checksum mismatch")
	ErrPayloadTooLarge  = errors.New("recordlog: payload too large")
)

type Writer struct {
	f  *os.File
	bw *bufio.Writer
	// logical offset including bytes still sitting in the bufio buffer
	off int64
}

func OpenWrite(path string, bufSize int) (*Writer, error) {
	if bufSize <= 0 {
		bufSize = 1 << 20
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, defaultFilePerm)
	if err != nil {
		return nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &Writer{
		f:   file,
		bw:  bufio.NewWriterSize(file, bufSize),
		off: stat.Size(),
	}, nil
}

// Append frames and buffers one record. Call Flush to make it durable.
func (w *Writer) Append(payload []byte) error {
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[:4], uint32(len(payload)))
	binary.LittleEndian.PutUint32(hdr[4:], crc32.ChecksumIEEE(payload))
	if _, err := w.bw.Write(hdr[:]); err != nil {
		return ErrCorruptHeader
	}
	if _, err := w.bw.Write(payload); err != nil {
		return ErrCorruptPayload
	}
	w.off += int64(headerSize + len(payload))
	return nil
}

// Flush pushes buffered records to the OS and fsyncs the file.
func (w *Writer) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return w.f.Sync()
}

// Offset reports the logical end of the log, buffered bytes included.
func (w *Writer) Offset() int64 { return w.off }

func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		_ = w.f.Close()
		return err
	}
	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}

type ReplayOptions struct {
	MaxPayload int // <=0 uses DefaultMaxPayload
	// A half-written last record is the normal crash signature; with this set
	// Replay stops there instead of failing.
	AllowTruncatedTail bool
}

type ReplayStats struct {
	Records        int
	BytesRead      int64
	LastGoodOffset int64
	TruncatedTail  bool
}

// Replay streams every intact record through onRecord, in append order.
// A missing file counts as an empty log.
func Replay(path string, opts ReplayOptions, onRecord func(payload []byte) error) (ReplayStats, error) {
	var st ReplayStats
	maxPayload := opts.MaxPayload
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return st, err
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 1<<20)
	var hdr [headerSize]byte
	var off int64
	for {
		_, err = io.ReadFull(br, hdr[:])
		if err != nil {
			if errors.Is(err, io.EOF) {
				return st, nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				st.TruncatedTail = true
				if opts.AllowTruncatedTail {
					return st, nil
				}
				return st, ErrCorruptHeader
			}
			return st, err
		}

		ln := int(binary.LittleEndian.Uint32(hdr[0:4]))
		crc := binary.LittleEndian.Uint32(hdr[4:8])

		if ln < 0 || ln > maxPayload {
			return st, ErrPayloadTooLarge
		}

		payload := make([]byte, ln)
		_, err = io.ReadFull(br, payload)
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				st.TruncatedTail = true
				if opts.AllowTruncatedTail {
					return st, nil
				}
				return st, ErrCorruptPayload
			}
			return st, err
		}
		if crc32.ChecksumIEEE(payload) != crc {
			return st, ErrChecksumMismatch
		}

		off += int64(headerSize + ln)
		st.BytesRead = off

		if err := onRecord(payload); err != nil {
			return st, err
		}

		st.Records++
		st.LastGoodOffset = off
	}
}

// TruncateTo cuts the file back to offset, discarding a corrupt tail.
// Missing file and offset past EOF are both no-ops so repair paths stay simple.
func TruncateTo(path string, offset int64) error {
	if offset < 0 {
		return fmt.Errorf("recordlog: negative truncate offset %d", offset)
	}

	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if offset >= st.Size() {
		return nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Truncate(offset); err != nil {
		return err
	}
	_ = f.Sync()
	return nil
}
