package prolog

import (
	"errors"
	"io"
)

// Lookahead is the size of the scan buffer in bytes.
const Lookahead = 1024

// maxEmptyReads bounds consecutive (0, nil) reads from the source.
const maxEmptyReads = 100

// Marker is the byte sequence that opens an XML declaration.
var Marker = []byte("<?")

var (
	// ErrNoXMLStart is returned when the stream ends before Marker is found.
	ErrNoXMLStart = errors.New("prolog: stream exhausted before XML start found")

	// ErrLookaheadExceeded is returned when a partial match cannot be held
	// in the lookahead buffer.
	ErrLookaheadExceeded = errors.New("prolog: lookahead buffer exceeded")
)

// State is the scanner state.
type State int

const (
	// Scanning means the marker has not been found yet.
	Scanning State = iota
	// Found means the reader is positioned on the marker.
	Found
	// Exhausted means the stream ended without a marker.
	Exhausted
	// Failed means reading the stream failed before the marker was found.
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reader reads from an underlying stream starting at the XML declaration.
//
// The zero value is not usable; create one with Seek or NewReader.
type Reader struct {
	src     io.Reader
	buf     []byte
	mark    int // start of the candidate match in buf
	r       int // scan or read cursor in buf
	w       int // end of valid data in buf
	skipped int64
	state   State
	err     error
}

// NewReader returns a Reader over src that has not scanned yet. The scan
// runs on the first call to Read or Scan.
func NewReader(src io.Reader) *Reader {
	return &Reader{
		src: src,
		buf: make([]byte, Lookahead),
	}
}

// Seek scans src for Marker and returns a Reader positioned on it.
func Seek(src io.Reader) (*Reader, error) {
	r := NewReader(src)
	if err := r.Scan(); err != nil {
		return nil, err
	}
	return r, nil
}

// State returns the current scanner state.
func (r *Reader) State() State {
	return r.state
}

// Skipped returns the number of bytes discarded in front of the marker.
func (r *Reader) Skipped() int64 {
	return r.skipped
}

// Scan advances the stream to the first byte of Marker. It is idempotent:
// once the marker is found, further calls return nil and once the stream
// is exhausted or has failed they return the same error.
func (r *Reader) Scan() error {
	switch r.state {
	case Found:
		return nil
	case Exhausted, Failed:
		return r.err
	}

	matched := 0
	r.mark = r.r
	for {
		if r.r == r.w {
			if err := r.fill(); err != nil {
				r.state = Failed
				if errors.Is(err, ErrNoXMLStart) {
					r.state = Exhausted
				}
				r.err = err
				return err
			}
			continue
		}

		c := r.buf[r.r]
		switch {
		case c == Marker[matched]:
			matched++
			r.r++
			if matched == len(Marker) {
				// Rewind to the start of the matched run.
				r.r = r.mark
				r.state = Found
				return nil
			}
		case matched > 0:
			// False start: c may itself open the marker, so it is
			// examined again as the first byte of a new candidate.
			matched = 0
			r.discard(r.r - r.mark)
		default:
			r.r++
			r.discard(1)
		}
	}
}

// Read implements io.Reader. Buffered lookahead bytes are served before
// reading from the underlying stream.
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.Scan(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if r.r < r.w {
		n := copy(p, r.buf[r.r:r.w])
		r.r += n
		return n, nil
	}
	return r.src.Read(p)
}

// discard drops n bytes in front of the candidate and moves the mark.
func (r *Reader) discard(n int) {
	r.mark += n
	r.skipped += int64(n)
}

// fill reads more data into buf, compacting away bytes before the mark.
// End of stream maps to ErrNoXMLStart; other read errors pass through.
func (r *Reader) fill() error {
	if r.mark > 0 {
		copy(r.buf, r.buf[r.mark:r.w])
		r.w -= r.mark
		r.r -= r.mark
		r.mark = 0
	}
	if r.w == len(r.buf) {
		return ErrLookaheadExceeded
	}

	for i := 0; i < maxEmptyReads; i++ {
		n, err := r.src.Read(r.buf[r.w:])
		r.w += n
		if n > 0 {
			return nil
		}
		if err == io.EOF {
			return ErrNoXMLStart
		}
		if err != nil {
			return err
		}
	}
	return io.ErrNoProgress
}
