package journal

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const (
	journalFilePerm   = 0600
	journalDirPerm    = 0700
	maxRecordSize     = 4 * 1024 * 1024 // 4MB max record size
	defaultBufSize    = 64 * 1024       // 64KB buffer
	defaultMaxSegSize = 16 * 1024 * 1024
	segmentPattern    = "journal-%05d"
)

// FileJournal is a file-based journal with segment rotation
type FileJournal struct {
	mu sync.Mutex

	dir        string
	file       *os.File
	buf        *bufio.Writer
	started    bool
	segIndex   int
	segSize    int64
	maxSegSize int64
}

// OpenFile opens (creating if needed) a file journal in dir
func OpenFile(dir string) (*FileJournal, error) {
	return OpenFileWithOptions(dir, defaultMaxSegSize)
}

// OpenFileWithOptions opens a file journal with a custom segment size
func OpenFileWithOptions(dir string, maxSegSize int64) (*FileJournal, error) {
	if err := os.MkdirAll(dir, journalDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	if maxSegSize <= 0 {
		maxSegSize = defaultMaxSegSize
	}

	j := &FileJournal{dir: dir, maxSegSize: maxSegSize}

	segments := findSegments(dir)
	if len(segments) > 0 {
		j.segIndex = segments[len(segments)-1]
	}
	if err := j.openSegment(j.segIndex); err != nil {
		return nil, err
	}
	j.started = true
	return j, nil
}

func (j *FileJournal) segmentPath(index int) string {
	return filepath.Join(j.dir, fmt.Sprintf(segmentPattern, index))
}

func (j *FileJournal) openSegment(index int) error {
	path := j.segmentPath(index)
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, journalFilePerm)
	if err != nil {
		return fmt.Errorf("failed to open journal segment %d: %w", index, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat journal segment: %w", err)
	}

	j.file = file
	j.buf = bufio.NewWriterSize(file, defaultBufSize)
	j.segSize = info.Size()
	return nil
}

// Append implements Journal. Records are flushed and synced before
// Append returns: an audit record either survives a crash or the
// operation that produced it reports failure.
func (j *FileJournal) Append(rec *Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.started {
		return ErrJournalClosed
	}

	if j.segSize >= j.maxSegSize {
		if err := j.rotate(); err != nil {
			return fmt.Errorf("failed to rotate journal: %w", err)
		}
	}

	n, err := encodeRecord(j.buf, rec)
	if err != nil {
		return err
	}
	j.segSize += int64(n)

	if err := j.buf.Flush(); err != nil {
		return err
	}
	return j.file.Sync()
}

func (j *FileJournal) rotate() error {
	if err := j.buf.Flush(); err != nil {
		return err
	}
	if err := j.file.Sync(); err != nil {
		return err
	}
	if err := j.file.Close(); err != nil {
		return err
	}
	j.segIndex++
	return j.openSegment(j.segIndex)
}

// Close implements Journal
func (j *FileJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.started {
		return nil
	}
	j.started = false

	if err := j.buf.Flush(); err != nil {
		return err
	}
	if err := j.file.Sync(); err != nil {
		return err
	}
	return j.file.Close()
}

var _ Journal = (*FileJournal)(nil)

// OpenReader opens a reader over all segments of a journal directory,
// oldest first.
func OpenReader(dir string) (Reader, error) {
	segments := findSegments(dir)
	if len(segments) == 0 {
		return nil, ErrJournalNotFound
	}
	return &segmentReader{dir: dir, segments: segments, current: -1}, nil
}

// findSegments returns the sorted segment indices present in dir
func findSegments(dir string) []int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var segments []int
	for _, entry := range entries {
		var idx int
		if n, _ := fmt.Sscanf(entry.Name(), segmentPattern, &idx); n == 1 {
			segments = append(segments, idx)
		}
	}
	sort.Ints(segments)
	return segments
}

// segmentReader reads through journal segments in order
type segmentReader struct {
	dir      string
	segments []int
	current  int
	file     *os.File
	dec      *decoder
}

func (r *segmentReader) Read() (*Record, error) {
	for {
		if r.file == nil {
			r.current++
			if r.current >= len(r.segments) {
				return nil, io.EOF
			}
			path := filepath.Join(r.dir, fmt.Sprintf(segmentPattern, r.segments[r.current]))
			file, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			r.file = file
			r.dec = newDecoder(bufio.NewReader(file))
		}

		rec, err := r.dec.Decode()
		if err == io.EOF {
			r.file.Close()
			r.file = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
}

func (r *segmentReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

var _ Reader = (*segmentReader)(nil)

// encodeRecord frames a record as length + JSON + CRC32 and returns the
// number of bytes written.
func encodeRecord(w io.Writer, rec *Record) (int, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}

	var frame [4]byte
	binary.BigEndian.PutUint32(frame[:], uint32(len(data)))
	if _, err := w.Write(frame[:]); err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, err
	}
	binary.BigEndian.PutUint32(frame[:], crc32.ChecksumIEEE(data))
	if _, err := w.Write(frame[:]); err != nil {
		return 0, err
	}
	return 4 + len(data) + 4, nil
}

// decoder reads framed records
type decoder struct {
	r   io.Reader
	buf []byte
}

func newDecoder(r io.Reader) *decoder {
	return &decoder{r: r, buf: make([]byte, 4)}
}

func (d *decoder) Decode() (*Record, error) {
	if _, err := io.ReadFull(d.r, d.buf); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(d.buf)
	if length > maxRecordSize {
		return nil, ErrJournalCorrupted
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(d.r, data); err != nil {
		return nil, err
	}

	if _, err := io.ReadFull(d.r, d.buf); err != nil {
		return nil, err
	}
	expected := binary.BigEndian.Uint32(d.buf)
	if actual := crc32.ChecksumIEEE(data); actual != expected {
		return nil, fmt.Errorf("%w: CRC mismatch (expected %08x, got %08x)",
			ErrJournalCorrupted, expected, actual)
	}

	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJournalCorrupted, err)
	}
	return rec, nil
}
