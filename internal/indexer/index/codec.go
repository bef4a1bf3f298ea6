package index

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/indexer/tokenizer"
)

// Index files are UTF-8 text with one line per word:
//
//	word docID count docID count ...
//
// Only positive counts are written, and a word without any is omitted.

// Save writes every word with at least one positive count to w, one posting
// line per word in ascending word order.
func (x *Index) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for word, postings := range x.Words() {
		if postings.Size() == 0 {
			continue
		}
		bw.WriteString(word)
		for docID, count := range postings.All() {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(docID))
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(count))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing postings for %q: %w", word, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing index: %w", err)
	}
	return nil
}

// LoadStats summarises a Load.
type LoadStats struct {
	Lines     int
	Words     int
	Postings  int
	Malformed int
}

// Load reads posting lines from r into x. Each word is normalised and each
// (docID, count) pair is applied with an absolute assignment, so loading the
// same data twice leaves the same counts. A line stops being parsed at its
// first malformed token; pairs before it are kept and the line is counted
// as malformed. Only read errors are returned.
func (x *Index) Load(r io.Reader) (LoadStats, error) {
	var stats LoadStats
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			stats.Lines++
			x.loadLine(line, &stats)
		}
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("reading index line %d: %w", stats.Lines+1, err)
		}
	}
}

func (x *Index) loadLine(line string, stats *LoadStats) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	word := tokenizer.NormalizeWord(fields[0])
	rest := fields[1:]
	pairs := 0
	for len(rest) >= 2 {
		docID, err1 := strconv.Atoi(rest[0])
		count, err2 := strconv.Atoi(rest[1])
		if err1 != nil || err2 != nil || docID < 1 || count < 0 {
			break
		}
		x.postings(word).Set(docID, count)
		pairs++
		rest = rest[2:]
	}
	if pairs > 0 {
		stats.Words++
		stats.Postings += pairs
	}
	if len(rest) > 0 || pairs == 0 {
		stats.Malformed++
	}
}

// FileWriter stages an index in a temporary file beside its destination and
// moves it into place on Commit, so a partially written index never appears
// under the final name.
type FileWriter struct {
	path string
	tmp  *os.File
}

// Create opens a staging file for path. It fails when the destination
// directory is not writable.
func Create(path string) (*FileWriter, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp index file: %w", err)
	}
	return &FileWriter{path: path, tmp: tmp}, nil
}

// Commit saves x into the staging file, syncs it and renames it onto the
// destination path.
func (fw *FileWriter) Commit(x *Index) error {
	if err := x.Save(fw.tmp); err != nil {
		fw.Abort()
		return err
	}
	if err := fw.tmp.Sync(); err != nil {
		fw.Abort()
		return fmt.Errorf("syncing index file: %w", err)
	}
	if err := fw.tmp.Close(); err != nil {
		os.Remove(fw.tmp.Name())
		return fmt.Errorf("closing index file: %w", err)
	}
	if err := os.Rename(fw.tmp.Name(), fw.path); err != nil {
		os.Remove(fw.tmp.Name())
		return fmt.Errorf("renaming index file: %w", err)
	}
	return nil
}

// Abort discards the staging file.
func (fw *FileWriter) Abort() error {
	closeErr := fw.tmp.Close()
	removeErr := os.Remove(fw.tmp.Name())
	if errors.Is(closeErr, os.ErrClosed) {
		closeErr = nil
	}
	return errors.Join(closeErr, removeErr)
}

// WriteFile atomically replaces path with the encoding of x.
func WriteFile(path string, x *Index) error {
	fw, err := Create(path)
	if err != nil {
		return err
	}
	return fw.Commit(x)
}

// ReadFile loads the index stored at path into a new Index.
func ReadFile(path string) (*Index, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()
	x := New(0)
	stats, err := x.Load(f)
	if err != nil {
		return nil, stats, err
	}
	return x, stats, nil
}
