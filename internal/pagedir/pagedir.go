// Package pagedir stores crawled pages in a page directory. Each page lives
// in a file named by its document ID and holds three sections: the URL line,
// the depth line, and the raw body. A ".crawler" marker file identifies a
// directory produced by the crawler.
package pagedir

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/errors"
)

const markerName = ".crawler"

// Page is one crawled page.
type Page struct {
	URL   string
	Depth int
	HTML  string
}

// Store reads and writes pages under a single directory.
type Store struct {
	dir string
}

// Dir returns the page directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Init creates the marker file in an existing directory.
func Init(dir string) (*Store, error) {
	f, err := os.Create(filepath.Join(dir, markerName))
	if err != nil {
		return nil, fmt.Errorf("%w: creating marker in %s: %v", apperrors.ErrPageDirectory, dir, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing marker in %s: %v", apperrors.ErrPageDirectory, dir, err)
	}
	return &Store{dir: dir}, nil
}

// Validate checks that dir is a directory carrying the crawler marker.
func Validate(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPageDirectory, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", apperrors.ErrPageDirectory, dir)
	}
	if _, err := os.Stat(filepath.Join(dir, markerName)); err != nil {
		return nil, fmt.Errorf("%w: %s has no %s marker", apperrors.ErrPageDirectory, dir, markerName)
	}
	return &Store{dir: dir}, nil
}

// Save writes page as document docID, replacing any previous file. The file
// is written under a temporary name and renamed into place.
func (s *Store) Save(page Page, docID int) error {
	if docID < 1 {
		return fmt.Errorf("saving page %s: invalid doc id %d", page.URL, docID)
	}
	final := s.path(docID)
	tmp, err := os.CreateTemp(s.dir, "."+strconv.Itoa(docID)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating page file for doc %d: %w", docID, err)
	}
	w := bufio.NewWriter(tmp)
	fmt.Fprintf(w, "%s\n%d\n", page.URL, page.Depth)
	w.WriteString(page.HTML)
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing page file for doc %d: %w", docID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing page file for doc %d: %w", docID, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming page file for doc %d: %w", docID, err)
	}
	return nil
}

// Load reads document docID. It returns ErrPageNotFound when no file exists
// and ErrMalformedPage when the URL or depth line is missing or invalid.
func (s *Store) Load(docID int) (Page, error) {
	f, err := os.Open(s.path(docID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Page{}, fmt.Errorf("%w: doc %d", apperrors.ErrPageNotFound, docID)
		}
		return Page{}, fmt.Errorf("opening doc %d: %w", docID, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	url, err := readLine(r)
	if err != nil || url == "" {
		return Page{}, fmt.Errorf("%w: doc %d has no URL line", apperrors.ErrMalformedPage, docID)
	}
	depthLine, err := readLine(r)
	if err != nil {
		return Page{}, fmt.Errorf("%w: doc %d has no depth line", apperrors.ErrMalformedPage, docID)
	}
	depth, err := strconv.Atoi(strings.TrimSpace(depthLine))
	if err != nil || depth < 0 {
		return Page{}, fmt.Errorf("%w: doc %d has depth %q", apperrors.ErrMalformedPage, docID, depthLine)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return Page{}, fmt.Errorf("reading body of doc %d: %w", docID, err)
	}
	return Page{URL: url, Depth: depth, HTML: string(body)}, nil
}

// URLOf returns only the URL line of document docID.
func (s *Store) URLOf(docID int) (string, error) {
	f, err := os.Open(s.path(docID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: doc %d", apperrors.ErrPageNotFound, docID)
		}
		return "", fmt.Errorf("opening doc %d: %w", docID, err)
	}
	defer f.Close()
	url, err := readLine(bufio.NewReader(f))
	if err != nil || url == "" {
		return "", fmt.Errorf("%w: doc %d has no URL line", apperrors.ErrMalformedPage, docID)
	}
	return url, nil
}

func (s *Store) path(docID int) string {
	return filepath.Join(s.dir, strconv.Itoa(docID))
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned as-is; io.EOF is reported only when nothing
// was read.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
