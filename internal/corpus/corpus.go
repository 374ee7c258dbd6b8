// Package corpus loads the text an optimisation run is scored against.
package corpus

import (
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dyluth/sweep/pkg/layout"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// Corpus is a set of texts encoded in the layout character set.
type Corpus struct {
	// Texts holds one entry per file, in path order.
	Texts [][]layout.Char
	// Files are the loaded paths relative to the root.
	Files []string
	// Digest is a BLAKE3 hex digest of every file's relative path and
	// encoded text.
	Digest string
}

// Chars returns the total number of characters across all texts.
func (c *Corpus) Chars() int {
	n := 0
	for _, t := range c.Texts {
		n += len(t)
	}
	return n
}

// FileError reports a corpus file that could not be loaded.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("corpus file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Load reads every regular file under root. Files ending in .xz are
// decompressed. Hidden files and directories are skipped. root may also be
// a single file.
func Load(root string) (*Corpus, error) {
	c := &Corpus{}
	h := blake3.New()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &FileError{Path: path, Err: err}
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		text, err := readFile(path)
		if err != nil {
			return &FileError{Path: path, Err: err}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			rel = filepath.Base(path)
		}

		c.Texts = append(c.Texts, text)
		c.Files = append(c.Files, rel)
		hashText(h, rel, text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(c.Texts) == 0 {
		return nil, fmt.Errorf("no corpus files found under %s", root)
	}

	c.Digest = hex.EncodeToString(h.Sum(nil))
	return c, nil
}

func readFile(path string) ([]layout.Char, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open xz stream: %w", err)
		}
		r = xr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read: %w", err)
	}
	return layout.Encode(string(data))
}

func hashText(h *blake3.Hasher, name string, text []layout.Char) {
	buf := make([]byte, 0, len(name)+len(text)+2)
	buf = append(buf, name...)
	buf = append(buf, 0)
	for _, ch := range text {
		buf = append(buf, byte(ch))
	}
	buf = append(buf, 0)
	h.Write(buf)
}

// FromStrings encodes in-memory texts as a corpus.
func FromStrings(texts ...string) (*Corpus, error) {
	c := &Corpus{}
	h := blake3.New()
	for i, s := range texts {
		chars, err := layout.Encode(s)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		name := fmt.Sprintf("text-%d", i)
		c.Texts = append(c.Texts, chars)
		c.Files = append(c.Files, name)
		hashText(h, name, chars)
	}
	c.Digest = hex.EncodeToString(h.Sum(nil))
	return c, nil
}
