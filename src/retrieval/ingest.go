package retrieval

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Protocol-Lattice/research-agent/src/concurrent"
	"github.com/Protocol-Lattice/research-agent/src/retrieval/store"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// DefaultExtensions are the file types LoadDir reads when none are given.
var DefaultExtensions = []string{".txt", ".md"}

// Document is one page of a source file.
type Document struct {
	Source string
	Page   string
	Text   string
}

// IngestOptions controls chunking and embedding fan-out. A zero ChunkSize
// selects DefaultChunkSize; a negative ChunkOverlap selects
// DefaultChunkOverlap and zero disables overlap.
type IngestOptions struct {
	ChunkSize    int
	ChunkOverlap int
	Workers      int
}

// LoadDir walks dir and returns one Document per page of every file whose
// extension is in exts. Sources are slash-separated paths relative to dir.
// Pages are separated by form feeds and numbered from 1; single-page files
// carry no page number.
func LoadDir(dir string, exts []string) ([]Document, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		allowed[e] = true
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if allowed[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	var docs []Document
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		docs = append(docs, SplitPages(sourceName(dir, path), string(raw))...)
	}
	return docs, nil
}

// sourceName keeps files with the same base name in different
// subdirectories apart.
func sourceName(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// SplitPages splits text on form feeds into page documents.
func SplitPages(source, text string) []Document {
	pages := strings.Split(text, "\f")
	var docs []Document
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		doc := Document{Source: source, Text: page}
		if len(pages) > 1 {
			doc.Page = strconv.Itoa(i + 1)
		}
		docs = append(docs, doc)
	}
	return docs
}

// ChunkText splits text into windows of size runes that overlap by overlap
// runes. Whitespace-only windows are dropped.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size - overlap {
		end := min(start+size, len(runes))
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

// Ingest chunks docs, embeds every chunk with a bounded worker pool and
// upserts the result into the pipeline's collection. It returns the number
// of chunks written.
func (p *Pipeline) Ingest(ctx context.Context, docs []Document, opts IngestOptions) (int, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = DefaultChunkOverlap
	}

	var chunks []store.Chunk
	for _, doc := range docs {
		for i, text := range ChunkText(doc.Text, opts.ChunkSize, opts.ChunkOverlap) {
			chunks = append(chunks, store.Chunk{
				ID:         chunkID(doc, i),
				Collection: p.Collection,
				Source:     doc.Source,
				Page:       doc.Page,
				Text:       text,
			})
		}
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	embedded, err := concurrent.ParallelMap(ctx, chunks, opts.Workers, func(ctx context.Context, c store.Chunk) (store.Chunk, error) {
		vec, err := p.Embedder.Embed(ctx, c.Text)
		if err != nil {
			return c, fmt.Errorf("embed %s: %w", c.Source, err)
		}
		c.Embedding = vec
		return c, nil
	})
	if err != nil {
		return 0, err
	}

	if si, ok := p.Store.(store.SchemaInitializer); ok {
		if err := si.CreateSchema(ctx, len(embedded[0].Embedding)); err != nil {
			return 0, err
		}
	}
	if err := p.Store.Upsert(ctx, embedded); err != nil {
		return 0, fmt.Errorf("upsert %d chunks: %w", len(embedded), err)
	}
	p.logger().Info("retrieval: ingested documents", "documents", len(docs), "chunks", len(embedded), "collection", p.Collection)
	return len(embedded), nil
}

// chunkID is stable for a given source, page and position so re-ingesting
// a corpus replaces chunks instead of duplicating them.
func chunkID(doc Document, idx int) string {
	sum := sha1.Sum([]byte(doc.Source + "\x00" + doc.Page + "\x00" + strconv.Itoa(idx)))
	return hex.EncodeToString(sum[:])
}
