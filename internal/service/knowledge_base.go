package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"kbqa/internal/domain"
	"kbqa/internal/metrics"
)

var (
	ErrNoDocuments      = errors.New("no documents in the knowledge base")
	ErrDocumentNotFound = errors.New("document not found")
)

const previewLength = 500

// Upload is one file handed to the knowledge base.
type Upload struct {
	Name string
	Data []byte
}

// DocumentInfo is the manage-view summary of a stored document.
type DocumentInfo struct {
	Filename string
	Words    int
}

// KnowledgeBase is a single-user session: uploaded documents, their chunks in
// the vector store and the search history. Actions are serialised.
type KnowledgeBase struct {
	mu sync.Mutex

	converter domain.Converter
	chunker   domain.Chunker
	store     domain.VectorStore
	answerer  *Answerer
	history   *History
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time

	docs []domain.Document
}

// KnowledgeBaseDeps wires a knowledge base.
type KnowledgeBaseDeps struct {
	Converter domain.Converter
	Chunker   domain.Chunker
	Store     domain.VectorStore
	Generator domain.Generator
	Answer    AnswerOptions
	History   int
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

func NewKnowledgeBase(deps KnowledgeBaseDeps) *KnowledgeBase {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &KnowledgeBase{
		converter: deps.Converter,
		chunker:   deps.Chunker,
		store:     deps.Store,
		answerer:  NewAnswerer("notes", deps.Store, deps.Generator, deps.Answer, deps.Metrics, log),
		history:   NewHistory(deps.History),
		metrics:   deps.Metrics,
		log:       log,
		now:       time.Now,
	}
}

// Start begins a session with an empty collection.
func (kb *KnowledgeBase) Start(ctx context.Context) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.docs = nil
	if err := kb.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset collection: %w", err)
	}
	return nil
}

// ExpandPaths resolves glob patterns. Patterns that match nothing are kept so
// that reading them reports the missing file.
func ExpandPaths(patterns []string) []string {
	var out []string
	for _, p := range patterns {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		out = append(out, matches...)
	}
	return out
}

// UploadPaths reads the files behind patterns and uploads them.
func (kb *KnowledgeBase) UploadPaths(ctx context.Context, patterns []string) (int, error) {
	paths := ExpandPaths(patterns)
	files := make([]Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return 0, err
		}
		files = append(files, Upload{Name: filepath.Base(p), Data: data})
	}
	return kb.Upload(ctx, files)
}

// Upload converts every file and adds the documents. Nothing is stored when
// any conversion fails.
func (kb *KnowledgeBase) Upload(ctx context.Context, files []Upload) (int, error) {
	docs := make([]domain.Document, 0, len(files))
	for _, f := range files {
		text, err := kb.converter.Convert(ctx, f.Name, f.Data)
		if err != nil {
			return 0, err
		}
		docs = append(docs, domain.Document{Filename: f.Name, Content: text})
	}
	return kb.AddDocuments(ctx, docs)
}

// AddDocuments indexes already converted documents and returns how many were
// added. A document whose filename is already stored replaces the old one and
// triggers a rebuild, so chunk ids stay unique. The session only lists the
// new documents once the store holds their chunks.
func (kb *KnowledgeBase) AddDocuments(ctx context.Context, docs []domain.Document) (int, error) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	next := append([]domain.Document(nil), kb.docs...)
	var fresh []domain.Document
	replaced := false
	for _, d := range docs {
		if i := find(next, d.Filename); i >= 0 {
			next[i] = d
			replaced = true
			continue
		}
		next = append(next, d)
		fresh = append(fresh, d)
	}
	if replaced {
		if err := kb.commit(ctx, next); err != nil {
			return 0, err
		}
		return len(docs), nil
	}
	for _, d := range fresh {
		if err := kb.index(ctx, d); err != nil {
			kb.restore(ctx)
			return 0, err
		}
	}
	kb.docs = next
	return len(docs), nil
}

func find(docs []domain.Document, filename string) int {
	for i, d := range docs {
		if d.Filename == filename {
			return i
		}
	}
	return -1
}

func (kb *KnowledgeBase) index(ctx context.Context, doc domain.Document) error {
	chunks, err := kb.chunker.Chunk(doc)
	if err != nil {
		return fmt.Errorf("chunk %s: %w", doc.Filename, err)
	}
	entries := make([]domain.VectorEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = c.Entry(nil)
	}
	if err := kb.store.Add(ctx, entries); err != nil {
		return fmt.Errorf("index %s: %w", doc.Filename, err)
	}
	kb.metrics.DocumentIngested(len(chunks))
	kb.log.Info("document indexed",
		zap.String("filename", doc.Filename),
		zap.Int("chunks", len(chunks)),
		zap.Int("words", WordCount(doc.Content)),
	)
	return nil
}

// rebuild resets the collection and indexes docs again.
func (kb *KnowledgeBase) rebuild(ctx context.Context, docs []domain.Document) error {
	if err := kb.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset collection: %w", err)
	}
	for _, d := range docs {
		if err := kb.index(ctx, d); err != nil {
			return err
		}
	}
	kb.metrics.Rebuild()
	kb.log.Info("collection rebuilt", zap.Int("documents", len(docs)))
	return nil
}

// commit rebuilds the collection from next and makes it the session's
// document list. On failure the collection is restored to the current list.
func (kb *KnowledgeBase) commit(ctx context.Context, next []domain.Document) error {
	if err := kb.rebuild(ctx, next); err != nil {
		kb.restore(ctx)
		return err
	}
	kb.docs = next
	return nil
}

// restore brings the collection back in line with kb.docs after a failed
// change.
func (kb *KnowledgeBase) restore(ctx context.Context) {
	if err := kb.rebuild(ctx, kb.docs); err != nil {
		kb.log.Error("collection out of sync with session", zap.Int("documents", len(kb.docs)), zap.Error(err))
	}
}

// Delete removes the document at index and rebuilds the collection.
func (kb *KnowledgeBase) Delete(ctx context.Context, index int) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if index < 0 || index >= len(kb.docs) {
		return fmt.Errorf("%w: index %d", ErrDocumentNotFound, index)
	}
	removed := kb.docs[index].Filename
	next := make([]domain.Document, 0, len(kb.docs)-1)
	next = append(next, kb.docs[:index]...)
	next = append(next, kb.docs[index+1:]...)
	if err := kb.commit(ctx, next); err != nil {
		return err
	}
	kb.log.Info("document deleted", zap.String("filename", removed))
	return nil
}

// Preview returns the first 500 characters of a document, with "..." when cut.
func (kb *KnowledgeBase) Preview(index int) (string, error) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if index < 0 || index >= len(kb.docs) {
		return "", fmt.Errorf("%w: index %d", ErrDocumentNotFound, index)
	}
	content := []rune(kb.docs[index].Content)
	if len(content) > previewLength {
		return string(content[:previewLength]) + "...", nil
	}
	return string(content), nil
}

// Ask answers a question from the stored documents and records it in the
// history.
func (kb *KnowledgeBase) Ask(ctx context.Context, question string) (Answer, error) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if len(kb.docs) == 0 {
		return Answer{}, ErrNoDocuments
	}
	ans, err := kb.answerer.Answer(ctx, question)
	if err != nil {
		return Answer{}, err
	}
	kb.history.Add(domain.HistoryRecord{
		Question:  question,
		Answer:    ans.Text,
		Source:    ans.Source,
		Timestamp: kb.now(),
	})
	return ans, nil
}

func (kb *KnowledgeBase) Documents() []DocumentInfo {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	out := make([]DocumentInfo, len(kb.docs))
	for i, d := range kb.docs {
		out[i] = DocumentInfo{Filename: d.Filename, Words: WordCount(d.Content)}
	}
	return out
}

func (kb *KnowledgeBase) Stats() Stats {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return ComputeStats(kb.docs)
}

func (kb *KnowledgeBase) History() []domain.HistoryRecord { return kb.history.Records() }

func (kb *KnowledgeBase) ClearHistory() { kb.history.Clear() }
