package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// Upsert stores the record, fully replacing any existing record with the same ID.
func (r *MemoryRepo) Upsert(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc.Clone()
	return nil
}

// GetByID returns a record by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc.Clone(), nil
}

// List returns all records ordered oldest-first by creation time.
func (r *MemoryRepo) List(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Document, 0, len(r.data))
	for _, doc := range r.data {
		out = append(out, doc.Clone())
	}
	sortDocuments(out)
	return out, nil
}

// ListByStudent returns a student's records ordered oldest-first.
func (r *MemoryRepo) ListByStudent(ctx context.Context, studentID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Document, 0)
	for _, doc := range r.data {
		if doc.StudentID == studentID {
			out = append(out, doc.Clone())
		}
	}
	sortDocuments(out)
	return out, nil
}

// Update applies mutate to the stored record under the repo lock, making the
// mutation atomic per record. The mutated record is stored and returned; any
// error from mutate leaves the record untouched.
func (r *MemoryRepo) Update(ctx context.Context, id string, mutate func(doc *Document) error) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}

	doc := stored.Clone()
	if err := mutate(&doc); err != nil {
		return Document{}, err
	}
	r.data[id] = doc.Clone()
	return doc, nil
}

func sortDocuments(docs []Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
}

var _ Repo = (*MemoryRepo)(nil)
