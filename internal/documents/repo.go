package documents

import "context"

// Repo defines persistence operations for document records. Update applies
// the mutation atomically with respect to the record's ID; implementations
// must not interleave two mutations of the same record.
type Repo interface {
	Upsert(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	List(ctx context.Context) ([]Document, error)
	ListByStudent(ctx context.Context, studentID string) ([]Document, error)
	Update(ctx context.Context, id string, mutate func(doc *Document) error) (Document, error)
}
