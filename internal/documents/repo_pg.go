package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres. Log columns are stored as JSONB so
// the append-only history round-trips without a join table.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `
id, title, type, student_id, student_name, content, target_program, target_university,
file_url, edited_file_url, edited_file_key, ai_score, ai_feedback, suggestions, edit_history,
status, feedback_comments, created_at, updated_at`

// Upsert inserts the record, fully replacing an existing row with the same ID.
func (r *PGRepo) Upsert(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id, title, type, student_id, student_name, content, target_program, target_university,
    file_url, edited_file_url, edited_file_key, ai_score, ai_feedback, suggestions, edit_history,
    status, feedback_comments, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    type = EXCLUDED.type,
    student_id = EXCLUDED.student_id,
    student_name = EXCLUDED.student_name,
    content = EXCLUDED.content,
    target_program = EXCLUDED.target_program,
    target_university = EXCLUDED.target_university,
    file_url = EXCLUDED.file_url,
    edited_file_url = EXCLUDED.edited_file_url,
    edited_file_key = EXCLUDED.edited_file_key,
    ai_score = EXCLUDED.ai_score,
    ai_feedback = EXCLUDED.ai_feedback,
    suggestions = EXCLUDED.suggestions,
    edit_history = EXCLUDED.edit_history,
    status = EXCLUDED.status,
    feedback_comments = EXCLUDED.feedback_comments,
    created_at = EXCLUDED.created_at,
    updated_at = EXCLUDED.updated_at`

	args, err := documentArgs(doc)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query, args...)
	return err
}

// GetByID fetches a record by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 LIMIT 1`
	return scanDocument(r.DB.QueryRowContext(ctx, query, id))
}

// List returns all records ordered oldest-first.
func (r *PGRepo) List(ctx context.Context) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// ListByStudent returns a student's records ordered oldest-first.
func (r *PGRepo) ListByStudent(ctx context.Context, studentID string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE student_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// Update applies mutate inside a transaction holding a row lock, making the
// mutation atomic per record.
func (r *PGRepo) Update(ctx context.Context, id string, mutate func(doc *Document) error) (Document, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Document{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 FOR UPDATE`
	doc, err := scanDocument(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return Document{}, err
	}

	if err := mutate(&doc); err != nil {
		return Document{}, err
	}

	const update = `
UPDATE documents SET
    title = $2, type = $3, student_id = $4, student_name = $5, content = $6,
    target_program = $7, target_university = $8, file_url = $9, edited_file_url = $10,
    edited_file_key = $11, ai_score = $12, ai_feedback = $13, suggestions = $14,
    edit_history = $15, status = $16, feedback_comments = $17, created_at = $18, updated_at = $19
WHERE id = $1`

	args, err := documentArgs(doc)
	if err != nil {
		return Document{}, err
	}
	if _, err := tx.ExecContext(ctx, update, args...); err != nil {
		return Document{}, err
	}
	if err := tx.Commit(); err != nil {
		return Document{}, fmt.Errorf("commit tx: %w", err)
	}
	return doc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc              Document
		targetProgram    sql.NullString
		targetUniversity sql.NullString
		fileURL          sql.NullString
		editedFileURL    sql.NullString
		editedFileKey    sql.NullString
		aiScore          sql.NullInt64
		aiFeedbackRaw    []byte
		suggestionsRaw   []byte
		historyRaw       []byte
	)
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Type,
		&doc.StudentID,
		&doc.StudentName,
		&doc.Content,
		&targetProgram,
		&targetUniversity,
		&fileURL,
		&editedFileURL,
		&editedFileKey,
		&aiScore,
		&aiFeedbackRaw,
		&suggestionsRaw,
		&historyRaw,
		&doc.Status,
		&doc.FeedbackComments,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}

	doc.TargetProgram = targetProgram.String
	doc.TargetUniversity = targetUniversity.String
	doc.FileURL = fileURL.String
	doc.EditedFileURL = editedFileURL.String
	doc.EditedFileKey = editedFileKey.String
	if aiScore.Valid {
		score := int(aiScore.Int64)
		doc.AIScore = &score
	}
	if len(aiFeedbackRaw) > 0 {
		if err := json.Unmarshal(aiFeedbackRaw, &doc.AIFeedback); err != nil {
			return Document{}, fmt.Errorf("decode ai_feedback: %w", err)
		}
	}
	if len(suggestionsRaw) > 0 {
		if err := json.Unmarshal(suggestionsRaw, &doc.Suggestions); err != nil {
			return Document{}, fmt.Errorf("decode suggestions: %w", err)
		}
	}
	if len(historyRaw) > 0 {
		if err := json.Unmarshal(historyRaw, &doc.EditHistory); err != nil {
			return Document{}, fmt.Errorf("decode edit_history: %w", err)
		}
	}
	return doc, nil
}

func collectDocuments(rows *sql.Rows) ([]Document, error) {
	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func documentArgs(doc Document) ([]any, error) {
	aiFeedback, err := json.Marshal(emptyIfNilStrings(doc.AIFeedback))
	if err != nil {
		return nil, fmt.Errorf("encode ai_feedback: %w", err)
	}
	suggestions, err := json.Marshal(emptyIfNilSuggestions(doc.Suggestions))
	if err != nil {
		return nil, fmt.Errorf("encode suggestions: %w", err)
	}
	history, err := json.Marshal(emptyIfNilEdits(doc.EditHistory))
	if err != nil {
		return nil, fmt.Errorf("encode edit_history: %w", err)
	}

	var aiScore sql.NullInt64
	if doc.AIScore != nil {
		aiScore = sql.NullInt64{Int64: int64(*doc.AIScore), Valid: true}
	}

	return []any{
		doc.ID,
		doc.Title,
		doc.Type,
		doc.StudentID,
		doc.StudentName,
		doc.Content,
		nullString(doc.TargetProgram),
		nullString(doc.TargetUniversity),
		nullString(doc.FileURL),
		nullString(doc.EditedFileURL),
		nullString(doc.EditedFileKey),
		aiScore,
		aiFeedback,
		suggestions,
		history,
		doc.Status,
		doc.FeedbackComments,
		doc.CreatedAt,
		doc.UpdatedAt,
	}, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func emptyIfNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func emptyIfNilSuggestions(in []Suggestion) []Suggestion {
	if in == nil {
		return []Suggestion{}
	}
	return in
}

func emptyIfNilEdits(in []Edit) []Edit {
	if in == nil {
		return []Edit{}
	}
	return in
}

var _ Repo = (*PGRepo)(nil)
