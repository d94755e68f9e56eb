package document

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// SaveWithChunks inserts the document and all of its chunks in one
// transaction. A failure anywhere rolls the whole batch back so a document
// is never visible with a partial chunk set.
func (r *PostgresRepo) SaveWithChunks(ctx context.Context, doc *Document, chunks []Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO documents (id, owner_id, filename, file_type, size_bytes, storage_path) VALUES ($1, $2, $3, $4, $5, $6) RETURNING uploaded_at`
	if err := tx.QueryRowContext(ctx, query, doc.ID, doc.OwnerID, doc.Filename, doc.FileType, doc.SizeBytes, doc.StoragePath).Scan(&doc.UploadedAt); err != nil {
		return err
	}

	if err := insertChunks(ctx, tx, doc.ID, chunks); err != nil {
		return err
	}

	return tx.Commit()
}

// ReplaceChunks swaps a document's chunk set atomically, used by re-sync.
func (r *PostgresRepo) ReplaceChunks(ctx context.Context, documentID string, chunks []Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return err
	}

	if err := insertChunks(ctx, tx, documentID, chunks); err != nil {
		return err
	}

	return tx.Commit()
}

func insertChunks(ctx context.Context, tx *sql.Tx, documentID string, chunks []Chunk) error {
	query := `INSERT INTO chunks (id, document_id, ordinal, content, size_chars) VALUES ($1, $2, $3, $4, $5)`
	for _, c := range chunks {
		if _, err := tx.ExecContext(ctx, query, c.ID, documentID, c.Ordinal, c.Content, c.SizeChars); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	query := `SELECT d.id, d.owner_id, d.filename, d.file_type, d.size_bytes, d.uploaded_at, COUNT(c.id)
		FROM documents d
		LEFT JOIN chunks c ON c.document_id = d.id
		WHERE d.owner_id = $1
		GROUP BY d.id
		ORDER BY d.uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Filename, &d.FileType, &d.SizeBytes, &d.UploadedAt, &d.ChunkCount); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Document, error) {
	d := &Document{}
	query := `SELECT id, owner_id, filename, file_type, size_bytes, storage_path, uploaded_at FROM documents WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.OwnerID, &d.Filename, &d.FileType, &d.SizeBytes, &d.StoragePath, &d.UploadedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes the document; chunks go with it via ON DELETE CASCADE.
func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ChunksByOwner returns every chunk the owner can search, newest document
// first, chunks in document order. The scorer relies on this ordering for
// its recency tie-break.
func (r *PostgresRepo) ChunksByOwner(ctx context.Context, ownerID string) ([]OwnedChunk, error) {
	query := `SELECT c.content, d.filename
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.owner_id = $1
		ORDER BY d.uploaded_at DESC, c.ordinal ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []OwnedChunk
	for rows.Next() {
		var c OwnedChunk
		if err := rows.Scan(&c.Content, &c.Filename); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
