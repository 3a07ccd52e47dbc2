// Package sqlite provides a SQLite-backed vector store. Embeddings are
// stored as little-endian float32 blobs and searched with a course-scoped
// linear scan, which is fast enough for per-course corpus sizes.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/reef-labs/reefrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/reef-labs/reefrag/internal/core/domain"
	"github.com/reef-labs/reefrag/internal/core/ports/driven"
	"github.com/reef-labs/reefrag/internal/logger"
)

// versionKey is the embedding_meta row holding the model version marker.
const versionKey = "model_version"

// Store is a SQLite-based vector store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.VectorStore = (*Store)(nil)

// NewStore creates a new SQLite vector store at the specified data
// directory. If dataDir is empty, defaults to ~/.reefrag/data/vectors.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".reefrag", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Initialize checks the persisted model version marker. A mismatch wipes
// all stored vectors and rewrites the marker; callers reindex afterwards.
func (s *Store) Initialize(ctx context.Context, modelVersion int) error {
	var stored int
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM embedding_meta WHERE key = ?", versionKey).Scan(&stored)

	switch {
	case err == sql.ErrNoRows:
		// Fresh store, record the version
	case err != nil:
		return fmt.Errorf("reading model version: %w", err)
	case stored == modelVersion:
		return nil
	default:
		logger.Info("embedding model version changed (%d -> %d), clearing vector store", stored, modelVersion)
		if _, err := s.db.ExecContext(ctx, "DELETE FROM vector_records"); err != nil {
			return fmt.Errorf("clearing vector records: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO embedding_meta (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, versionKey, modelVersion)
	if err != nil {
		return fmt.Errorf("writing model version: %w", err)
	}
	return nil
}

// Index stores one record per chunk/embedding pair. Existing records for
// the chunks' documents are replaced in the same transaction.
func (s *Store) Index(ctx context.Context, chunks []domain.TextChunk, embeddings [][]float32, courseID string) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks, %d embeddings",
			domain.ErrLengthMismatch, len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Replace any prior index of the same documents
	seen := make(map[string]bool)
	for _, chunk := range chunks {
		if seen[chunk.DocumentID] {
			continue
		}
		seen[chunk.DocumentID] = true
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM vector_records WHERE document_id = ?", chunk.DocumentID); err != nil {
			return fmt.Errorf("clearing prior records: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vector_records
			(chunk_id, document_id, course_id, document_type, embedding, text, heading, page, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(embeddings[i])

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, courseID,
			string(chunk.DocumentType), embeddingBlob, chunk.Text,
			chunk.Heading, chunk.Page, chunk.Position); err != nil {
			return fmt.Errorf("saving record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search scans the course's records and returns the topK by cosine
// similarity, descending. Ties keep the stable chunk_id order of the scan.
func (s *Store) Search(ctx context.Context, query []float32, courseID string, topK int) ([]domain.VectorSearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, document_id, course_id, document_type, embedding, text, heading, page, position
		FROM vector_records WHERE course_id = ?
		ORDER BY chunk_id
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var results []domain.VectorSearchResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.VectorSearchResult{
			Record:     *record,
			Similarity: domain.CosineSimilarity(query, record.Embedding),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteDocument removes all records of one document.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM vector_records WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting document records: %w", err)
	}
	return nil
}

// DeleteCourse removes all records of one course.
func (s *Store) DeleteCourse(ctx context.Context, courseID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM vector_records WHERE course_id = ?", courseID)
	if err != nil {
		return fmt.Errorf("deleting course records: %w", err)
	}
	return nil
}

// DeleteAll removes every record, keeping the version marker.
func (s *Store) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM vector_records")
	if err != nil {
		return fmt.Errorf("deleting all records: %w", err)
	}
	return nil
}

// ChunkCount returns the number of records stored for a document.
func (s *Store) ChunkCount(ctx context.Context, documentID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vector_records WHERE document_id = ?", documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// Documents returns the distinct indexed documents of a course with their
// text reassembled from chunks in position order. The display name is the
// first chunk's heading, falling back to the document ID.
func (s *Store) Documents(ctx context.Context, courseID string) ([]domain.CandidateDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, text, heading
		FROM vector_records WHERE course_id = ?
		ORDER BY document_id, position
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.CandidateDocument //nolint:prealloc // size unknown from query
	var current *domain.CandidateDocument
	for rows.Next() {
		var documentID, text, heading string
		if err := rows.Scan(&documentID, &text, &heading); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}

		if current == nil || current.ID != documentID {
			name := heading
			if name == "" {
				name = documentID
			}
			docs = append(docs, domain.CandidateDocument{ID: documentID, Name: name})
			current = &docs[len(docs)-1]
		}

		if current.Text != "" {
			current.Text += "\n\n"
		}
		current.Text += text
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// scanRecord scans a vector record from *sql.Rows.
func scanRecord(rows *sql.Rows) (*domain.VectorRecord, error) {
	var record domain.VectorRecord
	var documentType string
	var embeddingBlob []byte

	if err := rows.Scan(&record.ChunkID, &record.DocumentID, &record.CourseID,
		&documentType, &embeddingBlob, &record.Text, &record.Heading,
		&record.Page, &record.Position); err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	record.DocumentType = domain.DocumentType(documentType)
	record.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &record, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
