package index

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

// Postgres is a pgvector-backed index. Each collection maps to a table with
// a fixed vector dimension; similarity is cosine via the <=> operator.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection and returns the index adapter.
func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Close closes the database connection.
func (p *Postgres) Close() error {
	return p.db.Close()
}

var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func validCollection(name string) error {
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("invalid collection name: %q", name)
	}
	return nil
}

// HasCollection reports whether the collection's table exists.
func (p *Postgres) HasCollection(ctx context.Context, collection string) (bool, error) {
	if err := validCollection(collection); err != nil {
		return false, err
	}
	var oid sql.NullInt64
	err := p.db.QueryRowContext(ctx, `SELECT to_regclass($1)::oid`, collection).Scan(&oid)
	if err != nil {
		return false, fmt.Errorf("check collection: %w", err)
	}
	return oid.Valid, nil
}

// EnsureCollection creates the collection table (and the pgvector extension)
// if absent.
func (p *Postgres) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	if err := validCollection(collection); err != nil {
		return err
	}
	if _, err := p.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create extension: %w", err)
	}

	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id uuid PRIMARY KEY,
		content text NOT NULL,
		source text NOT NULL,
		file_type text NOT NULL,
		file_size_kb double precision NOT NULL,
		page_count int NOT NULL,
		chunk_index int NOT NULL,
		total_chunks int NOT NULL,
		vector vector(%d) NOT NULL
	)`, collection, dimension)
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Upsert inserts the points in one transaction.
func (p *Postgres) Upsert(ctx context.Context, collection string, points []port.IndexPoint) error {
	if len(points) == 0 {
		return nil
	}
	if err := validCollection(collection); err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, content, source, file_type, file_size_kb, page_count, chunk_index, total_chunks, vector)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::vector)`, collection))
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, pt := range points {
		if _, err := stmt.ExecContext(ctx,
			pt.ID, pt.Content, pt.Meta.Source, pt.Meta.FileType, pt.Meta.FileSizeKB,
			pt.Meta.PageCount, pt.Meta.ChunkIndex, pt.Meta.TotalChunks, vectorToString(pt.Vector),
		); err != nil {
			return fmt.Errorf("insert point: %w", err)
		}
	}

	return tx.Commit()
}

// Search performs a cosine similarity search, ordered most similar first.
func (p *Postgres) Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.RetrievedDocument, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT content, source, file_type, file_size_kb, page_count, chunk_index, total_chunks,
		        1 - (vector <=> $1::vector) AS similarity
		 FROM %s
		 ORDER BY vector <=> $1::vector
		 LIMIT $2`, collection)

	rows, err := p.db.QueryContext(ctx, query, vectorToString(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievedDocument
	for rows.Next() {
		var doc domain.RetrievedDocument
		if err := rows.Scan(
			&doc.Content, &doc.Meta.Source, &doc.Meta.FileType, &doc.Meta.FileSizeKB,
			&doc.Meta.PageCount, &doc.Meta.ChunkIndex, &doc.Meta.TotalChunks, &doc.Score,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, doc)
	}
	return results, rows.Err()
}

// vectorToString converts a float32 slice to pgvector string format:
// [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = fmt.Sprintf("%g", val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
