package vectorstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leefowlercu/pkmgraph/internal/pkmerrors"
)

// Record is a stored vector item as returned by Get.
type Record struct {
	ID       string
	Document string
	Metadata map[string]any
}

// QueryResult is a single nearest-neighbor match from Query.
type QueryResult struct {
	ID         string
	Document   string
	Metadata   map[string]any
	Distance   float64
	Similarity float64
}

// OpenOrCreateCollection creates the vec0 virtual table and its metadata
// companion table for name if they do not already exist, recording its
// embedding width. Calling this again for an existing collection with a
// different dimensions value is an error: the caller should instead pick a
// new collection name (embeddings.CollectionName already does this whenever
// the provider or model changes).
func (s *Store) OpenOrCreateCollection(name string, dimensions int) error {
	if err := validCollectionName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.dim[name]; ok {
		if existing != dimensions {
			return pkmerrors.New(pkmerrors.KindVectorStore, "vectorstore.OpenOrCreateCollection",
				fmt.Sprintf("collection %q already exists with %d dimensions, not %d", name, existing, dimensions))
		}
		return nil
	}

	if _, err := s.db.Exec(fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(embedding float[%d])`,
		name, dimensions,
	)); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.OpenOrCreateCollection", "failed to create vec0 table", err)
	}

	if _, err := s.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			rowid INTEGER PRIMARY KEY,
			id TEXT UNIQUE NOT NULL,
			document TEXT,
			metadata TEXT,
			created_at INTEGER NOT NULL
		)
	`, metaTable(name))); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.OpenOrCreateCollection", "failed to create metadata table", err)
	}

	if _, err := s.db.Exec(`INSERT INTO collections(name, dimensions) VALUES (?, ?)`, name, dimensions); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.OpenOrCreateCollection", "failed to record collection", err)
	}

	s.dim[name] = dimensions
	return nil
}

// Item is a single vector to add via Add or AddBatch.
type Item struct {
	ID        string
	Document  string
	Embedding []float32
	Metadata  map[string]any
}

// Add inserts or replaces a single vector item in collection.
func (s *Store) Add(collection string, item Item) error {
	return s.AddBatch(collection, []Item{item})
}

// AddBatch inserts or replaces multiple vector items in a single transaction.
func (s *Store) AddBatch(collection string, items []Item) error {
	if err := validCollectionName(collection); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dims, ok := s.dim[collection]
	if !ok {
		return pkmerrors.New(pkmerrors.KindVectorStore, "vectorstore.AddBatch", fmt.Sprintf("collection %q does not exist", collection))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.AddBatch", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	meta := metaTable(collection)

	for _, item := range items {
		if len(item.Embedding) != dims {
			return pkmerrors.New(pkmerrors.KindVectorStore, "vectorstore.AddBatch",
				fmt.Sprintf("embedding for %q has %d dimensions, collection %q expects %d", item.ID, len(item.Embedding), collection, dims))
		}

		var existingRowid int64
		lookupErr := tx.QueryRow(fmt.Sprintf(`SELECT rowid FROM %s WHERE id = ?`, meta), item.ID).Scan(&existingRowid)
		if lookupErr == nil {
			if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE rowid = ?`, collection), existingRowid); err != nil {
				return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.AddBatch", "failed to delete stale vector", err)
			}
			if err := insertVector(tx, collection, meta, existingRowid, item); err != nil {
				return err
			}
			continue
		}

		vec, err := json.Marshal(item.Embedding)
		if err != nil {
			return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.AddBatch", "failed to marshal embedding", err)
		}
		res, err := tx.Exec(fmt.Sprintf(`INSERT INTO %s(embedding) VALUES (?)`, collection), string(vec))
		if err != nil {
			return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.AddBatch", "failed to insert vector", err)
		}
		rowid, err := res.LastInsertId()
		if err != nil {
			return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.AddBatch", "failed to read inserted rowid", err)
		}
		if err := insertMeta(tx, meta, rowid, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.AddBatch", "failed to commit transaction", err)
	}
	return nil
}

func insertVector(tx *sql.Tx, collection, meta string, rowid int64, item Item) error {
	vec, err := json.Marshal(item.Embedding)
	if err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.AddBatch", "failed to marshal embedding", err)
	}
	if _, err := tx.Exec(fmt.Sprintf(`INSERT INTO %s(rowid, embedding) VALUES (?, ?)`, collection), rowid, string(vec)); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.AddBatch", "failed to re-insert vector", err)
	}
	return insertMeta(tx, meta, rowid, item)
}

func insertMeta(tx *sql.Tx, meta string, rowid int64, item Item) error {
	metaJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.AddBatch", "failed to marshal metadata", err)
	}
	if _, err := tx.Exec(fmt.Sprintf(
		`INSERT OR REPLACE INTO %s(rowid, id, document, metadata, created_at) VALUES (?, ?, ?, ?, ?)`, meta,
	), rowid, item.ID, item.Document, string(metaJSON), time.Now().Unix()); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.AddBatch", "failed to upsert metadata", err)
	}
	return nil
}

// Delete removes the vectors and metadata for the given ids from collection.
func (s *Store) Delete(collection string, ids []string) error {
	if err := validCollectionName(collection); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dim[collection]; !ok {
		return pkmerrors.New(pkmerrors.KindVectorStore, "vectorstore.Delete", fmt.Sprintf("collection %q does not exist", collection))
	}

	meta := metaTable(collection)
	tx, err := s.db.Begin()
	if err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Delete", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		var rowid int64
		err := tx.QueryRow(fmt.Sprintf(`SELECT rowid FROM %s WHERE id = ?`, meta), id).Scan(&rowid)
		if err != nil {
			continue
		}
		if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE rowid = ?`, collection), rowid); err != nil {
			return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Delete", "failed to delete vector", err)
		}
		if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE rowid = ?`, meta), rowid); err != nil {
			return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Delete", "failed to delete metadata", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Delete", "failed to commit transaction", err)
	}
	return nil
}

// Get returns stored records by id. If ids is empty, every record in the
// collection is returned.
func (s *Store) Get(collection string, ids []string) ([]Record, error) {
	if err := validCollectionName(collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.dim[collection]; !ok {
		return nil, pkmerrors.New(pkmerrors.KindVectorStore, "vectorstore.Get", fmt.Sprintf("collection %q does not exist", collection))
	}

	meta := metaTable(collection)

	var rows *sql.Rows
	var err error
	if len(ids) == 0 {
		rows, err = s.db.Query(fmt.Sprintf(`SELECT id, document, metadata FROM %s`, meta))
	} else {
		placeholders := make([]any, len(ids))
		query := fmt.Sprintf(`SELECT id, document, metadata FROM %s WHERE id IN (`, meta)
		for i, id := range ids {
			if i > 0 {
				query += ","
			}
			query += "?"
			placeholders[i] = id
		}
		query += ")"
		rows, err = s.db.Query(query, placeholders...)
	}
	if err != nil {
		return nil, pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Get", "failed to query records", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var metaJSON string
		if err := rows.Scan(&r.ID, &r.Document, &metaJSON); err != nil {
			return nil, pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Get", "failed to scan record", err)
		}
		if metaJSON != "" {
			json.Unmarshal([]byte(metaJSON), &r.Metadata)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Query finds the k nearest neighbors to embedding in collection. The
// adapter does not embed server-side, so the caller always supplies a
// precomputed embedding vector; distance is non-negative and
// similarity = 1 - distance.
func (s *Store) Query(collection string, embedding []float32, k int) ([]QueryResult, error) {
	if err := validCollectionName(collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dims, ok := s.dim[collection]
	if !ok {
		return nil, pkmerrors.New(pkmerrors.KindVectorStore, "vectorstore.Query", fmt.Sprintf("collection %q does not exist", collection))
	}
	if len(embedding) != dims {
		return nil, pkmerrors.New(pkmerrors.KindVectorStore, "vectorstore.Query",
			fmt.Sprintf("query embedding has %d dimensions, collection %q expects %d", len(embedding), collection, dims))
	}

	vec, err := json.Marshal(embedding)
	if err != nil {
		return nil, pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Query", "failed to marshal query embedding", err)
	}

	meta := metaTable(collection)
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT m.id, m.document, m.metadata, v.distance
		FROM %s v
		JOIN %s m ON m.rowid = v.rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, collection, meta), string(vec), k)
	if err != nil {
		return nil, pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Query", "failed to run nearest-neighbor query", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var r QueryResult
		var metaJSON string
		if err := rows.Scan(&r.ID, &r.Document, &metaJSON, &r.Distance); err != nil {
			return nil, pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Query", "failed to scan match", err)
		}
		if metaJSON != "" {
			json.Unmarshal([]byte(metaJSON), &r.Metadata)
		}
		r.Similarity = 1 - r.Distance
		results = append(results, r)
	}
	return results, rows.Err()
}
