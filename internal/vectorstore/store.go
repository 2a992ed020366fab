// Package vectorstore adapts note and chunk embeddings onto a sqlite-vec
// backed vector index. Each embeddings provider/model pair gets its own
// named collection (see embeddings.CollectionName) so vectors from
// incompatible spaces never share a similarity index.
package vectorstore

import (
	"database/sql"
	"fmt"
	"regexp"
	"sync"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/leefowlercu/pkmgraph/internal/pkmerrors"
)

// Store is a sqlite-vec backed vector store. A single Store may hold many
// named collections, one per embeddings provider/model combination in use.
type Store struct {
	mu  sync.RWMutex
	db  *sql.DB
	dim map[string]int
}

// collectionNamePattern restricts collection names to what is safe to splice
// into virtual table DDL; callers never pass user-controlled collection names.
var collectionNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Open opens (creating if necessary) the sqlite-vec database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Open", "failed to open database", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			dimensions INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Open", "failed to create collections table", err)
	}

	s := &Store{db: db, dim: make(map[string]int)}

	rows, err := db.Query(`SELECT name, dimensions FROM collections`)
	if err != nil {
		db.Close()
		return nil, pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Open", "failed to read collections", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var dims int
		if err := rows.Scan(&name, &dims); err != nil {
			db.Close()
			return nil, pkmerrors.Wrap(pkmerrors.KindVectorStore, "vectorstore.Open", "failed to scan collection row", err)
		}
		s.dim[name] = dims
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func validCollectionName(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return pkmerrors.New(pkmerrors.KindVectorStore, "vectorstore", fmt.Sprintf("invalid collection name %q", name))
	}
	return nil
}

func metaTable(name string) string {
	return name + "_meta"
}
