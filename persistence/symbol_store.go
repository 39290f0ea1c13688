// Package persistence stores finished analysis results in a SQLite index so
// repeated runs and other tools can query symbols without re-driving a
// language server.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"github.com/yannbam/lspmap/analyzer"
)

// SymbolStore persists flattened symbol trees in a SQLite database.
type SymbolStore struct {
	db *sql.DB
}

// NewSymbolStore opens or creates the database at dbPath.
func NewSymbolStore(dbPath string) (*SymbolStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, err
	}
	store := &SymbolStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SymbolStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		path TEXT PRIMARY KEY,
		language TEXT,
		symbol_count INTEGER,
		indexed_at TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS symbols (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file TEXT NOT NULL,
		parent_id INTEGER,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		start_line INTEGER,
		start_char INTEGER,
		end_line INTEGER,
		end_char INTEGER,
		preview TEXT,
		documentation TEXT,
		type_params TEXT,
		supertypes TEXT,
		def_file TEXT,
		def_line INTEGER,
		FOREIGN KEY(file) REFERENCES files(path) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
	CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *SymbolStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ReplaceFile swaps the stored forest for one file inside a transaction.
func (s *SymbolStore) ReplaceFile(file, lang string, nodes []*analyzer.SymbolNode) error {
	if file == "" {
		return errors.New("file path required")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM files WHERE path = ?", file); err != nil {
		return err
	}
	count := countNodes(nodes)
	if _, err := tx.Exec(
		"INSERT INTO files (path, language, symbol_count, indexed_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)",
		file, lang, count,
	); err != nil {
		return err
	}
	for _, node := range nodes {
		if err := insertNode(tx, file, nil, node); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertNode(tx *sql.Tx, file string, parentID *int64, node *analyzer.SymbolNode) error {
	typeParams, err := marshalOrNull(node.TypeParameters)
	if err != nil {
		return err
	}
	supertypes, err := marshalOrNull(node.Supertypes)
	if err != nil {
		return err
	}
	var defFile interface{}
	var defLine interface{}
	if node.Definition != nil {
		defFile = node.Definition.File
		defLine = int64(node.Definition.Range.Start.Line)
	}
	res, err := tx.Exec(`
		INSERT INTO symbols (
			file, parent_id, name, kind, start_line, start_char, end_line, end_char,
			preview, documentation, type_params, supertypes, def_file, def_line
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		file, parentValue(parentID), node.Name, node.Kind,
		int64(node.Range.Start.Line), int64(node.Range.Start.Character),
		int64(node.Range.End.Line), int64(node.Range.End.Character),
		node.Preview, node.Documentation, typeParams, supertypes, defFile, defLine,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := insertNode(tx, file, &id, child); err != nil {
			return err
		}
	}
	return nil
}

func parentValue(parentID *int64) interface{} {
	if parentID == nil {
		return nil
	}
	return *parentID
}

func marshalOrNull(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case []string:
		if len(val) == 0 {
			return nil, nil
		}
	case []analyzer.Supertype:
		if len(val) == 0 {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func countNodes(nodes []*analyzer.SymbolNode) int {
	total := 0
	for _, node := range nodes {
		total += 1 + countNodes(node.Children)
	}
	return total
}

// StoredSymbol is one flattened row from the index.
type StoredSymbol struct {
	ID        int64
	File      string
	Name      string
	Kind      string
	StartLine int64
	Preview   string
}

// SymbolsByName looks up symbols by exact name across every indexed file.
func (s *SymbolStore) SymbolsByName(name string) ([]StoredSymbol, error) {
	rows, err := s.db.Query(`
		SELECT id, file, name, kind, start_line, COALESCE(preview, '')
		FROM symbols WHERE name = ? ORDER BY file, start_line`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredSymbol
	for rows.Next() {
		var sym StoredSymbol
		if err := rows.Scan(&sym.ID, &sym.File, &sym.Name, &sym.Kind, &sym.StartLine, &sym.Preview); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

// FileSymbolCount reports how many symbols are stored for a file, zero when
// the file is unknown.
func (s *SymbolStore) FileSymbolCount(file string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COALESCE(symbol_count, 0) FROM files WHERE path = ?", file).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return count, err
}
