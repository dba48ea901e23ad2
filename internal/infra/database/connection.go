package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Driver SQLite puro Go
)

const schema = `
CREATE TABLE IF NOT EXISTS session_tokens (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	token      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS mapping_drafts (
	import_id  TEXT PRIMARY KEY,
	mapping    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// NewDBConnection abre o banco local, testa o Ping e garante o schema.
func NewDBConnection(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("erro ao criar diretório do banco local: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite só aceita um escritor por vez
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao criar schema local: %w", err)
	}

	return db, nil
}
