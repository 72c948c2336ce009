package solver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"folio/pkg/logic"
)

// Cache persists derived facts keyed by a fingerprint of the rendered
// program, so re-solving an unchanged theory becomes a read. Every
// operation is best-effort: a broken cache costs a re-derivation, never a
// failed solve.
type Cache struct {
	db *sql.DB
}

// OpenCache initializes the cache database at the given path, creating
// parent directories as needed.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	c := &Cache{db: db}
	if err := c.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS derived_facts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fingerprint TEXT NOT NULL,
		predicate TEXT NOT NULL,
		args TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(fingerprint, predicate, args)
	);
	CREATE INDEX IF NOT EXISTS idx_derived_fingerprint ON derived_facts(fingerprint);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached derived facts for a fingerprint, or false when
// the fingerprint has no entry.
func (c *Cache) Lookup(ctx context.Context, fingerprint string) (map[string][]*logic.Term, bool, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT predicate, args FROM derived_facts WHERE fingerprint = ? ORDER BY id`, fingerprint)
	if err != nil {
		return nil, false, fmt.Errorf("query cache: %w", err)
	}
	defer rows.Close()

	facts := make(map[string][]*logic.Term)
	found := false
	for rows.Next() {
		var predicate, encoded string
		if err := rows.Scan(&predicate, &encoded); err != nil {
			return nil, false, fmt.Errorf("scan cache row: %w", err)
		}
		args, err := decodeArgs(encoded)
		if err != nil {
			return nil, false, err
		}
		facts[predicate] = append(facts[predicate], logic.NewTerm(predicate, args...))
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("read cache rows: %w", err)
	}
	return facts, found, nil
}

// Store replaces the cached facts for a fingerprint.
func (c *Cache) Store(ctx context.Context, fingerprint string, facts map[string][]*logic.Term) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM derived_facts WHERE fingerprint = ?`, fingerprint); err != nil {
		return fmt.Errorf("clear cache entry: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO derived_facts (fingerprint, predicate, args) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare cache insert: %w", err)
	}
	defer stmt.Close()

	for predicate, terms := range facts {
		for _, t := range terms {
			encoded, err := encodeArgs(t.Args)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, fingerprint, predicate, encoded); err != nil {
				return fmt.Errorf("insert cache row: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache transaction: %w", err)
	}
	return nil
}

// Fingerprint keys a rendered program. The theory name is folded in so two
// theories with identical clauses still cache separately.
func Fingerprint(name, source string) string {
	h := fnv.New64a()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return fmt.Sprintf("%016x", h.Sum64())
}

// typedArg is the JSON encoding of one fact argument. The explicit kind
// keeps 1, 1.0, and "1" distinct through the round trip.
type typedArg struct {
	Kind  string  `json:"kind"`
	Str   string  `json:"str,omitempty"`
	Int   int64   `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Bool  bool    `json:"bool,omitempty"`
}

func encodeArgs(args []logic.Value) (string, error) {
	out := make([]typedArg, len(args))
	for i, a := range args {
		switch x := a.(type) {
		case logic.String:
			out[i] = typedArg{Kind: "str", Str: string(x)}
		case logic.Integer:
			out[i] = typedArg{Kind: "int", Int: int64(x)}
		case logic.Float:
			out[i] = typedArg{Kind: "float", Float: float64(x)}
		case logic.Boolean:
			out[i] = typedArg{Kind: "bool", Bool: bool(x)}
		default:
			return "", fmt.Errorf("argument %v cannot be cached", a)
		}
	}
	encoded, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode cache args: %w", err)
	}
	return string(encoded), nil
}

func decodeArgs(encoded string) ([]logic.Value, error) {
	var in []typedArg
	if err := json.Unmarshal([]byte(encoded), &in); err != nil {
		return nil, fmt.Errorf("decode cache args: %w", err)
	}
	args := make([]logic.Value, len(in))
	for i, a := range in {
		switch a.Kind {
		case "str":
			args[i] = logic.String(a.Str)
		case "int":
			args[i] = logic.Integer(a.Int)
		case "float":
			args[i] = logic.Float(a.Float)
		case "bool":
			args[i] = logic.Boolean(a.Bool)
		default:
			return nil, fmt.Errorf("unknown cached argument kind %q", a.Kind)
		}
	}
	return args, nil
}
