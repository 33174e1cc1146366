// internal/rank/load.go
//
// Dataset loading for the rank oracle.
//
// The rank tables are produced offline (embedding model → per-target word
// ordering) and shipped as either a SQLite file or the legacy JSON blob.
// Loading happens once at startup and the whole dataset is pulled into
// memory; the file is never touched again.
//
// Initialization behavior (Load):
//   1. If RANK_DB_FILE is set, read the `targets` and `ranks` tables from
//      that SQLite database.
//   2. Else if RANK_DATA_FILE is set, decode the JSON dataset
//      {"targets": […], "ranks": {target: {word: rank}}}.
//   3. Else fall back to the small embedded dataset from
//      `default_small_data.json` (keeps the server runnable with no files
//      configured, e.g. in tests and local dev).
//
// SQLite schema expected:
//   CREATE TABLE targets (word TEXT PRIMARY KEY);
//   CREATE TABLE ranks   (target TEXT, word TEXT, rank INTEGER,
//                         PRIMARY KEY (target, word));
//
// Any malformed or inconsistent dataset is a startup error; callers are
// expected to treat it as fatal.

package rank

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed default_small_data.json
var embeddedData []byte

// dataset is the on-disk JSON shape (and the in-memory loading shape for all
// three sources).
type dataset struct {
	Targets []string                  `json:"targets"`
	Ranks   map[string]map[string]int `json:"ranks"`
}

// Load builds the oracle from the configured dataset source.
func Load() (*Oracle, error) {
	switch {
	case os.Getenv("RANK_DB_FILE") != "":
		ds, err := readSQLite(os.Getenv("RANK_DB_FILE"))
		if err != nil {
			return nil, fmt.Errorf("rank: load sqlite dataset: %w", err)
		}
		return New(ds.Targets, ds.Ranks)

	case os.Getenv("RANK_DATA_FILE") != "":
		ds, err := readJSONFile(os.Getenv("RANK_DATA_FILE"))
		if err != nil {
			return nil, fmt.Errorf("rank: load json dataset: %w", err)
		}
		return New(ds.Targets, ds.Ranks)

	default:
		var ds dataset
		if err := json.Unmarshal(embeddedData, &ds); err != nil {
			return nil, fmt.Errorf("rank: embedded dataset: %w", err)
		}
		return New(ds.Targets, ds.Ranks)
	}
}

// readJSONFile decodes the legacy JSON dataset from path.
func readJSONFile(path string) (dataset, error) {
	var ds dataset
	b, err := os.ReadFile(path)
	if err != nil {
		return ds, err
	}
	if err := json.Unmarshal(b, &ds); err != nil {
		return ds, err
	}
	return ds, nil
}

// readSQLite pulls the full targets + ranks tables out of a SQLite file.
func readSQLite(path string) (dataset, error) {
	ds := dataset{Ranks: make(map[string]map[string]int)}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return ds, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT word FROM targets`)
	if err != nil {
		return ds, err
	}
	defer rows.Close()
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return ds, err
		}
		ds.Targets = append(ds.Targets, w)
	}
	if err := rows.Err(); err != nil {
		return ds, err
	}

	rrows, err := db.Query(`SELECT target, word, rank FROM ranks`)
	if err != nil {
		return ds, err
	}
	defer rrows.Close()
	for rrows.Next() {
		var target, word string
		var r int
		if err := rrows.Scan(&target, &word, &r); err != nil {
			return ds, err
		}
		table, ok := ds.Ranks[target]
		if !ok {
			table = make(map[string]int)
			ds.Ranks[target] = table
		}
		table[word] = r
	}
	return ds, rrows.Err()
}
