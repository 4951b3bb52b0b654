// Package sqlite provides the read-only SQLite dex store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/rowedex/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/rowedex/internal/services/dex/domain"
	"github.com/louisbranch/rowedex/internal/services/dex/storage"
	"github.com/louisbranch/rowedex/internal/services/dex/storage/sqlite/migrations"
	"github.com/louisbranch/rowedex/internal/services/dex/storage/sqlite/queries"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Query names, one per embedded .sql file.
const (
	QueryEntityByID     = "get_entity_by_id"
	QueryEntityByName   = "get_entity_by_name"
	QuerySearchEntities = "search_entities"
	QueryListAbilities  = "list_abilities"
	QueryLevelUpMoves   = "list_levelup_moves"
	QueryMachineMoves   = "list_machine_moves"
	QueryTutorMoves     = "list_tutor_moves"
	QueryEggMoves       = "list_egg_moves"
	QueryTypeMatchups   = "type_matchups"
)

var queryNames = []string{
	QueryEntityByID,
	QueryEntityByName,
	QuerySearchEntities,
	QueryListAbilities,
	QueryLevelUpMoves,
	QueryMachineMoves,
	QueryTutorMoves,
	QueryEggMoves,
	QueryTypeMatchups,
}

var moveQueries = map[domain.MoveKind]string{
	domain.MoveKindLevelUp: QueryLevelUpMoves,
	domain.MoveKindMachine: QueryMachineMoves,
	domain.MoveKindTutor:   QueryTutorMoves,
	domain.MoveKindEgg:     QueryEggMoves,
}

// QueryObserver receives the latency of every store query.
type QueryObserver func(query string, elapsed time.Duration)

// Option configures a Store.
type Option func(*Store)

// WithQueryObserver reports query latencies to observe.
func WithQueryObserver(observe QueryObserver) Option {
	return func(s *Store) {
		s.observe = observe
	}
}

// Store reads dex records from SQLite through statements prepared at open.
type Store struct {
	sqlDB   *sql.DB
	stmts   map[string]*sql.Stmt
	observe QueryObserver
}

var _ storage.Store = (*Store)(nil)

// Open opens an existing dex database read-only and prepares every query.
// A missing file, missing query text, or a query that does not prepare
// against the schema fails here rather than on first use.
func Open(path string, opts ...Option) (*Store, error) {
	cleanPath, err := cleanDBPath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cleanPath); err != nil {
		return nil, fmt.Errorf("dex database %s: %w", cleanPath, err)
	}
	sqlDB, err := sql.Open("sqlite", cleanPath+"?_pragma=busy_timeout(5000)&_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Store{sqlDB: sqlDB, stmts: make(map[string]*sql.Stmt, len(queryNames))}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.prepare(queries.FS); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Bootstrap creates path if needed and applies the embedded schema.
func Bootstrap(ctx context.Context, path string) error {
	cleanPath, err := cleanDBPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}
	sqlDB, err := sql.Open("sqlite", cleanPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	defer sqlDB.Close()
	if _, err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Seed runs script against an existing database in one transaction.
func Seed(ctx context.Context, path, script string) error {
	cleanPath, err := cleanDBPath(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(script) == "" {
		return nil
	}
	sqlDB, err := sql.Open("sqlite", cleanPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	defer sqlDB.Close()
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec seed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// Close releases the prepared statements and the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	for _, stmt := range s.stmts {
		_ = stmt.Close()
	}
	return s.sqlDB.Close()
}

func cleanDBPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("storage path is required")
	}
	return filepath.Clean(path), nil
}

func (s *Store) prepare(queryFS fs.FS) error {
	for _, name := range queryNames {
		text, err := fs.ReadFile(queryFS, name+".sql")
		if err != nil {
			return fmt.Errorf("load query %s: %w", name, err)
		}
		stmt, err := s.sqlDB.Prepare(string(text))
		if err != nil {
			return fmt.Errorf("prepare query %s: %w", name, err)
		}
		s.stmts[name] = stmt
	}
	return nil
}

// GetEntityByID fetches one entity by primary key.
func (s *Store) GetEntityByID(ctx context.Context, id int64) (domain.Entity, error) {
	defer s.track(QueryEntityByID)()
	row := s.stmts[QueryEntityByID].QueryRowContext(ctx, id)
	entity, err := scanEntity(row)
	if err != nil {
		return domain.Entity{}, classify("get entity by id", err)
	}
	return entity, nil
}

// GetEntityByName prefers an exact case-insensitive name, then the lowest id
// whose name starts with name. LIKE wildcards in name match literally.
func (s *Store) GetEntityByName(ctx context.Context, name string) (domain.Entity, error) {
	defer s.track(QueryEntityByName)()
	row := s.stmts[QueryEntityByName].QueryRowContext(ctx, escapeLike(name), name)
	entity, err := scanEntity(row)
	if err != nil {
		return domain.Entity{}, classify("get entity by name", err)
	}
	return entity, nil
}

// SearchEntities lists up to limit candidates whose name starts with prefix,
// ordered by id.
func (s *Store) SearchEntities(ctx context.Context, prefix string, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		return []domain.Candidate{}, nil
	}
	defer s.track(QuerySearchEntities)()
	rows, err := s.stmts[QuerySearchEntities].QueryContext(ctx, escapeLike(prefix), limit)
	if err != nil {
		return nil, classify("search entities", err)
	}
	defer rows.Close()

	candidates := make([]domain.Candidate, 0, limit)
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, classify("scan candidate", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate candidates", err)
	}
	return candidates, nil
}

// ListMoves lists the moves of kind for an entity in store order.
func (s *Store) ListMoves(ctx context.Context, entityID int64, kind domain.MoveKind) ([]domain.Move, error) {
	query, ok := moveQueries[kind]
	if !ok {
		return nil, fmt.Errorf("unknown move kind %q", kind)
	}
	defer s.track(query)()
	rows, err := s.stmts[query].QueryContext(ctx, entityID)
	if err != nil {
		return nil, classify("list moves", err)
	}
	defer rows.Close()

	moves := []domain.Move{}
	for rows.Next() {
		var (
			name  string
			level sql.NullInt64
		)
		if err := rows.Scan(&name, &level); err != nil {
			return nil, classify("scan move", err)
		}
		moves = append(moves, domain.Move{Name: name, Level: int(level.Int64), HasLevel: level.Valid})
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate moves", err)
	}
	return moves, nil
}

// ListAbilities lists an entity's abilities in slot order.
func (s *Store) ListAbilities(ctx context.Context, entityID int64) ([]domain.Ability, error) {
	defer s.track(QueryListAbilities)()
	rows, err := s.stmts[QueryListAbilities].QueryContext(ctx, entityID)
	if err != nil {
		return nil, classify("list abilities", err)
	}
	defer rows.Close()

	abilities := []domain.Ability{}
	for rows.Next() {
		var a domain.Ability
		if err := rows.Scan(&a.Name, &a.Description); err != nil {
			return nil, classify("scan ability", err)
		}
		abilities = append(abilities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate abilities", err)
	}
	return abilities, nil
}

// TypeMatchups joins the effectiveness table for one or two defending types,
// one row per type in position order.
func (s *Store) TypeMatchups(ctx context.Context, primary int64, secondary *int64) ([]domain.TypeMatchup, error) {
	defer s.track(QueryTypeMatchups)()
	var second sql.NullInt64
	if secondary != nil {
		second = sql.NullInt64{Int64: *secondary, Valid: true}
	}
	rows, err := s.stmts[QueryTypeMatchups].QueryContext(ctx, primary, second)
	if err != nil {
		return nil, classify("type matchups", err)
	}
	defer rows.Close()

	matchups := []domain.TypeMatchup{}
	for rows.Next() {
		var m domain.TypeMatchup
		if err := rows.Scan(&m.Type, &m.Defensive, &m.Offensive); err != nil {
			return nil, classify("scan matchup", err)
		}
		matchups = append(matchups, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate matchups", err)
	}
	return matchups, nil
}

func (s *Store) track(query string) func() {
	if s.observe == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		s.observe(query, time.Since(start))
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (domain.Entity, error) {
	var (
		e                        domain.Entity
		dexNumber                sql.NullInt64
		internalName, sprite     sql.NullString
		type1, type2             nullLabel
		egg1, egg2, item1, item2 nullLabel
	)
	err := row.Scan(
		&e.ID, &dexNumber, &e.Name, &internalName,
		&type1.id, &type1.name, &type2.id, &type2.name,
		&egg1.id, &egg1.name, &egg2.id, &egg2.name,
		&item1.id, &item1.name, &item2.id, &item2.name,
		&e.Stats.HP, &e.Stats.Attack, &e.Stats.Defense,
		&e.Stats.SpAttack, &e.Stats.SpDefense, &e.Stats.Speed,
		&sprite,
	)
	if err != nil {
		return domain.Entity{}, err
	}
	e.DexNumber = dexNumber.Int64
	e.InternalName = internalName.String
	e.Sprite = sprite.String
	e.Types = domain.PairOf(type1.label(), type2.label())
	e.EggGroups = domain.PairOf(egg1.label(), egg2.label())
	e.Items = domain.PairOf(item1.label(), item2.label())
	return e, nil
}

type nullLabel struct {
	id   sql.NullInt64
	name sql.NullString
}

// label is nil unless the foreign key resolved to a named row.
func (n nullLabel) label() *domain.Label {
	if !n.id.Valid || !n.name.Valid {
		return nil
	}
	return &domain.Label{ID: n.id.Int64, Name: n.name.String}
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

// classify maps driver errors onto the storage sentinels.
func classify(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return fmt.Errorf("%s: database busy: %w: %w", op, storage.ErrUnavailable, err)
		case sqlite3lib.SQLITE_IOERR, sqlite3lib.SQLITE_CANTOPEN, sqlite3lib.SQLITE_CORRUPT, sqlite3lib.SQLITE_NOTADB:
			return fmt.Errorf("%s: database unreadable: %w: %w", op, storage.ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
}
