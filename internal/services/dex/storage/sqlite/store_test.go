package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/rowedex/internal/services/dex/domain"
	"github.com/louisbranch/rowedex/internal/services/dex/storage"
)

const fixtureSQL = `
INSERT INTO types (id, name, position) VALUES
  (1, 'Normal', 0), (2, 'Fighting', 1), (10, 'Fire', 2), (11, 'Water', 3), (12, 'Grass', 4), (5, 'Ground', 5);
INSERT INTO egg_groups (id, name) VALUES (1, 'Field'), (2, 'Monster');
INSERT INTO items (id, name) VALUES (1, 'Charcoal');
INSERT INTO abilities (id, name, description) VALUES
  (1, 'Blaze', 'Powers up Fire moves in a pinch.'),
  (2, 'Speed Boost', 'Gradually boosts Speed.');
INSERT INTO pokemon (id, pokedex_id, name, internal_name, type1, type2, egg_group1, egg_group2, item1, item2,
                     base_hp, base_atk, base_def, base_spa, base_spd, base_spe, sprite) VALUES
  (5, 255, 'Torchic', 'SPECIES_TORCHIC', 10, 10, 1, 1, 1, NULL, 45, 60, 40, 70, 50, 45, NULL),
  (7, 257, 'Blaziken', 'SPECIES_BLAZIKEN', 10, 2, 1, NULL, 1, NULL, 80, 120, 70, 110, 70, 80, 'https://img/blaziken.png'),
  (8, 258, 'Blaziken_Mega', 'SPECIES_BLAZIKEN_MEGA', 10, 2, NULL, NULL, NULL, NULL, 80, 160, 80, 130, 80, 100, NULL),
  (9, 10, 'Blazing%', NULL, NULL, NULL, NULL, NULL, NULL, NULL, 1, 1, 1, 1, 1, 1, NULL);
INSERT INTO pokemon_abilities (pokemon_id, slot, ability_id) VALUES (7, 2, 2), (7, 1, 1);
INSERT INTO moves (id, name) VALUES (1, 'Ember'), (2, 'Smokescreen'), (3, 'Scratch'), (4, 'Flamethrower'), (5, 'Blaze Kick');
INSERT INTO levelup_moves (pokemon_id, move_id, level) VALUES (5, 3, 1), (5, 1, 1), (5, 2, 7);
INSERT INTO tmhm_moves (pokemon_id, move_id) VALUES (5, 4);
INSERT INTO tutor_moves (pokemon_id, move_id) VALUES (7, 5);
INSERT INTO type_effectiveness (attacking_type, defending_type, multiplier) VALUES
  (11, 10, 2.0), (12, 10, 0.5), (10, 10, 0.5), (10, 12, 2.0), (10, 11, 0.5),
  (5, 10, 2.0), (2, 1, 2.0), (1, 2, 1.0), (12, 2, 1.0), (2, 10, 1.0);
`

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenRequiresExistingFile(t *testing.T) {
	t.Parallel()

	if _, err := Open(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Fatal("expected missing database error")
	}
}

func TestOpenFailsWithoutSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("create db: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE unrelated(id INTEGER)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	_ = db.Close()

	if _, err := Open(path); err == nil {
		t.Fatal("expected prepare failure against missing schema")
	}
}

func TestGetEntityByID(t *testing.T) {
	t.Parallel()

	store := openSeededStore(t)
	got, err := store.GetEntityByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("get entity: %v", err)
	}
	want := domain.Entity{
		ID:           7,
		DexNumber:    257,
		Name:         "Blaziken",
		InternalName: "SPECIES_BLAZIKEN",
		Types:        domain.PairOf(&domain.Label{ID: 10, Name: "Fire"}, &domain.Label{ID: 2, Name: "Fighting"}),
		EggGroups:    domain.PairOf(&domain.Label{ID: 1, Name: "Field"}, nil),
		Items:        domain.PairOf(&domain.Label{ID: 1, Name: "Charcoal"}, nil),
		Stats:        domain.Stats{HP: 80, Attack: 120, Defense: 70, SpAttack: 110, SpDefense: 70, Speed: 80},
		Sprite:       "https://img/blaziken.png",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entity mismatch (-want +got):\n%s", diff)
	}
}

func TestGetEntityByIDNotFound(t *testing.T) {
	t.Parallel()

	store := openSeededStore(t)
	_, err := store.GetEntityByID(context.Background(), 999999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestGetEntityByNamePrefersExactMatch(t *testing.T) {
	t.Parallel()

	store := openSeededStore(t)
	tests := []struct {
		query string
		want  int64
	}{
		{query: "Blaziken", want: 7},
		{query: "blaziken", want: 7},
		{query: "blaziken_m", want: 8},
		{query: "Tor", want: 5},
		{query: "Blazing%", want: 9},
	}
	for _, tt := range tests {
		got, err := store.GetEntityByName(context.Background(), tt.query)
		if err != nil {
			t.Fatalf("get %q: %v", tt.query, err)
		}
		if got.ID != tt.want {
			t.Fatalf("GetEntityByName(%q).ID = %d, want %d", tt.query, got.ID, tt.want)
		}
	}
}

func TestGetEntityByNameEscapesWildcards(t *testing.T) {
	t.Parallel()

	store := openSeededStore(t)
	_, err := store.GetEntityByName(context.Background(), "%ken")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestSearchEntities(t *testing.T) {
	t.Parallel()

	store := openSeededStore(t)
	got, err := store.SearchEntities(context.Background(), "Blaz", 25)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []domain.Candidate{{ID: 7, Name: "Blaziken"}, {ID: 8, Name: "Blaziken_Mega"}, {ID: 9, Name: "Blazing%"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}

	all, err := store.SearchEntities(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("search all: %v", err)
	}
	if len(all) != 2 || all[0].ID != 5 {
		t.Fatalf("search all = %+v, want first two by id", all)
	}

	none, err := store.SearchEntities(context.Background(), "Zzz", 25)
	if err != nil {
		t.Fatalf("search none: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("search none = %+v, want empty", none)
	}
}

func TestListMoves(t *testing.T) {
	t.Parallel()

	store := openSeededStore(t)
	got, err := store.ListMoves(context.Background(), 5, domain.MoveKindLevelUp)
	if err != nil {
		t.Fatalf("list levelup: %v", err)
	}
	want := []domain.Move{
		{Name: "Scratch", Level: 1, HasLevel: true},
		{Name: "Ember", Level: 1, HasLevel: true},
		{Name: "Smokescreen", Level: 7, HasLevel: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("levelup mismatch (-want +got):\n%s", diff)
	}

	machine, err := store.ListMoves(context.Background(), 5, domain.MoveKindMachine)
	if err != nil {
		t.Fatalf("list machine: %v", err)
	}
	if diff := cmp.Diff([]domain.Move{{Name: "Flamethrower"}}, machine); diff != "" {
		t.Fatalf("machine mismatch (-want +got):\n%s", diff)
	}

	egg, err := store.ListMoves(context.Background(), 424242, domain.MoveKindEgg)
	if err != nil {
		t.Fatalf("list egg: %v", err)
	}
	if len(egg) != 0 {
		t.Fatalf("egg moves = %+v, want empty", egg)
	}

	if _, err := store.ListMoves(context.Background(), 5, domain.MoveKind("bogus")); err == nil {
		t.Fatal("expected unknown kind error")
	}
}

func TestListAbilitiesOrderedBySlot(t *testing.T) {
	t.Parallel()

	store := openSeededStore(t)
	got, err := store.ListAbilities(context.Background(), 7)
	if err != nil {
		t.Fatalf("list abilities: %v", err)
	}
	want := []domain.Ability{
		{Name: "Blaze", Description: "Powers up Fire moves in a pinch."},
		{Name: "Speed Boost", Description: "Gradually boosts Speed."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("abilities mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeMatchupsSingleType(t *testing.T) {
	t.Parallel()

	store := openSeededStore(t)
	got, err := store.TypeMatchups(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("matchups: %v", err)
	}
	want := []domain.TypeMatchup{
		{Type: "Normal", Defensive: 1, Offensive: 1},
		{Type: "Fighting", Defensive: 1, Offensive: 1},
		{Type: "Fire", Defensive: 0.5, Offensive: 0.5},
		{Type: "Water", Defensive: 2, Offensive: 0.5},
		{Type: "Grass", Defensive: 0.5, Offensive: 2},
		{Type: "Ground", Defensive: 2, Offensive: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("matchups mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeMatchupsDualTypeStacks(t *testing.T) {
	t.Parallel()

	store := openSeededStore(t)
	fighting := int64(2)
	got, err := store.TypeMatchups(context.Background(), 10, &fighting)
	if err != nil {
		t.Fatalf("matchups: %v", err)
	}
	byType := make(map[string]domain.TypeMatchup, len(got))
	for _, m := range got {
		byType[m.Type] = m
	}
	if len(got) != 6 {
		t.Fatalf("rows = %d, want 6", len(got))
	}
	// Fighting deals 2x to Normal, Fire deals neutral: best is 2.
	if m := byType["Normal"]; m.Offensive != 2 {
		t.Fatalf("Normal offensive = %v, want 2", m.Offensive)
	}
	// Water: 2x on Fire, neutral on Fighting.
	if m := byType["Water"]; m.Defensive != 2 {
		t.Fatalf("Water defensive = %v, want 2", m.Defensive)
	}
	// Fire attacking Fire/Fighting: 0.5 * 1.
	if m := byType["Fire"]; m.Defensive != 0.5 || m.Offensive != 1 {
		t.Fatalf("Fire = %+v, want defensive 0.5 offensive 1", m)
	}
}

func TestQueryObserverRecordsQueries(t *testing.T) {
	t.Parallel()

	path := seededDBPath(t)
	var seen []string
	store, err := Open(path, WithQueryObserver(func(query string, elapsed time.Duration) {
		seen = append(seen, query)
	}))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if _, err := store.GetEntityByID(context.Background(), 7); err != nil {
		t.Fatalf("get entity: %v", err)
	}
	if diff := cmp.Diff([]string{QueryEntityByID}, seen); diff != "" {
		t.Fatalf("observed mismatch (-want +got):\n%s", diff)
	}
}

func TestClosedStoreReportsUnavailable(t *testing.T) {
	t.Parallel()

	store := openSeededStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	_, err := store.GetEntityByID(context.Background(), 7)
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("err = %v, want %v", err, storage.ErrUnavailable)
	}
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Fatalf("escapeLike = %q", got)
	}
}

func seededDBPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dex.db")
	if err := Bootstrap(context.Background(), path); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := Seed(context.Background(), path, fixtureSQL); err != nil {
		t.Fatalf("seed fixtures: %v", err)
	}
	return path
}

func TestSeedRollsBackOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dex.db")
	if err := Bootstrap(context.Background(), path); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	script := "INSERT INTO moves (id, name) VALUES (1, 'Ember');\nINSERT INTO no_such_table VALUES (1);"
	if err := Seed(context.Background(), path, script); err == nil {
		t.Fatal("expected seed error")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM moves").Scan(&count); err != nil {
		t.Fatalf("count moves: %v", err)
	}
	if count != 0 {
		t.Fatalf("moves = %d, want 0 after rollback", count)
	}
}

func TestSeedEmptyScriptIsNoop(t *testing.T) {
	if err := Seed(context.Background(), filepath.Join(t.TempDir(), "none.db"), "  "); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func openSeededStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(seededDBPath(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
