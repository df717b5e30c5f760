package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"betboard/internal/config"
	"betboard/internal/db"
	"betboard/internal/domain"
	"betboard/internal/migrate"
	"betboard/internal/store"
)

type testEnv struct {
	Store *store.Store
	DB    *sql.DB
	Cfg   *config.Config
	Ctx   context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default()
	s := store.New(conn, cfg, nil)
	s.Now = func() time.Time { return time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(s.Close)
	ctx := context.Background()
	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	return testEnv{Store: s, DB: conn, Cfg: cfg, Ctx: ctx}
}

func mustAddBet(t *testing.T, env testEnv, bet domain.Bet) domain.Bet {
	t.Helper()
	b, err := env.Store.AddBet(env.Ctx, bet)
	if err != nil {
		t.Fatalf("add bet: %v", err)
	}
	return b
}

func sampleBet() domain.Bet {
	return domain.Bet{
		Owner: "Steve P",
		What:  "Ship the reporting pipeline",
		Why:   "Quarterly metrics are assembled by hand",
		How:   "Batch job plus a review dashboard",
		When:  "2025-12-31",
	}
}

func TestLoadSeedsUsersAndBets(t *testing.T) {
	env := newTestEnv(t)
	users := env.Store.Users()
	if len(users) != len(env.Cfg.Board.SeedUsers) {
		t.Fatalf("expected %d seed users, got %d", len(env.Cfg.Board.SeedUsers), len(users))
	}
	if len(env.Store.Bets()) == 0 {
		t.Fatal("expected seed bets on first run")
	}
}

func TestAddBetDefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)

	b := mustAddBet(t, env, sampleBet())
	if b.ID == "" {
		t.Fatal("expected generated id")
	}
	if b.Status != domain.StatusOpen {
		t.Fatalf("expected default status Open, got %q", b.Status)
	}
	if b.LastUpdated != "2025-06-13" {
		t.Fatalf("expected lastUpdated 2025-06-13, got %q", b.LastUpdated)
	}

	cases := []struct {
		name string
		bet  domain.Bet
	}{
		{"missing what", domain.Bet{Owner: "Steve P", Why: "y", How: "h", When: "2025-12-31"}},
		{"bad date", domain.Bet{Owner: "Steve P", What: "w", Why: "y", How: "h", When: "soon"}},
		{"unknown owner", domain.Bet{Owner: "Nobody", What: "w", Why: "y", How: "h", When: "2025-12-31"}},
		{"bad status", domain.Bet{Owner: "Steve P", What: "w", Why: "y", How: "h", When: "2025-12-31", Status: "Paused"}},
	}
	for _, tc := range cases {
		if _, err := env.Store.AddBet(env.Ctx, tc.bet); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestAddBetRejectsDuplicateID(t *testing.T) {
	env := newTestEnv(t)
	bet := sampleBet()
	bet.ID = "bet-fixed"
	mustAddBet(t, env, bet)
	if _, err := env.Store.AddBet(env.Ctx, bet); !errors.Is(err, store.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestUpdateBetMergesFields(t *testing.T) {
	env := newTestEnv(t)
	b := mustAddBet(t, env, sampleBet())

	what := "Ship the reporting pipeline v2"
	status := domain.StatusInProgress
	updated, err := env.Store.UpdateBet(env.Ctx, b.ID, store.BetPatch{What: &what, Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.What != what || updated.Status != status {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Why != b.Why {
		t.Fatalf("untouched field changed: %q", updated.Why)
	}

	empty := ""
	if _, err := env.Store.UpdateBet(env.Ctx, b.ID, store.BetPatch{What: &empty}); err == nil {
		t.Fatal("expected error for empty required field")
	}
	if _, err := env.Store.UpdateBet(env.Ctx, "missing", store.BetPatch{What: &what}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDoneAutoArchives(t *testing.T) {
	env := newTestEnv(t)
	b := mustAddBet(t, env, sampleBet())

	done, err := env.Store.CompleteBet(env.Ctx, b.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.Archived {
		t.Fatal("expected bet archived after Done")
	}
	if done.ArchivedBy == nil || *done.ArchivedBy != store.ArchivedBySystem {
		t.Fatalf("expected system archivedBy, got %v", done.ArchivedBy)
	}
	if done.ArchivedAt == nil {
		t.Fatal("expected archivedAt set")
	}
	if _, err := time.Parse(time.RFC3339, *done.ArchivedAt); err != nil {
		t.Fatalf("archivedAt not RFC3339: %v", err)
	}

	notes := env.Store.Notifications()
	if len(notes) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notes))
	}
	if notes[0].Kind != domain.NotifySuccess {
		t.Fatalf("expected success notification, got %q", notes[0].Kind)
	}

	// A second Done transition must not re-archive or re-notify.
	if _, err := env.Store.CompleteBet(env.Ctx, b.ID); err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if got := len(env.Store.Notifications()); got != 1 {
		t.Fatalf("expected still 1 notification, got %d", got)
	}
}

func TestArchiveRestoreRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	b := mustAddBet(t, env, sampleBet())

	archived, err := env.Store.ArchiveBet(env.Ctx, b.ID, "Jane D")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !archived.Archived || archived.ArchivedBy == nil || *archived.ArchivedBy != "Jane D" {
		t.Fatalf("unexpected archive state: %+v", archived)
	}
	if got := len(env.Store.ArchivedBets()); got != 1 {
		t.Fatalf("expected 1 archived bet, got %d", got)
	}

	// Idempotent re-archive keeps the original metadata.
	again, err := env.Store.ArchiveBet(env.Ctx, b.ID, "Someone Else")
	if err != nil {
		t.Fatalf("re-archive: %v", err)
	}
	if *again.ArchivedBy != "Jane D" {
		t.Fatalf("re-archive overwrote metadata: %q", *again.ArchivedBy)
	}

	restored, err := env.Store.RestoreBet(env.Ctx, b.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Archived || restored.ArchivedAt != nil || restored.ArchivedBy != nil {
		t.Fatalf("restore left archive metadata: %+v", restored)
	}
}

func TestDeleteBetUnknownIsNoop(t *testing.T) {
	env := newTestEnv(t)
	before := len(env.Store.Bets())
	env.Store.DeleteBet(env.Ctx, "does-not-exist")
	if got := len(env.Store.Bets()); got != before {
		t.Fatalf("collection changed: %d != %d", got, before)
	}

	b := mustAddBet(t, env, sampleBet())
	env.Store.DeleteBet(env.Ctx, b.ID)
	if _, ok := env.Store.Bet(b.ID); ok {
		t.Fatal("bet still present after delete")
	}
}

func TestAddComment(t *testing.T) {
	env := newTestEnv(t)
	b := mustAddBet(t, env, sampleBet())

	c, err := env.Store.AddComment(env.Ctx, b.ID, "Jane D", "looks good")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if c.ID == "" || c.Date != "2025-06-13" {
		t.Fatalf("unexpected comment: %+v", c)
	}
	got, _ := env.Store.Bet(b.ID)
	if len(got.Comments) != 1 || got.Comments[0].Text != "looks good" {
		t.Fatalf("comment not attached: %+v", got.Comments)
	}
	if _, err := env.Store.AddComment(env.Ctx, "missing", "Jane D", "x"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRosterUniqueness(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.Store.AddUser(env.Ctx, "Rosa L")
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if _, err := env.Store.AddUser(env.Ctx, "rosa l"); !errors.Is(err, store.ErrDuplicateUser) {
		t.Fatalf("expected case-insensitive duplicate rejection, got %v", err)
	}
	if err := env.Store.RemoveUser(env.Ctx, u.ID); err != nil {
		t.Fatalf("remove user: %v", err)
	}
	if err := env.Store.RemoveUser(env.Ctx, u.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestFilterSemantics(t *testing.T) {
	bets := []domain.Bet{
		{ID: "1", Owner: "Steve P", Status: domain.StatusOpen, What: "Alpha launch", Why: "growth", How: "iterate"},
		{ID: "2", Owner: "Jane D", Status: domain.StatusInProgress, What: "Beta cleanup", Why: "debt", How: "refactor"},
		{ID: "3", Owner: "Steve P", Status: domain.StatusOpen, What: "Gamma", Why: "ALPHA fallback", How: "spike"},
		{ID: "4", Owner: "Steve P", Status: domain.StatusOpen, What: "Hidden", Why: "", How: "", Archived: true},
	}

	if got := store.Filter(bets, domain.BetFilters{}); len(got) != 3 {
		t.Fatalf("empty filters: expected 3 visible, got %d", len(got))
	}
	if got := store.Filter(bets, domain.BetFilters{Owner: "Jane D"}); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("owner filter: %+v", got)
	}
	if got := store.Filter(bets, domain.BetFilters{Status: domain.StatusOpen}); len(got) != 2 {
		t.Fatalf("status filter: expected 2, got %d", len(got))
	}
	got := store.Filter(bets, domain.BetFilters{Search: "alpha"})
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("search filter order: %+v", got)
	}

	// Filtering is pure: applying the same criteria twice is identical.
	twice := store.Filter(store.Filter(bets, domain.BetFilters{Search: "alpha"}), domain.BetFilters{Search: "alpha"})
	if len(twice) != len(got) {
		t.Fatalf("filter not idempotent: %d != %d", len(twice), len(got))
	}
}

func TestSetFiltersMergeAndClear(t *testing.T) {
	env := newTestEnv(t)
	owner := "Steve P"
	status := domain.StatusOpen
	env.Store.SetFilters(env.Ctx, store.FilterPatch{Owner: &owner})
	f := env.Store.SetFilters(env.Ctx, store.FilterPatch{Status: &status})
	if f.Owner != owner || f.Status != status {
		t.Fatalf("merge lost a criterion: %+v", f)
	}
	env.Store.ClearFilters(env.Ctx)
	if f := env.Store.Filters(); f != (domain.BetFilters{}) {
		t.Fatalf("clear left criteria: %+v", f)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default()
	ctx := context.Background()

	s := store.New(conn, cfg, nil)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	b, err := s.AddBet(ctx, sampleBet())
	if err != nil {
		t.Fatalf("add bet: %v", err)
	}
	owner := "Steve P"
	s.SetFilters(ctx, store.FilterPatch{Owner: &owner})
	s.Close()
	conn.Close()

	conn2, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	defer conn2.Close()
	if err := migrate.Migrate(conn2); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}
	s2 := store.New(conn2, cfg, nil)
	defer s2.Close()
	if err := s2.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := s2.Bet(b.ID); !ok {
		t.Fatal("bet lost across restart")
	}
	if f := s2.Filters(); f.Owner != owner {
		t.Fatalf("filters lost across restart: %+v", f)
	}
}

func TestNotificationsDismissAndExpiry(t *testing.T) {
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default()
	cfg.Notifications.TTLSeconds = 1
	s := store.New(conn, cfg, nil)
	defer s.Close()
	ctx := context.Background()
	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	first := s.ShowNotification("saved", "success")
	second := s.ShowNotification("heads up", "info")
	s.DismissNotification(first.ID)
	notes := s.Notifications()
	if len(notes) != 1 || notes[0].ID != second.ID {
		t.Fatalf("dismiss touched the wrong notification: %+v", notes)
	}
	s.DismissNotification("unknown") // no-op

	deadline := time.Now().Add(3 * time.Second)
	for len(s.Notifications()) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("notification did not expire")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestMutationsSurviveSnapshotFailure(t *testing.T) {
	env := newTestEnv(t)

	// Pull the database out from under the live store. Writes keep
	// working in memory and persistence failures only get logged.
	if err := env.DB.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	b, err := env.Store.AddBet(env.Ctx, sampleBet())
	if err != nil {
		t.Fatalf("add bet after db loss: %v", err)
	}
	if _, ok := env.Store.Bet(b.ID); !ok {
		t.Fatal("bet missing from memory after db loss")
	}

	status := domain.StatusBlocked
	updated, err := env.Store.UpdateBet(env.Ctx, b.ID, store.BetPatch{Status: &status})
	if err != nil {
		t.Fatalf("update bet after db loss: %v", err)
	}
	if updated.Status != domain.StatusBlocked {
		t.Fatalf("status = %q, want %q", updated.Status, domain.StatusBlocked)
	}
	got, _ := env.Store.Bet(b.ID)
	if got.Status != domain.StatusBlocked {
		t.Fatalf("memory state not updated, status = %q", got.Status)
	}
}
