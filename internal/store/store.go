package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"betboard/internal/config"
	"betboard/internal/domain"
	"betboard/internal/events"
	"betboard/internal/snapshot"
)

// ArchivedBySystem marks bets archived by the Done transition rather than a user.
const ArchivedBySystem = "Auto-archived (Status: Done)"

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateID   = errors.New("duplicate bet id")
	ErrDuplicateUser = errors.New("user already exists")
)

// Store is the single source of truth for bets, users, active filters, and
// transient notifications. Every mutation persists {bets, users, filters} to
// the workspace snapshot; persistence failures are logged, never propagated,
// so in-memory operations always succeed.
type Store struct {
	Snap   snapshot.Store
	Events events.Writer
	Log    *zap.Logger
	Now    func() time.Time

	notificationTTL time.Duration

	mu            sync.Mutex
	bets          []domain.Bet
	users         []domain.User
	filters       domain.BetFilters
	notifications []domain.Notification
	timers        map[string]*time.Timer
	seedUsers     []string
}

// New builds a Store over the workspace database. db may be nil for a purely
// in-memory store (used by tests and the remote-less CLI paths).
func New(db *sql.DB, cfg *config.Config, log *zap.Logger) *Store {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		Log:             log,
		Now:             time.Now,
		notificationTTL: cfg.NotificationTTL(),
		timers:          map[string]*time.Timer{},
		seedUsers:       cfg.Board.SeedUsers,
	}
	if db != nil {
		s.Snap = snapshot.Store{DB: db}
		s.Events = events.Writer{DB: db}
	}
	return s
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) today() string {
	return s.now().UTC().Format("2006-01-02")
}

// persisted is the snapshot payload. Notifications are deliberately excluded.
type persisted struct {
	Bets    []domain.Bet      `json:"bets"`
	Users   []domain.User     `json:"users"`
	Filters domain.BetFilters `json:"filters"`
}

// Load rehydrates state from the snapshot, then seeds defaults for whatever
// is still empty: the user roster from config and the bundled fixture bets.
// Runs before any other operation.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Snap.DB != nil {
		var p persisted
		err := s.Snap.Load(ctx, snapshot.Key, &p)
		switch {
		case err == nil:
			s.bets = p.Bets
			s.users = p.Users
			s.filters = p.Filters
		case errors.Is(err, snapshot.ErrNotFound):
			// first run
		default:
			s.Log.Warn("snapshot load failed; starting empty", zap.Error(err))
		}
	}
	if len(s.users) == 0 {
		for _, name := range s.seedUsers {
			s.users = append(s.users, domain.User{ID: uuid.NewString(), Name: name})
		}
	}
	if len(s.bets) == 0 {
		fixture, err := seedBets()
		if err != nil {
			return fmt.Errorf("load seed fixture: %w", err)
		}
		s.bets = fixture
	}
	s.persistLocked(ctx)
	return nil
}

// persistLocked writes the durable subset after a mutation. Must hold s.mu.
func (s *Store) persistLocked(ctx context.Context) {
	if s.Snap.DB == nil {
		return
	}
	p := persisted{Bets: s.bets, Users: s.users, Filters: s.filters}
	if err := s.Snap.Save(ctx, snapshot.Key, p); err != nil {
		s.Log.Warn("snapshot save failed; in-memory state kept", zap.Error(err))
	}
}

// recordLocked appends an audit event best-effort. Must hold s.mu.
func (s *Store) recordLocked(ctx context.Context, evtType, betID, actor string, payload events.Payload) {
	if s.Events.DB == nil {
		return
	}
	if err := s.Events.Append(ctx, evtType, betID, actor, payload); err != nil {
		s.Log.Warn("audit event write failed", zap.String("type", evtType), zap.Error(err))
	}
}

// Bets returns a copy of the full bet collection, archived included.
func (s *Store) Bets() []domain.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Bet(nil), s.bets...)
}

// Bet returns the bet with the given id.
func (s *Store) Bet(id string) (domain.Bet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bets {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Bet{}, false
}

// SetBets replaces the entire collection. Used for the initial remote load;
// no per-bet validation is applied.
func (s *Store) SetBets(ctx context.Context, bets []domain.Bet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bets = append([]domain.Bet(nil), bets...)
	s.persistLocked(ctx)
}

// AddBet validates and appends a new bet. A missing id is generated; a
// duplicate id is rejected so the uniqueness invariant holds even for
// caller-supplied ids.
func (s *Store) AddBet(ctx context.Context, bet domain.Bet) (domain.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bet.Owner == "" || bet.What == "" || bet.Why == "" || bet.How == "" {
		return domain.Bet{}, errors.New("owner, what, why, and how are required")
	}
	if bet.When == "" {
		return domain.Bet{}, errors.New("when (due date) is required")
	}
	if _, err := time.Parse("2006-01-02", bet.When); err != nil {
		return domain.Bet{}, fmt.Errorf("invalid due date %q: %w", bet.When, err)
	}
	if !s.hasUserLocked(bet.Owner) {
		return domain.Bet{}, fmt.Errorf("owner %q is not a known user", bet.Owner)
	}
	if bet.Status == "" {
		bet.Status = domain.StatusOpen
	}
	if !domain.ValidStatus(bet.Status) {
		return domain.Bet{}, fmt.Errorf("invalid status %q", bet.Status)
	}
	if bet.ID == "" {
		bet.ID = "bet-" + uuid.NewString()
	}
	for _, existing := range s.bets {
		if existing.ID == bet.ID {
			return domain.Bet{}, ErrDuplicateID
		}
	}
	bet.LastUpdated = s.today()
	bet.Archived = false
	bet.ArchivedAt = nil
	bet.ArchivedBy = nil
	s.bets = append(s.bets, bet)
	s.recordLocked(ctx, "bet.created", bet.ID, bet.Owner, events.Payload{"what": bet.What, "status": bet.Status})
	s.persistLocked(ctx)
	return bet, nil
}

// BetPatch holds optional field updates for a bet. Nil means "leave as is".
type BetPatch struct {
	Owner      *string
	What       *string
	Why        *string
	How        *string
	When       *string
	Status     *string
	Tags       *[]string
	Assignees  *[]string
	Archived   *bool
	ArchivedAt *string
	ArchivedBy *string
}

// UpdateBet merges the patch onto the bet with the given id and refreshes
// lastUpdated. A merged status of Done on a previously not-Done, unarchived
// bet auto-archives it and emits one notification describing the archive.
func (s *Store) UpdateBet(ctx context.Context, id string, patch BetPatch) (domain.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.Bet{}, ErrNotFound
	}
	prev := s.bets[idx]
	next := prev

	if err := applyPatch(&next, patch); err != nil {
		return domain.Bet{}, err
	}

	autoArchive := next.Status == domain.StatusDone &&
		prev.Status != domain.StatusDone &&
		!prev.Archived
	if autoArchive {
		at := s.now().UTC().Format(time.RFC3339)
		by := ArchivedBySystem
		next.Archived = true
		next.ArchivedAt = &at
		next.ArchivedBy = &by
	}
	next.LastUpdated = s.today()
	s.bets[idx] = next

	s.recordLocked(ctx, "bet.updated", next.ID, next.Owner, events.Payload{"status": next.Status})
	if autoArchive {
		s.recordLocked(ctx, "bet.archived", next.ID, ArchivedBySystem, events.Payload{"auto": true})
		s.notifyLocked(fmt.Sprintf("Bet %q automatically archived (Status: Done)", prev.What), domain.NotifySuccess)
	}
	s.persistLocked(ctx)
	return next, nil
}

func applyPatch(b *domain.Bet, patch BetPatch) error {
	for field, v := range map[string]*string{"owner": patch.Owner, "what": patch.What, "why": patch.Why, "how": patch.How} {
		if v != nil && *v == "" {
			return fmt.Errorf("%s must not be empty", field)
		}
	}
	if patch.Status != nil && !domain.ValidStatus(*patch.Status) {
		return fmt.Errorf("invalid status %q", *patch.Status)
	}
	if patch.When != nil {
		if _, err := time.Parse("2006-01-02", *patch.When); err != nil {
			return fmt.Errorf("invalid due date %q: %w", *patch.When, err)
		}
		b.When = *patch.When
	}
	if patch.Owner != nil {
		b.Owner = *patch.Owner
	}
	if patch.What != nil {
		b.What = *patch.What
	}
	if patch.Why != nil {
		b.Why = *patch.Why
	}
	if patch.How != nil {
		b.How = *patch.How
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}
	if patch.Tags != nil {
		b.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.Assignees != nil {
		b.Assignees = append([]string(nil), (*patch.Assignees)...)
	}
	if patch.Archived != nil {
		b.Archived = *patch.Archived
		if !b.Archived {
			b.ArchivedAt = nil
			b.ArchivedBy = nil
		}
	}
	if patch.ArchivedAt != nil {
		b.ArchivedAt = patch.ArchivedAt
	}
	if patch.ArchivedBy != nil {
		b.ArchivedBy = patch.ArchivedBy
	}
	return nil
}

// CompleteBet is the explicit Done transition. It marks the bet Done, which
// archives it as a side effect via the same rule UpdateBet applies.
func (s *Store) CompleteBet(ctx context.Context, id string) (domain.Bet, error) {
	done := domain.StatusDone
	return s.UpdateBet(ctx, id, BetPatch{Status: &done})
}

// DeleteBet permanently removes the bet. Unknown ids are a no-op.
func (s *Store) DeleteBet(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return
	}
	s.bets = append(s.bets[:idx], s.bets[idx+1:]...)
	s.recordLocked(ctx, "bet.deleted", id, "", nil)
	s.persistLocked(ctx)
}

// ArchiveBet soft-removes the bet from default views. Idempotent when the
// bet is already archived.
func (s *Store) ArchiveBet(ctx context.Context, id, by string) (domain.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.Bet{}, ErrNotFound
	}
	b := s.bets[idx]
	if b.Archived {
		return b, nil
	}
	at := s.now().UTC().Format(time.RFC3339)
	if by == "" {
		by = "user"
	}
	b.Archived = true
	b.ArchivedAt = &at
	b.ArchivedBy = &by
	b.LastUpdated = s.today()
	s.bets[idx] = b
	s.recordLocked(ctx, "bet.archived", id, by, nil)
	s.persistLocked(ctx)
	return b, nil
}

// RestoreBet returns an archived bet to the active board, clearing all
// archive metadata. Idempotent when the bet is not archived.
func (s *Store) RestoreBet(ctx context.Context, id string) (domain.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.Bet{}, ErrNotFound
	}
	b := s.bets[idx]
	if !b.Archived {
		return b, nil
	}
	b.Archived = false
	b.ArchivedAt = nil
	b.ArchivedBy = nil
	b.LastUpdated = s.today()
	s.bets[idx] = b
	s.recordLocked(ctx, "bet.restored", id, "", nil)
	s.persistLocked(ctx)
	return b, nil
}

// ArchivedBets returns all archived bets in store order.
func (s *Store) ArchivedBets() []domain.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Bet
	for _, b := range s.bets {
		if b.Archived {
			out = append(out, b)
		}
	}
	return out
}

// AddComment appends an immutable comment to a bet.
func (s *Store) AddComment(ctx context.Context, betID, author, text string) (domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(betID)
	if idx < 0 {
		return domain.Comment{}, ErrNotFound
	}
	if author == "" || text == "" {
		return domain.Comment{}, errors.New("author and text are required")
	}
	c := domain.Comment{
		ID:     "comment-" + uuid.NewString(),
		Author: author,
		Text:   text,
		Date:   s.today(),
	}
	s.bets[idx].Comments = append(s.bets[idx].Comments, c)
	s.bets[idx].LastUpdated = s.today()
	s.recordLocked(ctx, "comment.added", betID, author, events.Payload{"comment_id": c.ID})
	s.persistLocked(ctx)
	return c, nil
}

func (s *Store) indexLocked(id string) int {
	for i, b := range s.bets {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Users returns a copy of the user roster.
func (s *Store) Users() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.User(nil), s.users...)
}

// SetUsers replaces the user roster without validation.
func (s *Store) SetUsers(ctx context.Context, users []domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append([]domain.User(nil), users...)
	s.persistLocked(ctx)
}

// AddUser creates a user. Names are unique case-insensitively.
func (s *Store) AddUser(ctx context.Context, name string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, errors.New("user name is required")
	}
	if s.hasUserLocked(name) {
		return domain.User{}, ErrDuplicateUser
	}
	u := domain.User{ID: uuid.NewString(), Name: name}
	s.users = append(s.users, u)
	s.recordLocked(ctx, "user.added", "", name, nil)
	s.persistLocked(ctx)
	return u, nil
}

// RemoveUser deletes the user with the given id. Bets and comments keep
// referencing the removed name; no cascading cleanup happens.
func (s *Store) RemoveUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			s.recordLocked(ctx, "user.removed", "", u.Name, nil)
			s.persistLocked(ctx)
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) hasUserLocked(name string) bool {
	for _, u := range s.users {
		if strings.EqualFold(u.Name, name) {
			return true
		}
	}
	return false
}

// Filters returns the active filter criteria.
func (s *Store) Filters() domain.BetFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// FilterPatch holds optional filter updates. Nil means "keep current value";
// a pointer to the empty string clears that criterion.
type FilterPatch struct {
	Owner  *string
	Status *string
	Search *string
}

// SetFilters merges the patch into the current criteria.
func (s *Store) SetFilters(ctx context.Context, patch FilterPatch) domain.BetFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.Owner != nil {
		s.filters.Owner = *patch.Owner
	}
	if patch.Status != nil {
		s.filters.Status = *patch.Status
	}
	if patch.Search != nil {
		s.filters.Search = *patch.Search
	}
	s.persistLocked(ctx)
	return s.filters
}

// ClearFilters resets all criteria.
func (s *Store) ClearFilters(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = domain.BetFilters{}
	s.persistLocked(ctx)
}

// FilteredBets applies the active filters to the bet collection.
func (s *Store) FilteredBets() []domain.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Filter(s.bets, s.filters)
}

// Filter produces the visible bet list: non-archived bets matching the
// criteria, input order preserved. Pure and idempotent.
func Filter(bets []domain.Bet, f domain.BetFilters) []domain.Bet {
	var out []domain.Bet
	for _, b := range bets {
		if b.Archived {
			continue
		}
		if f.Owner != "" && b.Owner != f.Owner {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(b.What), needle) &&
				!strings.Contains(strings.ToLower(b.Why), needle) &&
				!strings.Contains(strings.ToLower(b.How), needle) {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}
