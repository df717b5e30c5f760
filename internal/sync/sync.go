// Package sync pushes local writes to the remote board API and buffers
// them in the offline queue when the remote is unreachable.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"betboard/internal/domain"
	"betboard/internal/queue"
	"betboard/internal/store"
	betboardsdk "betboard/sdk/go"
)

// retryWarnThreshold marks actions that keep failing on replay. They are
// never dropped, only logged louder.
const retryWarnThreshold = 5

// Service mirrors board writes to the remote API. When offline (or when a
// request fails) the write is queued and replayed in order once Drain runs.
type Service struct {
	Client *betboardsdk.Client
	Queue  *queue.Store
	Log    *zap.Logger

	// OfflineDisabled turns queueing off. Failed writes then surface as
	// errors to the caller.
	OfflineDisabled bool

	mu     sync.Mutex
	online bool
}

// New wires a sync service. The queue may be nil for remote-only mode.
func New(client *betboardsdk.Client, q *queue.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Client: client, Queue: q, Log: log, online: true}
}

// Online reports the last known connectivity state.
func (s *Service) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// SetOnline records connectivity. Transitioning to online drains the queue.
func (s *Service) SetOnline(ctx context.Context, online bool) error {
	s.mu.Lock()
	was := s.online
	s.online = online
	s.mu.Unlock()
	if online && !was {
		return s.Drain(ctx)
	}
	return nil
}

// CreateBet pushes a new bet to the remote, queueing it on failure.
func (s *Service) CreateBet(ctx context.Context, bet betboardsdk.Bet) error {
	payload, err := json.Marshal(bet)
	if err != nil {
		return err
	}
	if !s.Online() {
		return s.enqueue(queue.TypeCreate, "bets", payload)
	}
	if _, err := s.Client.CreateBet(ctx, bet); err != nil {
		return s.fallback(queue.TypeCreate, "bets", payload, err)
	}
	return nil
}

// UpdateBet pushes a partial update, queueing it on failure.
func (s *Service) UpdateBet(ctx context.Context, id string, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	endpoint := "bets/" + id
	if !s.Online() {
		return s.enqueue(queue.TypeUpdate, endpoint, payload)
	}
	if _, err := s.Client.UpdateBet(ctx, id, fields); err != nil {
		return s.fallback(queue.TypeUpdate, endpoint, payload, err)
	}
	return nil
}

// DeleteBet pushes a delete, queueing it on failure.
func (s *Service) DeleteBet(ctx context.Context, id string) error {
	endpoint := "bets/" + id
	if !s.Online() {
		return s.enqueue(queue.TypeDelete, endpoint, nil)
	}
	if err := s.Client.DeleteBet(ctx, id); err != nil {
		return s.fallback(queue.TypeDelete, endpoint, nil, err)
	}
	return nil
}

// AddComment pushes a comment, queueing it on failure.
func (s *Service) AddComment(ctx context.Context, betID, author, text string) error {
	payload, err := json.Marshal(map[string]string{"author": author, "text": text})
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("bets/%s/comments", betID)
	if !s.Online() {
		return s.enqueue(queue.TypeCreate, endpoint, payload)
	}
	if _, err := s.Client.AddComment(ctx, betID, author, text); err != nil {
		return s.fallback(queue.TypeCreate, endpoint, payload, err)
	}
	return nil
}

// Refresh pulls the remote board state and replaces the local collections.
func (s *Service) Refresh(ctx context.Context, dst *store.Store) error {
	remoteBets, err := s.Client.ListBets(ctx)
	if err != nil {
		return fmt.Errorf("fetch bets: %w", err)
	}
	remoteUsers, err := s.Client.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("fetch users: %w", err)
	}
	bets := make([]domain.Bet, 0, len(remoteBets))
	for _, b := range remoteBets {
		bets = append(bets, domain.Bet{
			ID:          b.ID,
			Owner:       b.Owner,
			What:        b.What,
			Why:         b.Why,
			How:         b.How,
			When:        b.When,
			Status:      b.Status,
			LastUpdated: b.LastUpdated,
			Tags:        b.Tags,
			Assignees:   b.Assignees,
			Comments:    comments(b.Comments),
			Archived:    b.Archived,
			ArchivedAt:  b.ArchivedAt,
			ArchivedBy:  b.ArchivedBy,
		})
	}
	users := make([]domain.User, 0, len(remoteUsers))
	for _, u := range remoteUsers {
		users = append(users, domain.User{ID: u.ID, Name: u.Name})
	}
	dst.SetBets(ctx, bets)
	dst.SetUsers(ctx, users)
	return nil
}

func comments(in []betboardsdk.Comment) []domain.Comment {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Comment, 0, len(in))
	for _, c := range in {
		out = append(out, domain.Comment{ID: c.ID, Author: c.Author, Text: c.Text, Date: c.Date})
	}
	return out
}

// Pending returns the number of queued actions.
func (s *Service) Pending() (int, error) {
	if s.Queue == nil {
		return 0, nil
	}
	return s.Queue.Len()
}

// Drain replays queued actions oldest first. A failed action is requeued at
// the tail and draining stops so ordering survives a flaky remote.
func (s *Service) Drain(ctx context.Context) error {
	if s.Queue == nil {
		return nil
	}
	for {
		actions, err := s.Queue.Batch(0)
		if err != nil {
			return err
		}
		if len(actions) == 0 {
			return nil
		}
		for _, act := range actions {
			if err := s.Client.Replay(ctx, act.Type, act.Endpoint, act.Payload); err != nil {
				if act.Retries+1 >= retryWarnThreshold {
					s.Log.Warn("offline action keeps failing",
						zap.String("id", act.ID),
						zap.String("endpoint", act.Endpoint),
						zap.Int("retries", act.Retries+1),
						zap.Error(err))
				}
				if rqErr := s.Queue.Requeue(act); rqErr != nil {
					return rqErr
				}
				return fmt.Errorf("replay %s %s: %w", act.Type, act.Endpoint, err)
			}
			if err := s.Queue.Remove(act); err != nil {
				return err
			}
			s.Log.Debug("replayed offline action",
				zap.String("type", act.Type),
				zap.String("endpoint", act.Endpoint))
		}
	}
}

func (s *Service) fallback(actionType, endpoint string, payload json.RawMessage, cause error) error {
	if s.OfflineDisabled || s.Queue == nil {
		return cause
	}
	s.mu.Lock()
	s.online = false
	s.mu.Unlock()
	s.Log.Warn("remote unreachable, queueing action",
		zap.String("type", actionType),
		zap.String("endpoint", endpoint),
		zap.Error(cause))
	return s.enqueue(actionType, endpoint, payload)
}

func (s *Service) enqueue(actionType, endpoint string, payload json.RawMessage) error {
	if s.OfflineDisabled || s.Queue == nil {
		return fmt.Errorf("offline and queueing disabled: %s %s", actionType, endpoint)
	}
	return s.Queue.Enqueue(queue.Action{
		Type:     actionType,
		Endpoint: endpoint,
		Payload:  payload,
	})
}
