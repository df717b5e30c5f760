package server

import (
	"encoding/json"

	"betboard/internal/domain"
	"betboard/internal/store"
)

type CreateBetRequest struct {
	ID        *string  `json:"id,omitempty"`
	Owner     string   `json:"owner"`
	What      string   `json:"what"`
	Why       string   `json:"why"`
	How       string   `json:"how"`
	When      string   `json:"when" format:"date"`
	Status    *string  `json:"status,omitempty" enum:"Open,In Progress,Blocked,Done"`
	Tags      []string `json:"tags,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

func (r CreateBetRequest) toNewBet() domain.Bet {
	bet := domain.Bet{
		Owner:     r.Owner,
		What:      r.What,
		Why:       r.Why,
		How:       r.How,
		When:      r.When,
		Tags:      r.Tags,
		Assignees: r.Assignees,
	}
	if r.ID != nil {
		bet.ID = *r.ID
	}
	if r.Status != nil {
		bet.Status = *r.Status
	}
	return bet
}

// UpdateBetRequest carries a partial bet. Absent fields are left untouched.
type UpdateBetRequest struct {
	Owner     *string   `json:"owner,omitempty"`
	What      *string   `json:"what,omitempty"`
	Why       *string   `json:"why,omitempty"`
	How       *string   `json:"how,omitempty"`
	When      *string   `json:"when,omitempty" format:"date"`
	Status    *string   `json:"status,omitempty" enum:"Open,In Progress,Blocked,Done"`
	Tags      *[]string `json:"tags,omitempty"`
	Assignees *[]string `json:"assignees,omitempty"`
}

func (r UpdateBetRequest) toPatch() store.BetPatch {
	return store.BetPatch{
		Owner:     r.Owner,
		What:      r.What,
		Why:       r.Why,
		How:       r.How,
		When:      r.When,
		Status:    r.Status,
		Tags:      r.Tags,
		Assignees: r.Assignees,
	}
}

type CreateCommentRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

type CreateUserRequest struct {
	Name string `json:"name"`
}

type BetResponse struct {
	ID          string            `json:"id"`
	Owner       string            `json:"owner"`
	What        string            `json:"what"`
	Why         string            `json:"why"`
	How         string            `json:"how"`
	When        string            `json:"when" format:"date"`
	Status      string            `json:"status"`
	LastUpdated string            `json:"last_updated" format:"date"`
	Tags        []string          `json:"tags,omitempty"`
	Assignees   []string          `json:"assignees,omitempty"`
	Comments    []CommentResponse `json:"comments,omitempty"`
	Archived    bool              `json:"archived,omitempty"`
	ArchivedAt  *string           `json:"archived_at,omitempty" format:"date-time"`
	ArchivedBy  *string           `json:"archived_by,omitempty"`
}

type CommentResponse struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
	Date   string `json:"date" format:"date"`
}

type UserResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EventResponse struct {
	ID      int64          `json:"id"`
	TS      string         `json:"ts" format:"date-time"`
	Type    string         `json:"type"`
	BetID   string         `json:"bet_id,omitempty"`
	Actor   string         `json:"actor"`
	Payload map[string]any `json:"payload,omitempty"`
}

func betResponse(b domain.Bet) BetResponse {
	return BetResponse{
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
		Comments:    mapComments(b.Comments),
		Archived:    b.Archived,
		ArchivedAt:  b.ArchivedAt,
		ArchivedBy:  b.ArchivedBy,
	}
}

func mapBets(bets []domain.Bet) []BetResponse {
	out := make([]BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, betResponse(b))
	}
	return out
}

func commentResponse(c domain.Comment) CommentResponse {
	return CommentResponse{ID: c.ID, Author: c.Author, Text: c.Text, Date: c.Date}
}

func mapComments(comments []domain.Comment) []CommentResponse {
	if len(comments) == 0 {
		return nil
	}
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentResponse(c))
	}
	return out
}

func userResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name}
}

func mapUsers(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}
	return out
}

func mapEvents(items []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(items))
	for _, e := range items {
		resp := EventResponse{
			ID:    e.ID,
			TS:    e.TS,
			Type:  e.Type,
			BetID: e.BetID,
			Actor: e.Actor,
		}
		if e.Payload != "" {
			_ = json.Unmarshal([]byte(e.Payload), &resp.Payload)
		}
		out = append(out, resp)
	}
	return out
}
