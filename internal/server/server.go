package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"betboard/internal/domain"
	"betboard/internal/store"
)

// Config for the HTTP API handler.
type Config struct {
	Store    *store.Store
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"bet not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

type requestKey struct{}
type bodyBytesKey struct{}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the betboard API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bodyBytes, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			ctx := context.WithValue(r.Context(), requestKey{}, r)
			ctx = context.WithValue(ctx, bodyBytesKey{}, bodyBytes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("Betboard API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerBets(group, cfg.Store)
	registerUsers(group, cfg.Store)
	registerEvents(group, cfg.Store)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	if errors.Is(err, store.ErrDuplicateID) || errors.Is(err, store.ErrDuplicateUser) {
		return newAPIError(http.StatusConflict, "conflict", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "invalid") ||
		strings.Contains(lowered, "required") ||
		strings.Contains(lowered, "unknown") ||
		strings.Contains(lowered, "empty"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func bodyBytes(ctx context.Context) []byte {
	b, _ := ctx.Value(bodyBytesKey{}).([]byte)
	return b
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerBets(api huma.API, s *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "list-bets",
		Method:      http.MethodGet,
		Path:        "/bets",
		Summary:     "List bets",
	}, func(ctx context.Context, input *struct {
		Owner  string `query:"owner"`
		Status string `query:"status"`
		Search string `query:"search"`
	}) (*struct {
		Body []BetResponse `json:"body"`
	}, error) {
		bets := s.Bets()
		if input.Owner != "" || input.Status != "" || input.Search != "" {
			bets = store.Filter(bets, domain.BetFilters{
				Owner:  input.Owner,
				Status: input.Status,
				Search: input.Search,
			})
		}
		return &struct {
			Body []BetResponse `json:"body"`
		}{Body: mapBets(bets)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-bet",
		Method:        http.MethodPost,
		Path:          "/bets",
		Summary:       "Create bet",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusConflict,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateBetRequest `json:"body"`
	}) (*struct {
		Body BetResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		bet, err := s.AddBet(ctx, input.Body.toNewBet())
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body BetResponse `json:"body"`
		}{Body: betResponse(bet)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-bet",
		Method:      http.MethodGet,
		Path:        "/bets/{id}",
		Summary:     "Get bet",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body BetResponse `json:"body"`
	}, error) {
		bet, ok := s.Bet(input.ID)
		if !ok {
			return nil, newAPIError(http.StatusNotFound, "not_found", "bet not found", nil)
		}
		return &struct {
			Body BetResponse `json:"body"`
		}{Body: betResponse(bet)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-bet",
		Method:      http.MethodPut,
		Path:        "/bets/{id}",
		Summary:     "Update bet",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ID   string           `path:"id"`
		Body UpdateBetRequest `json:"body"`
	}) (*struct {
		Body BetResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		bet, err := s.UpdateBet(ctx, input.ID, input.Body.toPatch())
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body BetResponse `json:"body"`
		}{Body: betResponse(bet)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-bet",
		Method:      http.MethodDelete,
		Path:        "/bets/{id}",
		Summary:     "Delete bet",
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		s.DeleteBet(ctx, input.ID)
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-bet-comment",
		Method:        http.MethodPost,
		Path:          "/bets/{id}/comments",
		Summary:       "Add comment to bet",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ID   string               `path:"id"`
		Body CreateCommentRequest `json:"body"`
	}) (*struct {
		Body CommentResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		if strings.TrimSpace(input.Body.Author) == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "author is required", nil)
		}
		if strings.TrimSpace(input.Body.Text) == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "text is required", nil)
		}
		comment, err := s.AddComment(ctx, input.ID, input.Body.Author, input.Body.Text)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CommentResponse `json:"body"`
		}{Body: commentResponse(comment)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "archive-bet",
		Method:      http.MethodPost,
		Path:        "/bets/{id}/archive",
		Summary:     "Archive bet",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body struct {
			By string `json:"by,omitempty"`
		} `json:"body"`
	}) (*struct {
		Body BetResponse `json:"body"`
	}, error) {
		bet, err := s.ArchiveBet(ctx, input.ID, input.Body.By)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body BetResponse `json:"body"`
		}{Body: betResponse(bet)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "restore-bet",
		Method:      http.MethodPost,
		Path:        "/bets/{id}/restore",
		Summary:     "Restore archived bet",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body BetResponse `json:"body"`
	}, error) {
		bet, err := s.RestoreBet(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body BetResponse `json:"body"`
		}{Body: betResponse(bet)}, nil
	})
}

func registerUsers(api huma.API, s *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []UserResponse `json:"body"`
	}, error) {
		return &struct {
			Body []UserResponse `json:"body"`
		}{Body: mapUsers(s.Users())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-user",
		Method:        http.MethodPost,
		Path:          "/users",
		Summary:       "Add user",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusConflict,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateUserRequest `json:"body"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		if strings.TrimSpace(input.Body.Name) == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		user, err := s.AddUser(ctx, input.Body.Name)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: userResponse(user)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-user",
		Method:      http.MethodDelete,
		Path:        "/users/{id}",
		Summary:     "Remove user",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := s.RemoveUser(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerEvents(api huma.API, s *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "List audit events",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Limit int    `query:"limit" default:"50"`
		Type  string `query:"type"`
		BetID string `query:"bet_id"`
	}) (*struct {
		Body []EventResponse `json:"body"`
	}, error) {
		if s.Events.DB == nil {
			return &struct {
				Body []EventResponse `json:"body"`
			}{Body: []EventResponse{}}, nil
		}
		items, err := s.Events.Latest(ctx, input.Limit, input.Type, input.BetID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []EventResponse `json:"body"`
		}{Body: mapEvents(items)}, nil
	})
}
