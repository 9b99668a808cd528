package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/peoplehq/users-api/internal/core/domain"
)

type stubUserService struct {
	createFn func(ctx context.Context, user *domain.User) (*domain.User, error)
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	listFn   func(ctx context.Context) ([]domain.User, error)
	updateFn func(ctx context.Context, id string, patch *domain.User) (*domain.User, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubUserService) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	return s.createFn(ctx, user)
}

func (s *stubUserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) UpdateUser(ctx context.Context, id string, patch *domain.User) (*domain.User, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *stubUserService) DeleteUser(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func newUserContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestUserHandler_Create(t *testing.T) {
	stub := &stubUserService{
		createFn: func(_ context.Context, user *domain.User) (*domain.User, error) {
			if user.Email != "jane@example.com" {
				t.Fatalf("unexpected aggregate: %+v", user)
			}
			if user.Address == nil || user.Address.City != "Springfield" {
				t.Fatalf("address not mapped: %+v", user.Address)
			}
			created := *user
			created.ID = "u1"
			return &created, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newUserContext(http.MethodPost, "/v1/users",
		`{"first_name":"Jane","last_name":"Doe","email":"jane@example.com","address":{"street":"1 Main St","city":"Springfield"}}`)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "u1" {
		t.Fatalf("id missing from response: %v", resp)
	}
	if _, leaked := resp["credential"]; leaked {
		t.Fatalf("credential must never serialize")
	}
}

func TestUserHandler_Create_ValidationErrorPassesThrough(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		createFn: func(context.Context, *domain.User) (*domain.User, error) {
			return nil, domain.ErrInvalidUser
		},
	})

	c, _ := newUserContext(http.MethodPost, "/v1/users", `{}`)

	if err := h.Create(c); !errors.Is(err, domain.ErrInvalidUser) {
		t.Fatalf("sentinel must flow to the central error handler, got %v", err)
	}
}

func TestUserHandler_Create_MalformedBody(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		createFn: func(context.Context, *domain.User) (*domain.User, error) {
			t.Fatalf("service must not be called for a malformed body")
			return nil, nil
		},
	})

	c, _ := newUserContext(http.MethodPost, "/v1/users", `{not json`)

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestUserHandler_GetAll(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		listFn: func(context.Context) ([]domain.User, error) {
			return []domain.User{{ID: "u1"}, {ID: "u2"}}, nil
		},
	})

	c, rec := newUserContext(http.MethodGet, "/v1/users", "")

	if err := h.GetAll(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var users []domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestUserHandler_GetAll_EmptyIsArrayNotNull(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		listFn: func(context.Context) ([]domain.User, error) { return nil, nil },
	})

	c, rec := newUserContext(http.MethodGet, "/v1/users", "")

	if err := h.GetAll(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestUserHandler_GetByID(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		getFn: func(_ context.Context, id string) (*domain.User, error) {
			if id != "u1" {
				return nil, domain.ErrUserNotFound
			}
			return &domain.User{ID: "u1", Email: "jane@example.com"}, nil
		},
	})

	c, rec := newUserContext(http.MethodGet, "/v1/users/u1", "")
	c.SetParamNames("id")
	c.SetParamValues("u1")

	if err := h.GetByID(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newUserContext(http.MethodGet, "/v1/users/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.GetByID(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_Update(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		updateFn: func(_ context.Context, id string, patch *domain.User) (*domain.User, error) {
			if id != "u1" {
				t.Fatalf("unexpected id %q", id)
			}
			if patch.Address != nil {
				t.Fatalf("absent address must map to nil, got %+v", patch.Address)
			}
			updated := *patch
			updated.ID = id
			return &updated, nil
		},
	})

	c, rec := newUserContext(http.MethodPut, "/v1/users/u1",
		`{"first_name":"Janet","last_name":"Doe","email":"jane@example.com"}`)
	c.SetParamNames("id")
	c.SetParamValues("u1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		deleteFn: func(_ context.Context, id string) error {
			if id != "u1" {
				return domain.ErrUserNotFound
			}
			return nil
		},
	})

	c, rec := newUserContext(http.MethodDelete, "/v1/users/u1", "")
	c.SetParamNames("id")
	c.SetParamValues("u1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c, _ = newUserContext(http.MethodDelete, "/v1/users/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.Delete(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
