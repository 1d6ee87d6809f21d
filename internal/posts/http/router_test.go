package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inklet-app/inklet/backend/internal/common/constants"
	commonerrors "github.com/inklet-app/inklet/backend/internal/common/errors"
	"github.com/inklet-app/inklet/backend/internal/common/logger"
	"github.com/inklet-app/inklet/backend/internal/posts/domain"
	"github.com/inklet-app/inklet/backend/internal/posts/service"
)

const testJWTSecret = "test-secret-that-is-long-enough-123"

type mockPostsService struct {
	listFunc   func(ctx context.Context, scope domain.Scope, page domain.PageRequest) (domain.PageResult, error)
	getFunc    func(ctx context.Context, id string) (domain.Post, error)
	createFunc func(ctx context.Context, in service.CreateInput) (domain.Post, error)
	updateFunc func(ctx context.Context, in service.UpdateInput) (domain.Post, error)
	deleteFunc func(ctx context.Context, id, callerID string) error
}

func (m *mockPostsService) List(ctx context.Context, scope domain.Scope, page domain.PageRequest) (domain.PageResult, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, scope, page)
	}
	return domain.PageResult{CurrentPage: 1}, nil
}

func (m *mockPostsService) Get(ctx context.Context, id string) (domain.Post, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return domain.Post{}, commonerrors.ErrPostNotFound
}

func (m *mockPostsService) Create(ctx context.Context, in service.CreateInput) (domain.Post, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, in)
	}
	return domain.Post{ID: "new-post"}, nil
}

func (m *mockPostsService) Update(ctx context.Context, in service.UpdateInput) (domain.Post, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, in)
	}
	return domain.Post{ID: in.ID}, nil
}

func (m *mockPostsService) Delete(ctx context.Context, id, callerID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, callerID)
	}
	return nil
}

func setupPostsHandler(t *testing.T) (*mockPostsService, http.Handler) {
	_ = t
	svc := &mockPostsService{}
	handler := NewHandler(svc, testJWTSecret, time.Second, time.Second, logger.NewDiscard())
	return svc, handler
}

func bearerToken(t *testing.T, userID, username string) string {
	claims := jwt.MapClaims{
		"sub": userID,
		"usr": username,
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + token
}

func multipartBody(t *testing.T, title, content string, thumbnail []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("title", title); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	if err := writer.WriteField("content", content); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	if thumbnail != nil {
		part, err := writer.CreateFormFile("thumbnail", "cover.jpg")
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write(thumbnail); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return &buf, writer.FormDataContentType()
}

func TestListPosts_Public(t *testing.T) {
	svc, handler := setupPostsHandler(t)

	var gotScope domain.Scope
	svc.listFunc = func(ctx context.Context, scope domain.Scope, page domain.PageRequest) (domain.PageResult, error) {
		gotScope = scope
		return domain.PageResult{
			Posts:       []domain.Post{{ID: "p1", Title: "Hello", AuthorID: "a1", AuthorName: "alice"}},
			Total:       1,
			TotalPages:  1,
			CurrentPage: 1,
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotScope.Kind != domain.ScopeAll {
		t.Errorf("expected the all scope, got %v", gotScope.Kind)
	}

	var body struct {
		Posts []struct {
			ID     string `json:"id"`
			Author struct {
				Name string `json:"name"`
			} `json:"author"`
		} `json:"posts"`
		Total       int `json:"total"`
		TotalPages  int `json:"totalPages"`
		CurrentPage int `json:"currentPage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Posts) != 1 || body.Posts[0].Author.Name != "alice" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if body.TotalPages != 1 || body.CurrentPage != 1 {
		t.Errorf("unexpected pagination fields: %s", rec.Body.String())
	}
}

func TestListPosts_ExcludeMeWithoutTokenIsPublic(t *testing.T) {
	svc, handler := setupPostsHandler(t)

	var gotScope domain.Scope
	svc.listFunc = func(ctx context.Context, scope domain.Scope, page domain.PageRequest) (domain.PageResult, error) {
		gotScope = scope
		return domain.PageResult{CurrentPage: 1}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/posts?excludeMe=true", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotScope.Kind != domain.ScopeAll {
		t.Errorf("expected anonymous excludeMe to fall back to all, got %v", gotScope.Kind)
	}
}

func TestListPosts_ExcludeMeWithToken(t *testing.T) {
	svc, handler := setupPostsHandler(t)

	var gotScope domain.Scope
	svc.listFunc = func(ctx context.Context, scope domain.Scope, page domain.PageRequest) (domain.PageResult, error) {
		gotScope = scope
		return domain.PageResult{CurrentPage: 1}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/posts?excludeMe=true", nil)
	req.Header.Set("Authorization", bearerToken(t, "user-42", "bob"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotScope.Kind != domain.ScopeAllExcludingCaller || gotScope.CallerID != "user-42" {
		t.Errorf("expected excluding scope for user-42, got %+v", gotScope)
	}
}

func TestListPosts_InvalidPage(t *testing.T) {
	_, handler := setupPostsHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/posts?page=zero", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestListPosts_PageZeroIsForgiven(t *testing.T) {
	svc, handler := setupPostsHandler(t)

	var gotPage domain.PageRequest
	svc.listFunc = func(ctx context.Context, scope domain.Scope, page domain.PageRequest) (domain.PageResult, error) {
		gotPage = page
		return domain.PageResult{CurrentPage: 1}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/posts?page=0&limit=-5", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotPage.Page != 0 || gotPage.Limit != -5 {
		t.Errorf("expected raw values handed to normalization, got %+v", gotPage)
	}
}

func TestParsePageRequest_SearchTruncatesOnRuneBoundary(t *testing.T) {
	prefix := strings.Repeat("a", constants.MaxSearchTermBytes-1)

	// The two-byte rune straddles the byte limit and must be dropped whole.
	req := httptest.NewRequest(http.MethodGet, "/api/posts?search="+url.QueryEscape(prefix+"é"), nil)
	page, err := parsePageRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(page.Search) {
		t.Fatalf("truncated search term is invalid UTF-8: %q", page.Search)
	}
	if page.Search != prefix {
		t.Errorf("expected the partial rune dropped, got %q", page.Search)
	}

	// A rune ending exactly at the limit stays intact.
	exact := strings.Repeat("a", constants.MaxSearchTermBytes-2) + "é"
	req = httptest.NewRequest(http.MethodGet, "/api/posts?search="+url.QueryEscape(exact+"tail"), nil)
	page, err = parsePageRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Search != exact {
		t.Errorf("expected truncation at the full rune, got %q", page.Search)
	}
}

func TestListMyPosts_RequiresAuth(t *testing.T) {
	_, handler := setupPostsHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/user/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestListMyPosts_UsesCallerScope(t *testing.T) {
	svc, handler := setupPostsHandler(t)

	var gotScope domain.Scope
	svc.listFunc = func(ctx context.Context, scope domain.Scope, page domain.PageRequest) (domain.PageResult, error) {
		gotScope = scope
		return domain.PageResult{CurrentPage: 1}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/posts/user/me", nil)
	req.Header.Set("Authorization", bearerToken(t, "user-42", "bob"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotScope.Kind != domain.ScopeOnlyCaller || gotScope.CallerID != "user-42" {
		t.Errorf("expected only-caller scope for user-42, got %+v", gotScope)
	}
}

func TestGetPost_InvalidID(t *testing.T) {
	_, handler := setupPostsHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	_, handler := setupPostsHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/11111111-1111-1111-1111-111111111111", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	_, handler := setupPostsHandler(t)

	body, contentType := multipartBody(t, "One Two Three Four Five", "content", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/posts/create", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestCreatePost_Success(t *testing.T) {
	svc, handler := setupPostsHandler(t)

	var gotInput service.CreateInput
	svc.createFunc = func(ctx context.Context, in service.CreateInput) (domain.Post, error) {
		gotInput = in
		return domain.Post{ID: "new-post", Title: in.Title, AuthorID: in.AuthorID}, nil
	}

	body, contentType := multipartBody(t, "One Two Three Four Five", "content here", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/posts/create", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerToken(t, "user-42", "bob"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotInput.AuthorID != "user-42" {
		t.Errorf("expected author from token, got %s", gotInput.AuthorID)
	}
	if gotInput.Image == nil || gotInput.Image.Filename != "cover.jpg" {
		t.Errorf("expected image forwarded, got %+v", gotInput.Image)
	}
}

func TestCreatePost_WithoutThumbnail(t *testing.T) {
	svc, handler := setupPostsHandler(t)

	var gotInput service.CreateInput
	svc.createFunc = func(ctx context.Context, in service.CreateInput) (domain.Post, error) {
		gotInput = in
		return domain.Post{ID: "new-post"}, nil
	}

	body, contentType := multipartBody(t, "One Two Three Four Five", "content here", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/posts/create", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerToken(t, "user-42", "bob"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if gotInput.Image != nil {
		t.Error("expected no image without a thumbnail part")
	}
}

func TestUpdatePost_ForbiddenForNonOwner(t *testing.T) {
	svc, handler := setupPostsHandler(t)

	svc.updateFunc = func(ctx context.Context, in service.UpdateInput) (domain.Post, error) {
		return domain.Post{}, commonerrors.ErrNotPostOwner
	}

	body, contentType := multipartBody(t, "One Two Three Four Five", "content", nil)
	req := httptest.NewRequest(http.MethodPut, "/api/posts/11111111-1111-1111-1111-111111111111", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerToken(t, "intruder", "mallory"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestDeletePost_Success(t *testing.T) {
	svc, handler := setupPostsHandler(t)

	var gotID, gotCaller string
	svc.deleteFunc = func(ctx context.Context, id, callerID string) error {
		gotID = id
		gotCaller = callerID
		return nil
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/11111111-1111-1111-1111-111111111111", nil)
	req.Header.Set("Authorization", bearerToken(t, "user-42", "bob"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != "11111111-1111-1111-1111-111111111111" || gotCaller != "user-42" {
		t.Errorf("unexpected delete args: id=%s caller=%s", gotID, gotCaller)
	}
}

func TestDeletePost_RequiresAuth(t *testing.T) {
	_, handler := setupPostsHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/11111111-1111-1111-1111-111111111111", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestPosts_MethodNotAllowed(t *testing.T) {
	_, handler := setupPostsHandler(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/posts/11111111-1111-1111-1111-111111111111", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
