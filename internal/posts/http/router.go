package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/inklet-app/inklet/backend/internal/common/constants"
	commonerrors "github.com/inklet-app/inklet/backend/internal/common/errors"
	commonhttp "github.com/inklet-app/inklet/backend/internal/common/http"
	"github.com/inklet-app/inklet/backend/internal/common/jwtverify"
	"github.com/inklet-app/inklet/backend/internal/common/logger"
	"github.com/inklet-app/inklet/backend/internal/media"
	"github.com/inklet-app/inklet/backend/internal/posts/domain"
	"github.com/inklet-app/inklet/backend/internal/posts/service"
)

type authorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type postResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Thumbnail string         `json:"thumbnail"`
	Author    authorResponse `json:"author"`
	CreatedAt time.Time      `json:"createdAt"`
}

type listResponse struct {
	Posts       []postResponse `json:"posts"`
	Total       int            `json:"total"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

type Handler struct {
	posts       service.Service
	errors      *commonhttp.ErrorHandler
	readTimeout time.Duration
	// mutation requests carry an image upload that is relayed to the media
	// host inside the request, so they run on the upload window, not the
	// normal request timeout.
	writeTimeout time.Duration
	log          *logger.Logger
}

// NewHandler wires the posts routes. jwtSecret feeds the auth middleware:
// the feed is public (with optional identity for excludeMe), everything that
// writes or reads the caller's own posts requires a token.
func NewHandler(posts service.Service, jwtSecret string, readTimeout, writeTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{
		posts:        posts,
		errors:       commonhttp.NewErrorHandler(log),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		log:          log,
	}

	requireAuth := jwtverify.Middleware(jwtSecret, log)
	optionalAuth := jwtverify.Optional(jwtSecret, log)

	mux := http.NewServeMux()
	mux.Handle("/api/posts", optionalAuth(http.HandlerFunc(h.list)))
	mux.Handle("/api/posts/create", requireAuth(http.HandlerFunc(h.create)))
	mux.Handle("/api/posts/user/me", requireAuth(http.HandlerFunc(h.listMine)))
	mux.Handle("/api/posts/", h.byID(requireAuth))
	return mux
}

// byID dispatches /api/posts/{id}. GET is public; PUT and DELETE go through
// the auth middleware per-request since the path cannot be split by method
// at registration time.
func (h *Handler) byID(requireAuth func(http.Handler) http.Handler) http.Handler {
	update := requireAuth(http.HandlerFunc(h.update))
	remove := requireAuth(http.HandlerFunc(h.remove))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.get(w, r)
		case http.MethodPut:
			update.ServeHTTP(w, r)
		case http.MethodDelete:
			remove.ServeHTTP(w, r)
		default:
			commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	scope := domain.All()
	if r.URL.Query().Get("excludeMe") == "true" {
		if claims, ok := jwtverify.FromContext(r.Context()); ok {
			scope = domain.AllExcluding(claims.UserID)
		}
	}

	h.serveListing(w, r, scope)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "authorization required", nil, "")
		return
	}

	h.serveListing(w, r, domain.OnlyCaller(claims.UserID))
}

func (h *Handler) serveListing(w http.ResponseWriter, r *http.Request, scope domain.Scope) {
	page, err := parsePageRequest(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.readTimeout)
	defer cancel()

	result, err := h.posts.List(ctx, scope, page)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toListResponse(result))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.readTimeout)
	defer cancel()

	post, err := h.posts.Get(ctx, id)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toPostResponse(post))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "authorization required", nil, "")
		return
	}

	form, ok := h.parsePostForm(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.writeTimeout)
	defer cancel()

	post, err := h.posts.Create(ctx, service.CreateInput{
		AuthorID: claims.UserID,
		Title:    form.title,
		Content:  form.content,
		Image:    form.image,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toPostResponse(post))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDFromRequest(w, r)
	if !ok {
		return
	}

	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "authorization required", nil, "")
		return
	}

	form, ok := h.parsePostForm(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.writeTimeout)
	defer cancel()

	post, err := h.posts.Update(ctx, service.UpdateInput{
		ID:       id,
		CallerID: claims.UserID,
		Title:    form.title,
		Content:  form.content,
		Image:    form.image,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toPostResponse(post))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDFromRequest(w, r)
	if !ok {
		return
	}

	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "authorization required", nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.readTimeout)
	defer cancel()

	if err := h.posts.Delete(ctx, id, claims.UserID); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

type postForm struct {
	title   string
	content string
	image   *media.Upload
}

func (h *Handler) parsePostForm(w http.ResponseWriter, r *http.Request) (postForm, bool) {
	if err := r.ParseMultipartForm(constants.MultipartMemoryLimit); err != nil {
		h.log.Warnf("invalid multipart form: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidMultipart, "invalid multipart form", nil, "")
		return postForm{}, false
	}

	form := postForm{
		title:   strings.TrimSpace(r.FormValue("title")),
		content: strings.TrimSpace(r.FormValue("content")),
	}

	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return form, true
		}
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidMultipart, "invalid thumbnail upload", nil, "")
		return postForm{}, false
	}
	defer file.Close()

	if header.Size > constants.MaxThumbnailSizeBytes {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidMultipart, "thumbnail exceeds the size limit", nil, "")
		return postForm{}, false
	}

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxThumbnailSizeBytes+1))
	if err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidMultipart, "failed to read thumbnail", nil, "")
		return postForm{}, false
	}
	if int64(len(data)) > constants.MaxThumbnailSizeBytes {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidMultipart, "thumbnail exceeds the size limit", nil, "")
		return postForm{}, false
	}

	form.image = &media.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return form, true
}

func postIDFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := commonhttp.ExtractPostIDFromPath(r.URL.Path)
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodePostIDRequired, "post id is required", nil, "")
		return "", false
	}
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPostIDFormat, "post id must be a valid uuid", nil, "")
		return "", false
	}
	return id, true
}

func parsePageRequest(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()

	page, err := parsePageInt(q.Get("page"))
	if err != nil {
		return domain.PageRequest{}, err
	}
	limit, err := parsePageInt(q.Get("limit"))
	if err != nil {
		return domain.PageRequest{}, err
	}

	search := strings.TrimSpace(q.Get("search"))
	if len(search) > constants.MaxSearchTermBytes {
		search = truncateOnRuneBoundary(search, constants.MaxSearchTermBytes)
	}

	return domain.PageRequest{Page: page, Limit: limit, Search: search}, nil
}

// truncateOnRuneBoundary cuts s to at most max bytes without splitting a
// multi-byte rune; Postgres rejects text parameters with invalid UTF-8.
func truncateOnRuneBoundary(s string, max int) string {
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// parsePageInt rejects only non-numeric input. Zero and negative values pass
// through; Normalize clamps them to page 1 and the default limit.
func parsePageInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, commonerrors.ErrInvalidPage
	}
	return n, nil
}

func toPostResponse(post domain.Post) postResponse {
	return postResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Thumbnail: post.Thumbnail,
		Author: authorResponse{
			ID:   post.AuthorID,
			Name: post.AuthorName,
		},
		CreatedAt: post.CreatedAt,
	}
}

func toListResponse(result domain.PageResult) listResponse {
	posts := make([]postResponse, 0, len(result.Posts))
	for _, post := range result.Posts {
		posts = append(posts, toPostResponse(post))
	}
	return listResponse{
		Posts:       posts,
		Total:       result.Total,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
	}
}
