package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/inklet-app/inklet/backend/internal/common/constants"
	"github.com/inklet-app/inklet/backend/internal/common/crypto"
	commonerrors "github.com/inklet-app/inklet/backend/internal/common/errors"
	"github.com/inklet-app/inklet/backend/internal/common/logger"
	"github.com/inklet-app/inklet/backend/internal/media"
	"github.com/inklet-app/inklet/backend/internal/observability/metrics"
	"github.com/inklet-app/inklet/backend/internal/posts/domain"
	"github.com/inklet-app/inklet/backend/internal/posts/repository"
)

type CreateInput struct {
	AuthorID string
	Title    string
	Content  string
	Image    *media.Upload
}

type UpdateInput struct {
	ID       string
	CallerID string
	Title    string
	Content  string
	Image    *media.Upload
}

type Service interface {
	List(ctx context.Context, scope domain.Scope, page domain.PageRequest) (domain.PageResult, error)
	Get(ctx context.Context, id string) (domain.Post, error)
	Create(ctx context.Context, in CreateInput) (domain.Post, error)
	Update(ctx context.Context, in UpdateInput) (domain.Post, error)
	Delete(ctx context.Context, id, callerID string) error
}

type PostService struct {
	repo        repository.Repository
	relay       media.Service
	idGenerator crypto.IDGenerator
	validate    *validator.Validate
	now         func() time.Time
	log         *logger.Logger
}

func NewPostService(repo repository.Repository, relay media.Service, idGenerator crypto.IDGenerator, log *logger.Logger) *PostService {
	return &PostService{
		repo:        repo,
		relay:       relay,
		idGenerator: idGenerator,
		validate:    newPostValidator(),
		now:         time.Now,
		log:         log,
	}
}

// SetNow overrides the clock. Test hook.
func (s *PostService) SetNow(now func() time.Time) {
	s.now = now
}

// List returns one page of posts for the given scope. The default page size
// depends on the scope: an author browsing their own posts gets the compact
// dashboard size, everything else gets the feed size.
func (s *PostService) List(ctx context.Context, scope domain.Scope, page domain.PageRequest) (domain.PageResult, error) {
	defaultLimit := constants.PublicPageSize
	if scope.Kind == domain.ScopeOnlyCaller {
		defaultLimit = constants.MyPostsPageSize
	}
	page = page.Normalize(defaultLimit, constants.MaxPageSize)

	posts, total, err := s.repo.List(ctx, scope, page)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"scope":  scope.String(),
			"action": "post_list_failed",
		}).Errorf("failed to list posts: %v", err)
		return domain.PageResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.PostListingsTotal.WithLabelValues(scope.String()).Inc()

	return domain.NewPageResult(posts, total, page.Page, page.Limit), nil
}

func (s *PostService) Get(ctx context.Context, id string) (domain.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return domain.Post{}, commonerrors.ErrPostNotFound
		}
		return domain.Post{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return post, nil
}

// Create validates the input, relays the image to the media host, then
// persists the post. If the insert fails after a successful upload the
// uploaded asset is deleted again so the media host does not accumulate
// orphans.
func (s *PostService) Create(ctx context.Context, in CreateInput) (domain.Post, error) {
	if err := validatePostInput(s.validate, in.Title, in.Content); err != nil {
		return domain.Post{}, err
	}

	thumbnail := ""
	if in.Image != nil {
		url, err := s.relay.Upload(ctx, *in.Image)
		if err != nil {
			return domain.Post{}, commonerrors.ErrUploadFailed.WithCause(err)
		}
		thumbnail = url
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.compensateUpload(ctx, thumbnail)
		return domain.Post{}, commonerrors.ErrInternalError.WithCause(err)
	}

	post := domain.Post{
		ID:        id,
		AuthorID:  in.AuthorID,
		Title:     in.Title,
		Content:   in.Content,
		Thumbnail: thumbnail,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.compensateUpload(ctx, thumbnail)
		s.log.WithFields(ctx, logger.Fields{
			"author_id": in.AuthorID,
			"action":    "post_create_failed",
		}).Errorf("failed to create post: %v", err)
		return domain.Post{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.PostsCreatedTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"post_id":   post.ID,
		"author_id": post.AuthorID,
		"action":    "post_created",
	}).Info("post created")

	return post, nil
}

// Update applies a partial edit: empty title or content keeps the stored
// value, and the thumbnail only changes when a new image is sent. The post
// must exist before ownership is checked, so editing someone else's deleted
// post reports not-found rather than forbidden.
func (s *PostService) Update(ctx context.Context, in UpdateInput) (domain.Post, error) {
	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return domain.Post{}, commonerrors.ErrPostNotFound
		}
		return domain.Post{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	if existing.AuthorID != in.CallerID {
		return domain.Post{}, commonerrors.ErrNotPostOwner
	}

	title := in.Title
	if title == "" {
		title = existing.Title
	}
	content := in.Content
	if content == "" {
		content = existing.Content
	}
	if err := validatePostInput(s.validate, title, content); err != nil {
		return domain.Post{}, err
	}

	thumbnail := existing.Thumbnail
	uploaded := ""
	if in.Image != nil {
		url, err := s.relay.Upload(ctx, *in.Image)
		if err != nil {
			return domain.Post{}, commonerrors.ErrUploadFailed.WithCause(err)
		}
		thumbnail = url
		uploaded = url
	}

	updated := existing
	updated.Title = title
	updated.Content = content
	updated.Thumbnail = thumbnail

	if err := s.repo.Update(ctx, updated); err != nil {
		s.compensateUpload(ctx, uploaded)
		if errors.Is(err, repository.ErrPostNotFound) {
			return domain.Post{}, commonerrors.ErrPostNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"post_id": in.ID,
			"action":  "post_update_failed",
		}).Errorf("failed to update post: %v", err)
		return domain.Post{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.PostsUpdatedTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"post_id":   updated.ID,
		"author_id": updated.AuthorID,
		"action":    "post_updated",
	}).Info("post updated")

	return updated, nil
}

// Delete removes the caller's post. Like Update it looks the post up first:
// a missing post is not-found even when the caller would not own it.
func (s *PostService) Delete(ctx context.Context, id, callerID string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return commonerrors.ErrPostNotFound
		}
		return commonerrors.ErrDatabaseError.WithCause(err)
	}
	if existing.AuthorID != callerID {
		return commonerrors.ErrNotPostOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return commonerrors.ErrPostNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"post_id": id,
			"action":  "post_delete_failed",
		}).Errorf("failed to delete post: %v", err)
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.PostsDeletedTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"post_id":   id,
		"author_id": callerID,
		"action":    "post_deleted",
	}).Info("post deleted")

	return nil
}

// compensateUpload deletes an asset whose owning post never made it into the
// database. One attempt; if it fails too the orphan is logged and accepted.
func (s *PostService) compensateUpload(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.relay.Delete(ctx, url); err != nil {
		metrics.MediaCompensationsTotal.WithLabelValues("failure").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"url":    url,
			"action": "media_compensation_failed",
		}).Warnf("failed to delete orphaned media asset: %v", err)
		return
	}
	metrics.MediaCompensationsTotal.WithLabelValues("success").Inc()
}
