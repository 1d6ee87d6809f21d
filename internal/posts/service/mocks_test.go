package service

import (
	"context"

	"github.com/inklet-app/inklet/backend/internal/media"
	"github.com/inklet-app/inklet/backend/internal/posts/domain"
	"github.com/inklet-app/inklet/backend/internal/posts/repository"
)

type mockPostRepo struct {
	listFunc     func(ctx context.Context, scope domain.Scope, page domain.PageRequest) ([]domain.Post, int, error)
	findByIDFunc func(ctx context.Context, id string) (domain.Post, error)
	createFunc   func(ctx context.Context, post domain.Post) error
	updateFunc   func(ctx context.Context, post domain.Post) error
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockPostRepo) List(ctx context.Context, scope domain.Scope, page domain.PageRequest) ([]domain.Post, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, scope, page)
	}
	return nil, 0, nil
}

func (m *mockPostRepo) FindByID(ctx context.Context, id string) (domain.Post, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Post{}, repository.ErrPostNotFound
}

func (m *mockPostRepo) Create(ctx context.Context, post domain.Post) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, post)
	}
	return nil
}

func (m *mockPostRepo) Update(ctx context.Context, post domain.Post) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, post)
	}
	return nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockMediaService struct {
	uploadFunc func(ctx context.Context, up media.Upload) (string, error)
	deleteFunc func(ctx context.Context, url string) error

	uploads []media.Upload
	deletes []string
}

func (m *mockMediaService) Upload(ctx context.Context, up media.Upload) (string, error) {
	m.uploads = append(m.uploads, up)
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, up)
	}
	return "https://media.example.com/" + up.Filename, nil
}

func (m *mockMediaService) Delete(ctx context.Context, url string) error {
	m.deletes = append(m.deletes, url)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, url)
	}
	return nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "22222222-2222-2222-2222-222222222222", nil
}
