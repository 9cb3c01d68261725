package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"mofa_notifier/internal/domain"
)

type Source interface {
	ID() string
	Name() string
	FetchNotices(ctx context.Context) ([]domain.Notice, error)
}

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type Publisher interface {
	Publish(ctx context.Context, digest *domain.Digest) error
}
