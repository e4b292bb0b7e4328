package circuitbreaker

import (
	"context"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/repository"
)

// ArticleRepository protects an article repository with a circuit breaker.
// While the circuit is open every call fails immediately, which the feed store
// records as a fetch error so readers see the fallback dataset.
type ArticleRepository struct {
	cb   *CircuitBreaker
	next repository.ArticleRepository
}

// NewArticleRepository wraps next with a breaker built from cfg.
func NewArticleRepository(next repository.ArticleRepository, cfg Config) *ArticleRepository {
	return &ArticleRepository{cb: New(cfg), next: next}
}

// Breaker exposes the underlying breaker for health reporting.
func (r *ArticleRepository) Breaker() *CircuitBreaker {
	return r.cb
}

func (r *ArticleRepository) ListPublished(ctx context.Context) ([]entity.RemoteRow, error) {
	res, err := r.cb.Execute(func() (interface{}, error) {
		return r.next.ListPublished(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.([]entity.RemoteRow), nil
}

func (r *ArticleRepository) GetPublished(ctx context.Context, id string) (*entity.RemoteRow, error) {
	res, err := r.cb.Execute(func() (interface{}, error) {
		return r.next.GetPublished(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*entity.RemoteRow), nil
}

func (r *ArticleRepository) GetRow(ctx context.Context, id string) (*entity.RemoteRow, error) {
	res, err := r.cb.Execute(func() (interface{}, error) {
		return r.next.GetRow(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*entity.RemoteRow), nil
}

var _ repository.ArticleRepository = (*ArticleRepository)(nil)
