package article

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/infra/fallback"
	"guacamaya/internal/observability/metrics"
	"guacamaya/internal/observability/tracing"
	"guacamaya/internal/repository"
)

// Origin names where a looked-up article came from.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// Service looks articles up by id or slug.
type Service struct {
	Repo  repository.ArticleRepository
	Local fallback.Dataset
}

// NewService creates a lookup service. repo may be nil when no remote table is configured.
func NewService(repo repository.ArticleRepository, local fallback.Dataset) *Service {
	return &Service{Repo: repo, Local: local}
}

// Lookup resolves idOrSlug. UUIDs are looked up among published remote rows;
// anything else is matched against the fallback dataset by slug, then id.
// Returns ErrInvalidArticleID for an empty identifier and ErrArticleNotFound
// when nothing visible matches. Remote failures are returned wrapped.
func (s *Service) Lookup(ctx context.Context, idOrSlug string) (entity.Article, Origin, error) {
	param := strings.TrimSpace(idOrSlug)
	if param == "" {
		return entity.Article{}, "", ErrInvalidArticleID
	}

	ctx, span := tracing.Start(ctx, "article.lookup", attribute.String("article.param", param))
	defer span.End()

	if _, err := uuid.Parse(param); err == nil && s.Repo != nil {
		span.SetAttributes(attribute.String("article.origin", string(OriginRemote)))
		row, err := s.Repo.GetPublished(ctx, param)
		if err != nil {
			span.RecordError(err)
			metrics.RecordLookup(string(OriginRemote), metrics.ResultFailure)
			return entity.Article{}, OriginRemote, fmt.Errorf("get published article: %w", err)
		}
		if row == nil {
			metrics.RecordLookup(string(OriginRemote), metrics.ResultNotFound)
			return entity.Article{}, OriginRemote, ErrArticleNotFound
		}
		metrics.RecordLookup(string(OriginRemote), metrics.ResultFound)
		return entity.Normalize(entity.Remote{Row: *row}), OriginRemote, nil
	}

	span.SetAttributes(attribute.String("article.origin", string(OriginLocal)))
	a, ok := s.Local.Find(param)
	if !ok {
		metrics.RecordLookup(string(OriginLocal), metrics.ResultNotFound)
		return entity.Article{}, OriginLocal, ErrArticleNotFound
	}
	metrics.RecordLookup(string(OriginLocal), metrics.ResultFound)
	return a, OriginLocal, nil
}
