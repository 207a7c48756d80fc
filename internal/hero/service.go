package hero

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rmadriz/portfolio-backend/internal/cache"
	"github.com/rmadriz/portfolio-backend/pkg/db"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	pkgerrors "github.com/rmadriz/portfolio-backend/pkg/errors"
)

const activeCacheKey = "active"

type repository interface {
	FindActive(ctx context.Context) (*models.HeroContent, error)
	Save(ctx context.Context, row *models.HeroContent) (*models.HeroContent, error)
}

// Service manages the landing hero section. There is a single active row;
// updates upsert it in place.
type Service interface {
	Get(ctx context.Context) (*Output, error)
	Update(ctx context.Context, input Input) (*Output, error)
}

type service struct {
	repo  repository
	cache *cache.Cache
}

// NewService constructs the hero service.
func NewService(repo repository, responseCache *cache.Cache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("hero repository required")
	}
	return &service{repo: repo, cache: responseCache}, nil
}

// Input is the admin hero payload. The update is a full replacement.
type Input struct {
	Headline        string     `json:"headline" validate:"required,max=300"`
	Subheadline     *string    `json:"subheadline"`
	TaglineRotation []string   `json:"tagline_rotation"`
	CTALabel        *string    `json:"cta_label" validate:"omitempty,max=120"`
	CTAURL          *string    `json:"cta_url" validate:"omitempty,url"`
	MediaID         *uuid.UUID `json:"media_id"`
}

// Output is the public hero payload.
type Output struct {
	Headline        string     `json:"headline"`
	Subheadline     *string    `json:"subheadline"`
	TaglineRotation []string   `json:"tagline_rotation"`
	CTALabel        *string    `json:"cta_label"`
	CTAURL          *string    `json:"cta_url"`
	MediaID         *uuid.UUID `json:"media_id"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (s *service) Get(ctx context.Context) (*Output, error) {
	var cached Output
	if s.cache.Get(ctx, cache.FamilyHero, activeCacheKey, &cached) {
		return &cached, nil
	}

	row, err := s.repo.FindActive(ctx)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "hero content not set")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load hero content")
	}

	out := toOutput(row)
	s.cache.Set(ctx, cache.FamilyHero, activeCacheKey, &out)
	return &out, nil
}

func (s *service) Update(ctx context.Context, input Input) (*Output, error) {
	headline := strings.TrimSpace(input.Headline)
	if headline == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "headline is required")
	}

	row, err := s.repo.FindActive(ctx)
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load hero content")
		}
		row = &models.HeroContent{IsActive: true}
	}

	row.Headline = headline
	row.Subheadline = input.Subheadline
	row.TaglineRotation = pq.StringArray(input.TaglineRotation)
	row.CTALabel = input.CTALabel
	row.CTAURL = input.CTAURL
	row.MediaID = input.MediaID

	saved, err := s.repo.Save(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save hero content")
	}

	s.cache.Invalidate(ctx, cache.FamilyHero)
	out := toOutput(saved)
	return &out, nil
}

func toOutput(row *models.HeroContent) Output {
	return Output{
		Headline:        row.Headline,
		Subheadline:     row.Subheadline,
		TaglineRotation: []string(row.TaglineRotation),
		CTALabel:        row.CTALabel,
		CTAURL:          row.CTAURL,
		MediaID:         row.MediaID,
		UpdatedAt:       row.UpdatedAt,
	}
}
