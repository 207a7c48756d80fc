package skills

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/internal/cache"
	"github.com/rmadriz/portfolio-backend/pkg/db"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	pkgerrors "github.com/rmadriz/portfolio-backend/pkg/errors"
)

const listCacheKey = "list"

type repository interface {
	Create(ctx context.Context, skill *models.Skill) (*models.Skill, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Skill, error)
	ListActive(ctx context.Context) ([]models.Skill, error)
	Update(ctx context.Context, skill *models.Skill) (*models.Skill, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// Service exposes skill CRUD with per-response proficiency normalization.
type Service interface {
	Create(ctx context.Context, input Input) (*Output, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*Output, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Output, error)
	List(ctx context.Context) ([]CategoryGroup, error)
}

type service struct {
	repo  repository
	cache *cache.Cache
}

// NewService constructs the skills service.
func NewService(repo repository, responseCache *cache.Cache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("skills repository required")
	}
	return &service{repo: repo, cache: responseCache}, nil
}

// Input models a skill create/update payload. Level accepts any JSON value;
// numbers and strings are both legal raw proficiencies.
type Input struct {
	Name      string  `json:"name" validate:"required,max=120"`
	Category  string  `json:"category" validate:"max=120"`
	Level     any     `json:"level"`
	IconURL   *string `json:"icon_url" validate:"omitempty,url"`
	SortOrder int     `json:"sort_order"`
}

// Output is a skill response row.
type Output struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	RawLevel    *string    `json:"raw_level"`
	Proficiency Normalized `json:"proficiency"`
	IconURL     *string    `json:"icon_url"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CategoryGroup is one list bucket: skills sharing a category.
type CategoryGroup struct {
	Category string   `json:"category"`
	Skills   []Output `json:"skills"`
}

func (s *service) Create(ctx context.Context, input Input) (*Output, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	row := &models.Skill{
		Name:      name,
		Category:  strings.TrimSpace(input.Category),
		RawLevel:  RawLevelText(input.Level),
		IconURL:   input.IconURL,
		SortOrder: input.SortOrder,
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "skill name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist skill")
	}

	s.cache.Invalidate(ctx, cache.FamilySkills)
	out := toOutput(created)
	return &out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*Output, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "skill not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load skill")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	row.Name = name
	row.Category = strings.TrimSpace(input.Category)
	row.RawLevel = RawLevelText(input.Level)
	row.IconURL = input.IconURL
	row.SortOrder = input.SortOrder

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "skill name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update skill")
	}

	s.cache.Invalidate(ctx, cache.FamilySkills)
	out := toOutput(updated)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "skill not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete skill")
	}
	s.cache.Invalidate(ctx, cache.FamilySkills)
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Output, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "skill not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load skill")
	}
	out := toOutput(row)
	return &out, nil
}

func (s *service) List(ctx context.Context) ([]CategoryGroup, error) {
	var cached []CategoryGroup
	if s.cache.Get(ctx, cache.FamilySkills, listCacheKey, &cached) {
		return cached, nil
	}

	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list skills")
	}

	groups := groupByCategory(rows)
	s.cache.Set(ctx, cache.FamilySkills, listCacheKey, groups)
	return groups, nil
}

func groupByCategory(rows []models.Skill) []CategoryGroup {
	groups := []CategoryGroup{}
	index := map[string]int{}
	for i := range rows {
		category := rows[i].Category
		pos, ok := index[category]
		if !ok {
			pos = len(groups)
			index[category] = pos
			groups = append(groups, CategoryGroup{Category: category, Skills: []Output{}})
		}
		groups[pos].Skills = append(groups[pos].Skills, toOutput(&rows[i]))
	}
	return groups
}

func toOutput(row *models.Skill) Output {
	return Output{
		ID:          row.ID,
		Name:        row.Name,
		Category:    row.Category,
		RawLevel:    row.RawLevel,
		Proficiency: Normalize(row.RawLevel),
		IconURL:     row.IconURL,
		SortOrder:   row.SortOrder,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

