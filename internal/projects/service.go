package projects

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rmadriz/portfolio-backend/internal/cache"
	"github.com/rmadriz/portfolio-backend/internal/skills"
	"github.com/rmadriz/portfolio-backend/pkg/db"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	pkgerrors "github.com/rmadriz/portfolio-backend/pkg/errors"
	"github.com/rmadriz/portfolio-backend/pkg/pagination"
	"gorm.io/gorm"
)

const defaultStatus = "draft"

// Service exposes project CRUD. Writes replace child collections wholesale
// inside one transaction; PUT and PATCH differ only in which collections
// they touch.
type Service interface {
	Create(ctx context.Context, input Input) (*Output, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*Output, error)
	Patch(ctx context.Context, id uuid.UUID, input PatchInput) (*Output, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Output, error)
	List(ctx context.Context, filter ListFilter) (*ListOutput, error)
	Categories(ctx context.Context) ([]string, error)
	Types(ctx context.Context) ([]string, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	client txRunner
	repo   *Repository
	cache  *cache.Cache
}

// NewService constructs the projects service.
func NewService(client txRunner, repo *Repository, responseCache *cache.Cache) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("projects repository required")
	}
	return &service{client: client, repo: repo, cache: responseCache}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*Output, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	status := input.Status
	if status == "" {
		status = defaultStatus
	}

	row := &models.Project{
		Title:        title,
		Slug:         slug,
		Summary:      input.Summary,
		Description:  input.Description,
		Category:     strings.TrimSpace(input.Category),
		Type:         strings.TrimSpace(input.Type),
		Status:       status,
		IsFeatured:   input.IsFeatured,
		IsActive:     true,
		SortOrder:    input.SortOrder,
		CoverMediaID: input.CoverMediaID,
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, row); err != nil {
			return err
		}
		return replaceAllChildren(ctx, txRepo, row.ID, input)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "project slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project")
	}

	s.cache.Invalidate(ctx, cache.FamilyProjects)
	return s.detail(ctx, row.ID)
}

// Update is full replacement: every scalar is overwritten and every child
// collection is replaced, so an omitted array clears its rows.
func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*Output, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	status := input.Status
	if status == "" {
		status = defaultStatus
	}

	row.Title = title
	row.Slug = slug
	row.Summary = input.Summary
	row.Description = input.Description
	row.Category = strings.TrimSpace(input.Category)
	row.Type = strings.TrimSpace(input.Type)
	row.Status = status
	row.IsFeatured = input.IsFeatured
	row.SortOrder = input.SortOrder
	row.CoverMediaID = input.CoverMediaID

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, row); err != nil {
			return err
		}
		return replaceAllChildren(ctx, txRepo, row.ID, input)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "project slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update project")
	}

	s.cache.Invalidate(ctx, cache.FamilyProjects)
	return s.detail(ctx, id)
}

// Patch merges by key presence: absent scalars and collections are left
// untouched; a present empty collection clears its rows.
func (s *service) Patch(ctx context.Context, id uuid.UUID, input PatchInput) (*Output, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		row.Title = title
	}
	if input.Slug != nil {
		row.Slug = strings.TrimSpace(*input.Slug)
	}
	if input.Summary != nil {
		row.Summary = input.Summary
	}
	if input.Description != nil {
		row.Description = input.Description
	}
	if input.Category != nil {
		row.Category = strings.TrimSpace(*input.Category)
	}
	if input.Type != nil {
		row.Type = strings.TrimSpace(*input.Type)
	}
	if input.Status != nil {
		row.Status = *input.Status
	}
	if input.IsFeatured != nil {
		row.IsFeatured = *input.IsFeatured
	}
	if input.SortOrder != nil {
		row.SortOrder = *input.SortOrder
	}
	if input.CoverMediaID != nil {
		row.CoverMediaID = input.CoverMediaID
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, row); err != nil {
			return err
		}

		if input.Links != nil {
			if err := txRepo.ReplaceLinks(ctx, row.ID, linkRows(row.ID, *input.Links)); err != nil {
				return err
			}
		}
		if input.Technologies != nil {
			if err := txRepo.ReplaceTechnologies(ctx, row.ID, technologyRows(row.ID, *input.Technologies)); err != nil {
				return err
			}
		}
		if input.Images != nil {
			if err := txRepo.ReplaceImages(ctx, row.ID, imageRows(row.ID, *input.Images)); err != nil {
				return err
			}
		}
		if input.Features != nil {
			if err := txRepo.ReplaceFeatures(ctx, row.ID, featureRows(row.ID, *input.Features)); err != nil {
				return err
			}
		}
		if input.Roadmap != nil {
			if err := txRepo.ReplaceRoadmapPhases(ctx, row.ID, roadmapRows(row.ID, *input.Roadmap)); err != nil {
				return err
			}
		}
		if input.Stats != nil {
			if err := txRepo.ReplaceStats(ctx, row.ID, statRows(row.ID, *input.Stats)); err != nil {
				return err
			}
		}
		if input.Metrics != nil {
			if err := txRepo.ReplaceMetrics(ctx, row.ID, metricRows(row.ID, *input.Metrics)); err != nil {
				return err
			}
		}
		if input.Testimonials != nil {
			if err := txRepo.ReplaceTestimonials(ctx, row.ID, testimonialRows(row.ID, *input.Testimonials)); err != nil {
				return err
			}
		}
		if input.SkillIDs != nil {
			if err := txRepo.ReplaceSkillAssociations(ctx, row.ID, skillRows(row.ID, *input.SkillIDs)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "project slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "patch project")
	}

	s.cache.Invalidate(ctx, cache.FamilyProjects)
	return s.detail(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete project")
	}
	s.cache.Invalidate(ctx, cache.FamilyProjects)
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Output, error) {
	cacheKey := "detail:" + id.String()
	var cached Output
	if s.cache.Get(ctx, cache.FamilyProjects, cacheKey, &cached) {
		return &cached, nil
	}

	out, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, cache.FamilyProjects, cacheKey, out)
	return out, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListOutput, error) {
	cacheKey := listCacheKey(filter)
	var cached ListOutput
	if s.cache.Get(ctx, cache.FamilyProjects, cacheKey, &cached) {
		return &cached, nil
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
	}

	out := &ListOutput{
		Projects: make([]Output, 0, len(rows)),
		Meta:     pagination.NewMeta(filter.Pagination, total),
	}
	for i := range rows {
		out.Projects = append(out.Projects, toOutput(&rows[i]))
	}

	s.cache.Set(ctx, cache.FamilyProjects, cacheKey, out)
	return out, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	var cached []string
	if s.cache.Get(ctx, cache.FamilyProjects, "categories", &cached) {
		return cached, nil
	}

	values, err := s.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	s.cache.Set(ctx, cache.FamilyProjects, "categories", values)
	return values, nil
}

func (s *service) Types(ctx context.Context) ([]string, error) {
	var cached []string
	if s.cache.Get(ctx, cache.FamilyProjects, "types", &cached) {
		return cached, nil
	}

	values, err := s.repo.DistinctTypes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list types")
	}
	s.cache.Set(ctx, cache.FamilyProjects, "types", values)
	return values, nil
}

func (s *service) detail(ctx context.Context, id uuid.UUID) (*Output, error) {
	row, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	out := toOutput(row)
	return &out, nil
}

func listCacheKey(filter ListFilter) string {
	featured := "any"
	if filter.Featured != nil {
		featured = fmt.Sprintf("%t", *filter.Featured)
	}
	params := pagination.Normalize(filter.Pagination)
	return fmt.Sprintf("list:%s:%s:%s:%d:%d",
		filter.Category, filter.Type, featured, params.Page, params.Limit)
}

func replaceAllChildren(ctx context.Context, repo *Repository, projectID uuid.UUID, input Input) error {
	if err := repo.ReplaceLinks(ctx, projectID, linkRows(projectID, input.Links)); err != nil {
		return err
	}
	if err := repo.ReplaceTechnologies(ctx, projectID, technologyRows(projectID, input.Technologies)); err != nil {
		return err
	}
	if err := repo.ReplaceImages(ctx, projectID, imageRows(projectID, input.Images)); err != nil {
		return err
	}
	if err := repo.ReplaceFeatures(ctx, projectID, featureRows(projectID, input.Features)); err != nil {
		return err
	}
	if err := repo.ReplaceRoadmapPhases(ctx, projectID, roadmapRows(projectID, input.Roadmap)); err != nil {
		return err
	}
	if err := repo.ReplaceStats(ctx, projectID, statRows(projectID, input.Stats)); err != nil {
		return err
	}
	if err := repo.ReplaceMetrics(ctx, projectID, metricRows(projectID, input.Metrics)); err != nil {
		return err
	}
	if err := repo.ReplaceTestimonials(ctx, projectID, testimonialRows(projectID, input.Testimonials)); err != nil {
		return err
	}
	return repo.ReplaceSkillAssociations(ctx, projectID, skillRows(projectID, input.SkillIDs))
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func linkRows(projectID uuid.UUID, inputs []LinkInput) []models.ProjectLink {
	rows := make([]models.ProjectLink, 0, len(inputs))
	for i, in := range inputs {
		rows = append(rows, models.ProjectLink{
			ProjectID: projectID,
			Label:     in.Label,
			URL:       in.URL,
			Position:  i,
		})
	}
	return rows
}

func technologyRows(projectID uuid.UUID, inputs []TechnologyInput) []models.ProjectTechnology {
	rows := make([]models.ProjectTechnology, 0, len(inputs))
	for i, in := range inputs {
		rows = append(rows, models.ProjectTechnology{
			ProjectID: projectID,
			Name:      in.Name,
			RawLevel:  skills.RawLevelText(in.Level),
			Position:  i,
		})
	}
	return rows
}

func imageRows(projectID uuid.UUID, inputs []ImageInput) []models.ProjectImage {
	rows := make([]models.ProjectImage, 0, len(inputs))
	for i, in := range inputs {
		rows = append(rows, models.ProjectImage{
			ProjectID: projectID,
			MediaID:   in.MediaID,
			URL:       in.URL,
			AltText:   in.AltText,
			Position:  i,
		})
	}
	return rows
}

func featureRows(projectID uuid.UUID, inputs []FeatureInput) []models.ProjectFeature {
	rows := make([]models.ProjectFeature, 0, len(inputs))
	for i, in := range inputs {
		rows = append(rows, models.ProjectFeature{
			ProjectID:   projectID,
			Title:       in.Title,
			Description: in.Description,
			Position:    i,
		})
	}
	return rows
}

func roadmapRows(projectID uuid.UUID, inputs []RoadmapPhaseInput) []models.ProjectRoadmapPhase {
	rows := make([]models.ProjectRoadmapPhase, 0, len(inputs))
	for i, in := range inputs {
		status := in.Status
		if status == "" {
			status = "planned"
		}
		rows = append(rows, models.ProjectRoadmapPhase{
			ProjectID:   projectID,
			Title:       in.Title,
			Description: in.Description,
			Status:      status,
			Items:       pq.StringArray(in.Items),
			Position:    i,
		})
	}
	return rows
}

func statRows(projectID uuid.UUID, inputs []StatInput) []models.ProjectStat {
	rows := make([]models.ProjectStat, 0, len(inputs))
	for i, in := range inputs {
		rows = append(rows, models.ProjectStat{
			ProjectID: projectID,
			Label:     in.Label,
			Value:     in.Value,
			Position:  i,
		})
	}
	return rows
}

func metricRows(projectID uuid.UUID, inputs []MetricInput) []models.ProjectMetric {
	rows := make([]models.ProjectMetric, 0, len(inputs))
	for i, in := range inputs {
		rows = append(rows, models.ProjectMetric{
			ProjectID: projectID,
			Name:      in.Name,
			Value:     in.Value,
			Unit:      in.Unit,
			Position:  i,
		})
	}
	return rows
}

func testimonialRows(projectID uuid.UUID, inputs []TestimonialInput) []models.ProjectTestimonial {
	rows := make([]models.ProjectTestimonial, 0, len(inputs))
	for i, in := range inputs {
		rows = append(rows, models.ProjectTestimonial{
			ProjectID: projectID,
			Author:    in.Author,
			Role:      in.Role,
			Quote:     in.Quote,
			Position:  i,
		})
	}
	return rows
}

func skillRows(projectID uuid.UUID, ids []uuid.UUID) []models.ProjectSkill {
	rows := make([]models.ProjectSkill, 0, len(ids))
	for _, skillID := range ids {
		rows = append(rows, models.ProjectSkill{
			ProjectID: projectID,
			SkillID:   skillID,
		})
	}
	return rows
}

func toOutput(row *models.Project) Output {
	out := Output{
		ID:           row.ID,
		Title:        row.Title,
		Slug:         row.Slug,
		Summary:      row.Summary,
		Description:  row.Description,
		Category:     row.Category,
		Type:         row.Type,
		Status:       row.Status,
		IsFeatured:   row.IsFeatured,
		SortOrder:    row.SortOrder,
		CoverMediaID: row.CoverMediaID,
		Links:        []LinkOutput{},
		Technologies: []TechnologyOutput{},
		Images:       []ImageOutput{},
		Features:     []FeatureOutput{},
		Roadmap:      []RoadmapPhaseOutput{},
		Stats:        []StatOutput{},
		Metrics:      []MetricOutput{},
		Testimonials: []TestimonialOutput{},
		SkillIDs:     []uuid.UUID{},
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}

	for _, link := range row.Links {
		out.Links = append(out.Links, LinkOutput{
			ID: link.ID, Label: link.Label, URL: link.URL, Position: link.Position,
		})
	}
	for _, tech := range row.Technologies {
		out.Technologies = append(out.Technologies, TechnologyOutput{
			ID:          tech.ID,
			Name:        tech.Name,
			RawLevel:    tech.RawLevel,
			Proficiency: skills.Normalize(tech.RawLevel),
			Position:    tech.Position,
		})
	}
	for _, img := range row.Images {
		out.Images = append(out.Images, ImageOutput{
			ID: img.ID, MediaID: img.MediaID, URL: img.URL, AltText: img.AltText, Position: img.Position,
		})
	}
	for _, feature := range row.Features {
		out.Features = append(out.Features, FeatureOutput{
			ID: feature.ID, Title: feature.Title, Description: feature.Description, Position: feature.Position,
		})
	}
	for _, phase := range row.RoadmapPhases {
		out.Roadmap = append(out.Roadmap, RoadmapPhaseOutput{
			ID:          phase.ID,
			Title:       phase.Title,
			Description: phase.Description,
			Status:      phase.Status,
			Items:       []string(phase.Items),
			Position:    phase.Position,
		})
	}
	for _, stat := range row.Stats {
		out.Stats = append(out.Stats, StatOutput{
			ID: stat.ID, Label: stat.Label, Value: stat.Value, Position: stat.Position,
		})
	}
	for _, metric := range row.Metrics {
		out.Metrics = append(out.Metrics, MetricOutput{
			ID: metric.ID, Name: metric.Name, Value: metric.Value, Unit: metric.Unit, Position: metric.Position,
		})
	}
	for _, quote := range row.Testimonials {
		out.Testimonials = append(out.Testimonials, TestimonialOutput{
			ID: quote.ID, Author: quote.Author, Role: quote.Role, Quote: quote.Quote, Position: quote.Position,
		})
	}
	for _, assoc := range row.SkillAssociations {
		out.SkillIDs = append(out.SkillIDs, assoc.SkillID)
	}
	return out
}
