package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	"github.com/rmadriz/portfolio-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository wires together all project-related persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new project row.
func (r *Repository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// Update saves an existing project row.
func (r *Repository) Update(ctx context.Context, project *models.Project) (*models.Project, error) {
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// FindByID loads an active project without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindDetail loads an active project with every child collection, each in
// its stored position order.
func (r *Repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Links", orderByPosition).
		Preload("Technologies", orderByPosition).
		Preload("Images", orderByPosition).
		Preload("Features", orderByPosition).
		Preload("RoadmapPhases", orderByPosition).
		Preload("Stats", orderByPosition).
		Preload("Metrics", orderByPosition).
		Preload("Testimonials", orderByPosition).
		Preload("SkillAssociations").
		Where("id = ? AND is_active = ?", id, true).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// ListFilter narrows the project listing.
type ListFilter struct {
	Category   string
	Type       string
	Featured   *bool
	Pagination pagination.Params
}

// List returns active projects ordered by sort order, with children
// preloaded, plus the total count for pagination metadata.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Project, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("is_active = ?", true)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params := pagination.Normalize(filter.Pagination)
	var rows []models.Project
	err := query.
		Preload("Links", orderByPosition).
		Preload("Technologies", orderByPosition).
		Preload("Images", orderByPosition).
		Order("sort_order ASC, created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// DistinctCategories returns the distinct non-empty categories of active
// projects.
func (r *Repository) DistinctCategories(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, "category")
}

// DistinctTypes returns the distinct non-empty types of active projects.
func (r *Repository) DistinctTypes(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, "type")
}

func (r *Repository) distinctColumn(ctx context.Context, column string) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("is_active = ? AND "+column+" <> ''", true).
		Distinct().
		Order(column + " ASC").
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

// SoftDelete flips the active flag; child rows stay in place.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Child collections are replaced wholesale: delete every row for the
// project, then reinsert the new set. Runs inside the caller's transaction.

func (r *Repository) ReplaceLinks(ctx context.Context, projectID uuid.UUID, rows []models.ProjectLink) error {
	return replaceChildren(r.db.WithContext(ctx), projectID, &models.ProjectLink{}, rows)
}

func (r *Repository) ReplaceTechnologies(ctx context.Context, projectID uuid.UUID, rows []models.ProjectTechnology) error {
	return replaceChildren(r.db.WithContext(ctx), projectID, &models.ProjectTechnology{}, rows)
}

func (r *Repository) ReplaceImages(ctx context.Context, projectID uuid.UUID, rows []models.ProjectImage) error {
	return replaceChildren(r.db.WithContext(ctx), projectID, &models.ProjectImage{}, rows)
}

func (r *Repository) ReplaceFeatures(ctx context.Context, projectID uuid.UUID, rows []models.ProjectFeature) error {
	return replaceChildren(r.db.WithContext(ctx), projectID, &models.ProjectFeature{}, rows)
}

func (r *Repository) ReplaceRoadmapPhases(ctx context.Context, projectID uuid.UUID, rows []models.ProjectRoadmapPhase) error {
	return replaceChildren(r.db.WithContext(ctx), projectID, &models.ProjectRoadmapPhase{}, rows)
}

func (r *Repository) ReplaceStats(ctx context.Context, projectID uuid.UUID, rows []models.ProjectStat) error {
	return replaceChildren(r.db.WithContext(ctx), projectID, &models.ProjectStat{}, rows)
}

func (r *Repository) ReplaceMetrics(ctx context.Context, projectID uuid.UUID, rows []models.ProjectMetric) error {
	return replaceChildren(r.db.WithContext(ctx), projectID, &models.ProjectMetric{}, rows)
}

func (r *Repository) ReplaceTestimonials(ctx context.Context, projectID uuid.UUID, rows []models.ProjectTestimonial) error {
	return replaceChildren(r.db.WithContext(ctx), projectID, &models.ProjectTestimonial{}, rows)
}

func (r *Repository) ReplaceSkillAssociations(ctx context.Context, projectID uuid.UUID, rows []models.ProjectSkill) error {
	return replaceChildren(r.db.WithContext(ctx), projectID, &models.ProjectSkill{}, rows)
}

func replaceChildren[T any](tx *gorm.DB, projectID uuid.UUID, model *T, rows []T) error {
	if err := tx.Where("project_id = ?", projectID).Delete(model).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
