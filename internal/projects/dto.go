package projects

import (
	"time"

	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/internal/skills"
	"github.com/rmadriz/portfolio-backend/pkg/pagination"
)

// Child collection inputs. Positions are assigned from slice order.

type LinkInput struct {
	Label string `json:"label" validate:"required,max=120"`
	URL   string `json:"url" validate:"required,url"`
}

type TechnologyInput struct {
	Name  string `json:"name" validate:"required,max=120"`
	Level any    `json:"level"`
}

type ImageInput struct {
	MediaID *uuid.UUID `json:"media_id"`
	URL     string     `json:"url" validate:"required"`
	AltText *string    `json:"alt_text"`
}

type FeatureInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description"`
}

type RoadmapPhaseInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description *string  `json:"description"`
	Status      string   `json:"status"`
	Items       []string `json:"items"`
}

type StatInput struct {
	Label string `json:"label" validate:"required,max=120"`
	Value string `json:"value" validate:"required,max=120"`
}

type MetricInput struct {
	Name  string  `json:"name" validate:"required,max=120"`
	Value float64 `json:"value"`
	Unit  *string `json:"unit"`
}

type TestimonialInput struct {
	Author string  `json:"author" validate:"required,max=120"`
	Role   *string `json:"role"`
	Quote  string  `json:"quote" validate:"required"`
}

// Input is the full project payload used by create and PUT. An omitted
// child array clears that collection on update.
type Input struct {
	Title        string              `json:"title" validate:"required,max=200"`
	Slug         string              `json:"slug" validate:"omitempty,max=200"`
	Summary      *string             `json:"summary"`
	Description  *string             `json:"description"`
	Category     string              `json:"category" validate:"max=120"`
	Type         string              `json:"type" validate:"max=120"`
	Status       string              `json:"status" validate:"max=60"`
	IsFeatured   bool                `json:"is_featured"`
	SortOrder    int                 `json:"sort_order"`
	CoverMediaID *uuid.UUID          `json:"cover_media_id"`
	Links        []LinkInput         `json:"links"`
	Technologies []TechnologyInput   `json:"technologies"`
	Images       []ImageInput        `json:"images"`
	Features     []FeatureInput      `json:"features"`
	Roadmap      []RoadmapPhaseInput `json:"roadmap"`
	Stats        []StatInput         `json:"stats"`
	Metrics      []MetricInput       `json:"metrics"`
	Testimonials []TestimonialInput  `json:"testimonials"`
	SkillIDs     []uuid.UUID         `json:"skill_ids"`
}

// PatchInput is the partial payload. Scalars apply when the pointer is
// non-nil. A child collection is replaced only when its key is present:
// a pointer to an empty slice clears it, a nil pointer leaves it untouched.
type PatchInput struct {
	Title        *string              `json:"title" validate:"omitempty,max=200"`
	Slug         *string              `json:"slug" validate:"omitempty,max=200"`
	Summary      *string              `json:"summary"`
	Description  *string              `json:"description"`
	Category     *string              `json:"category" validate:"omitempty,max=120"`
	Type         *string              `json:"type" validate:"omitempty,max=120"`
	Status       *string              `json:"status" validate:"omitempty,max=60"`
	IsFeatured   *bool                `json:"is_featured"`
	SortOrder    *int                 `json:"sort_order"`
	CoverMediaID *uuid.UUID           `json:"cover_media_id"`
	Links        *[]LinkInput         `json:"links"`
	Technologies *[]TechnologyInput   `json:"technologies"`
	Images       *[]ImageInput        `json:"images"`
	Features     *[]FeatureInput      `json:"features"`
	Roadmap      *[]RoadmapPhaseInput `json:"roadmap"`
	Stats        *[]StatInput         `json:"stats"`
	Metrics      *[]MetricInput       `json:"metrics"`
	Testimonials *[]TestimonialInput  `json:"testimonials"`
	SkillIDs     *[]uuid.UUID         `json:"skill_ids"`
}

// Child collection outputs.

type LinkOutput struct {
	ID       uuid.UUID `json:"id"`
	Label    string    `json:"label"`
	URL      string    `json:"url"`
	Position int       `json:"position"`
}

type TechnologyOutput struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	RawLevel    *string           `json:"raw_level"`
	Proficiency skills.Normalized `json:"proficiency"`
	Position    int               `json:"position"`
}

type ImageOutput struct {
	ID       uuid.UUID  `json:"id"`
	MediaID  *uuid.UUID `json:"media_id"`
	URL      string     `json:"url"`
	AltText  *string    `json:"alt_text"`
	Position int        `json:"position"`
}

type FeatureOutput struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Position    int       `json:"position"`
}

type RoadmapPhaseOutput struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	Items       []string  `json:"items"`
	Position    int       `json:"position"`
}

type StatOutput struct {
	ID       uuid.UUID `json:"id"`
	Label    string    `json:"label"`
	Value    string    `json:"value"`
	Position int       `json:"position"`
}

type MetricOutput struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Value    float64   `json:"value"`
	Unit     *string   `json:"unit"`
	Position int       `json:"position"`
}

type TestimonialOutput struct {
	ID       uuid.UUID `json:"id"`
	Author   string    `json:"author"`
	Role     *string   `json:"role"`
	Quote    string    `json:"quote"`
	Position int       `json:"position"`
}

// Output is a full project response.
type Output struct {
	ID           uuid.UUID            `json:"id"`
	Title        string               `json:"title"`
	Slug         string               `json:"slug"`
	Summary      *string              `json:"summary"`
	Description  *string              `json:"description"`
	Category     string               `json:"category"`
	Type         string               `json:"type"`
	Status       string               `json:"status"`
	IsFeatured   bool                 `json:"is_featured"`
	SortOrder    int                  `json:"sort_order"`
	CoverMediaID *uuid.UUID           `json:"cover_media_id"`
	Links        []LinkOutput         `json:"links"`
	Technologies []TechnologyOutput   `json:"technologies"`
	Images       []ImageOutput        `json:"images"`
	Features     []FeatureOutput      `json:"features"`
	Roadmap      []RoadmapPhaseOutput `json:"roadmap"`
	Stats        []StatOutput         `json:"stats"`
	Metrics      []MetricOutput       `json:"metrics"`
	Testimonials []TestimonialOutput  `json:"testimonials"`
	SkillIDs     []uuid.UUID          `json:"skill_ids"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ListOutput is a page of projects.
type ListOutput struct {
	Projects []Output        `json:"projects"`
	Meta     pagination.Meta `json:"meta"`
}
