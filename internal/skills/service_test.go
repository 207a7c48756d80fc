package skills

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	pkgerrors "github.com/rmadriz/portfolio-backend/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubRepo struct {
	rows      map[uuid.UUID]*models.Skill
	createErr error
	active    []models.Skill
}

func newStubRepo() *stubRepo {
	return &stubRepo{rows: map[uuid.UUID]*models.Skill{}}
}

func (s *stubRepo) Create(_ context.Context, skill *models.Skill) (*models.Skill, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	skill.ID = uuid.New()
	s.rows[skill.ID] = skill
	return skill, nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Skill, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubRepo) ListActive(context.Context) ([]models.Skill, error) {
	return s.active, nil
}

func (s *stubRepo) Update(_ context.Context, skill *models.Skill) (*models.Skill, error) {
	s.rows[skill.ID] = skill
	return skill, nil
}

func (s *stubRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.rows, id)
	return nil
}

func newTestService(t *testing.T, repo repository) Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	require.NoError(t, err)
	return svc
}

func TestCreateNormalizesOnOutputOnly(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	out, err := svc.Create(context.Background(), Input{Name: "Go", Category: "Backend", Level: "72%"})
	require.NoError(t, err)

	// raw value stored verbatim
	require.NotNil(t, out.RawLevel)
	require.Equal(t, "72%", *out.RawLevel)

	// normalized per response
	require.Equal(t, 72, *out.Proficiency.Percent)
	require.Equal(t, LabelAdvanced, out.Proficiency.Label)
	require.Equal(t, 61, *out.Proficiency.RangeMin)
	require.Equal(t, 89, *out.Proficiency.RangeMax)
}

func TestCreateNumericLevelStoredAsText(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	// JSON numbers decode as float64
	out, err := svc.Create(context.Background(), Input{Name: "Rust", Level: float64(85)})
	require.NoError(t, err)
	require.Equal(t, "85", *out.RawLevel)
	require.Equal(t, 85, *out.Proficiency.Percent)
}

func TestCreateRequiresName(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.Create(context.Background(), Input{Name: "   "})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "idx_skills_name"`)
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), Input{Name: "Go"})
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestUpdateMissingSkill(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.Update(context.Background(), uuid.New(), Input{Name: "Go"})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDeleteMissingSkill(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	err := svc.Delete(context.Background(), uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListGroupsByCategoryPreservingOrder(t *testing.T) {
	level := "advanced"
	repo := newStubRepo()
	repo.active = []models.Skill{
		{Name: "Go", Category: "Backend", RawLevel: &level},
		{Name: "Postgres", Category: "Backend"},
		{Name: "React", Category: "Frontend"},
	}
	svc := newTestService(t, repo)

	groups, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	require.Equal(t, "Backend", groups[0].Category)
	require.Len(t, groups[0].Skills, 2)
	require.Equal(t, 85, *groups[0].Skills[0].Proficiency.Percent)

	// missing raw level renders as empty passthrough, not an error
	require.Nil(t, groups[0].Skills[1].Proficiency.Percent)
	require.Equal(t, "", groups[0].Skills[1].Proficiency.Label)

	require.Equal(t, "Frontend", groups[1].Category)
}
