package hero

import (
	"context"
	"testing"

	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	pkgerrors "github.com/rmadriz/portfolio-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubHeroRepo struct {
	row *models.HeroContent
}

func (s *stubHeroRepo) FindActive(context.Context) (*models.HeroContent, error) {
	if s.row == nil || !s.row.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return s.row, nil
}

func (s *stubHeroRepo) Save(_ context.Context, row *models.HeroContent) (*models.HeroContent, error) {
	s.row = row
	return row, nil
}

func newHeroService(t *testing.T, repo *stubHeroRepo) Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	require.NoError(t, err)
	return svc
}

func TestGetWithoutRowIsNotFound(t *testing.T) {
	svc := newHeroService(t, &stubHeroRepo{})

	_, err := svc.Get(context.Background())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateCreatesThenReplaces(t *testing.T) {
	repo := &stubHeroRepo{}
	svc := newHeroService(t, repo)
	ctx := context.Background()

	out, err := svc.Update(ctx, Input{
		Headline:        "Hi, I'm Rocio",
		TaglineRotation: []string{"Backend engineer", "Gopher"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Backend engineer", "Gopher"}, out.TaglineRotation)

	// Full replacement: omitted taglines clear.
	out, err = svc.Update(ctx, Input{Headline: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", out.Headline)
	assert.Empty(t, out.TaglineRotation)

	require.NotNil(t, repo.row)
	assert.True(t, repo.row.IsActive)
}

func TestUpdateRequiresHeadline(t *testing.T) {
	svc := newHeroService(t, &stubHeroRepo{})

	_, err := svc.Update(context.Background(), Input{Headline: " "})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
