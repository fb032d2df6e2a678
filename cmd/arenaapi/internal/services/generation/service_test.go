package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/repository"
)

type fakeGenerator struct {
	prompts []string
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return "img:" + prompt, nil
}

type mockImageRepository struct {
	created []*models.GeneratedImage
	err     error
}

func (m *mockImageRepository) Create(ctx context.Context, image *models.GeneratedImage) error {
	if m.err != nil {
		return m.err
	}
	image.ID = "img-1"
	m.created = append(m.created, image)
	return nil
}

func (m *mockImageRepository) GetByID(ctx context.Context, id string) (*models.GeneratedImage, error) {
	for _, img := range m.created {
		if img.ID == id {
			return img, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockImageRepository) Recent(ctx context.Context, userID string, limit int) ([]models.GeneratedImage, error) {
	out := []models.GeneratedImage{}
	for _, img := range m.created {
		if img.UserID != nil && *img.UserID == userID {
			out = append(out, *img)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, gen ImageGenerator, images *mockImageRepository) *Service {
	t.Helper()
	deps := Dependencies{Catalog: newTestCatalog(t), Generator: gen, SampleCacheSize: 4}
	if images != nil {
		deps.Images = images
	}
	svc, err := NewService(deps)
	require.NoError(t, err)
	return svc
}

func intPtr(n int) *int { return &n }

func TestGenerate_PromptSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("custom prompt wins over index", func(t *testing.T) {
		gen := &fakeGenerator{}
		svc := newTestService(t, gen, nil)

		res, err := svc.Generate(ctx, "", Request{Prompt: "  a teapot in space ", PromptIndex: intPtr(3)})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, SourceCustom, res.Source)
		assert.Equal(t, "a teapot in space", res.Prompt)
		assert.Nil(t, res.PromptData.ID)
		assert.Equal(t, "custom", res.PromptData.Category)
		assert.Equal(t, "custom", res.PromptData.Style)
		assert.Equal(t, "Image generated from prompt: 'a teapot in space'", res.Description)
		assert.Equal(t, []string{"a teapot in space"}, gen.prompts)
	})

	t.Run("valid index selects catalog prompt", func(t *testing.T) {
		gen := &fakeGenerator{}
		svc := newTestService(t, gen, nil)

		res, err := svc.Generate(ctx, "", Request{PromptIndex: intPtr(4)})
		require.NoError(t, err)
		assert.Equal(t, SourceCatalog, res.Source)
		require.NotNil(t, res.PromptData.ID)
		assert.Equal(t, 4, *res.PromptData.ID)
		assert.Equal(t, "steampunk", res.PromptData.Category)
		assert.Equal(t, DefaultPrompts[4].Prompt, gen.prompts[0])
	})

	t.Run("out of range index falls back to random", func(t *testing.T) {
		svc := newTestService(t, &fakeGenerator{}, nil)

		for _, idx := range []int{-1, 15, 99} {
			res, err := svc.Generate(ctx, "", Request{PromptIndex: intPtr(idx)})
			require.NoError(t, err)
			assert.Equal(t, SourceRandom, res.Source)
			require.NotNil(t, res.PromptData.ID)
			assert.GreaterOrEqual(t, *res.PromptData.ID, 0)
			assert.Less(t, *res.PromptData.ID, 15)
		}
	})

	t.Run("empty request is random", func(t *testing.T) {
		svc := newTestService(t, &fakeGenerator{}, nil)
		res, err := svc.Generate(ctx, "", Request{Prompt: "   "})
		require.NoError(t, err)
		assert.Equal(t, SourceRandom, res.Source)
	})
}

func TestGenerateRandom_Description(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{}, nil)
	res, err := svc.GenerateRandom(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Random image generated from: '"+res.Prompt+"'", res.Description)
}

func TestGenerate_Errors(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(t, nil, nil)
	assert.False(t, svc.Available())
	_, err := svc.Generate(ctx, "", Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrGeneratorUnavailable)

	svc = newTestService(t, &fakeGenerator{err: ErrGenerationFailed}, nil)
	_, err = svc.Generate(ctx, "", Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerate_PersistsImages(t *testing.T) {
	ctx := context.Background()
	images := &mockImageRepository{}
	svc := newTestService(t, &fakeGenerator{}, images)

	res, err := svc.Generate(ctx, "u1", Request{Prompt: "owl"})
	require.NoError(t, err)
	assert.Equal(t, "img-1", res.ImageID)
	require.Len(t, images.created, 1)
	assert.Equal(t, "img:owl", images.created[0].ImageData)

	_, err = svc.Generate(ctx, "", Request{Prompt: "anon"})
	require.NoError(t, err)
	assert.Nil(t, images.created[1].UserID)

	recent, err := svc.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	stored, err := svc.Image(ctx, "img-1")
	require.NoError(t, err)
	assert.Equal(t, "owl", stored.Prompt)
	_, err = svc.Image(ctx, "missing")
	assert.ErrorIs(t, err, ErrImageNotFound)

	// Storage failures do not fail the generation.
	images.err = errors.New("disk full")
	res, err = svc.Generate(ctx, "u1", Request{Prompt: "bat"})
	require.NoError(t, err)
	assert.Empty(t, res.ImageID)
}

func TestSample_CachesPerPrompt(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{}
	svc := newTestService(t, gen, nil)

	img, err := svc.Sample(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "img:"+DefaultPrompts[2].Prompt, img)

	again, err := svc.Sample(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, img, again)
	assert.Len(t, gen.prompts, 1, "second call served from cache")

	_, err = svc.Sample(ctx, 42)
	assert.ErrorIs(t, err, ErrPromptNotFound)

	withSamples := svc.WithSamples(svc.Catalog().ByCategory("cyberpunk"))
	require.Len(t, withSamples, 1)
	assert.Equal(t, img, withSamples[0].SampleImage)
	assert.Equal(t, map[int]string{2: img}, svc.Samples())
}

func TestSample_CatalogGenerationSeedsCache(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{}
	svc := newTestService(t, gen, nil)

	_, err := svc.Generate(ctx, "", Request{PromptIndex: intPtr(9)})
	require.NoError(t, err)

	_, err = svc.Sample(ctx, 9)
	require.NoError(t, err)
	assert.Len(t, gen.prompts, 1)
}

func TestSample_WithoutGenerator(t *testing.T) {
	svc := newTestService(t, nil, nil)
	_, err := svc.Sample(context.Background(), 0)
	assert.ErrorIs(t, err, ErrGeneratorUnavailable)

	withSamples := svc.WithSamples(svc.Catalog().All())
	assert.Len(t, withSamples, 15)
	assert.Empty(t, withSamples[0].SampleImage)
}
