// Package generation turns prompts into images through the external
// generation backend and serves the predefined prompt catalog.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/repository"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/telemetry"
)

var (
	// ErrGeneratorUnavailable is returned when no backend URL is configured.
	ErrGeneratorUnavailable = errors.New("image generator is not configured")
	// ErrPromptNotFound is returned for a catalog id out of range.
	ErrPromptNotFound = errors.New("prompt not found")
	// ErrImageNotFound is returned for an unknown generated image id.
	ErrImageNotFound = errors.New("image not found")
)

const tracerName = "arenaapi/services/generation"

// Prompt sources, recorded on results and in metrics.
const (
	SourceCustom  = "custom"
	SourceCatalog = "catalog"
	SourceRandom  = "random"
)

// ImageGenerator renders a prompt into a base64 PNG. *Client implements it.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Request asks for an image. A non-blank Prompt wins; otherwise a valid
// PromptIndex selects from the catalog; otherwise a random catalog prompt is used.
type Request struct {
	Prompt      string `json:"prompt,omitempty"`
	PromptIndex *int   `json:"prompt_index,omitempty"`
}

// PromptData describes the prompt an image came from. ID is nil for custom prompts.
type PromptData struct {
	ID       *int   `json:"id"`
	Prompt   string `json:"prompt"`
	Category string `json:"category"`
	Style    string `json:"style"`
}

// Result is a generated image.
type Result struct {
	Success     bool       `json:"success"`
	ImageID     string     `json:"imageId,omitempty"`
	ImageData   string     `json:"imageData"`
	Prompt      string     `json:"prompt"`
	PromptData  PromptData `json:"promptData"`
	Description string     `json:"description"`
	Source      string     `json:"source"`
}

// PromptWithSample is a catalog entry with its sample image, empty when none
// has been rendered yet.
type PromptWithSample struct {
	Prompt
	SampleImage string `json:"sampleImage"`
}

// Dependencies contains everything the generation service needs.
type Dependencies struct {
	Catalog *Catalog
	// Generator may be nil, in which case generation is unavailable but the
	// catalog still works.
	Generator ImageGenerator
	// Images stores generated images. Optional.
	Images          repository.GeneratedImageRepository
	SampleCacheSize int
	Metrics         *telemetry.Metrics
	Logger          *zap.Logger
}

// Service generates images and serves the prompt catalog.
type Service struct {
	catalog   *Catalog
	generator ImageGenerator
	images    repository.GeneratedImageRepository
	samples   *lru.Cache[int, string]
	metrics   *telemetry.Metrics
	logger    *zap.Logger
}

// NewService creates the generation service.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Catalog == nil {
		return nil, errors.New("generation: catalog is required")
	}
	size := deps.SampleCacheSize
	if size <= 0 {
		size = deps.Catalog.Len()
	}
	samples, err := lru.New[int, string](size)
	if err != nil {
		return nil, fmt.Errorf("create sample cache: %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:   deps.Catalog,
		generator: deps.Generator,
		images:    deps.Images,
		samples:   samples,
		metrics:   deps.Metrics,
		logger:    logger.Named("generation"),
	}, nil
}

// Catalog returns the prompt catalog.
func (s *Service) Catalog() *Catalog { return s.catalog }

// Available reports whether a generation backend is configured.
func (s *Service) Available() bool { return s.generator != nil }

// Generate renders an image for req on behalf of userID, which may be empty
// for anonymous visitors.
func (s *Service) Generate(ctx context.Context, userID string, req Request) (*Result, error) {
	if text := strings.TrimSpace(req.Prompt); text != "" {
		data := PromptData{Prompt: text, Category: "custom", Style: "custom"}
		return s.render(ctx, userID, SourceCustom, data, "Image generated from prompt: '%s'")
	}
	if req.PromptIndex != nil {
		if p, ok := s.catalog.ByID(*req.PromptIndex); ok {
			return s.render(ctx, userID, SourceCatalog, promptData(p), "Image generated from prompt: '%s'")
		}
	}
	return s.render(ctx, userID, SourceRandom, promptData(s.catalog.Random()), "Image generated from prompt: '%s'")
}

// GenerateRandom renders a random catalog prompt.
func (s *Service) GenerateRandom(ctx context.Context, userID string) (*Result, error) {
	return s.render(ctx, userID, SourceRandom, promptData(s.catalog.Random()), "Random image generated from: '%s'")
}

func (s *Service) render(ctx context.Context, userID, source string, data PromptData, description string) (*Result, error) {
	if s.generator == nil {
		return nil, ErrGeneratorUnavailable
	}

	attrs := []attribute.KeyValue{attribute.String(telemetry.AttrPromptSource, source)}
	if data.ID != nil {
		attrs = append(attrs, attribute.Int(telemetry.AttrPromptID, *data.ID))
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "generation.Generate", attrs...)
	defer span.End()

	image, err := s.generator.Generate(ctx, data.Prompt)
	s.metrics.RecordGeneration(source, err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("image generation failed", zap.String("source", source), zap.Error(err))
		return nil, fmt.Errorf("generate image: %w", err)
	}

	result := &Result{
		Success:     true,
		ImageData:   image,
		Prompt:      data.Prompt,
		PromptData:  data,
		Description: fmt.Sprintf(description, data.Prompt),
		Source:      source,
	}

	if data.ID != nil && !s.samples.Contains(*data.ID) {
		s.samples.Add(*data.ID, image)
	}

	if s.images != nil {
		row := &models.GeneratedImage{Prompt: data.Prompt, ImageData: image}
		if userID != "" {
			row.UserID = &userID
		}
		if err := s.images.Create(ctx, row); err != nil {
			s.logger.Warn("store generated image failed", zap.Error(err))
		} else {
			result.ImageID = row.ID
		}
	}
	return result, nil
}

// Sample returns the sample image for a catalog prompt, rendering and caching
// it on first use.
func (s *Service) Sample(ctx context.Context, id int) (string, error) {
	p, ok := s.catalog.ByID(id)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrPromptNotFound, id)
	}
	if image, ok := s.samples.Get(id); ok {
		return image, nil
	}
	if s.generator == nil {
		return "", ErrGeneratorUnavailable
	}

	image, err := s.generator.Generate(ctx, p.Prompt)
	s.metrics.RecordGeneration("sample", err)
	if err != nil {
		return "", fmt.Errorf("generate sample %d: %w", id, err)
	}
	s.samples.Add(id, image)
	return image, nil
}

// WithSamples attaches already cached sample images. It never renders.
func (s *Service) WithSamples(prompts []Prompt) []PromptWithSample {
	out := make([]PromptWithSample, 0, len(prompts))
	for _, p := range prompts {
		image, _ := s.samples.Peek(p.ID)
		out = append(out, PromptWithSample{Prompt: p, SampleImage: image})
	}
	return out
}

// Samples returns every cached sample image keyed by prompt id.
func (s *Service) Samples() map[int]string {
	out := make(map[int]string, s.samples.Len())
	for _, id := range s.samples.Keys() {
		if image, ok := s.samples.Peek(id); ok {
			out[id] = image
		}
	}
	return out
}

// Image returns a stored generated image.
func (s *Service) Image(ctx context.Context, id string) (*models.GeneratedImage, error) {
	if s.images == nil {
		return nil, ErrImageNotFound
	}
	image, err := s.images.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, id)
		}
		return nil, fmt.Errorf("get generated image: %w", err)
	}
	return image, nil
}

// Recent returns images the user generated, newest first.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]models.GeneratedImage, error) {
	if s.images == nil {
		return []models.GeneratedImage{}, nil
	}
	images, err := s.images.Recent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list generated images: %w", err)
	}
	return images, nil
}

func promptData(p Prompt) PromptData {
	id := p.ID
	return PromptData{ID: &id, Prompt: p.Prompt, Category: p.Category, Style: p.Style}
}
