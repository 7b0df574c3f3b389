package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/basel-ax/imagegen/internal/domain"
	"github.com/basel-ax/imagegen/internal/rangemap"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AggregationPolicy decides what a batch returns when some requests fail
type AggregationPolicy int

const (
	// AllOrNothing fails the whole batch on the first failed request
	AllOrNothing AggregationPolicy = iota
	// BestEffort keeps successful results and fails only if every request failed
	BestEffort
)

func (p AggregationPolicy) String() string {
	switch p {
	case AllOrNothing:
		return "all-or-nothing"
	case BestEffort:
		return "best-effort"
	default:
		return fmt.Sprintf("AggregationPolicy(%d)", int(p))
	}
}

// Orchestrator fans a prompt out into parallel generation requests
type Orchestrator struct {
	generator domain.ImageGenerator
	prefs     domain.Preferences
	policy    AggregationPolicy

	now   func() time.Time
	newID func() string
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithPolicy sets the aggregation policy
func WithPolicy(p AggregationPolicy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator overrides the artifact id source
func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(generator domain.ImageGenerator, prefs domain.Preferences, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		generator: generator,
		prefs:     prefs,
		policy:    AllOrNothing,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// BuildRequests returns the clamped requests for one batch
func (o *Orchestrator) BuildRequests(prompt string, model domain.ModelVariant) []domain.ImageGenerationRequest {
	count := rangemap.Clamp(rangemap.MinImages, rangemap.MaxImages, o.prefs.NumberOfImages)
	guidance := rangemap.Clamp(rangemap.MinGuidanceScale, rangemap.MaxGuidanceScale, o.prefs.CfgScale)
	steps := rangemap.Clamp(rangemap.MinSteps, rangemap.MaxSteps, o.prefs.Steps)

	reqs := make([]domain.ImageGenerationRequest, count)
	for i := range reqs {
		reqs[i] = domain.ImageGenerationRequest{
			Prompt:        prompt,
			GuidanceScale: guidance,
			Height:        o.prefs.Height,
			Width:         o.prefs.Width,
			StepsClient:   steps,
			StepsModel:    rangemap.MapToModelRange(steps, model),
			Model:         model,
		}
	}
	return reqs
}

// GenerateImages issues the batch concurrently and returns the artifacts in
// request order. Whether a single failure fails the batch depends on the policy.
func (o *Orchestrator) GenerateImages(ctx context.Context, prompt string, model domain.ModelVariant) ([]domain.GeneratedArtifact, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.ErrEmptyPrompt
	}
	if !model.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownModel, string(model))
	}

	reqs := o.BuildRequests(prompt, model)
	log.Printf("Generating %d image(s) with model %s (steps %d, cfg %.1f, policy %s)",
		len(reqs), model, reqs[0].StepsModel, reqs[0].GuidanceScale, o.policy)

	results := make([]*domain.GeneratedArtifact, len(reqs))
	errs := make([]error, len(reqs))

	var g errgroup.Group
	for i, req := range reqs {
		g.Go(func() error {
			a, err := o.generateOne(ctx, req)
			if err != nil {
				errs[i] = err
				return err
			}
			results[i] = a
			return nil
		})
	}
	firstErr := g.Wait()

	switch o.policy {
	case BestEffort:
		artifacts := make([]domain.GeneratedArtifact, 0, len(results))
		for i, a := range results {
			if a == nil {
				log.Printf("Request %d/%d failed: %v", i+1, len(reqs), errs[i])
				continue
			}
			artifacts = append(artifacts, *a)
		}
		if len(artifacts) == 0 {
			return nil, errors.Join(errs...)
		}
		return artifacts, nil
	default:
		if firstErr != nil {
			log.Printf("Generation batch failed: %v", firstErr)
			return nil, firstErr
		}
		artifacts := make([]domain.GeneratedArtifact, len(results))
		for i, a := range results {
			artifacts[i] = *a
		}
		return artifacts, nil
	}
}

func (o *Orchestrator) generateOne(ctx context.Context, req domain.ImageGenerationRequest) (*domain.GeneratedArtifact, error) {
	resp, err := o.generator.GenerateImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}
	if resp == nil || len(resp.SignedURLs) == 0 || resp.SignedURLs[0] == "" {
		if resp != nil && resp.Message != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrNoResult, resp.Message)
		}
		return nil, domain.ErrNoResult
	}

	return &domain.GeneratedArtifact{
		ID:  o.newID(),
		URL: resp.SignedURLs[0],
		Config: domain.ArtifactConfig{
			GuidanceScale: req.GuidanceScale,
			Height:        req.Height,
			Width:         req.Width,
			StepsClient:   req.StepsClient,
			Model:         req.Model,
			Prompt:        req.Prompt,
		},
		CreatedOn: o.now().UTC(),
		Favourite: false,
	}, nil
}
