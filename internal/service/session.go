package service

import (
	"context"
	"log"
	"sync"

	"github.com/basel-ax/imagegen/internal/domain"
	"github.com/basel-ax/imagegen/internal/repository"
)

// State is what a front end renders for a generation session
type State struct {
	Loading   bool
	Artifacts []domain.GeneratedArtifact
	Err       string
}

// Session runs generations for a front end and keeps the loading, result and
// error state it displays. Results are persisted only after a batch succeeds.
type Session struct {
	orchestrator *Orchestrator
	repo         repository.ArtifactRepository

	mu    sync.Mutex
	state State
	// bumped by Generate and Reset; only the latest batch may publish its state
	generation int
	wg         sync.WaitGroup
}

// NewSession creates a session over an orchestrator and a repository
func NewSession(orchestrator *Orchestrator, repo repository.ArtifactRepository) *Session {
	return &Session{orchestrator: orchestrator, repo: repo}
}

// Generate starts a batch in the background and returns immediately
func (s *Session) Generate(ctx context.Context, prompt string, model domain.ModelVariant) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = State{Loading: true}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		artifacts, err := s.orchestrator.GenerateImages(ctx, prompt, model)
		if err == nil {
			err = s.repo.UpsertMany(ctx, artifacts)
		}
		if err != nil {
			log.Printf("Generation failed: %v", err)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation {
			return
		}
		if err != nil {
			s.state = State{Err: err.Error()}
			return
		}
		s.state = State{Artifacts: artifacts}
	}()
}

// Reset clears the loading, result and error state
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = State{}
}

// State returns a copy of the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Artifacts = append([]domain.GeneratedArtifact(nil), s.state.Artifacts...)
	return st
}

// Wait blocks until every started batch has finished
func (s *Session) Wait() {
	s.wg.Wait()
}
