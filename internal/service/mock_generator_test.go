package service

import (
	"context"
	"errors"
	"sync"

	"github.com/basel-ax/imagegen/internal/domain"
)

// mockGenerator is a scripted domain.ImageGenerator. Responses are handed out
// in call order; once exhausted the last one repeats.
type mockGenerator struct {
	mu        sync.Mutex
	responses []mockResponse
	calls     []domain.ImageGenerationRequest

	// when set, every call blocks until release is closed
	release chan struct{}
}

type mockResponse struct {
	resp *domain.ImageGenerationResponse
	err  error
}

func newMockGenerator(responses ...mockResponse) *mockGenerator {
	return &mockGenerator{responses: responses}
}

func urls(u ...string) mockResponse {
	return mockResponse{resp: &domain.ImageGenerationResponse{SignedURLs: u}}
}

func failure(msg string) mockResponse {
	return mockResponse{err: errors.New(msg)}
}

func (m *mockGenerator) GenerateImage(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageGenerationResponse, error) {
	m.mu.Lock()
	idx := len(m.calls)
	m.calls = append(m.calls, req)
	var r mockResponse
	if len(m.responses) > 0 {
		if idx >= len(m.responses) {
			idx = len(m.responses) - 1
		}
		r = m.responses[idx]
	}
	release := m.release
	m.mu.Unlock()

	if release != nil {
		<-release
	}
	return r.resp, r.err
}

func (m *mockGenerator) Calls() []domain.ImageGenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ImageGenerationRequest(nil), m.calls...)
}
