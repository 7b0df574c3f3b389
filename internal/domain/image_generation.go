package domain

import (
	"context"
	"errors"
)

var (
	// ErrNoResult means the endpoint answered but returned no usable image locator
	ErrNoResult = errors.New("no image returned")

	// ErrEmptyPrompt is returned when generation is requested without a prompt
	ErrEmptyPrompt = errors.New("prompt is required")
)

// ImageGenerationRequest represents the parameters for a single image generation call
type ImageGenerationRequest struct {
	Prompt        string
	GuidanceScale float64
	Height        string
	Width         string
	StepsClient   float64
	StepsModel    int
	Model         ModelVariant
}

// ImageGenerationResponse represents the response from the image generation endpoint
type ImageGenerationResponse struct {
	SignedURLs []string
	Message    string
}

// Preferences holds the user-facing generation knobs before clamping
type Preferences struct {
	NumberOfImages int
	CfgScale       float64
	Height         string
	Width          string
	Steps          float64
}

// ImageGenerator defines the remote generation capability
type ImageGenerator interface {
	// GenerateImage issues one generation request
	GenerateImage(ctx context.Context, req ImageGenerationRequest) (*ImageGenerationResponse, error)
}
