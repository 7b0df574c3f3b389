package domain

import "time"

// ArtifactConfig is the generation configuration frozen into an artifact at
// creation time.
type ArtifactConfig struct {
	GuidanceScale float64      `json:"guidanceScale" yaml:"guidance_scale"`
	Height        string       `json:"height" yaml:"height"`
	Width         string       `json:"width" yaml:"width"`
	StepsClient   float64      `json:"stepsClient" yaml:"steps_client"`
	Model         ModelVariant `json:"model" yaml:"model"`
	Prompt        string       `json:"prompt" yaml:"prompt"`
}

// GeneratedArtifact represents one generated image and its stored state
type GeneratedArtifact struct {
	ID        string         `json:"id" yaml:"id"`
	URL       string         `json:"url" yaml:"url"`
	Config    ArtifactConfig `json:"config" yaml:"config"`
	CreatedOn time.Time      `json:"createdOn" yaml:"created_on"`
	Favourite bool           `json:"favourite" yaml:"favourite"`
}
