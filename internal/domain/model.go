package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownModel is returned when a model name is not one of the known variants
var ErrUnknownModel = errors.New("unknown model variant")

// ModelVariant identifies a downstream image model
type ModelVariant string

const (
	ModelDreamshaper ModelVariant = "dreamshaper"
	ModelProteus     ModelVariant = "proteus"
	ModelPlayground  ModelVariant = "playground"
)

// StepRange is the closed interval of inference steps a model accepts
type StepRange struct {
	Low  int
	High int
}

var stepRanges = map[ModelVariant]StepRange{
	ModelDreamshaper: {Low: 4, High: 8},
	ModelProteus:     {Low: 20, High: 60},
	ModelPlayground:  {Low: 25, High: 51},
}

// Steps returns the step interval for the variant.
// It panics for a variant outside the enumeration.
func (m ModelVariant) Steps() StepRange {
	r, ok := stepRanges[m]
	if !ok {
		panic(fmt.Sprintf("domain: no step range for model %q", string(m)))
	}
	return r
}

// Valid reports whether m is one of the known variants
func (m ModelVariant) Valid() bool {
	_, ok := stepRanges[m]
	return ok
}

// ModelVariants returns all known variants in name order
func ModelVariants() []ModelVariant {
	variants := make([]ModelVariant, 0, len(stepRanges))
	for m := range stepRanges {
		variants = append(variants, m)
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i] < variants[j] })
	return variants
}

// ParseModelVariant converts user input into a ModelVariant
func ParseModelVariant(name string) (ModelVariant, error) {
	m := ModelVariant(strings.ToLower(strings.TrimSpace(name)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}
