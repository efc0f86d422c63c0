package ai

import "fmt"

// FallbackSummary produces a deterministic one-line narrative from the raw
// inputs for when the AI service is disabled or unreachable. The daily run
// must not fail because a narrative could not be fetched.
func FallbackSummary(fedRate, dxy float64, bias string) Analysis {
	return Analysis{
		Summary: fmt.Sprintf("Fed at %.2f%% with DXY at %.1f suggests a %s bias for gold.",
			fedRate, dxy, bias),
		Confidence: 0.5,
	}
}
