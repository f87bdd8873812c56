package moderation

import "strings"

// Short studio terms ("mix", "track") are common false positives, so a single
// match only counts when the term is specific enough on its own; otherwise two
// distinct matches are required.
const studioStrongTermLen = 8

var studioTerms = []string{
	"studio",
	"microphone",
	"recording",
	"soundproof",
	"acoustic",
	"mixer",
	"mixing",
	"mastering",
	"preamp",
	"amplifier",
	"synthesizer",
	"turntable",
	"headphones",
	"vocal booth",
	"pop filter",
	"audio interface",
	"condenser",
	"guitar",
	"drum kit",
	"soundcheck",
	"playback",
	"mix",
	"track",
	"vinyl",
	"bpm",
}

var technicalTerms = []string{
	"keyboard",
	"monitor",
	"printer",
	"scanner",
	"laptop",
	"desktop",
	"webcam",
	"projector",
	"router",
	"server rack",
	"whiteboard",
	"office desk",
	"workstation",
	"tripod",
	"ring light",
}

// DetectContext inspects a free-text proxy for the content (URL, filename or
// caption text) for professional studio / technical equipment cues. Pure and
// total: any input yields a deterministic result.
func DetectContext(reference string) ContextSignals {
	lower := strings.ToLower(reference)
	if strings.TrimSpace(lower) == "" {
		return ContextSignals{}
	}

	matched := make([]string, 0, 4)
	for _, term := range studioTerms {
		if strings.Contains(lower, term) {
			matched = append(matched, term)
		}
	}

	// A term subsumed by a longer matched term ("mix" inside "mixer") is the
	// same cue, not a second one.
	matches := 0
	strong := false
	for _, term := range matched {
		subsumed := false
		for _, other := range matched {
			if other != term && strings.Contains(other, term) {
				subsumed = true
				break
			}
		}
		if subsumed {
			continue
		}
		matches++
		if len(term) >= studioStrongTermLen {
			strong = true
		}
	}

	signals := ContextSignals{
		IsStudioContext: matches >= 2 || strong,
	}

	for _, term := range technicalTerms {
		if strings.Contains(lower, term) {
			signals.IsTechnicalEquipment = true
			break
		}
	}

	return signals
}
