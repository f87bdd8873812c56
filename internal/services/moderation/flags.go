package moderation

import "strings"

var flagSynonyms = map[string]string{
	"studio_context_detected":      FlagStudioContext,
	"technical_equipment_detected": FlagTechnicalEquipment,
	"workspace_context":            "workspace",
}

// NormalizeFlags canonicalizes synonym tags, drops empty entries and
// duplicates, and removes the generic adult_content_platform tag when the
// more specific adult_content tag is present. Output order follows first
// occurrence in the input, so the function is deterministic and idempotent.
func NormalizeFlags(flags []string) []string {
	normalized := make([]string, 0, len(flags))
	seen := make(map[string]struct{}, len(flags))

	hasAdultContent := false
	for _, flag := range flags {
		if canonicalFlag(flag) == "adult_content" {
			hasAdultContent = true
			break
		}
	}

	for _, flag := range flags {
		canonical := canonicalFlag(flag)
		if canonical == "" {
			continue
		}
		if canonical == FlagAdultContentPlatform && hasAdultContent {
			continue
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		normalized = append(normalized, canonical)
	}

	return normalized
}

func canonicalFlag(flag string) string {
	trimmed := strings.ToLower(strings.TrimSpace(flag))
	if canonical, ok := flagSynonyms[trimmed]; ok {
		return canonical
	}
	return trimmed
}
