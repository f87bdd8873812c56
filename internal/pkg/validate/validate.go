package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Email is a light sanity check, not RFC validation. Real verification
// happens when the address is used.
func Email(value string) bool {
	value = strings.TrimSpace(value)
	at := strings.Index(value, "@")
	if at <= 0 || at == len(value)-1 {
		return false
	}
	return !strings.ContainsAny(value, " \t")
}
