package logging

import "strings"

// sensitiveKeys are attribute key fragments whose values are masked.
var sensitiveKeys = []string{"password", "passwd", "secret", "token", "api_key", "apikey"}

// ShouldMask reports whether the attribute key names a sensitive value.
// Matching is case-insensitive and by substring.
func ShouldMask(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// MaskValue hides all but the last four characters of v.
// Values of four characters or fewer are fully masked.
func MaskValue(v string) string {
	r := []rune(v)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}
