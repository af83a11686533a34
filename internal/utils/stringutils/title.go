package stringutils

// TruncateTitle shortens a title to at most maxLen characters, appending an
// ellipsis marker when the source was longer. Truncation counts characters,
// not bytes, so multibyte text is never split mid-rune.
func TruncateTitle(title string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}
	return string(runes[:maxLen]) + "..."
}
