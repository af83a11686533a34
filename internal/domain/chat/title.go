package chat

import (
	"pirizgpt/internal/utils/stringutils"
)

// UntitledSessionTitle is shown for sessions that have no user turn yet.
const UntitledSessionTitle = "Untitled Chat"

// maxTitleLen caps the session title length before the ellipsis marker
// is appended.
const maxTitleLen = 50

// SessionTitle derives the display title for a session from its first
// user-role message.
func SessionTitle(firstUserMessage string) string {
	if firstUserMessage == "" {
		return UntitledSessionTitle
	}
	return stringutils.TruncateTitle(firstUserMessage, maxTitleLen)
}
