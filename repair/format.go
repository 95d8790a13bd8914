package repair

import "fmt"

// TruncateURL shortens a URL for display, keeping the end where the
// file name lives.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatStatus renders a check's HTTP status for progress lines.
func FormatStatus(status int, reason string) string {
	switch {
	case status == 0 && reason != "":
		return reason
	case status == 0:
		return "no response"
	case reason != "":
		return fmt.Sprintf("%d %s", status, reason)
	default:
		return fmt.Sprintf("%d", status)
	}
}
