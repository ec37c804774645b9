package crawl

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ComputeHash returns the hex xxhash of content.
func ComputeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

// TruncateURL shortens a URL for display, keeping the end which is more informative.
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

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatTokens formats token count in human-readable form.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("~%d tokens", tokens)
	}
	return fmt.Sprintf("~%dk tokens", (tokens+500)/1000)
}

// FormatProgress renders a page progress event as one line:
//
//	Main Doc Foo                                     Start (hop : 0/2)
//	  Sub Doc Bar                                    Done! (hop : 1/2, elapsed_time: 0.4 seconds)
//
// Sub pages are indented two spaces per hop.
func FormatProgress(e ProgressEvent) string {
	label := "Main Doc " + e.Title
	if e.Hop > 0 {
		label = strings.Repeat("  ", e.Hop) + "Sub Doc " + e.Title
	}

	switch e.Type {
	case ProgressPageFinished:
		secs := math.Round(e.Elapsed.Seconds()*10) / 10
		return fmt.Sprintf("%-50s Done! (hop : %d/%d, elapsed_time: %.1f seconds)", label, e.Hop, e.MaxHop, secs)
	default:
		return fmt.Sprintf("%-50s Start (hop : %d/%d)", label, e.Hop, e.MaxHop)
	}
}

// FormatElapsed formats a duration in seconds with one decimal.
func FormatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
