package translation

import (
	"fmt"
	"math"
	"strings"

	"edulingua/models"
)

// ExportSubtitles renders cues in the requested format. Supported
// formats are "srt", "vtt", and "txt"; anything else falls back to a
// bracketed-timestamp listing. Output is deterministic: the same cues
// and format always produce byte-identical text, which matters for
// external player interoperability.
func ExportSubtitles(cues []models.SubtitleCue, format string) string {
	if len(cues) == 0 {
		return ""
	}

	switch strings.ToLower(format) {
	case "srt":
		blocks := make([]string, len(cues))
		for i, cue := range cues {
			blocks[i] = fmt.Sprintf("%d\n%s --> %s\n%s\n",
				cue.ID,
				formatTimestamp(cue.Start, ','),
				formatTimestamp(cue.End, ','),
				cue.Text,
			)
		}
		return strings.Join(blocks, "\n")

	case "vtt":
		blocks := make([]string, len(cues))
		for i, cue := range cues {
			blocks[i] = fmt.Sprintf("%s --> %s\n%s\n",
				formatTimestamp(cue.Start, '.'),
				formatTimestamp(cue.End, '.'),
				cue.Text,
			)
		}
		return "WEBVTT\n\n" + strings.Join(blocks, "\n")

	case "txt":
		texts := make([]string, len(cues))
		for i, cue := range cues {
			texts[i] = cue.Text
		}
		return strings.Join(texts, "\n")

	default:
		lines := make([]string, len(cues))
		for i, cue := range cues {
			lines[i] = fmt.Sprintf("[%s - %s] %s",
				formatTimestamp(cue.Start, '.'),
				formatTimestamp(cue.End, '.'),
				cue.Text,
			)
		}
		return strings.Join(lines, "\n")
	}
}

// ExportMIMEType returns the content type served for a format.
func ExportMIMEType(format string) string {
	switch strings.ToLower(format) {
	case "srt":
		return "application/x-subrip"
	case "vtt":
		return "text/vtt"
	default:
		return "text/plain; charset=utf-8"
	}
}

// formatTimestamp renders seconds as HH:MM:SS<sep>mmm. SRT separates
// milliseconds with a comma, VTT with a period.
func formatTimestamp(seconds float64, sep byte) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(math.Floor(seconds))
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	millis := int(math.Floor((seconds - math.Floor(seconds)) * 1000))

	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, sep, millis)
}
