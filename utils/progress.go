package utils

import (
	"strings"
	"time"
)

const progressBarWidth = 20

// ProgressBar renders a text progress bar for the now-playing embed, e.g.
// ▬▬▬🔘▬▬▬▬▬▬. Position is an approximate wall-clock counter, so it is
// capped at the track length.
func ProgressBar(position, total time.Duration) string {
	if total <= 0 {
		return strings.Repeat("▬", progressBarWidth)
	}
	if position > total {
		position = total
	}
	if position < 0 {
		position = 0
	}

	knob := int(float64(progressBarWidth-1) * float64(position) / float64(total))

	var b strings.Builder
	for i := 0; i < progressBarWidth; i++ {
		if i == knob {
			b.WriteString("🔘")
		} else {
			b.WriteString("▬")
		}
	}
	return b.String()
}
