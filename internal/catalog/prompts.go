package catalog

import (
	"fmt"
	"strconv"
	"time"

	"github.com/muurk/lcdpacket/internal/sanitize"
)

// Session prompts that are not layer fields.
const (
	DelayPrompt = "Delay:\n%i%i%i.%i%i%i%i"
	SizePrompt  = "Size(bytes):\n%i%i%i%i"
)

// MaxSize is the largest size the size prompt can express.
const MaxSize = 9999

// DelaySeed lays d out for DelayPrompt, in seconds with four decimals.
func DelaySeed(d time.Duration) string {
	return fmt.Sprintf("Delay:\n%08.4f", d.Seconds())
}

// ParseDelay reads the committed delay prompt.
func ParseDelay(committed string) (time.Duration, error) {
	text := Value(committed)
	secs, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("delay %q: %w", text, err)
	}
	// Whole microseconds, the resolution the sender works in.
	return time.Duration(secs*1e6+0.5) * time.Microsecond, nil
}

// SizeSeed lays n out for SizePrompt.
func SizeSeed(n int) string {
	return fmt.Sprintf("Size(bytes):\n%04d", min(max(n, 0), MaxSize))
}

// ParseSize reads the committed size prompt.
func ParseSize(committed string) (int, error) {
	text, err := sanitize.Sanitize(Value(committed), sanitize.DecimalToProtocol(16))
	if err != nil {
		return 0, fmt.Errorf("size: %w", err)
	}
	return strconv.Atoi(text)
}
