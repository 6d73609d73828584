package slug

import (
	"crypto/rand"
	"strings"
	"unicode"
)

// Option configures slug generation.
type Option func(*config)

type config struct {
	maxLength    int
	separator    string
	suffixLength int
}

func defaultConfig() *config {
	return &config{
		maxLength: 0, // no limit
		separator: "-",
	}
}

// MaxLength truncates the generated slug to at most n runes.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// Separator sets the separator character, default "-".
func Separator(s string) Option {
	return func(c *config) { c.separator = s }
}

// WithSuffix appends a random alphanumeric suffix of the given length to
// reduce collisions between drivers with the same business name.
func WithSuffix(length int) Option {
	return func(c *config) { c.suffixLength = length }
}

// Make creates a URL-safe lowercase slug from the input string. Runs of
// non-alphanumeric characters collapse into a single separator.
func Make(s string, opts ...Option) string {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var b strings.Builder
	b.Grow(len(s))

	lastWasSep := true // avoid a leading separator
	count := 0

	for _, r := range s {
		if cfg.maxLength > 0 && count >= cfg.maxLength {
			break
		}

		r = unicode.ToLower(r)

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastWasSep = false
			count++
			continue
		}

		if !lastWasSep {
			b.WriteString(cfg.separator)
			lastWasSep = true
			count += len([]rune(cfg.separator))
		}
	}

	result := strings.TrimSuffix(b.String(), cfg.separator)

	if cfg.suffixLength > 0 {
		suffix := randomSuffix(cfg.suffixLength)
		if result != "" {
			result = result + cfg.separator + suffix
		} else {
			result = suffix
		}
	}

	return result
}

func randomSuffix(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// Deterministic fallback keeps slugs usable even if the source
		// of randomness is unavailable.
		for i := range b {
			b[i] = charset[i%len(charset)]
		}
		return string(b)
	}
	for i := range b {
		b[i] = charset[b[i]%byte(len(charset))]
	}
	return string(b)
}
