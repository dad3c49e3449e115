package helper

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var cronFieldRex = regexp.MustCompile(`^(\*|\*/\d+|\d+|\d+-\d+|\d+(,\d+)+)$`)

func IsValidURL(feedURL string) error {
	u, err := url.ParseRequestURI(feedURL)
	if err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	client := http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(feedURL)
	if err != nil {
		return fmt.Errorf("could not reach URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bad response status: %s", resp.Status)
	}

	return nil
}

// IsValidCron rejects expressions the matcher would silently treat as "never
// due", so a typo surfaces at add time instead of as a feed that never runs.
func IsValidCron(expr string) error {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return fmt.Errorf("cron expression must have 5 fields, got %d", len(fields))
	}
	for _, f := range fields {
		if !cronFieldRex.MatchString(f) {
			return fmt.Errorf("invalid cron field: %q", f)
		}
	}
	return nil
}
