package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// WriteInsights writes the insight prose under a short header.
func WriteInsights(w io.Writer, term, location string, at time.Time, insights string) error {
	_, err := fmt.Fprintf(w, "AI MARKET INSIGHTS\nSearch: %s in %s\nGenerated: %s\n%s\n\n%s\n",
		term, location, at.Format(time.DateTime), strings.Repeat("=", 60), strings.TrimSpace(insights))
	return err
}
