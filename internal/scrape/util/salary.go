package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const hoursPerYear = 2080

var (
	salarySentinels = map[string]bool{
		"not specified": true,
		"n/a":           true,
		"na":            true,
		"none":          true,
		"unspecified":   true,
		"not disclosed": true,
		"competitive":   true,
	}

	reRangeSep  = regexp.MustCompile(`[-–—]`)
	reThousands = regexp.MustCompile(`(\d+(?:\.\d+)?)k`)
	reNumber    = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

	currencyStripper = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", "₹", "", ",", "")

	// Tried in order against free text when a card has no salary element.
	salaryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$[\d,]+(?:\.\d{2})?(?:\s*[-–—]\s*\$[\d,]+(?:\.\d{2})?)?(?:\s*(?:per\s*|/\s*)?(?:hour|hr|year|yr|month|mo|annually))?`),
		regexp.MustCompile(`(?i)[\d,]+k?(?:\s*[-–—]\s*[\d,]+k?)?\s*(?:per\s*|/\s*)?(?:hour|hr|year|yr|month|mo|annually)`),
		regexp.MustCompile(`(?i)(?:up\s*to\s*)?\$[\d,]+(?:\.\d{2})?`),
		regexp.MustCompile(`(?i)salary:?\s*\$?[\d,]+(?:k|,000)?`),
	}

	salaryIndicators = []string{"$", "hour", "year", "month", "salary", "pay", "wage"}
)

// NormalizeSalary converts free salary text to a yearly-equivalent amount.
// It never fails: anything it cannot read is 0.
func NormalizeSalary(text string) (out float64) {
	defer func() {
		if recover() != nil {
			out = 0
		}
	}()

	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" || salarySentinels[s] {
		return 0
	}
	s = currencyStripper.Replace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "salary:"))

	if reRangeSep.MatchString(s) {
		parts := reRangeSep.Split(s, -1)
		if len(parts) == 2 {
			low, high := yearlyAmount(parts[0]), yearlyAmount(parts[1])
			if low > 0 && high > 0 {
				return (low + high) / 2
			}
			return math.Max(low, high)
		}
	}
	return yearlyAmount(s)
}

func yearlyAmount(s string) float64 {
	if strings.Contains(s, "k") {
		if m := reThousands.FindStringSubmatch(s); m != nil {
			return finite(parseNum(m[1]) * 1000)
		}
	}

	m := reNumber.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n := parseNum(m[1])

	switch {
	case strings.Contains(s, "hour") || strings.Contains(s, "hr"):
		n *= hoursPerYear
	case strings.Contains(s, "month") || strings.Contains(s, "mo"):
		n *= 12
	case strings.Contains(s, "year") || strings.Contains(s, "yr") || strings.Contains(s, "annually") || n > 1000:
	default:
		n *= 1000
	}
	return finite(n)
}

func parseNum(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// ExtractSalaryText returns the first salary-looking phrase in free text, or "".
func ExtractSalaryText(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	for _, re := range salaryPatterns {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// LooksLikeSalary reports whether a snippet carries a pay indicator.
func LooksLikeSalary(text string) bool {
	l := strings.ToLower(text)
	for _, ind := range salaryIndicators {
		if strings.Contains(l, ind) {
			return true
		}
	}
	return false
}
