package email

import (
	"net/url"
	"regexp"
	"strings"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

var (
	reSalary = regexp.MustCompile(`\$\s?\d[\d,]*(?:K|M)?\s*(?:-\s*\$\s?\d[\d,]*(?:K|M)?)?\s*/\s*(?:year|yr|hour|hr)`)
	reJobID  = regexp.MustCompile(`/jobs/view/(\d+)`)
)

// ParseLinkedInAlert extracts postings from a LinkedIn job-alert mail body.
// Several anchors usually point at one job (logo, title, "view job"), so they
// are merged by job id and the most title-like text wins. Output keeps the
// order jobs first appear in the mail.
func ParseLinkedInAlert(htmlBody string) ([]domain.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	byID := map[string]*domain.RawRecord{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		lh := strings.ToLower(strings.TrimSpace(href))
		if !strings.Contains(lh, "/jobs/view/") || !strings.Contains(lh, "linkedin.com") {
			return
		}

		jobURL := normalizeMaybeRedirectedURL(strings.TrimSpace(href))
		if jobURL == "" {
			return
		}
		key := linkedInSourceID(jobURL)
		if key == "" {
			key = jobURL
		}

		j, ok := byID[key]
		if !ok {
			j = &domain.RawRecord{URL: jobURL}
			byID[key] = j
			order = append(order, key)
		}

		// the title is often only on the job_posting/jobcard_body anchors
		if cand := stripBadTitleSuffixes(util.CleanText(a.Text())); betterTitle(cand, j.Title) {
			j.Title = cand
		}

		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}

		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := util.CleanText(p.Text())
			if t == "" {
				return
			}
			// "Company · Location"
			if strings.Contains(t, " · ") {
				if j.Company == "" && j.Location == "" {
					parts := strings.SplitN(t, " · ", 2)
					j.Company = strings.TrimSpace(parts[0])
					j.Location = util.NormalizeLocation(parts[1])
				}
				return
			}
			if t2 := stripBadTitleSuffixes(t); betterTitle(t2, j.Title) {
				j.Title = t2
			}
		})

		if j.Salary == "" {
			j.Salary = strings.TrimSpace(reSalary.FindString(util.CleanText(card.Text())))
		}
	})

	out := make([]domain.RawRecord, 0, len(order))
	for _, k := range order {
		if j := byID[k]; strings.TrimSpace(j.Title) != "" {
			out = append(out, *j)
		}
	}
	return out, nil
}

func linkedInSourceID(jobURL string) string {
	if m := reJobID.FindStringSubmatch(jobURL); len(m) == 2 {
		return "linkedin:" + m[1]
	}
	return ""
}

func normalizeMaybeRedirectedURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	// tracking wrapper with url=
	if raw := u.Query().Get("url"); raw != "" {
		if uu, err := url.Parse(raw); err == nil && uu.Host != "" {
			return uu.String()
		}
	}

	// google redirect /url?q=
	if strings.Contains(strings.ToLower(u.Host), "google.") && strings.HasPrefix(u.Path, "/url") {
		if q := u.Query().Get("q"); q != "" {
			if uu, err := url.Parse(q); err == nil && uu.Host != "" {
				return uu.String()
			}
		}
	}

	// already absolute
	if u.Host != "" {
		return u.String()
	}

	return href
}

func stripBadTitleSuffixes(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// common LinkedIn email junk that gets appended
	bads := []string{
		"Actively recruiting",
		"Easy Apply",
		"Promoted",
	}
	for _, b := range bads {
		s = strings.TrimSpace(strings.ReplaceAll(s, b, ""))
	}
	// avoid obvious non-titles
	low := strings.ToLower(s)
	if strings.Contains(low, "alumni") ||
		strings.Contains(low, "connections") ||
		strings.Contains(low, "applicants") ||
		strings.Contains(low, "school") {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

func betterTitle(candidate, current string) bool {
	c := strings.TrimSpace(candidate)
	if c == "" {
		return false
	}
	cur := strings.TrimSpace(current)

	if cur == "" {
		return titleScore(c) >= 5
	}

	cs, ks := titleScore(c), titleScore(cur)
	if ks >= 8 && cs < ks {
		return false
	}
	// replace only on a clear win so anchors don't flip-flop
	return cs >= ks+3
}

func looksLikeLinkedInJobAlert(from, subj, body string) bool {
	f := strings.ToLower(from)
	if strings.Contains(f, "jobalerts-noreply") {
		return true
	}
	s := strings.ToLower(subj)
	if strings.Contains(s, "job alert") || strings.Contains(s, "linkedin") {
		// body check prevents false positives
		b := strings.ToLower(body)
		return strings.Contains(b, "linkedin.com/comm/jobs/view") ||
			strings.Contains(b, "linkedin.com/jobs/view")
	}
	return false
}

func titleScore(s string) int {
	orig := strings.TrimSpace(s)
	if orig == "" {
		return -100
	}

	l := strings.ToLower(orig)
	score := 0

	// Hard rejects / strong negatives
	if strings.Contains(l, "unsubscribe") || strings.Contains(l, "manage") && strings.Contains(l, "alert") {
		return -50
	}
	if strings.Contains(l, "http://") || strings.Contains(l, "https://") || strings.Contains(l, "www.") {
		return -30
	}

	// Salary-ish
	if strings.ContainsAny(orig, "$€£") {
		score -= 8
	}
	if strings.Contains(l, "per hour") || strings.Contains(l, "/hour") || strings.Contains(l, "/hr") ||
		strings.Contains(l, "per year") || strings.Contains(l, "/year") || strings.Contains(l, "/yr") {
		score -= 6
	}
	// quick range-ish heuristic without regex
	if strings.Count(orig, "-") >= 1 && (strings.ContainsAny(orig, "$€£") || strings.Contains(l, "k")) {
		score -= 4
	}

	// CTA-ish
	for _, bad := range []string{"apply", "view job", "see job", "see details", "learn more", "sign in"} {
		if strings.Contains(l, bad) {
			score -= 6
		}
	}

	// Location-ish
	for _, loc := range []string{"remote", "hybrid", "on-site", "onsite", "united states", "usa"} {
		if strings.Contains(l, loc) {
			score -= 3
		}
	}

	// Separator soup often means concatenated row data
	if strings.Count(orig, "|") >= 1 || strings.Count(orig, "•") >= 1 {
		score -= 2
	}

	// Title keywords (positive)
	titleWords := []string{
		"engineer", "developer", "software", "backend", "frontend", "full stack", "full-stack",
		"platform", "cloud", "devops", "sre", "security", "embedded", "firmware",
		"data", "ml", "ai", "scientist", "analyst", "architect",
		"manager", "director", "lead", "principal", "staff", "intern", "technician",
	}
	for _, w := range titleWords {
		if strings.Contains(l, w) {
			score += 4
			break
		}
	}

	// Seniority tokens
	for _, w := range []string{"sr", "senior", "jr", "junior", "i", "ii", "iii", "iv", "principal", "staff", "lead"} {
		if containsWord(l, w) {
			score += 2
		}
	}

	// Shape heuristics
	n := len([]rune(orig))
	if n >= 6 && n <= 80 {
		score += 2
	} else if n < 4 || n > 140 {
		score -= 6
	}

	// Looks like a sentence / description
	if strings.HasSuffix(orig, ".") || strings.Contains(l, "you will") || strings.Contains(l, "we are") {
		score -= 4
	}

	// Too many digits is suspicious (ids/salary)
	digits := 0
	for _, r := range orig {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits >= 6 {
		score -= 4
	}

	return score
}

// containsWord checks for whole-word-ish match in a cheap way.
// This avoids "sr" matching "sre" incorrectly, etc.
func containsWord(haystackLower, needleLower string) bool {
	// boundary set: space and common punctuation seen in titles
	bounds := func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '—', '–', '/', '\\', '(', ')', '[', ']', '{', '}', ',', '.', ':', ';', '|', '•':
			return true
		default:
			return false
		}
	}

	// scan for needle and check boundaries
	idx := strings.Index(haystackLower, needleLower)
	for idx != -1 {
		leftOK := idx == 0 || bounds(rune(haystackLower[idx-1]))
		rightIdx := idx + len(needleLower)
		rightOK := rightIdx == len(haystackLower) || bounds(rune(haystackLower[rightIdx]))
		if leftOK && rightOK {
			return true
		}
		next := strings.Index(haystackLower[idx+1:], needleLower)
		if next == -1 {
			break
		}
		idx = idx + 1 + next
	}
	return false
}
