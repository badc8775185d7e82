package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSearchCriteriaDefaults(t *testing.T) {
	c := NewSearchCriteria("", "  ", "")
	assert.Equal(t, "Software Developer", c.Term)
	assert.Equal(t, "Remote", c.Location)
	assert.Equal(t, []string{"software developer"}, c.Keywords)
}

func TestNewSearchCriteriaKeywords(t *testing.T) {
	c := NewSearchCriteria("Go Engineer", "Austin, TX", "golang, , Kubernetes ")
	assert.Equal(t, []string{"golang", "kubernetes"}, c.Keywords)
	assert.Equal(t, []string{"austin", "tx"}, c.LocationTerms())
}

func TestDedupKey(t *testing.T) {
	tests := []struct {
		name string
		a, b [2]string
		same bool
	}{
		{"case and spacing", [2]string{"Senior  Engineer", "ACME"}, [2]string{"senior engineer", " acme "}, true},
		{"fullwidth folds", [2]string{"Ｇｏ Dev", "Acme"}, [2]string{"go dev", "acme"}, true},
		{"different company", [2]string{"Go Dev", "Acme"}, [2]string{"Go Dev", "Globex"}, false},
		{"field boundary", [2]string{"a b", "c"}, [2]string{"a", "b c"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupKey(tt.a[0], tt.a[1]) == DedupKey(tt.b[0], tt.b[1])
			assert.Equal(t, tt.same, got)
		})
	}
}

func TestCompanyDisplayName(t *testing.T) {
	assert.Equal(t, "stripe", Company{Slug: "stripe"}.DisplayName())
	assert.Equal(t, "Stripe", Company{Slug: "stripe", Name: "Stripe"}.DisplayName())
}
