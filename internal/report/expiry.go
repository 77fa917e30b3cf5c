package report

import (
	"slices"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/Alturino/medstore/internal/repository"
)

type ExpiryEntry struct {
	Medicine  repository.Medicine `json:"medicine"`
	ExpiresAt time.Time           `json:"expires_at"`
}

type ExpiryReport struct {
	Expired      []ExpiryEntry         `json:"expired"`
	ExpiringSoon []ExpiryEntry         `json:"expiring_soon"`
	Unparseable  []repository.Medicine `json:"unparseable"`
}

// Expiring sorts medicines into expired and expiring within window of now.
// Expiry text is parsed leniently; entries whose text cannot be read as a
// date are listed as unparseable, blank expiries are ignored.
func Expiring(medicines []repository.Medicine, now time.Time, window time.Duration) ExpiryReport {
	report := ExpiryReport{
		Expired:      []ExpiryEntry{},
		ExpiringSoon: []ExpiryEntry{},
		Unparseable:  []repository.Medicine{},
	}
	limit := now.Add(window)
	for _, m := range medicines {
		text := strings.TrimSpace(m.Expiry)
		if text == "" {
			continue
		}
		expiresAt, err := dateparse.ParseIn(text, now.Location())
		if err != nil {
			report.Unparseable = append(report.Unparseable, m)
			continue
		}
		entry := ExpiryEntry{Medicine: m, ExpiresAt: expiresAt}
		switch {
		case expiresAt.Before(now):
			report.Expired = append(report.Expired, entry)
		case expiresAt.Before(limit):
			report.ExpiringSoon = append(report.ExpiringSoon, entry)
		}
	}

	byDate := func(a, b ExpiryEntry) int { return a.ExpiresAt.Compare(b.ExpiresAt) }
	slices.SortStableFunc(report.Expired, byDate)
	slices.SortStableFunc(report.ExpiringSoon, byDate)
	return report
}
