package store

import (
	"math"

	"github.com/ZaguanLabs/linguaswap"
)

// ValidateCompleteness lists, for every language other than the reference,
// the reference leaf paths it lacks.
func (s *Store) ValidateCompleteness() linguaswap.CompletenessReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := linguaswap.Flatten(s.trees[s.reference])
	report := linguaswap.CompletenessReport{
		Reference:  s.reference,
		TotalPaths: len(paths),
	}

	for _, lang := range s.languages {
		if lang == s.reference {
			continue
		}
		tree := s.trees[lang]

		var missing []string
		for _, p := range paths {
			if _, err := linguaswap.Lookup(tree, p); err != nil {
				missing = append(missing, p)
			}
		}

		coverage := 100.0
		if len(paths) > 0 {
			coverage = float64(len(paths)-len(missing)) / float64(len(paths)) * 100
			coverage = math.Round(coverage*10) / 10
		}
		report.Languages = append(report.Languages, linguaswap.LanguageCoverage{
			Language: lang,
			Missing:  missing,
			Coverage: coverage,
		})
	}
	return report
}
