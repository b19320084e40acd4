package dedupe

import "NewsIngest/internal/domain"

// Filter returns the candidates whose source link is not already known.
// Equality is exact string match of the link; no trailing-slash or
// query-string canonicalization is applied, so the same article reached via
// a tracking URL counts as new. When two candidates in the same batch share
// a link, the first encountered wins and the rest are discarded.
func Filter(candidates []domain.Candidate, existing map[string]struct{}) []domain.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	fresh := make([]domain.Candidate, 0, len(candidates))

	for _, cand := range candidates {
		if _, ok := existing[cand.SourceLink]; ok {
			continue
		}
		if _, ok := seen[cand.SourceLink]; ok {
			continue
		}
		seen[cand.SourceLink] = struct{}{}
		fresh = append(fresh, cand)
	}

	return fresh
}

// KnownLinks builds the lookup set Filter consumes from a record snapshot.
func KnownLinks(records []domain.Article) map[string]struct{} {
	links := make(map[string]struct{}, len(records))
	for _, rec := range records {
		links[rec.SourceLink] = struct{}{}
	}
	return links
}
