package testrepo

import "slices"

// BuildSectionPaths maps each section id to its folder names from the suite
// root down to the section. A missing parent ends the walk, so orphans are
// rooted at themselves; a parent cycle stops at the first repeated section.
func BuildSectionPaths(sections []Section) map[int64][]string {
	byID := make(map[int64]Section, len(sections))
	for _, s := range sections {
		byID[s.ID] = s
	}

	out := make(map[int64][]string, len(sections))
	for _, s := range sections {
		var path []string
		seen := make(map[int64]bool)
		cur, ok := s, true
		for ok && !seen[cur.ID] {
			seen[cur.ID] = true
			path = append(path, cur.Name)
			if cur.ParentID == nil {
				break
			}
			cur, ok = byID[*cur.ParentID]
		}
		slices.Reverse(path)
		out[s.ID] = path
	}
	return out
}
