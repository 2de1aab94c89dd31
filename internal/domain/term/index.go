package term

import "strings"

// defaultMaxLegal bounds how many legal-term name matches one lookup may
// walk, keeping cost predictable on large snapshots.
const defaultMaxLegal = 50

// Index is a read-only in-memory index over a terminology snapshot,
// supporting substring-match candidate lookup without network access.
// Build it once and treat it as immutable; concurrent readers are safe.
type Index struct {
	legalTerms  []LegalTermRecord
	relsByLegal map[string][]RelationRecord
	maxLegal    int
}

// NewIndex builds an Index from a snapshot.  Legal terms keep snapshot
// order so lookups are deterministic (first match wins).
func NewIndex(snap Snapshot) *Index {
	relsByLegal := make(map[string][]RelationRecord, len(snap.Relations))
	for _, rel := range snap.Relations {
		if rel.LegalID == "" {
			continue
		}
		relsByLegal[rel.LegalID] = append(relsByLegal[rel.LegalID], rel)
	}
	return &Index{
		legalTerms:  snap.LegalTerms,
		relsByLegal: relsByLegal,
		maxLegal:    defaultMaxLegal,
	}
}

// Len returns the number of indexed legal-term records.
func (ix *Index) Len() int { return len(ix.legalTerms) }

// Candidates returns up to maxResults everyday-term candidates whose linked
// legal-term name contains token.  An everyday term reached via multiple
// legal terms accumulates all of them as links rather than being
// overwritten.  Ordering is stable but not guaranteed-best.
func (ix *Index) Candidates(token string, maxResults int) []EverydayTerm {
	token = strings.TrimSpace(token)
	if token == "" || maxResults <= 0 {
		return nil
	}

	var order []string
	byKey := make(map[string]*EverydayTerm)

	matched := 0
	for _, lt := range ix.legalTerms {
		name := strings.TrimSpace(lt.Name)
		if name == "" || !strings.Contains(name, token) {
			continue
		}
		matched++
		if matched > ix.maxLegal {
			break
		}
		if lt.ID == "" {
			continue
		}

		for _, rel := range ix.relsByLegal[lt.ID] {
			if rel.DailyName == "" {
				continue
			}
			key := rel.DailyID
			if key == "" {
				key = rel.DailyName
			}

			link := LegalTermLink{
				ID:           lt.ID,
				Name:         name,
				RelationCode: rel.RelationCode,
				Relation:     rel.Relation,
				Note:         lt.Note,
			}

			if existing, ok := byKey[key]; ok {
				existing.LegalTerms = append(existing.LegalTerms, link)
				continue
			}
			byKey[key] = &EverydayTerm{
				ID:         key,
				Name:       rel.DailyName,
				Source:     SourceCache,
				Keyword:    token,
				LegalTerms: []LegalTermLink{link},
			}
			order = append(order, key)
			if len(order) >= maxResults {
				break
			}
		}
		if len(order) >= maxResults {
			break
		}
	}

	out := make([]EverydayTerm, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}
