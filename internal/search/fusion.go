package search

import "sort"

// DefaultRRFConstant is the standard RRF smoothing parameter. k=60 is
// empirically validated across domains (used by Azure AI Search,
// OpenSearch, etc.).
const DefaultRRFConstant = 60

// RankedList is one retrieval's hits in rank order (index 0 = rank 1),
// as produced by FTS or VecSearch for a single query variant.
type RankedList []DocResult

// FusedResult is one document after Reciprocal Rank Fusion across every
// ranked list produced by the hybrid pipeline's query set (4.I).
type FusedResult struct {
	Docid     string
	Filepath  string
	RRFScore  float64 // raw RRF sum plus top-rank bonuses
	NormScore float64 // RRFScore normalized to the top hit's score
	BestRank  int     // best (smallest) 1-indexed rank across all lists
	ListCount int     // number of lists this document appeared in
}

// RRFFusion combines any number of ranked lists using Reciprocal Rank
// Fusion, plus a top-rank bonus that rewards documents ranked first (or
// near-first) in at least one list -- the hybrid pipeline's way of not
// letting RRF's smoothing erase a strong single-source match.
type RRFFusion struct {
	K           int
	BonusRank1  float64
	BonusRank23 float64
}

// NewRRFFusion creates an RRF fusion instance with default k=60 and no
// top-rank bonus.
func NewRRFFusion() *RRFFusion {
	return &RRFFusion{K: DefaultRRFConstant}
}

// NewRRFFusionWithK creates an RRF fusion with custom k value. If k <= 0,
// defaults to 60.
func NewRRFFusionWithK(k int) *RRFFusion {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	return &RRFFusion{K: k}
}

// Fuse combines every ranked list in lists into a single document-ranked
// slice. Each list contributes weight 1/(k+rank) per document it
// contains; duplicating a list in lists (e.g. the original query
// counted twice for extra weight) increases that source's influence
// without a separate weight parameter. A document ranked 1 in any list
// gets +BonusRank1; otherwise, ranked 2 or 3 in any list gets
// +BonusRank23. The bonus is chosen by the document's best rank and
// added once per document, not once per list.
//
// Results are sorted by: RRFScore (desc) -> ListCount (desc) ->
// Docid (asc), then normalized so the top score becomes 1.0.
func (f *RRFFusion) Fuse(lists []RankedList) []FusedResult {
	scores := make(map[string]*FusedResult)
	order := make([]string, 0)

	for _, list := range lists {
		for rank, r := range list {
			fr, ok := scores[r.Docid]
			if !ok {
				fr = &FusedResult{Docid: r.Docid, Filepath: r.Filepath, BestRank: rank + 1}
				scores[r.Docid] = fr
				order = append(order, r.Docid)
			}
			fr.ListCount++
			if rank+1 < fr.BestRank {
				fr.BestRank = rank + 1
			}
			fr.RRFScore += 1.0 / float64(f.K+rank+1)
		}
	}

	results := make([]FusedResult, 0, len(order))
	for _, docid := range order {
		fr := scores[docid]
		switch {
		case fr.BestRank == 1:
			fr.RRFScore += f.BonusRank1
		case fr.BestRank <= 3:
			fr.RRFScore += f.BonusRank23
		}
		results = append(results, *fr)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].RRFScore != results[j].RRFScore {
			return results[i].RRFScore > results[j].RRFScore
		}
		if results[i].ListCount != results[j].ListCount {
			return results[i].ListCount > results[j].ListCount
		}
		return results[i].Docid < results[j].Docid
	})

	if len(results) > 0 && results[0].RRFScore > 0 {
		max := results[0].RRFScore
		for i := range results {
			results[i].NormScore = results[i].RRFScore / max
		}
	}

	return results
}
