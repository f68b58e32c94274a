package match

import (
	"container/heap"
	"sort"
)

// DefaultLimit is the number of suggestions surfaced when no limit is configured.
const DefaultLimit = 5

// Candidate is a title paired with its distance to the query.
type Candidate struct {
	Score int
	Title string
}

func less(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Title < b.Title
}

// worstFirst is a max-heap: the root is the candidate that would be evicted next.
type worstFirst []Candidate

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return less(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x any)        { *h = append(*h, x.(Candidate)) }
func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// Ranker keeps the n best candidates seen so far.
// It never holds more than n+1 candidates: one over capacity triggers eviction
// of the worst.
type Ranker struct {
	limit int
	held  worstFirst
}

// NewRanker returns a Ranker keeping at most n candidates. n <= 0 keeps none.
func NewRanker(n int) *Ranker {
	if n < 0 {
		n = 0
	}
	return &Ranker{limit: n, held: make(worstFirst, 0, min(n, DefaultLimit)+1)}
}

// Observe offers a candidate to the ranker.
func (r *Ranker) Observe(score int, title string) {
	if r.limit == 0 {
		return
	}
	heap.Push(&r.held, Candidate{Score: score, Title: title})
	if r.held.Len() > r.limit {
		heap.Pop(&r.held)
	}
}

// Len reports how many candidates are currently held.
func (r *Ranker) Len() int { return r.held.Len() }

// Results returns the held candidates, best first, ties broken by title.
func (r *Ranker) Results() []Candidate {
	out := make([]Candidate, len(r.held))
	copy(out, r.held)
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// TopN scores every title against query and returns the n closest.
func TopN(query string, titles []string, n int) []Candidate {
	r := NewRanker(n)
	for _, t := range titles {
		r.Observe(Distance(t, query), t)
	}
	return r.Results()
}
