// Package suggest offers "did you mean ...?" spelling suggestions for
// unbound symbols. It is used only by the REPL's trace printer when
// reporting a binding-not-found error; the evaluator itself never
// imports this package; a wrong binding is still an error, never a
// silent best-guess substitution.
package suggest

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Closest returns up to n of candidates ranked by fuzzy-match rank
// against target, closest first. Candidates with no fuzzy match at
// all are dropped rather than padding the list.
func Closest(target string, candidates []string, n int) []string {
	ranks := fuzzy.RankFindFold(target, candidates)
	sort.Sort(ranks)

	if n > len(ranks) {
		n = len(ranks)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = ranks[i].Target
	}
	return out
}
