package reader

import "github.com/GeeTransit/rfexproto/value"

// Location is the (filename, start, end) span the stack-trace printer
// uses.
type Location struct {
	File                 string
	StartLine, StartCol  int
	EndLine, EndCol      int
}

// locations maps a pair (by identity) read from source to its span.
// It is process-global and never pruned: a long REPL session retains
// one small struct per pair ever read, which is the same tradeoff the
// reader already makes by keeping parsed trees alive as long as any
// value references them.
var locations = map[*value.Pair]Location{}

// LocationOf returns the span recorded for p, if any (p may be a pair
// that was never produced by this reader, e.g. one consed at runtime).
func LocationOf(p *value.Pair) (Location, bool) {
	loc, ok := locations[p]
	return loc, ok
}

func recordLocation(p *value.Pair, loc Location) {
	locations[p] = loc
}
