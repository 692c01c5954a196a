// Package shuffle computes a deterministic, non-identity visiting order
// over a fixed number of positions.
//
// The order sibling operand positions are evaluated in within one
// wrap-pass is unobservable by design, and is deliberately scrambled so
// that accidental left-to-right dependence in primitive combiners fails
// fast. Real randomness would make golden tests non-reproducible, so
// this uses a fixed multiplicative permutation instead: for n
// positions, visit position (i*step + offset) mod n, where step is
// coprime with n.
package shuffle

// Order returns a permutation of [0, n) that visits every index exactly
// once, in an order that is the identity only for n <= 2.
func Order(n int) []int {
	if n <= 0 {
		return nil
	}
	order := make([]int, n)
	if n <= 2 {
		for i := range order {
			order[i] = i
		}
		return order
	}
	step := coprimeStep(n)
	offset := n / 2
	for i := 0; i < n; i++ {
		order[i] = (i*step + offset) % n
	}
	return order
}

// coprimeStep finds a step in (n/2, n) coprime with n, falling back to
// 1 (identity stride) if none is found — which only happens for tiny n
// already handled above.
func coprimeStep(n int) int {
	for step := n - 1; step > n/2; step-- {
		if gcd(step, n) == 1 {
			return step
		}
	}
	return 1
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
