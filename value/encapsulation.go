package value

// Encapsulation is an opaque wrapper minted by a specific
// make-encapsulation-type call. Wrappers created under one Token are
// opaque to predicates/unwrappers built from any other Token.
type Encapsulation struct {
	Tok     *Token
	Payload Value
}

func (*Encapsulation) isValue() {}
