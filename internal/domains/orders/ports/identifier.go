package ports

// IdentifierGenerator produces human-facing order identifiers. Implementations must be safe
// for concurrent use.
type IdentifierGenerator interface {
	NewOrderID() string
}
