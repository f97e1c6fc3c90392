package memutils

// Validatable is anything carrying internal bookkeeping that can check itself, such as a fence's
// completed and pending values or a heap pool's free list
type Validatable interface {
	Validate() error
}
