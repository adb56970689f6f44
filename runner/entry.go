package runner

// TestFunc is the body of a test.
type TestFunc func(t *T)

// Entry is a named test body. Names do not need to be unique.
type Entry struct {
	Name string
	Body TestFunc
}

// Source supplies the ordered tests of a run.
type Source interface {
	Entries() []Entry
}

// Entries is a fixed, ordered list of tests usable as a Source.
type Entries []Entry

// Entries implements Source.
func (e Entries) Entries() []Entry {
	return e
}
