package registry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-harness/exitcodes"
	"github.com/ethereum-optimism/infra/op-harness/runner"
)

// DefaultCapacity is the number of tests a registry holds unless configured otherwise.
const DefaultCapacity = 100

// capacityOverride replaces DefaultCapacity at link time:
//
//	go build -ldflags "-X github.com/ethereum-optimism/infra/op-harness/registry.capacityOverride=500"
var capacityOverride string

// ErrNilBody is returned when registering a test without a body.
var ErrNilBody = errors.New("test body is nil")

type Entry = runner.Entry

// CapacityError is returned when registering past the registry capacity.
type CapacityError struct {
	Capacity int
	Count    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("max number of tests exceeded (capacity: %d, current amount: %d)", e.Capacity, e.Count)
}

// Registry is the ordered, append-only list of tests of a binary. It is
// populated before the run starts and read once per run.
type Registry struct {
	capacity int
	entries  []Entry
	log      log.Logger
	out      io.Writer
	exit     func(int)
}

var _ runner.Source = (*Registry)(nil)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(l log.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithFatalOutput sets where the capacity diagnostic of MustRegister is written.
func WithFatalOutput(w io.Writer) Option {
	return func(r *Registry) { r.out = w }
}

// WithExit replaces os.Exit for MustRegister.
func WithExit(exit func(int)) Option {
	return func(r *Registry) { r.exit = exit }
}

// DefaultCapacityValue returns the capacity used when none is configured,
// honouring a link-time override.
func DefaultCapacityValue() int {
	if capacityOverride != "" {
		if n, err := strconv.Atoi(capacityOverride); err == nil && n > 0 {
			return n
		}
	}
	return DefaultCapacity
}

// New creates a registry holding at most capacity tests. A capacity of zero or
// less selects DefaultCapacityValue.
func New(capacity int, opts ...Option) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacityValue()
	}
	r := &Registry{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
		out:      os.Stdout,
		exit:     os.Exit,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = log.Root()
	}
	return r
}

// Collect registers entries in order into a new registry.
func Collect(capacity int, entries ...Entry) (*Registry, error) {
	r := New(capacity)
	for _, e := range entries {
		if err := r.Register(e.Name, e.Body); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a test. Registration order is run order.
func (r *Registry) Register(name string, body runner.TestFunc) error {
	if body == nil {
		return fmt.Errorf("registering %q: %w", name, ErrNilBody)
	}
	if len(r.entries) >= r.capacity {
		return &CapacityError{Capacity: r.capacity, Count: len(r.entries)}
	}
	r.entries = append(r.entries, Entry{Name: name, Body: body})
	r.log.Trace("Registered test", "name", name, "index", len(r.entries)-1)
	return nil
}

// MustRegister appends a test and terminates the process if the registry is
// full. Running with a truncated registry would silently skip tests, so this
// is fatal before any test starts.
func (r *Registry) MustRegister(name string, body runner.TestFunc) {
	err := r.Register(name, body)
	if err == nil {
		return
	}
	var capErr *CapacityError
	if errors.As(err, &capErr) {
		fmt.Fprintf(r.out,
			"Max number of tests exceeded. (current amount: %d)\n"+
				"Increase the max number using the --max-tests flag or the OP_HARNESS_MAX_TESTS environment variable.\n",
			capErr.Count)
	} else {
		fmt.Fprintf(r.out, "Failed to register test: %v\n", err)
	}
	r.exit(exitcodes.RuntimeErr)
}

// Entries returns a copy of the registered tests in registration order.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Len returns the number of registered tests.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Capacity returns the maximum number of tests.
func (r *Registry) Capacity() int {
	return r.capacity
}
