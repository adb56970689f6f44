package registry

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-harness/exitcodes"
	"github.com/ethereum-optimism/infra/op-harness/runner"
)

func noop(*runner.T) {}

func names(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestRegisterPreservesOrder(t *testing.T) {
	r := New(10, WithLogger(log.NewLogger(log.DiscardHandler())))
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		require.NoError(t, r.Register(name, noop))
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, names(r.Entries()))
	assert.Equal(t, 3, r.Len())
}

func TestRegisterAllowsDuplicateNames(t *testing.T) {
	r := New(10)
	require.NoError(t, r.Register("Same", noop))
	require.NoError(t, r.Register("Same", noop))
	assert.Equal(t, []string{"Same", "Same"}, names(r.Entries()))
}

func TestRegisterRejectsNilBody(t *testing.T) {
	r := New(10)
	err := r.Register("Empty", nil)
	require.ErrorIs(t, err, ErrNilBody)
	assert.Equal(t, 0, r.Len())
}

func TestRegisterCapacity(t *testing.T) {
	r := New(2)
	require.NoError(t, r.Register("A", noop))
	require.NoError(t, r.Register("B", noop))

	err := r.Register("C", noop)
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 2, capErr.Capacity)
	assert.Equal(t, 2, capErr.Count)
	assert.Equal(t, []string{"A", "B"}, names(r.Entries()))
}

func TestDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New(0).Capacity())
	assert.Equal(t, DefaultCapacity, New(-5).Capacity())
	assert.Equal(t, 7, New(7).Capacity())
}

func TestDefaultCapacityOverride(t *testing.T) {
	defer func(prev string) { capacityOverride = prev }(capacityOverride)

	capacityOverride = "250"
	assert.Equal(t, 250, New(0).Capacity())

	capacityOverride = "not-a-number"
	assert.Equal(t, DefaultCapacity, New(0).Capacity())
}

func TestMustRegisterAtCapacityIsFatal(t *testing.T) {
	var out bytes.Buffer
	exitCode := -1
	r := New(1, WithFatalOutput(&out), WithExit(func(code int) { exitCode = code }))

	r.MustRegister("First", noop)
	assert.Equal(t, -1, exitCode)
	assert.Empty(t, out.String())

	r.MustRegister("Second", noop)
	assert.Equal(t, exitcodes.RuntimeErr, exitCode)
	assert.Contains(t, out.String(), "Max number of tests exceeded. (current amount: 1)")
	assert.Contains(t, out.String(), "--max-tests")
	assert.Equal(t, 1, r.Len())
}

func TestMustRegisterNilBodyIsFatal(t *testing.T) {
	var out bytes.Buffer
	exitCode := -1
	r := New(1, WithFatalOutput(&out), WithExit(func(code int) { exitCode = code }))

	r.MustRegister("Nil", nil)
	assert.Equal(t, exitcodes.RuntimeErr, exitCode)
	assert.Contains(t, out.String(), "Failed to register test")
}

func TestEntriesReturnsCopy(t *testing.T) {
	r := New(3)
	require.NoError(t, r.Register("A", noop))
	entries := r.Entries()
	entries[0].Name = "mutated"
	assert.Equal(t, "A", r.Entries()[0].Name)
}

func TestCollect(t *testing.T) {
	var entries []Entry
	for i := 0; i < 4; i++ {
		entries = append(entries, Entry{Name: fmt.Sprintf("T%d", i), Body: noop})
	}

	r, err := Collect(10, entries...)
	require.NoError(t, err)
	assert.Equal(t, []string{"T0", "T1", "T2", "T3"}, names(r.Entries()))

	_, err = Collect(3, entries...)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
}
