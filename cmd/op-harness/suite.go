package main

import (
	harness "github.com/ethereum-optimism/infra/op-harness"
	"github.com/ethereum-optimism/infra/op-harness/check"
	"github.com/ethereum-optimism/infra/op-harness/registry"
)

type account struct {
	balance int
}

// ledger is rebuilt before every test and dropped after it.
type ledger struct {
	accounts map[string]*account
}

var fixture *ledger

func setUp() {
	fixture = &ledger{accounts: map[string]*account{
		"alice": {balance: 2},
	}}
}

func tearDown() {
	fixture = nil
}

// demoSuite has one passing test, one failing check and one invalid memory
// access. The run reports 1 passed and 2 failed.
func demoSuite() harness.Suite {
	return harness.Suite{
		Label: harness.CallerLabel(0),
		Register: func(r *registry.Registry) {
			r.MustRegister("Test1", func(t *harness.T) {
				check.Equal(t, 1, 1)
			})
			r.MustRegister("Test2", func(t *harness.T) {
				check.Equal(t, 3, fixture.accounts["alice"].balance)
			})
			r.MustRegister("Test3", func(t *harness.T) {
				check.Equal(t, 0, fixture.accounts["bob"].balance)
			})
		},
		SetUp:    setUp,
		TearDown: tearDown,
	}
}
