package vault

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/kv"
)

// 2025-01-01 00:00:00 UTC
const t0 = uint64(1735689600)

var (
	admin = bastion.MustParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa")
	acc1  = bastion.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	acc2  = bastion.MustParseAddress("0xd3ae78222beadb038203be21ed5ce7c9b1bff602")
	acc3  = bastion.MustParseAddress("0x733b7269443c70de16bbf9b0615307884bcc5636")
)

func days(n uint64) uint64 {
	return n * bastion.DaySeconds
}

// testTreasury records releases and lets tests hook the release step.
type testTreasury struct {
	released  map[bastion.Address]*big.Int
	onRelease func(to bastion.Address, amount *big.Int) error
}

func newTestTreasury() *testTreasury {
	return &testTreasury{released: make(map[bastion.Address]*big.Int)}
}

func (tr *testTreasury) Release(to bastion.Address, amount *big.Int) error {
	if tr.onRelease != nil {
		if err := tr.onRelease(to, amount); err != nil {
			return err
		}
	}
	total, ok := tr.released[to]
	if !ok {
		total = new(big.Int)
	}
	tr.released[to] = new(big.Int).Add(total, amount)
	return nil
}

func (tr *testTreasury) releasedTo(addr bastion.Address) *big.Int {
	if total, ok := tr.released[addr]; ok {
		return total
	}
	return new(big.Int)
}

func newTestVault(t *testing.T, notifiers ...Notifier) (*Vault, *testTreasury) {
	treasury := newTestTreasury()
	v, err := New(kv.NewMem(), treasury, Options{
		Admin:    admin,
		MinStake: big.NewInt(1),
	}, notifiers...)
	require.NoError(t, err)
	return v, treasury
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	vault *Vault

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(vault *Vault) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), vault: vault}
}

func (ts *TestSequence) AddFunc(f TestFunc) *TestSequence {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.funcs = append(ts.funcs, f)
	return ts
}

func (ts *TestSequence) Stake(addr bastion.Address, amount *big.Int, now uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.vault.Stake(addr, amount, now); err != nil {
			t.Fatalf("failed to stake for %s: %v", addr, err)
		}
		t.Logf("staked %s for %s", amount, addr)
	})
}

func (ts *TestSequence) AddStake(addr bastion.Address, amount *big.Int, now uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.vault.AddStake(addr, amount, now); err != nil {
			t.Fatalf("failed to add stake for %s: %v", addr, err)
		}
		t.Logf("added stake %s for %s", amount, addr)
	})
}

func (ts *TestSequence) Unstake(addr bastion.Address, now uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		payout, err := ts.vault.Unstake(addr, now)
		if err != nil {
			t.Fatalf("failed to unstake for %s: %v", addr, err)
		}
		t.Logf("unstaked %s: principal %s, reward %s", addr, payout.Principal, payout.Reward)
	})
}

func (ts *TestSequence) DepositReserve(amount *big.Int, now uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.vault.DepositReserve(admin, amount, now); err != nil {
			t.Fatalf("failed to deposit reserve: %v", err)
		}
		t.Logf("deposited reserve %s", amount)
	})
}

func (ts *TestSequence) Run(t *testing.T) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, f := range ts.funcs {
		f(t)
	}
}

type StakeAssertions struct {
	vault *Vault
	addr  bastion.Address
	now   uint64

	principal   *big.Int
	reward      *big.Int
	depositTime *uint64
}

func AssertStake(vault *Vault, addr bastion.Address, now uint64) *StakeAssertions {
	return &StakeAssertions{vault: vault, addr: addr, now: now}
}

func (sa *StakeAssertions) Principal(expected *big.Int) *StakeAssertions {
	sa.principal = expected
	return sa
}

func (sa *StakeAssertions) Reward(expected *big.Int) *StakeAssertions {
	sa.reward = expected
	return sa
}

func (sa *StakeAssertions) DepositTime(expected uint64) *StakeAssertions {
	sa.depositTime = &expected
	return sa
}

func (sa *StakeAssertions) Assert(t *testing.T) {
	info, err := sa.vault.StakeOf(sa.addr, sa.now)
	assert.NoError(t, err, "failed to get stake of %s", sa.addr)

	if sa.principal != nil {
		assert.Equal(t, 0, sa.principal.Cmp(info.Principal),
			"account %s principal mismatch: want %s, got %s", sa.addr, sa.principal, info.Principal)
	}
	if sa.reward != nil {
		assert.Equal(t, 0, sa.reward.Cmp(info.Reward),
			"account %s reward mismatch: want %s, got %s", sa.addr, sa.reward, info.Reward)
	}
	if sa.depositTime != nil {
		assert.Equal(t, *sa.depositTime, info.DepositTime, "account %s deposit time mismatch", sa.addr)
	}
}

// recordingNotifier captures events in emit order.
type recordingNotifier struct {
	events []*Event
}

func (r *recordingNotifier) Notify(ev *Event) {
	r.events = append(r.events, ev)
}
