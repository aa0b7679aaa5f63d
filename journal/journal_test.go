package journal_test

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/journal"
	"github.com/bastionstake/bastion/kv"
	"github.com/bastionstake/bastion/vault"
)

var (
	admin = bastion.MustParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa")
	acc1  = bastion.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	acc2  = bastion.MustParseAddress("0xd3ae78222beadb038203be21ed5ce7c9b1bff602")
)

func newEvent(kind vault.EventKind, acc bastion.Address, amount int64, ts uint64) *vault.Event {
	return &vault.Event{
		Kind:      kind,
		Account:   acc,
		Amount:    big.NewInt(amount),
		Timestamp: ts,
	}
}

func TestJournalFilter(t *testing.T) {
	db, err := journal.NewMem()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// interleave two accounts and two kinds
	for i := range 10 {
		acc := acc1
		kind := vault.KindStaked
		if i%2 == 1 {
			acc = acc2
			kind = vault.KindUnstaked
		}
		if err := db.Append(newEvent(kind, acc, int64(100+i), uint64(1000+i))); err != nil {
			t.Fatal(err)
		}
	}

	ctx := context.Background()

	all, err := db.Filter(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 10, len(all))
	assert.Equal(t, uint64(1), all[0].Sequence)
	assert.Equal(t, uint64(10), all[9].Sequence)
	assert.Equal(t, int64(100), all[0].Amount.Int64())
	assert.Equal(t, acc1, all[0].Account)
	assert.False(t, all[0].ID.IsZero())
	assert.NotEqual(t, all[0].ID, all[1].ID)

	byAccount, err := db.Filter(ctx, &journal.Filter{
		CriteriaSet: []*journal.Criteria{{Account: &acc1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 5, len(byAccount))
	for _, r := range byAccount {
		assert.Equal(t, acc1, r.Account)
	}

	staked := vault.KindStaked
	unstaked := vault.KindUnstaked
	either, err := db.Filter(ctx, &journal.Filter{
		CriteriaSet: []*journal.Criteria{
			{Account: &acc1, Kind: &staked},
			{Account: &acc2, Kind: &unstaked},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 10, len(either))

	mismatched, err := db.Filter(ctx, &journal.Filter{
		CriteriaSet: []*journal.Criteria{{Account: &acc1, Kind: &unstaked}},
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 0, len(mismatched))

	bySeq, err := db.Filter(ctx, &journal.Filter{
		Range: &journal.Range{Unit: journal.Sequence, From: 3, To: 7},
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 5, len(bySeq))
	assert.Equal(t, uint64(3), bySeq[0].Sequence)

	byTime, err := db.Filter(ctx, &journal.Filter{
		Range: &journal.Range{Unit: journal.Time, From: 1008, To: 2000},
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 2, len(byTime))

	// criteria must not reach outside the range
	scoped, err := db.Filter(ctx, &journal.Filter{
		Range: &journal.Range{Unit: journal.Sequence, From: 1, To: 2},
		CriteriaSet: []*journal.Criteria{
			{Account: &acc1},
			{Account: &acc2},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 2, len(scoped))

	desc, err := db.Filter(ctx, &journal.Filter{Order: journal.DESC})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint64(10), desc[0].Sequence)

	paged, err := db.Filter(ctx, &journal.Filter{
		Options: &journal.Options{Offset: 2, Limit: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 3, len(paged))
	assert.Equal(t, uint64(3), paged[0].Sequence)
	assert.Equal(t, uint64(5), paged[2].Sequence)
}

func TestJournalRecordsAfter(t *testing.T) {
	db, err := journal.NewMem()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	assert.Equal(t, uint64(0), db.MaxSequence())

	for i := range 10 {
		if err := db.Append(newEvent(vault.KindStaked, acc1, int64(i), uint64(i))); err != nil {
			t.Fatal(err)
		}
	}
	assert.Equal(t, uint64(10), db.MaxSequence())

	recs, err := db.RecordsAfter(context.Background(), 7, 100)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 3, len(recs))
	assert.Equal(t, uint64(8), recs[0].Sequence)

	capped, err := db.RecordsAfter(context.Background(), 0, 4)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 4, len(capped))
}

func TestJournalTicker(t *testing.T) {
	db, err := journal.NewMem()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ticker := db.NewTicker()
	select {
	case <-ticker.C():
		t.Fatal("unexpected tick before append")
	default:
	}

	if err := db.Append(newEvent(vault.KindStaked, acc1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ticker.C():
	default:
		t.Fatal("expected tick after append")
	}
}

func TestJournalReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := journal.New(path)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, path, db.Path())
	for i := range 3 {
		if err := db.Append(newEvent(vault.KindStaked, acc1, int64(i), uint64(i))); err != nil {
			t.Fatal(err)
		}
	}
	db.Close()

	db, err = journal.New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	assert.Equal(t, uint64(3), db.MaxSequence())
	if err := db.Append(newEvent(vault.KindUnstaked, acc1, 9, 9)); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint64(4), db.MaxSequence())
}

func TestJournalFollowsVault(t *testing.T) {
	db, err := journal.NewMem()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	treasury := releaseFunc(func(_ bastion.Address, _ *big.Int) error { return nil })
	v, err := vault.New(kv.NewMem(), treasury, vault.Options{
		Admin:    admin,
		MinStake: big.NewInt(1),
	}, db)
	if err != nil {
		t.Fatal(err)
	}

	t0 := uint64(1735689600)
	if err := v.Stake(acc1, big.NewInt(36500), t0); err != nil {
		t.Fatal(err)
	}
	if err := v.DepositReserve(admin, big.NewInt(1000), t0); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Unstake(acc1, t0+90*86400); err != nil {
		t.Fatal(err)
	}

	recs, err := db.Filter(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %v", len(recs))
	}
	assert.Equal(t, vault.KindStaked, recs[0].Kind)
	assert.Equal(t, vault.KindReserveDeposited, recs[1].Kind)
	assert.Equal(t, vault.KindUnstaked, recs[2].Kind)

	assert.Equal(t, acc1, recs[2].Account)
	assert.Equal(t, int64(36500), recs[2].Amount.Int64())
	assert.Equal(t, int64(450), recs[2].Reward.Int64())
	assert.Equal(t, t0+90*86400, recs[2].Timestamp)
}

type releaseFunc func(to bastion.Address, amount *big.Int) error

func (f releaseFunc) Release(to bastion.Address, amount *big.Int) error {
	return f(to, amount)
}
