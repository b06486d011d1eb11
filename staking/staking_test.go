// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/instruction"
	"github.com/nezha-labs/staking/lvldb"
	"github.com/nezha-labs/staking/staking/draw"
	"github.com/nezha-labs/staking/staking/epoch"
	"github.com/nezha-labs/staking/staking/reverts"
	"github.com/nezha-labs/staking/staking/updates"
	"github.com/nezha-labs/staking/staking/winners"
)

func usdc(s string) fixedpoint.USDC { return fixedpoint.MustParse[fixedpoint.D6](s) }

func addr(i int) common.Address { return common.BytesToAddress([]byte{0xee, byte(i)}) }

var (
	superAdmin = addr(1)
	admin      = addr(2)
	investor   = addr(3)
	alice      = addr(10)
	bob        = addr(11)
	carol      = addr(12)

	ticketsHash = common.HexToHash("0x5eed")
)

func testCfg() epoch.YieldSplitCfg {
	return epoch.YieldSplitCfg{
		Jackpot: usdc("100000"),
		Insurance: epoch.InsuranceCfg{
			Premium:     usdc("3"),
			Probability: fixedpoint.MustParse[fixedpoint.D18]("0.0000000001"),
		},
		TreasuryRatio:   fixedpoint.MustParse[fixedpoint.D3]("0.5"),
		Tier2PrizeShare: 2,
		Tier3PrizeShare: 1,
	}
}

type harness struct {
	t      *testing.T
	s      *Staking
	vrf    *ecdsa.PrivateKey
	vrfKey common.Address
	now    uint64
}

func newHarness(t *testing.T) *harness {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	h := &harness{
		t:      t,
		s:      New(db, epoch.DefaultPolicy()),
		vrf:    key,
		vrfKey: crypto.PubkeyToAddress(key.PublicKey),
		now:    1_000,
	}
	require.NoError(t, h.exec(superAdmin, &instruction.Init{Admin: admin, Investor: investor, VRF: h.vrfKey}))
	return h
}

func (h *harness) exec(signer common.Address, ins instruction.Instruction) error {
	h.now++
	return h.s.Execute(&Call{Signers: []common.Address{signer}, Timestamp: h.now, Instruction: ins})
}

func (h *harness) must(signer common.Address, ins instruction.Instruction) {
	h.t.Helper()
	require.NoError(h.t, h.exec(signer, ins))
}

func (h *harness) latest() *epoch.LatestEpoch {
	l, err := h.s.LatestEpoch()
	require.NoError(h.t, err)
	return l
}

func (h *harness) deposit(owner common.Address, amount string) {
	h.must(owner, &instruction.RequestStakeUpdate{Direction: updates.Deposit, Amount: usdc(amount)})
	h.must(admin, &instruction.ApproveStakeUpdate{Owner: owner, Amount: usdc(amount)})
}

func (h *harness) proof(epochIndex uint64, key *ecdsa.PrivateKey) *instruction.SetWinningCombination {
	_, proof, err := draw.Prove(key, draw.Alpha(epochIndex, ticketsHash))
	require.NoError(h.t, err)
	return &instruction.SetWinningCombination{
		Epoch:     epochIndex,
		PublicKey: crypto.CompressPubkey(&key.PublicKey),
		Proof:     proof,
	}
}

// runEpoch drives an epoch to Finalising with the draw set.
func (h *harness) runEpoch(returned string) *epoch.Epoch {
	index := h.latest().Index + 1
	h.must(admin, &instruction.CreateEpoch{ExpectedEndAt: h.now + 100, Cfg: testCfg()})
	h.must(investor, &instruction.YieldWithdrawByInvestor{
		Epoch:   index,
		Tickets: epoch.TicketsInfo{Count: 100_000, URL: "https://tickets/1", Hash: ticketsHash},
	})
	h.must(h.vrfKey, h.proof(index, h.vrf))
	h.must(investor, &instruction.YieldDepositByInvestor{Epoch: index, Amount: usdc(returned)})
	ep, err := h.s.Epoch(index)
	require.NoError(h.t, err)
	return ep
}

func TestInit(t *testing.T) {
	h := newHarness(t)

	l := h.latest()
	assert.Equal(t, epoch.StatusEnded, l.Status)
	assert.Equal(t, superAdmin, l.Keys.SuperAdmin)
	assert.Equal(t, "1.000000000000000000", l.Rate.String())

	err := h.exec(superAdmin, &instruction.Init{Admin: admin, Investor: investor, VRF: h.vrfKey})
	assert.ErrorIs(t, err, reverts.New(reverts.ProgramAlreadyInitialized))

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	s := New(db, epoch.DefaultPolicy())
	err = s.Execute(&Call{Signers: []common.Address{superAdmin}, Instruction: &instruction.Init{Admin: admin, VRF: admin}})
	assert.ErrorIs(t, err, reverts.InvalidConstant(reverts.ConstInvestorKey))

	err = s.Execute(&Call{Signers: []common.Address{alice}, Instruction: &instruction.CreateEpoch{}})
	assert.ErrorIs(t, err, reverts.InvalidAccount(reverts.RecordLatestEpoch))
}

func TestSigners(t *testing.T) {
	h := newHarness(t)

	err := h.exec(alice, &instruction.CreateEpoch{ExpectedEndAt: h.now + 100, Cfg: testCfg()})
	assert.ErrorIs(t, err, reverts.MissingSignature(reverts.RoleAdmin))

	err = h.s.Execute(&Call{Instruction: &instruction.RequestStakeUpdate{Amount: usdc("1")}})
	assert.ErrorIs(t, err, reverts.MissingSignature(reverts.RoleOwner))

	err = h.exec(admin, &instruction.RotateKey{Target: reverts.RoleAdmin, Key: alice})
	assert.ErrorIs(t, err, reverts.MissingSignature(reverts.RoleSuperAdmin))

	err = h.exec(admin, &instruction.FundJackpot{Epoch: 1})
	assert.ErrorIs(t, err, reverts.MissingSignature(reverts.RoleInvestor))

	// several signers may co-sign one call
	err = h.s.Execute(&Call{
		Signers:     []common.Address{alice, admin},
		Timestamp:   h.now,
		Instruction: &instruction.CreateEpoch{ExpectedEndAt: h.now + 100, Cfg: testCfg()},
	})
	assert.NoError(t, err)
}

func TestStakeUpdatesAcrossEpochs(t *testing.T) {
	h := newHarness(t)

	h.deposit(alice, "1000")
	req, found, err := h.s.StakeUpdate(alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, updates.Approved, req.State)

	queued, err := h.s.QueuedUpdates()
	require.NoError(t, err)
	assert.Equal(t, []common.Address{alice}, queued)

	err = h.exec(admin, &instruction.CreateEpoch{ExpectedEndAt: h.now + 100, Cfg: testCfg()})
	assert.ErrorIs(t, err, reverts.New(reverts.StakeUpdateQueueNotDrained))

	h.must(admin, &instruction.CompleteStakeUpdate{Owner: alice})
	b, err := h.s.Stake(alice)
	require.NoError(t, err)
	assert.Equal(t, "1000.000000", b.Amount.String())
	assert.Equal(t, "1000.000000", h.latest().TotalShares.String())

	h.must(admin, &instruction.CreateEpoch{ExpectedEndAt: h.now + 100, Cfg: testCfg()})

	// while running deposits apply on approval and withdrawals on request
	h.deposit(bob, "500")
	h.must(alice, &instruction.RequestStakeUpdate{Direction: updates.Withdraw, Amount: usdc("400")})
	assert.Equal(t, "1100.000000", h.latest().TotalShares.String())

	err = h.exec(alice, &instruction.RequestStakeUpdate{Direction: updates.Withdraw, Amount: usdc("601")})
	assert.ErrorIs(t, err, reverts.New(reverts.NotEnoughStakeBalance))

	// a pending deposit can be cancelled by the admin
	h.must(carol, &instruction.RequestStakeUpdate{Direction: updates.Deposit, Amount: usdc("5")})
	err = h.exec(bob, &instruction.CancelStakeUpdate{Owner: carol, Amount: usdc("5")})
	assert.ErrorIs(t, err, reverts.MissingSignature(reverts.RoleOwner))
	h.must(admin, &instruction.CancelStakeUpdate{Owner: carol, Amount: usdc("5")})
	req, _, err = h.s.StakeUpdate(carol)
	require.NoError(t, err)
	assert.Equal(t, updates.Rejected, req.State)

	// carol holds no shares and is left out
	list, err := h.s.Stakes()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, alice, list[0].Stake.Owner)
	assert.Equal(t, "600.000000", list[0].Amount.String())
	assert.Equal(t, bob, list[1].Stake.Owner)
	assert.Equal(t, "500.000000", list[1].Amount.String())
}

func TestEpochLifecycle(t *testing.T) {
	h := newHarness(t)
	h.deposit(alice, "1000")
	h.must(admin, &instruction.CompleteStakeUpdate{Owner: alice})

	err := h.exec(admin, &instruction.CreateEpoch{ExpectedEndAt: h.now, Cfg: testCfg()})
	assert.ErrorIs(t, err, reverts.New(reverts.EpochExpectedEndIsInPast))

	bad := testCfg()
	bad.Insurance.Premium = usdc("10")
	err = h.exec(admin, &instruction.CreateEpoch{ExpectedEndAt: h.now + 100, Cfg: bad})
	assert.ErrorIs(t, err, reverts.InvalidConstant(reverts.ConstInsurancePremium))

	ep := h.runEpoch("2000")
	require.NotNil(t, ep.Returns)
	require.NotNil(t, ep.Draw)
	assert.Equal(t, epoch.StatusFinalising, ep.Status)
	assert.Equal(t, "1000.000000", ep.Investment.TotalInvested.String())
	assert.True(t, ep.Returns.DrawEnabled)
	assert.Equal(t, "3.000000", ep.Returns.Insurance.String())
	assert.Equal(t, "498.500000", ep.Returns.Treasury.String())
	assert.Equal(t, "332.333333", ep.Returns.Tier2Prize.String())
	assert.Equal(t, "166.166667", ep.Returns.Tier3Prize.String())
	assert.NoError(t, ep.Draw.Combination.Validate())

	vaults, err := h.s.Vaults()
	require.NoError(t, err)
	assert.Equal(t, "498.500000", vaults.Treasury.String())
	assert.Equal(t, "3.000000", vaults.Insurance.String())

	l := h.latest()
	assert.Equal(t, epoch.StatusFinalising, l.Status)
	assert.Equal(t, "1.000000000000000000", l.Rate.String())
	assert.Equal(t, "332.333333", l.Pending.Tier2Prize.String())

	// the combination is accepted once
	err = h.exec(h.vrfKey, h.proof(1, h.vrf))
	assert.ErrorIs(t, err, reverts.New(reverts.WinningCombinationAlreadyPublished))

	win := ep.Draw.Combination
	tier2, tier3 := win, win
	tier2[5] = win[5]%draw.BonusMax + 1
	tier3[4] = win[4]%draw.MainMax + 1
	tickets := []winners.Ticket{
		{Owner: carol, Combination: tier3},
		{Owner: alice, Combination: win},
		{Owner: bob, Combination: tier2},
		{Owner: carol, Combination: tier3},
	}
	tiers, list := winners.Tally(tickets, win)
	h.must(admin, &instruction.CreateEpochWinnersMeta{Epoch: 1, Tier1: tiers[0], Tier2: tiers[1], Tier3: tiers[2]})
	assert.Equal(t, epoch.StatusFinalising, h.latest().Status)

	for i, page := range winners.Paginate(list) {
		h.must(admin, &instruction.PublishWinners{Epoch: 1, Page: uint32(i), Winners: page})
	}

	l = h.latest()
	assert.Equal(t, epoch.StatusEnded, l.Status)
	assert.True(t, l.Pending.Tier2Prize.IsZero())
	assert.True(t, l.Pending.Tier3Prize.IsZero())
	ep, err = h.s.Epoch(1)
	require.NoError(t, err)
	assert.Equal(t, epoch.StatusEnded, ep.Status)
	assert.NotZero(t, ep.EndAt)

	meta, found, err := h.s.WinnersMeta(1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, winners.Completed, meta.Status)
	assert.Equal(t, uint32(3), meta.TotalWinners)

	page, found, err := h.s.WinnersPage(1, 0)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, page.Winners, 3)
	assert.Equal(t, alice, page.Winners[0].Owner)
	assert.Equal(t, "332.333333", page.Winners[1].Prize.String())
	assert.Equal(t, "166.166667", page.Winners[2].Prize.String())

	// prizes
	h.must(carol, &instruction.ClaimWinning{Epoch: 1, Page: 0, Index: 2, Tier: 3})
	err = h.exec(carol, &instruction.ClaimWinning{Epoch: 1, Page: 0, Index: 2, Tier: 3})
	assert.ErrorIs(t, err, reverts.New(reverts.PrizeAlreadyClaimed))
	err = h.exec(bob, &instruction.ClaimWinning{Epoch: 1, Page: 0, Index: 2, Tier: 3})
	assert.ErrorIs(t, err, reverts.New(reverts.InvalidPrizeClaim))

	err = h.exec(alice, &instruction.ClaimWinning{Epoch: 1, Page: 0, Index: 0, Tier: 1})
	assert.ErrorIs(t, err, reverts.New(reverts.JackpotNotClaimableYet))
	h.must(investor, &instruction.FundJackpot{Epoch: 1})
	err = h.exec(investor, &instruction.FundJackpot{Epoch: 1})
	assert.ErrorIs(t, err, reverts.New(reverts.JackpotAlreadyClaimable))
	h.must(alice, &instruction.ClaimWinning{Epoch: 1, Page: 0, Index: 0, Tier: 1})

	b, err := h.s.Stake(alice)
	require.NoError(t, err)
	assert.Equal(t, "101000.000000", b.Amount.String())
	b, err = h.s.Stake(carol)
	require.NoError(t, err)
	assert.Equal(t, "166.166667", b.Amount.String())
	assert.Equal(t, "101166.166667", h.latest().TotalShares.String())

	// next epoch starts from the ended one
	h.must(admin, &instruction.CreateEpoch{ExpectedEndAt: h.now + 100, Cfg: testCfg()})
	assert.Equal(t, uint64(2), h.latest().Index)
}

func TestLossWithoutReserveIsAtomic(t *testing.T) {
	h := newHarness(t)
	h.deposit(alice, "1000")
	h.must(admin, &instruction.CompleteStakeUpdate{Owner: alice})
	h.must(admin, &instruction.CreateEpoch{ExpectedEndAt: h.now + 100, Cfg: testCfg()})
	h.must(investor, &instruction.YieldWithdrawByInvestor{
		Epoch:   1,
		Tickets: epoch.TicketsInfo{Count: 100_000, URL: "https://tickets/1", Hash: ticketsHash},
	})
	before := h.latest()

	err := h.exec(investor, &instruction.YieldDepositByInvestor{Epoch: 1, Amount: usdc("900")})
	assert.ErrorIs(t, err, reverts.New(reverts.InsuranceReserveShortfall))

	assert.Equal(t, before, h.latest())
	ep, err := h.s.Epoch(1)
	require.NoError(t, err)
	assert.Nil(t, ep.Returns)
	assert.Equal(t, epoch.StatusYielding, ep.Status)
	vaults, err := h.s.Vaults()
	require.NoError(t, err)
	assert.True(t, vaults.Treasury.IsZero())

	err = h.exec(investor, &instruction.YieldDepositByInvestor{Epoch: 2, Amount: usdc("900")})
	assert.ErrorIs(t, err, reverts.InvalidAccount(reverts.RecordEpoch))
}

func TestEmptyEpoch(t *testing.T) {
	h := newHarness(t)
	h.must(admin, &instruction.CreateEpoch{ExpectedEndAt: h.now + 100, Cfg: testCfg()})
	h.must(investor, &instruction.YieldWithdrawByInvestor{
		Epoch:   1,
		Tickets: epoch.TicketsInfo{Count: 0, URL: "https://tickets/1", Hash: ticketsHash},
	})
	h.must(investor, &instruction.YieldDepositByInvestor{Epoch: 1, Amount: usdc("0")})

	ep, err := h.s.Epoch(1)
	require.NoError(t, err)
	assert.False(t, ep.DrawEnabled())

	h.must(admin, &instruction.CreateEpochWinnersMeta{Epoch: 1})
	assert.Equal(t, epoch.StatusEnded, h.latest().Status)

	err = h.exec(investor, &instruction.FundJackpot{Epoch: 1})
	assert.ErrorIs(t, err, reverts.New(reverts.NoPrizeToClaim))
}

func TestWinningCombinationChecks(t *testing.T) {
	h := newHarness(t)
	h.must(admin, &instruction.CreateEpoch{ExpectedEndAt: h.now + 100, Cfg: testCfg()})

	err := h.exec(h.vrfKey, h.proof(1, h.vrf))
	assert.ErrorIs(t, err, reverts.InvalidEpochStatus(epoch.StatusYielding, epoch.StatusRunning))

	h.must(investor, &instruction.YieldWithdrawByInvestor{
		Epoch:   1,
		Tickets: epoch.TicketsInfo{Count: 10, URL: "https://tickets/1", Hash: ticketsHash},
	})

	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	err = h.exec(h.vrfKey, h.proof(1, other))
	assert.ErrorIs(t, err, reverts.InvalidConstant(reverts.ConstVRFKey))

	forged := h.proof(1, h.vrf)
	forged.Proof[len(forged.Proof)-1] ^= 0xff
	err = h.exec(h.vrfKey, forged)
	assert.ErrorIs(t, err, reverts.New(reverts.InvalidWinningCombination))

	// a proof for another epoch does not verify against this one
	stale := h.proof(2, h.vrf)
	stale.Epoch = 1
	err = h.exec(h.vrfKey, stale)
	assert.ErrorIs(t, err, reverts.New(reverts.InvalidWinningCombination))

	h.must(h.vrfKey, h.proof(1, h.vrf))
}

func TestAdmin(t *testing.T) {
	h := newHarness(t)
	h.deposit(alice, "1000")
	h.must(admin, &instruction.CompleteStakeUpdate{Owner: alice})
	h.runEpoch("2000")

	err := h.exec(superAdmin, &instruction.WithdrawVault{Vault: epoch.VaultTreasury, Amount: usdc("500")})
	assert.ErrorIs(t, err, reverts.New(reverts.InsufficientBalance))
	h.must(superAdmin, &instruction.WithdrawVault{Vault: epoch.VaultTreasury, Amount: usdc("498.5")})
	h.must(superAdmin, &instruction.WithdrawVault{Vault: epoch.VaultInsurance, Amount: usdc("1")})
	vaults, err := h.s.Vaults()
	require.NoError(t, err)
	assert.True(t, vaults.Treasury.IsZero())
	assert.Equal(t, "2.000000", vaults.Insurance.String())

	err = h.exec(superAdmin, &instruction.RotateKey{Target: reverts.RoleAdmin})
	assert.ErrorIs(t, err, reverts.InvalidConstant(reverts.ConstAdminKey))
	err = h.exec(superAdmin, &instruction.RotateKey{Target: reverts.RoleOwner, Key: bob})
	assert.ErrorIs(t, err, reverts.New(reverts.InvalidInstruction))

	h.must(superAdmin, &instruction.RotateKey{Target: reverts.RoleAdmin, Key: bob})
	err = h.exec(admin, &instruction.CreateEpochWinnersMeta{Epoch: 1})
	assert.ErrorIs(t, err, reverts.MissingSignature(reverts.RoleAdmin))
	assert.Equal(t, bob, h.latest().Keys.Admin)
}
