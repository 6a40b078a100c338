package dex

import (
	"context"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"poolScope/internal/model"
	"poolScope/internal/pricemath"
)

var (
	testPoolManager = common.HexToAddress("0x0000000000000000000000000000000000000f01")
	testToken0      = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	testToken1      = common.HexToAddress("0x0000000000000000000000000000000000000a02")
	testPool        = common.HexToAddress("0x0000000000000000000000000000000000000c01")
	testPoolIdle    = common.HexToAddress("0x0000000000000000000000000000000000000c02")
)

func testPoolInfos(t *testing.T) []PoolInfo {
	t.Helper()
	sqrt, err := pricemath.SqrtRatioAtTick(6932)
	if err != nil {
		t.Fatalf("sqrt ratio: %v", err)
	}
	return []PoolInfo{
		{
			Pool:         testPool,
			Token0:       testToken0,
			Token1:       testToken1,
			Index:        0,
			Fee:          big.NewInt(3000),
			TickLower:    big.NewInt(-600),
			TickUpper:    big.NewInt(600),
			Tick:         big.NewInt(6932),
			SqrtPriceX96: sqrt,
			Liquidity:    big.NewInt(1_000_000),
		},
		{
			Pool:         testPoolIdle,
			Token0:       testToken0,
			Token1:       testToken1,
			Index:        1,
			Fee:          big.NewInt(1234),
			TickLower:    big.NewInt(-120),
			TickUpper:    big.NewInt(120),
			Tick:         big.NewInt(0),
			SqrtPriceX96: big.NewInt(0),
			Liquidity:    big.NewInt(0),
		},
	}
}

func TestListPools(t *testing.T) {
	parsed, err := PoolManagerABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}
	caller := newFakeCaller()
	caller.answer(t, testPoolManager, parsed, "getAllPools", testPoolInfos(t))
	caller.answerERC20(t, testToken0, 6, "AAA")
	caller.answerERC20(t, testToken1, 6, "BBB")

	erc20, _ := ERC20ABI()
	caller.answer(t, testToken0, erc20, "balanceOf", big.NewInt(500))
	caller.answer(t, testToken1, erc20, "balanceOf", big.NewInt(900))

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snapshots, err := ListPools(context.Background(), caller, testPoolManager, ListOptions{
		ChainID:  8453,
		Tokens:   NewTokenMetaCache(),
		Balances: true,
		Now:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("snapshot count mismatch: %d", len(snapshots))
	}

	active := snapshots[0]
	if active.ChainID != 8453 || active.Address != testPool.Hex() {
		t.Fatalf("identity mismatch: %+v", active)
	}
	if active.Token0.Symbol != "AAA" || active.Token1.Symbol != "BBB" {
		t.Fatalf("token mismatch: %+v %+v", active.Token0, active.Token1)
	}
	if !active.Initialized || !active.TickConsistent {
		t.Fatalf("expected initialized consistent pool: %+v", active)
	}
	if math.Abs(active.Price-2.0000363238307948) > 1e-9 {
		t.Fatalf("price mismatch: %v", active.Price)
	}
	if active.PriceText != "2.0000" {
		t.Fatalf("price text mismatch: %s", active.PriceText)
	}
	if active.TickSpacing != 60 || active.Fee != 3000 {
		t.Fatalf("fee mismatch: %d/%d", active.Fee, active.TickSpacing)
	}
	if active.Balance0 != "500" || active.Balance1 != "900" {
		t.Fatalf("balance mismatch: %s/%s", active.Balance0, active.Balance1)
	}
	if active.ObservedAt != "2024-05-01T12:00:00Z" {
		t.Fatalf("observed at mismatch: %s", active.ObservedAt)
	}

	idle := snapshots[1]
	if idle.Initialized || idle.Price != 0 || idle.PriceText != "0" {
		t.Fatalf("expected uninitialized pool: %+v", idle)
	}
	if idle.TickSpacing != pricemath.DefaultTickSpacing {
		t.Fatalf("expected default spacing, got %d", idle.TickSpacing)
	}
}

func TestListPoolsRevert(t *testing.T) {
	if _, err := ListPools(context.Background(), newFakeCaller(), testPoolManager, ListOptions{}); err == nil {
		t.Fatalf("expected error when getAllPools reverts")
	}
}

func TestBuildSnapshotScalesDecimals(t *testing.T) {
	info := testPoolInfos(t)[0]
	snapshot, err := BuildSnapshot(info,
		model.TokenMeta{Address: testToken0.Hex(), Decimals: 18},
		model.TokenMeta{Address: testToken1.Hex(), Decimals: 6},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 2.0000363238307948e12
	if math.Abs(snapshot.Price-want)/want > 1e-12 {
		t.Fatalf("price mismatch: %v", snapshot.Price)
	}
	if math.Abs(snapshot.MinPrice-0.9417673586937543e12)/snapshot.MinPrice > 1e-9 {
		t.Fatalf("min price mismatch: %v", snapshot.MinPrice)
	}
}

func TestBuildSnapshotRejectsWideTick(t *testing.T) {
	info := testPoolInfos(t)[0]
	info.Tick = big.NewInt(1 << 23)
	if _, err := BuildSnapshot(info, model.TokenMeta{}, model.TokenMeta{}); err == nil {
		t.Fatalf("expected int24 overflow error")
	}
}

func TestBuildSnapshotFlagsTickMismatch(t *testing.T) {
	info := testPoolInfos(t)[0]
	info.Tick = big.NewInt(100)
	snapshot, err := BuildSnapshot(info, model.TokenMeta{}, model.TokenMeta{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.TickConsistent {
		t.Fatalf("expected tick mismatch to be flagged")
	}
}

func TestDiffSnapshot(t *testing.T) {
	cur := model.PoolSnapshot{Address: testPool.Hex(), Tick: 6932, Price: 2, Liquidity: "900"}

	fresh := DiffSnapshot(nil, cur)
	if fresh.Known || fresh.Tick != 6932 || fresh.PriceChangeText != "" {
		t.Fatalf("unexpected diff for unknown pool: %+v", fresh)
	}

	prev := model.PoolSnapshot{Address: testPool.Hex(), Tick: 6000, Price: 1.6, Liquidity: "1000", ObservedAt: "2024-05-01T12:00:00Z"}
	diff := DiffSnapshot(&prev, cur)
	if !diff.Known || diff.TickDelta != 932 || diff.PrevTick != 6000 {
		t.Fatalf("tick diff mismatch: %+v", diff)
	}
	if diff.PriceChangeText != "25.00" || diff.PrevLiquidity != "1000" || diff.PrevObservedAt != prev.ObservedAt {
		t.Fatalf("diff mismatch: %+v", diff)
	}
}
