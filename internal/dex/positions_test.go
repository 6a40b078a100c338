package dex

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"poolScope/internal/model"
	"poolScope/internal/pricemath"
)

var (
	testPositionManager = common.HexToAddress("0x0000000000000000000000000000000000000f02")
	testOwner           = common.HexToAddress("0x0000000000000000000000000000000000000b01")
	testOtherOwner      = common.HexToAddress("0x0000000000000000000000000000000000000b02")
)

func testPositionInfos() []PositionInfo {
	return []PositionInfo{
		{
			Id:                       big.NewInt(7),
			Owner:                    testOwner,
			Token0:                   testToken0,
			Token1:                   testToken1,
			Index:                    0,
			Fee:                      big.NewInt(3000),
			Liquidity:                big.NewInt(42_000),
			TickLower:                big.NewInt(-600),
			TickUpper:                big.NewInt(600),
			TokensOwed0:              big.NewInt(1_500_000),
			TokensOwed1:              big.NewInt(25),
			FeeGrowthInside0LastX128: big.NewInt(11),
			FeeGrowthInside1LastX128: big.NewInt(12),
		},
		{
			Id:                       big.NewInt(8),
			Owner:                    testOtherOwner,
			Token0:                   testToken0,
			Token1:                   testToken1,
			Index:                    1,
			Fee:                      big.NewInt(500),
			Liquidity:                big.NewInt(1),
			TickLower:                big.NewInt(-10),
			TickUpper:                big.NewInt(10),
			TokensOwed0:              big.NewInt(0),
			TokensOwed1:              big.NewInt(0),
			FeeGrowthInside0LastX128: big.NewInt(0),
			FeeGrowthInside1LastX128: big.NewInt(0),
		},
	}
}

func TestListPositions(t *testing.T) {
	parsed, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}
	caller := newFakeCaller()
	caller.answer(t, testPositionManager, parsed, "getAllPositions", testPositionInfos())
	tokens, err := NewTokenMetaCacheFromList([]model.TokenMeta{
		{Address: testToken0.Hex(), Symbol: "AAA", Decimals: 6},
		{Address: testToken1.Hex(), Symbol: "BBB", Decimals: 6},
	})
	if err != nil {
		t.Fatalf("token cache: %v", err)
	}

	all, err := ListPositions(context.Background(), caller, testPositionManager, PositionOptions{Tokens: tokens})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("position count mismatch: %d", len(all))
	}

	mine, err := ListPositions(context.Background(), caller, testPositionManager, PositionOptions{Owner: testOwner, Tokens: tokens})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("owner filter mismatch: %d", len(mine))
	}
	got := mine[0]
	if got.ID != "7" || got.Owner != testOwner.Hex() || got.Token0.Symbol != "AAA" {
		t.Fatalf("identity mismatch: %+v", got)
	}
	wantShort := testOwner.Hex()[:6] + "..." + testOwner.Hex()[38:]
	if got.OwnerShort != wantShort {
		t.Fatalf("owner short mismatch: %s != %s", got.OwnerShort, wantShort)
	}
	if got.Fee != 3000 || got.FeeText != "0.30" {
		t.Fatalf("fee mismatch: %d %s", got.Fee, got.FeeText)
	}
	minPrice, maxPrice := pricemath.PriceRangeFromTicks(-600, 600)
	if got.MinPrice != minPrice || got.MaxPrice != maxPrice {
		t.Fatalf("price range mismatch: %v %v", got.MinPrice, got.MaxPrice)
	}
	if got.MinPriceText != "0.941767" || got.MaxPriceText != "1.0618" {
		t.Fatalf("price text mismatch: %s %s", got.MinPriceText, got.MaxPriceText)
	}
	if got.TokensOwed0 != "1500000" || got.TokensOwed0Text != "1.500000" || got.TokensOwed1Text != "0.000025" {
		t.Fatalf("owed mismatch: %+v", got)
	}
	if got.Liquidity != "42000" || got.FeeGrowthInside1LastX128 != "12" {
		t.Fatalf("state mismatch: %+v", got)
	}
}

func TestListPositionsRevert(t *testing.T) {
	if _, err := ListPositions(context.Background(), newFakeCaller(), testPositionManager, PositionOptions{}); err == nil {
		t.Fatalf("expected error when getAllPositions reverts")
	}
}

func TestBuildPositionRejectsWideTick(t *testing.T) {
	info := testPositionInfos()[0]
	info.TickUpper = big.NewInt(1 << 23)
	if _, err := BuildPosition(info, model.TokenMeta{}, model.TokenMeta{}); err == nil {
		t.Fatalf("expected int24 overflow")
	}
}
