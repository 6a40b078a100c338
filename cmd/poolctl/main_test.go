package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"poolScope/internal/api"
	"poolScope/internal/dex"
	"poolScope/internal/model"
	"poolScope/internal/pricemath"
)

const testTokensYAML = `
tokens:
  - address: "0x1000000000000000000000000000000000000001"
    symbol: LOW
    decimals: 18
  - address: "0x2000000000000000000000000000000000000002"
    symbol: HIGH
    decimals: 18
  - address: "0x6000000000000000000000000000000000000006"
    symbol: USDC
    decimals: 6
`

func writeTokensConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poolctl.yaml")
	if err := os.WriteFile(path, []byte(testTokensYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--log-level=error"}, args...))
	err := root.Execute()
	return out.Bytes(), err
}

func TestTickCommand(t *testing.T) {
	raw, err := execute(t, "tick", "2", "--fee", "500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got api.TickResult
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Tick != 6932 || got.TickSpacing != 10 || got.RoundedTick != 6930 {
		t.Fatalf("tick output mismatch: %+v", got)
	}
}

func TestTickCommandRejectsZero(t *testing.T) {
	for _, arg := range []string{"0", "Inf", "NaN"} {
		if _, err := execute(t, "tick", arg); !errors.Is(err, pricemath.ErrInvalidArgument) {
			t.Fatalf("%s: expected ErrInvalidArgument, got %v", arg, err)
		}
	}
}

func TestRangeCommandRejectsWideSpacing(t *testing.T) {
	_, err := execute(t, "range", "1", "--range-percent", "10", "--spacing", "1000000")
	if !errors.Is(err, pricemath.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestPriceCommand(t *testing.T) {
	raw, err := execute(t, "price", "--", "-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got api.PriceResult
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Tick != -1 || got.SqrtPriceX96 != "79224201403219477170569942574" {
		t.Fatalf("price output mismatch: %+v", got)
	}
}

func TestSqrtCommand(t *testing.T) {
	raw, err := execute(t, "sqrt", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got api.SqrtResult
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.SqrtPriceX96 != "112045541949572279837463876454" {
		t.Fatalf("sqrt output mismatch: %+v", got)
	}

	raw, err = execute(t, "sqrt", "--decode", "79228162514264337593543950336")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Price != 1 || got.Tick != 0 {
		t.Fatalf("decode output mismatch: %+v", got)
	}
}

func TestRangeCommand(t *testing.T) {
	raw, err := execute(t, "range", "1", "--range-percent", "10", "--spacing", "60")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got api.RangeResult
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.TickLower != -1080 || got.TickUpper != 960 {
		t.Fatalf("range output mismatch: %+v", got)
	}
}

func TestValidateCommand(t *testing.T) {
	raw, err := execute(t, "validate", "--spacing", "60", "--", "-60", "120")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got api.ValidateResult
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if !got.Valid {
		t.Fatalf("expected valid range: %+v", got)
	}

	raw, err = execute(t, "validate", "--spacing", "60", "--", "-50", "120")
	if !errors.Is(err, pricemath.ErrNotAlignedToSpacing) {
		t.Fatalf("expected ErrNotAlignedToSpacing, got %v", err)
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Valid || !strings.Contains(got.Reason, "multiples of 60") {
		t.Fatalf("expected invalid range: %+v", got)
	}
}

func TestCreatePoolCommand(t *testing.T) {
	raw, err := execute(t, "create-pool",
		"--config", writeTokensConfig(t),
		"--pool-manager", "0x4000000000000000000000000000000000000004",
		"--token-a", "0x1000000000000000000000000000000000000001",
		"--token-b", "0x2000000000000000000000000000000000000002",
		"--price", "1",
		"--fee", "10000",
		"--full-range",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got model.CreatePoolPlan
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.TickLower != -887200 || got.TickUpper != 887200 || got.SqrtPriceX96 != "79228162514264337593543950336" {
		t.Fatalf("plan mismatch: %+v", got)
	}
	if !strings.HasPrefix(got.Tx.Data, "0x") || got.Tx.To != "0x4000000000000000000000000000000000000004" {
		t.Fatalf("tx mismatch: %+v", got.Tx)
	}
}

func TestCreatePoolCommandScalesConfiguredDecimals(t *testing.T) {
	raw, err := execute(t, "create-pool",
		"--config", writeTokensConfig(t),
		"--pool-manager", "0x4000000000000000000000000000000000000004",
		"--token-a", "LOW",
		"--token-b", "USDC",
		"--price", "1",
		"--full-range",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got model.CreatePoolPlan
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want, _ := pricemath.PriceToSqrtPriceX96(pricemath.AdjustForDecimals(1, 6, 18))
	if got.SqrtPriceX96 != want.String() {
		t.Fatalf("sqrt price mismatch: %s != %s", got.SqrtPriceX96, want)
	}
}

func TestCreatePoolCommandRejectsUnknownToken(t *testing.T) {
	_, err := execute(t, "create-pool",
		"--pool-manager", "0x4000000000000000000000000000000000000004",
		"--token-a", "0x1000000000000000000000000000000000000001",
		"--token-b", "0x7000000000000000000000000000000000000007",
		"--price", "1",
	)
	if !errors.Is(err, errUnknownToken) {
		t.Fatalf("expected errUnknownToken, got %v", err)
	}
}

func TestCreatePoolCommandRequiresManager(t *testing.T) {
	if _, err := execute(t, "create-pool", "--price", "1"); err == nil {
		t.Fatalf("expected error without pool manager")
	}
}

func TestSwapCommandOffline(t *testing.T) {
	raw, err := execute(t, "swap",
		"--config", writeTokensConfig(t),
		"--swap-router", "0x4000000000000000000000000000000000000004",
		"--token-in", "0x2000000000000000000000000000000000000002",
		"--token-out", "0x1000000000000000000000000000000000000001",
		"--amount-in", "1.5",
		"--quoted-out", "2",
		"--recipient", "0x3000000000000000000000000000000000000003",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got model.SwapPlan
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.ZeroForOne || got.AmountIn != "1500000000000000000" || got.AmountOutMinimum != "1990000000000000000" {
		t.Fatalf("swap plan mismatch: %+v", got)
	}
}

func TestSwapExactOutCommandOffline(t *testing.T) {
	raw, err := execute(t, "swap-exact-out",
		"--config", writeTokensConfig(t),
		"--swap-router", "0x4000000000000000000000000000000000000004",
		"--token-in", "LOW",
		"--token-out", "USDC",
		"--amount-out", "2",
		"--quoted-in", "1",
		"--slippage", "1",
		"--recipient", "0x3000000000000000000000000000000000000003",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got model.ExactOutputSwapPlan
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if !got.ZeroForOne || got.AmountOut != "2000000" || got.AmountInMaximum != "1010000000000000000" {
		t.Fatalf("swap plan mismatch: %+v", got)
	}
}

func TestSwapExactOutCommandNeedsQuote(t *testing.T) {
	_, err := execute(t, "swap-exact-out",
		"--config", writeTokensConfig(t),
		"--swap-router", "0x4000000000000000000000000000000000000004",
		"--token-in", "LOW",
		"--token-out", "USDC",
		"--amount-out", "2",
		"--recipient", "0x3000000000000000000000000000000000000003",
	)
	if err == nil || !strings.Contains(err.Error(), "--quoted-in") {
		t.Fatalf("expected missing quote error, got %v", err)
	}
}

func TestBurnAndCollectCommands(t *testing.T) {
	raw, err := execute(t, "burn", "7", "--position-manager", "0x4000000000000000000000000000000000000004")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var burn model.BurnPlan
	if err := json.Unmarshal(raw, &burn); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if burn.PositionID != "7" || !strings.HasPrefix(burn.Tx.Data, "0x") {
		t.Fatalf("burn plan mismatch: %+v", burn)
	}

	raw, err = execute(t, "collect", "7",
		"--position-manager", "0x4000000000000000000000000000000000000004",
		"--recipient", "0x3000000000000000000000000000000000000003",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var collect model.CollectPlan
	if err := json.Unmarshal(raw, &collect); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if collect.Recipient != "0x3000000000000000000000000000000000000003" {
		t.Fatalf("collect plan mismatch: %+v", collect)
	}

	if _, err := execute(t, "burn", "abc", "--position-manager", "0x4000000000000000000000000000000000000004"); err == nil {
		t.Fatalf("expected error for bad position id")
	}
}

func TestApproveCommand(t *testing.T) {
	raw, err := execute(t, "approve",
		"--config", writeTokensConfig(t),
		"--token", "USDC",
		"--spender", "router",
		"--swap-router", "0x4000000000000000000000000000000000000004",
		"--amount", "2.5",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got model.ApprovePlan
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Token != "0x6000000000000000000000000000000000000006" || got.Spender != "0x4000000000000000000000000000000000000004" || got.Amount != "2500000" {
		t.Fatalf("approve plan mismatch: %+v", got)
	}

	raw, err = execute(t, "approve",
		"--token", "0x7000000000000000000000000000000000000007",
		"--spender", "0x4000000000000000000000000000000000000004",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Amount != dex.MaxApproval.String() {
		t.Fatalf("expected unlimited approval, got %s", got.Amount)
	}
}

type stubLoader map[string]model.PoolSnapshot

func (s stubLoader) LoadPoolSnapshot(_ context.Context, _ uint64, address string) (model.PoolSnapshot, bool, error) {
	snapshot, ok := s[address]
	return snapshot, ok, nil
}

func TestDiffPools(t *testing.T) {
	loader := stubLoader{"0xA": {Address: "0xA", Tick: 10, Price: 1}}
	diffs, err := diffPools(context.Background(), loader, 1, []model.PoolSnapshot{
		{Address: "0xA", Tick: 70, Price: 1.5},
		{Address: "0xB", Tick: 5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diffs) != 2 {
		t.Fatalf("diff count mismatch: %d", len(diffs))
	}
	if !diffs[0].Known || diffs[0].TickDelta != 60 || diffs[0].PriceChangeText != "50.00" {
		t.Fatalf("known diff mismatch: %+v", diffs[0])
	}
	if diffs[1].Known {
		t.Fatalf("expected unknown pool: %+v", diffs[1])
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poolctl.log")
	logger, err := newLogger("info", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("pool planned", zap.Int32("tick", 60))
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"pool planned"`) || !strings.Contains(string(raw), `"tick":60`) {
		t.Fatalf("unexpected log content: %s", raw)
	}
}

func TestNewLoggerRejectsLevel(t *testing.T) {
	if _, err := newLogger("loud", ""); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
