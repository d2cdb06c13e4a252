package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

const (
	ownerAddr  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	walletAddr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("SALE_OWNER_ADDRESS", ownerAddr)
	t.Setenv("SALE_WALLET_ADDRESS", walletAddr)
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	var cfg Config
	err := LoadConfig(&cfg, &[]string{"saled"}, "")
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "0.0.0.0:8080", cfg.Web.Address)
	require.Equal(t, 24*time.Hour, cfg.Sale.StartIn)
	require.Equal(t, 7*24*time.Hour, cfg.Sale.PhaseDuration)
	require.Equal(t, crypto.CreateAddress(common.HexToAddress(ownerAddr), 0).Hex(), cfg.Sale.SelfAddress)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WEB_ADDRESS", "127.0.0.1:9000")

	var cfg Config
	err := LoadConfig(&cfg, &[]string{"saled", "--web-address=127.0.0.1:9001", "--log-level-app=warn"}, "")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9001", cfg.Web.Address)
	require.Equal(t, "warn", cfg.Log.LevelApp)
}

func TestLoadConfigEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "SALE_OWNER_ADDRESS=" + ownerAddr + "\nSALE_WALLET_ADDRESS=" + walletAddr + "\nSALE_PRESALE_RATE=5000\nSALE_ICO_RATE=4000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, key := range []string{"SALE_OWNER_ADDRESS", "SALE_WALLET_ADDRESS", "SALE_PRESALE_RATE", "SALE_ICO_RATE"} {
			_ = os.Unsetenv(key)
		}
	})

	var cfg Config
	require.NoError(t, LoadConfig(&cfg, &[]string{"saled"}, path))

	presale, ico, ok, err := cfg.SaleRates()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, big.NewInt(5000), presale)
	require.Equal(t, big.NewInt(4000), ico)
}

func TestLoadConfigMissingEnvFileIsIgnored(t *testing.T) {
	setRequiredEnv(t)

	var cfg Config
	require.NoError(t, LoadConfig(&cfg, &[]string{"saled"}, filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string][]string{
		"no owner":           {"saled", "--sale-owner-address="},
		"bad wallet":         {"saled", "--sale-wallet-address=0x123"},
		"wallet is self":     {"saled", "--sale-self-address=" + walletAddr},
		"bad log level":      {"saled", "--log-level-app=loud"},
		"bad boundary":       {"saled", "--sale-presale-start=tomorrow"},
		"partial boundaries": {"saled", "--sale-presale-start=2030-01-01T00:00:00Z"},
		"only one rate":      {"saled", "--sale-presale-rate=5000"},
		"non numeric rate":   {"saled", "--sale-presale-rate=abc", "--sale-ico-rate=1"},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)

			var cfg Config
			err := LoadConfig(&cfg, &args, "")
			require.ErrorIs(t, err, ErrConfigValidation)
		})
	}
}

func TestLoadConfigUnknownFlag(t *testing.T) {
	setRequiredEnv(t)

	var cfg Config
	err := LoadConfig(&cfg, &[]string{"saled", "--no-such-flag"}, "")
	require.ErrorIs(t, err, ErrFlagParse)
}

func TestSaleScheduleOffsets(t *testing.T) {
	var cfg Config
	cfg.Sale.StartIn = time.Hour
	cfg.Sale.PhaseDuration = 24 * time.Hour
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	s, err := cfg.SaleSchedule(now)
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Hour), s.PresaleStart)
	require.Equal(t, now.Add(25*time.Hour), s.PresaleEnd)
	require.Equal(t, s.PresaleEnd.Add(24*time.Hour), s.IcoStart)
	require.Equal(t, s.IcoStart.Add(24*time.Hour), s.IcoEnd)
}

func TestSaleScheduleExplicit(t *testing.T) {
	var cfg Config
	cfg.Sale.PresaleStart = "2030-01-01T00:00:00Z"
	cfg.Sale.PresaleEnd = "2030-01-08T00:00:00Z"
	cfg.Sale.IcoStart = "2030-01-08T00:00:00Z"
	cfg.Sale.IcoEnd = "2030-01-15T00:00:00Z"

	s, err := cfg.SaleSchedule(time.Now())
	require.NoError(t, err)
	require.True(t, s.PresaleEnd.Equal(s.IcoStart), "ico may start right after presale")

	cfg.Sale.IcoEnd = "2029-01-15T00:00:00Z"
	_, err = cfg.SaleSchedule(time.Now())
	require.Error(t, err)
}

func TestBankGenesis(t *testing.T) {
	var cfg Config
	cfg.Bank.Genesis = ownerAddr + "=1.5, " + walletAddr + "=10"

	accounts, err := cfg.BankGenesis()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Equal(t, common.HexToAddress(ownerAddr), accounts[0].Address)
	require.Equal(t, new(big.Int).Div(lib.Ether(3), big.NewInt(2)), accounts[0].Balance)
	require.Equal(t, lib.Ether(10), accounts[1].Balance)

	cfg.Bank.Genesis = ownerAddr
	_, err = cfg.BankGenesis()
	require.ErrorIs(t, err, ErrConfigValidation)

	cfg.Bank.Genesis = ownerAddr + "=-1"
	_, err = cfg.BankGenesis()
	require.ErrorIs(t, err, ErrConfigValidation)
}

func TestGetSanitized(t *testing.T) {
	var cfg Config
	cfg.Sale.OwnerAddress = ownerAddr
	cfg.Bank.Genesis = ownerAddr + "=1"
	cfg.Receipts.StorePath = "/var/lib/crowdsale"

	public := cfg.GetSanitized().(Config)
	require.Equal(t, ownerAddr, public.Sale.OwnerAddress)
	require.Empty(t, public.Bank.Genesis)
	require.Empty(t, public.Receipts.StorePath)
}
