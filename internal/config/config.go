package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/repositories/valuebank"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/phase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Validation tags described here: https://pkg.go.dev/github.com/go-playground/validator/v10
type Config struct {
	Environment string `env:"ENVIRONMENT" flag:"environment"`
	Sale        struct {
		OwnerAddress  string        `env:"SALE_OWNER_ADDRESS"   flag:"sale-owner-address"   validate:"required,eth_addr"                   desc:"account allowed to administer the sale and the token"`
		WalletAddress string        `env:"SALE_WALLET_ADDRESS"  flag:"sale-wallet-address"  validate:"required,eth_addr,nefield=SelfAddress" desc:"destination of the extracted funds"`
		SelfAddress   string        `env:"SALE_SELF_ADDRESS"    flag:"sale-self-address"    validate:"omitempty,eth_addr"                  desc:"bank account of the crowdsale, derived from the owner if empty"`
		PresaleStart  string        `env:"SALE_PRESALE_START"   flag:"sale-presale-start"   validate:"required_with=PresaleEnd IcoStart IcoEnd,omitempty,datetime=2006-01-02T15:04:05Z07:00"`
		PresaleEnd    string        `env:"SALE_PRESALE_END"     flag:"sale-presale-end"     validate:"required_with=PresaleStart,omitempty,datetime=2006-01-02T15:04:05Z07:00"`
		IcoStart      string        `env:"SALE_ICO_START"       flag:"sale-ico-start"       validate:"required_with=PresaleStart,omitempty,datetime=2006-01-02T15:04:05Z07:00"`
		IcoEnd        string        `env:"SALE_ICO_END"         flag:"sale-ico-end"         validate:"required_with=PresaleStart,omitempty,datetime=2006-01-02T15:04:05Z07:00"`
		StartIn       time.Duration `env:"SALE_START_IN"        flag:"sale-start-in"        validate:"omitempty,min=0"                     desc:"presale starts this long after launch, used when boundaries are not set"`
		PhaseDuration time.Duration `env:"SALE_PHASE_DURATION"  flag:"sale-phase-duration"  validate:"omitempty,min=0"                     desc:"length of each phase, used when boundaries are not set"`
		RefreshEvery  time.Duration `env:"SALE_REFRESH_EVERY"   flag:"sale-refresh-every"   validate:"omitempty,min=0"                     desc:"refreshes the sale state periodically, disabled if zero"`
		PresaleRate   string        `env:"SALE_PRESALE_RATE"    flag:"sale-presale-rate"    validate:"required_with=IcoRate,omitempty,numeric" desc:"tokens per unit of value during presale, set by the owner at startup"`
		IcoRate       string        `env:"SALE_ICO_RATE"        flag:"sale-ico-rate"        validate:"required_with=PresaleRate,omitempty,numeric" desc:"tokens per unit of value during ico, set by the owner at startup"`
	}
	Bank struct {
		Genesis string `env:"BANK_GENESIS" flag:"bank-genesis" desc:"initial value balances as addr=amount pairs separated by comma, amounts in whole units"`
	}
	Receipts struct {
		StorePath      string `env:"RECEIPTS_STORE_PATH"      flag:"receipts-store-path"                                desc:"leveldb folder for receipts, receipts are kept in memory if empty"`
		MemoryCapacity int    `env:"RECEIPTS_MEMORY_CAPACITY" flag:"receipts-memory-capacity" validate:"omitempty,min=1" desc:"number of receipts kept by the memory store"`
	}
	Log struct {
		Color     bool   `env:"LOG_COLOR"      flag:"log-color"`
		FilePath  string `env:"LOG_FILE_PATH"  flag:"log-file-path"                                                        desc:"enables file logging and sets the file path"`
		IsProd    bool   `env:"LOG_IS_PROD"    flag:"log-is-prod"    validate:""                                           desc:"affects the format of the log output"`
		JSON      bool   `env:"LOG_JSON"       flag:"log-json"`
		LevelApp  string `env:"LOG_LEVEL_APP"  flag:"log-level-app"  validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelSale string `env:"LOG_LEVEL_SALE" flag:"log-level-sale" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelHTTP string `env:"LOG_LEVEL_HTTP" flag:"log-level-http" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	}
	Web struct {
		Address        string `env:"WEB_ADDRESS"          flag:"web-address"          validate:"required,hostname_port" desc:"http server address host:port"`
		NonceCacheSize int    `env:"WEB_NONCE_CACHE_SIZE" flag:"web-nonce-cache-size" validate:"omitempty,min=1"        desc:"number of remembered request nonces, older nonces can be replayed"`
	}
}

func (cfg *Config) SetDefaults() {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Sale

	if cfg.Sale.SelfAddress == "" && common.IsHexAddress(cfg.Sale.OwnerAddress) {
		// address the owner would deploy the sale contract to with its first transaction
		cfg.Sale.SelfAddress = crypto.CreateAddress(common.HexToAddress(cfg.Sale.OwnerAddress), 0).Hex()
	}
	if cfg.Sale.StartIn == 0 {
		cfg.Sale.StartIn = 24 * time.Hour
	}
	if cfg.Sale.PhaseDuration == 0 {
		cfg.Sale.PhaseDuration = 7 * 24 * time.Hour
	}

	// Receipts

	if cfg.Receipts.MemoryCapacity == 0 {
		cfg.Receipts.MemoryCapacity = 4096
	}

	// Log

	if cfg.Log.LevelApp == "" {
		cfg.Log.LevelApp = "debug"
	}
	if cfg.Log.LevelSale == "" {
		cfg.Log.LevelSale = "debug"
	}
	if cfg.Log.LevelHTTP == "" {
		cfg.Log.LevelHTTP = "info"
	}

	// Web

	if cfg.Web.Address == "" {
		cfg.Web.Address = "0.0.0.0:8080"
	}
	if cfg.Web.NonceCacheSize == 0 {
		cfg.Web.NonceCacheSize = 10000
	}
}

// SaleSchedule returns the configured phase boundaries. If they are not set,
// consecutive phases of PhaseDuration are laid out starting StartIn after now
func (cfg *Config) SaleSchedule(now time.Time) (phase.Schedule, error) {
	s := cfg.Sale
	if s.PresaleStart == "" {
		start := now.Add(s.StartIn).Truncate(time.Second)
		schedule := phase.Schedule{
			PresaleStart: start,
			PresaleEnd:   start.Add(s.PhaseDuration),
			IcoStart:     start.Add(2 * s.PhaseDuration),
			IcoEnd:       start.Add(3 * s.PhaseDuration),
		}
		return schedule, schedule.Validate()
	}

	var (
		schedule phase.Schedule
		err      error
	)
	bounds := []struct {
		dst *time.Time
		src string
	}{
		{&schedule.PresaleStart, s.PresaleStart},
		{&schedule.PresaleEnd, s.PresaleEnd},
		{&schedule.IcoStart, s.IcoStart},
		{&schedule.IcoEnd, s.IcoEnd},
	}
	for _, b := range bounds {
		*b.dst, err = time.Parse(time.RFC3339, b.src)
		if err != nil {
			return phase.Schedule{}, err
		}
	}
	return schedule, schedule.Validate()
}

// SaleRates returns the startup rates, ok is false if they are to be set later by the owner
func (cfg *Config) SaleRates() (presale *big.Int, ico *big.Int, ok bool, err error) {
	if cfg.Sale.PresaleRate == "" && cfg.Sale.IcoRate == "" {
		return nil, nil, false, nil
	}
	presale, ok1 := new(big.Int).SetString(cfg.Sale.PresaleRate, 10)
	ico, ok2 := new(big.Int).SetString(cfg.Sale.IcoRate, 10)
	if !ok1 || !ok2 {
		return nil, nil, false, fmt.Errorf("%w: rates must be integers", ErrConfigValidation)
	}
	return presale, ico, true, nil
}

// BankGenesis parses the initial value balances
func (cfg *Config) BankGenesis() ([]valuebank.Account, error) {
	var accounts []valuebank.Account
	for _, pair := range strings.Split(cfg.Bank.Genesis, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		addr, amount, found := strings.Cut(pair, "=")
		if !found || !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("%w: invalid genesis entry %q", ErrConfigValidation, pair)
		}
		balance, err := lib.ParseUnits(amount, lib.Decimals)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid genesis amount %q: %s", ErrConfigValidation, amount, err)
		}
		accounts = append(accounts, valuebank.Account{Address: common.HexToAddress(addr), Balance: balance})
	}
	return accounts, nil
}

// GetSanitized returns a copy of the config with sensitive data removed
// explicitly adding each field here to avoid accidentally leaking sensitive data
func (cfg *Config) GetSanitized() interface{} {
	publicCfg := Config{}

	publicCfg.Environment = cfg.Environment

	publicCfg.Sale.OwnerAddress = cfg.Sale.OwnerAddress
	publicCfg.Sale.WalletAddress = cfg.Sale.WalletAddress
	publicCfg.Sale.SelfAddress = cfg.Sale.SelfAddress
	publicCfg.Sale.PresaleStart = cfg.Sale.PresaleStart
	publicCfg.Sale.PresaleEnd = cfg.Sale.PresaleEnd
	publicCfg.Sale.IcoStart = cfg.Sale.IcoStart
	publicCfg.Sale.IcoEnd = cfg.Sale.IcoEnd
	publicCfg.Sale.StartIn = cfg.Sale.StartIn
	publicCfg.Sale.PhaseDuration = cfg.Sale.PhaseDuration
	publicCfg.Sale.RefreshEvery = cfg.Sale.RefreshEvery
	publicCfg.Sale.PresaleRate = cfg.Sale.PresaleRate
	publicCfg.Sale.IcoRate = cfg.Sale.IcoRate

	publicCfg.Receipts.MemoryCapacity = cfg.Receipts.MemoryCapacity

	publicCfg.Log.Color = cfg.Log.Color
	publicCfg.Log.IsProd = cfg.Log.IsProd
	publicCfg.Log.JSON = cfg.Log.JSON
	publicCfg.Log.LevelApp = cfg.Log.LevelApp
	publicCfg.Log.LevelSale = cfg.Log.LevelSale
	publicCfg.Log.LevelHTTP = cfg.Log.LevelHTTP

	publicCfg.Web.Address = cfg.Web.Address
	publicCfg.Web.NonceCacheSize = cfg.Web.NonceCacheSize

	return publicCfg
}
