package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lumerin-protocol/crowdsale/internal/config"
	"github.com/Lumerin-protocol/crowdsale/internal/handlers/httphandlers"
	"github.com/Lumerin-protocol/crowdsale/internal/interfaces"
	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/repositories/receipts"
	"github.com/Lumerin-protocol/crowdsale/internal/repositories/valuebank"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/crowdsale"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/token"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	err := start()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func start() error {
	var cfg config.Config
	err := config.LoadConfig(&cfg, &os.Args, config.DefaultEnvFile)
	if err != nil {
		return err
	}

	newLogger := func(level string) (*lib.Logger, error) {
		return lib.NewLogger(lib.LoggerConfig{
			Level:    level,
			Color:    cfg.Log.Color,
			IsProd:   cfg.Log.IsProd,
			JSON:     cfg.Log.JSON,
			FilePath: cfg.Log.FilePath,
		})
	}

	appLog, err := newLogger(cfg.Log.LevelApp)
	if err != nil {
		return err
	}
	saleLog, err := newLogger(cfg.Log.LevelSale)
	if err != nil {
		return err
	}
	httpLog, err := newLogger(cfg.Log.LevelHTTP)
	if err != nil {
		return err
	}
	defer func() {
		_ = appLog.Sync()
		_ = saleLog.Sync()
		_ = httpLog.Sync()
	}()

	log := appLog.Named("APP")
	log.Infof("crowdsale %s, config: %+v", config.BuildVersion, cfg.GetSanitized())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-shutdownChan
		log.Warnf("Received signal: %s", s)
		cancel()

		s = <-shutdownChan
		log.Warnf("Received signal: %s. Forcing exit...", s)
		os.Exit(1)
	}()

	schedule, err := cfg.SaleSchedule(time.Now())
	if err != nil {
		return err
	}
	log.Infof("sale schedule: presale %s - %s, ico %s - %s",
		schedule.PresaleStart, schedule.PresaleEnd, schedule.IcoStart, schedule.IcoEnd)

	genesis, err := cfg.BankGenesis()
	if err != nil {
		return err
	}
	bank := valuebank.NewMemory(saleLog.Named("BANK"))
	for _, account := range genesis {
		bank.Credit(account.Address, account.Balance)
	}

	owner := common.HexToAddress(cfg.Sale.OwnerAddress)
	ledger := token.NewLedger(owner, schedule.IcoEnd, saleLog.Named("TOKEN"))
	sale, err := crowdsale.NewCrowdsale(crowdsale.Params{
		Owner:    owner,
		Self:     common.HexToAddress(cfg.Sale.SelfAddress),
		Wallet:   common.HexToAddress(cfg.Sale.WalletAddress),
		Schedule: schedule,
	}, ledger, bank, lib.SystemClock{}, saleLog.Named("SALE"))
	if err != nil {
		return err
	}
	err = ledger.SetCrowdsaleAddress(owner, sale)
	if err != nil {
		return err
	}

	presaleRate, icoRate, ok, err := cfg.SaleRates()
	if err != nil {
		return err
	}
	if ok {
		err = sale.SetRates(ctx, owner, presaleRate, icoRate)
		if err != nil {
			return err
		}
	}

	store, err := newReceiptStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorf("cannot close receipt store: %s", err)
		}
	}()

	recorder := receipts.NewRecorder(sale, store, appLog.Named("RECEIPTS"))
	auth := httphandlers.NewAuthenticator(cfg.Web.NonceCacheSize)
	handl := httphandlers.NewHTTPHandler(sale, ledger, bank, store, &cfg, auth, httpLog.Named("HTTP"))
	server := &http.Server{
		Addr:              cfg.Web.Address,
		Handler:           handl,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return recorder.Run(ctx)
	})
	g.Go(func() error {
		log.Infof("http server is listening: %s", cfg.Web.Address)
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if cfg.Sale.RefreshEvery > 0 {
		g.Go(func() error {
			return refreshState(ctx, sale, cfg.Sale.RefreshEvery, log)
		})
	}

	err = g.Wait()
	log.Infof("App exited due to %s", err)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newReceiptStore(cfg config.Config) (receipts.Store, error) {
	if cfg.Receipts.StorePath == "" {
		return receipts.NewMemory(cfg.Receipts.MemoryCapacity), nil
	}
	return receipts.OpenLevelDB(cfg.Receipts.StorePath)
}

// refreshState moves the cached sale state forward on its own, so state changes are
// published even when nobody interacts with the sale
func refreshState(ctx context.Context, sale *crowdsale.Crowdsale, interval time.Duration, log interfaces.ILogger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			current := sale.UpdateState()
			log.Debugf("sale state refreshed: %s", current)
		}
	}
}
