package main

import (
	"crypto/ecdsa"
	"fmt"
	"os"

	"github.com/Lumerin-protocol/crowdsale/internal/config"
	"github.com/Lumerin-protocol/crowdsale/internal/handlers/httphandlers"
	"github.com/Lumerin-protocol/crowdsale/internal/lib"
)

// Prints the auth headers for a single request to the crowdsale api, e.g.
//
//	salesign --wallet-private-key=0x... --method=POST --path=/sale/buy --body='{"value":"1.5"}'
type Config struct {
	WalletPrivateKey string `env:"WALLET_PRIVATE_KEY"   flag:"wallet-private-key" validate:"required_without=Mnemonic"`
	Mnemonic         string `env:"WALLET_MNEMONIC"      flag:"wallet-mnemonic"    validate:"required_without=WalletPrivateKey"`
	AccountIndex     int    `env:"WALLET_ACCOUNT_INDEX" flag:"account-index"      validate:"omitempty,min=0" desc:"index of the account derived from the mnemonic"`
	Method           string `env:"SIGN_METHOD"          flag:"method"             validate:"required,oneof=GET POST"`
	Path             string `env:"SIGN_PATH"            flag:"path"               validate:"required,startswith=/"`
	Body             string `env:"SIGN_BODY"            flag:"body"`
}

func (cfg *Config) SetDefaults() {
	if cfg.Method == "" {
		cfg.Method = "POST"
	}
}

func main() {
	err := start()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func start() error {
	var cfg Config
	err := config.LoadConfig(&cfg, &os.Args, config.DefaultEnvFile)
	if err != nil {
		return err
	}

	privKey, err := loadKey(cfg)
	if err != nil {
		return err
	}
	addr, err := lib.PrivKeyToAddr(privKey)
	if err != nil {
		return err
	}

	header, err := httphandlers.SignRequest(privKey, cfg.Method, cfg.Path, []byte(cfg.Body))
	if err != nil {
		return err
	}

	fmt.Printf("Signer address:\n%s\n\n", addr.Hex())
	fmt.Printf("Headers:\n")
	for _, name := range []string{httphandlers.HeaderSigner, httphandlers.HeaderNonce, httphandlers.HeaderSignature} {
		fmt.Printf("%s: %s\n", name, header.Get(name))
	}
	return nil
}

func loadKey(cfg Config) (*ecdsa.PrivateKey, error) {
	if cfg.WalletPrivateKey != "" {
		return lib.ParsePrivKey(cfg.WalletPrivateKey)
	}
	return lib.MnemonicToPrivKey(cfg.Mnemonic, cfg.AccountIndex)
}
