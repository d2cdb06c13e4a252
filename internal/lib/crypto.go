package lib

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
)

var ErrInvalidSignature = errors.New("invalid signature")

func PrivKeyToAddr(privateKey *ecdsa.PrivateKey) (common.Address, error) {
	publicKey := privateKey.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return common.Address{}, fmt.Errorf("error casting public key to ECDSA")
	}

	return crypto.PubkeyToAddress(*publicKeyECDSA), nil
}

// ParsePrivKey accepts hex private key with or without 0x prefix
func ParsePrivKey(privateKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
}

func MustParsePrivKey(privateKey string) *ecdsa.PrivateKey {
	key, err := ParsePrivKey(privateKey)
	if err != nil {
		panic(err)
	}
	return key
}

// MnemonicToPrivKey derives the key of the account with the given index on the default ethereum path
func MnemonicToPrivKey(mnemonic string, accountIndex int) (*ecdsa.PrivateKey, error) {
	wallet, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}

	path := hdwallet.MustParseDerivationPath(fmt.Sprintf("m/44'/60'/0'/0/%d", accountIndex))

	account, err := wallet.Derive(path, false)
	if err != nil {
		return nil, err
	}

	return wallet.PrivateKey(account)
}

// SignText signs msg the way personal_sign does (EIP-191), V is 27 or 28
func SignText(privateKey *ecdsa.PrivateKey, msg []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(msg), privateKey)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// RecoverTextSigner returns the address that produced sig over msg with SignText
func RecoverTextSigner(msg []byte, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrInvalidSignature
	}

	normalized := make([]byte, crypto.SignatureLength)
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash(msg), normalized)
	if err != nil {
		return common.Address{}, WrapError(ErrInvalidSignature, err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}
