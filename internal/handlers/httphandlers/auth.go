package httphandlers

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderSigner    = "X-Signer"
	HeaderNonce     = "X-Nonce"
	HeaderSignature = "X-Signature"

	callerKey = "caller"
)

var (
	ErrMissingAuth  = errors.New("missing or malformed auth headers")
	ErrBadSignature = errors.New("signature does not match signer")
	ErrNonceReused  = errors.New("nonce already used")
)

// Authenticator verifies that a request was signed by the account in X-Signer.
// Each nonce is accepted once, as long as it is still remembered
type Authenticator struct {
	nonces *lib.BoundSet
}

func NewAuthenticator(nonceCacheSize int) *Authenticator {
	return &Authenticator{
		nonces: lib.NewBoundSet(nonceCacheSize),
	}
}

// SigningMessage is the text signed by the caller, it binds the signature to the request
func SigningMessage(method string, path string, nonce uuid.UUID, body []byte) []byte {
	return []byte(fmt.Sprintf("%s\n%s\n%s\n%s", method, path, nonce, crypto.Keccak256Hash(body).Hex()))
}

// SignRequest returns the auth headers for a request
func SignRequest(privateKey *ecdsa.PrivateKey, method string, path string, body []byte) (http.Header, error) {
	addr, err := lib.PrivKeyToAddr(privateKey)
	if err != nil {
		return nil, err
	}

	nonce := uuid.New()
	sig, err := lib.SignText(privateKey, SigningMessage(method, path, nonce, body))
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set(HeaderSigner, addr.Hex())
	header.Set(HeaderNonce, nonce.String())
	header.Set(HeaderSignature, hexutil.Encode(sig))
	return header, nil
}

func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		caller, err := a.verify(ctx.Request)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
			return
		}
		ctx.Set(callerKey, caller)
		ctx.Next()
	}
}

func (a *Authenticator) verify(req *http.Request) (common.Address, error) {
	signer := req.Header.Get(HeaderSigner)
	if !common.IsHexAddress(signer) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrMissingAuth, HeaderSigner)
	}
	nonce, err := uuid.Parse(req.Header.Get(HeaderNonce))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s", ErrMissingAuth, HeaderNonce)
	}
	sig, err := hexutil.Decode(req.Header.Get(HeaderSignature))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s", ErrMissingAuth, HeaderSignature)
	}

	var body []byte
	if req.Body != nil {
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return common.Address{}, err
		}
		// handlers read the body again
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	recovered, err := lib.RecoverTextSigner(SigningMessage(req.Method, req.URL.Path, nonce, body), sig)
	if err != nil {
		return common.Address{}, lib.WrapError(ErrBadSignature, err)
	}
	if recovered != common.HexToAddress(signer) {
		return common.Address{}, ErrBadSignature
	}

	if !a.nonces.Add(nonce.String()) {
		return common.Address{}, ErrNonceReused
	}
	return recovered, nil
}

// caller is the authenticated account, zero address on unsigned routes
func caller(ctx *gin.Context) common.Address {
	v, _ := ctx.Get(callerKey)
	addr, _ := v.(common.Address)
	return addr
}
