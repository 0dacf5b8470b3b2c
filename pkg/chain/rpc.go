package chain

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/w3types"
)

const (
	// defaultRPCClientTimeout is the default HTTP client timeout for RPC requests.
	defaultRPCClientTimeout = 10 * time.Second
)

type (
	// ProviderOpts contains configuration options for creating a read-only provider.
	ProviderOpts struct {
		RPCEndpoint string // RPC endpoint URL (HTTP)
		ChainID     int64  // Chain ID the endpoint serves
	}

	// SignerOpts contains configuration options for creating a signing provider.
	SignerOpts struct {
		RPCEndpoint string // RPC endpoint URL (HTTP)
		ChainID     int64  // Chain ID for transaction signing
		PrivateKey  string // Hex-encoded secp256k1 private key (0x prefix optional)
	}

	// rpcProvider implements the Provider interface over a single rpc.Client
	// shared between the w3 batch client and the ethclient binding backend.
	rpcProvider struct {
		w3Client  *w3.Client
		ethClient *ethclient.Client
		chainID   int64
		opts      *bind.TransactOpts
	}
)

// NewProvider creates a read-only Provider using HTTP RPC.
// It configures a low-timeout HTTP client for fast failure detection.
func NewProvider(o ProviderOpts) (Provider, error) {
	return dial(o.RPCEndpoint, o.ChainID, nil)
}

// NewSigner creates a signing Provider bound to the given private key.
func NewSigner(o SignerOpts) (Provider, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(o.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	transactOpts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(o.ChainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	return dial(o.RPCEndpoint, o.ChainID, transactOpts)
}

// dial connects a single rpc.Client and wraps it for both batch calls and bindings.
func dial(rpcEndpoint string, chainID int64, transactOpts *bind.TransactOpts) (Provider, error) {
	httpClient := &http.Client{
		Timeout: defaultRPCClientTimeout,
	}

	rpcClient, err := rpc.DialOptions(context.Background(), rpcEndpoint, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc endpoint: %w", err)
	}

	return &rpcProvider{
		w3Client:  w3.NewClient(rpcClient),
		ethClient: ethclient.NewClient(rpcClient),
		chainID:   chainID,
		opts:      transactOpts,
	}, nil
}

func (p *rpcProvider) ChainID() int64 {
	return p.chainID
}

// CallCtx executes the given calls in a single batched RPC round-trip.
func (p *rpcProvider) CallCtx(ctx context.Context, calls ...w3types.RPCCaller) error {
	return p.w3Client.CallCtx(ctx, calls...)
}

func (p *rpcProvider) Backend() bind.ContractBackend {
	return p.ethClient
}

func (p *rpcProvider) TransactOpts() *bind.TransactOpts {
	return p.opts
}

func (p *rpcProvider) Address() (common.Address, error) {
	if p.opts == nil {
		return common.Address{}, ErrNoSigner
	}
	return p.opts.From, nil
}
