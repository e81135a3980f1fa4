// Package trader builds, signs and submits swap transactions against a
// V2-style router. Nothing here retries: every failure is surfaced to the
// operator, and a retry must re-quote because price and nonce move.
package trader

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/sial-ari/evm-token-sniper/internal/config"
)

var (
	ErrNothingToSell  = errors.New("no tokens to sell")
	ErrReverted       = errors.New("transaction reverted on-chain")
	ErrConfirmTimeout = errors.New("timed out waiting for confirmation")
	ErrAmountTooLarge = errors.New("amount exceeds the per-trade cap")
)

// TxResult reports a mined, successful transaction.
type TxResult struct {
	Hash    string
	URL     string
	GasUsed uint64
}

// backend is the slice of the RPC client the engine calls. Satisfied by
// *ethclient.Client.
type backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	bind.DeployBackend
}

type Engine struct {
	client             backend
	chain              config.Chain
	key                *ecdsa.PrivateKey
	address            common.Address
	router             common.Address
	wrapped            common.Address
	routerABI          abi.ABI
	erc20ABI           abi.ABI
	slippagePct        int64
	gasLimit           uint64
	approveGasLimit    uint64
	confirmTimeout     time.Duration
	approveSettleDelay time.Duration
	deadlineWindow     time.Duration
	maxBuyNative       float64
	logger             *slog.Logger
}

// NewEngine dials nothing itself; the caller owns the RPC client.
func NewEngine(client *ethclient.Client, chain config.Chain, privateKeyHex string, cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	return newEngine(client, chain, privateKeyHex, cfg, logger)
}

func newEngine(client backend, chain config.Chain, privateKeyHex string, cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid wallet private key: %w", err)
	}

	routerABI, err := abi.JSON(strings.NewReader(routerABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}
	erc20ABI, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	return &Engine{
		client:             client,
		chain:              chain,
		key:                key,
		address:            crypto.PubkeyToAddress(key.PublicKey),
		router:             common.HexToAddress(chain.Router),
		wrapped:            common.HexToAddress(chain.WrappedNative),
		routerABI:          routerABI,
		erc20ABI:           erc20ABI,
		slippagePct:        cfg.SlippagePercent,
		gasLimit:           cfg.GasLimit,
		approveGasLimit:    cfg.ApproveGasLimit,
		confirmTimeout:     cfg.ConfirmTimeout,
		approveSettleDelay: cfg.ApproveSettleDelay,
		deadlineWindow:     time.Duration(cfg.DeadlineMinutes) * time.Minute,
		maxBuyNative:       cfg.MaxBuyNative,
		logger:             logger,
	}, nil
}

// Address returns the trading wallet address.
func (e *Engine) Address() string {
	return e.address.Hex()
}

// NativeBalance reads the wallet's native-asset balance.
func (e *Engine) NativeBalance(ctx context.Context) (*big.Int, error) {
	return e.client.BalanceAt(ctx, e.address, nil)
}

// Buy swaps nativeAmount of the chain's native asset into the token along
// [wrapped, token], with slippage protection and a swap deadline.
func (e *Engine) Buy(ctx context.Context, token string, nativeAmount float64) (*TxResult, error) {
	if nativeAmount <= 0 {
		return nil, fmt.Errorf("buy amount must be positive")
	}
	if nativeAmount > e.maxBuyNative {
		return nil, fmt.Errorf("%w: %g > %g %s", ErrAmountTooLarge, nativeAmount, e.maxBuyNative, e.chain.NativeSymbol)
	}

	amountIn := toWei(nativeAmount)
	path := []common.Address{e.wrapped, common.HexToAddress(token)}

	quoted, err := e.quoteOut(ctx, amountIn, path)
	if err != nil {
		return nil, err
	}
	minOut := minOutput(quoted, e.slippagePct)
	deadline := big.NewInt(time.Now().Add(e.deadlineWindow).Unix())

	data, err := e.routerABI.Pack("swapExactETHForTokensSupportingFeeOnTransferTokens",
		minOut, path, e.address, deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to pack swap call: %w", err)
	}

	e.logger.Info("submitting buy",
		"token", token,
		"amount_in", amountIn.String(),
		"min_out", minOut.String())

	tx, err := e.submit(ctx, e.router, amountIn, e.gasLimit, data)
	if err != nil {
		return nil, err
	}
	return e.confirm(ctx, tx)
}

// Sell swaps percent of the wallet's token balance back to the native
// asset, approving the router first if the current allowance is short.
func (e *Engine) Sell(ctx context.Context, token string, percent int64) (*TxResult, error) {
	if percent <= 0 || percent > 100 {
		return nil, fmt.Errorf("sell percent must be in (0,100], got %d", percent)
	}

	tokenAddr := common.HexToAddress(token)
	balance, err := e.erc20Read(ctx, tokenAddr, "balanceOf", e.address)
	if err != nil {
		return nil, err
	}

	sellAmount := portionOf(balance, percent)
	if sellAmount.Sign() == 0 {
		return nil, ErrNothingToSell
	}

	allowance, err := e.erc20Read(ctx, tokenAddr, "allowance", e.address, e.router)
	if err != nil {
		return nil, err
	}
	if allowance.Cmp(sellAmount) < 0 {
		if err := e.approve(ctx, tokenAddr); err != nil {
			return nil, err
		}
	}

	path := []common.Address{tokenAddr, e.wrapped}
	quoted, err := e.quoteOut(ctx, sellAmount, path)
	if err != nil {
		return nil, err
	}
	minOut := minOutput(quoted, e.slippagePct)
	deadline := big.NewInt(time.Now().Add(e.deadlineWindow).Unix())

	data, err := e.routerABI.Pack("swapExactTokensForETHSupportingFeeOnTransferTokens",
		sellAmount, minOut, path, e.address, deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to pack swap call: %w", err)
	}

	e.logger.Info("submitting sell",
		"token", token,
		"percent", percent,
		"amount_in", sellAmount.String(),
		"min_out", minOut.String())

	tx, err := e.submit(ctx, e.router, big.NewInt(0), e.gasLimit, data)
	if err != nil {
		return nil, err
	}
	return e.confirm(ctx, tx)
}

// approve grants the router an unlimited allowance, then waits a fixed
// settle delay instead of the approval receipt. Under congestion the
// approval may not have landed before the dependent swap goes out; the
// delay is configurable to widen that window.
func (e *Engine) approve(ctx context.Context, token common.Address) error {
	data, err := e.erc20ABI.Pack("approve", e.router, maxUint256)
	if err != nil {
		return fmt.Errorf("failed to pack approve call: %w", err)
	}

	tx, err := e.submit(ctx, token, big.NewInt(0), e.approveGasLimit, data)
	if err != nil {
		return fmt.Errorf("approval submission failed: %w", err)
	}

	e.logger.Info("approval submitted, waiting to settle",
		"token", token.Hex(),
		"tx", tx.Hash().Hex(),
		"settle_delay", e.approveSettleDelay)

	select {
	case <-time.After(e.approveSettleDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// quoteOut asks the router for the expected output of a swap along path.
func (e *Engine) quoteOut(ctx context.Context, amountIn *big.Int, path []common.Address) (*big.Int, error) {
	data, err := e.routerABI.Pack("getAmountsOut", amountIn, path)
	if err != nil {
		return nil, fmt.Errorf("failed to pack quote call: %w", err)
	}

	raw, err := e.client.CallContract(ctx, ethereum.CallMsg{To: &e.router, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("quote call failed: %w", err)
	}

	out, err := e.routerABI.Unpack("getAmountsOut", raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode quote: %w", err)
	}
	amounts, ok := out[0].([]*big.Int)
	if !ok || len(amounts) < 2 {
		return nil, fmt.Errorf("quote returned malformed amounts")
	}
	return amounts[len(amounts)-1], nil
}

// erc20Read performs a read-only ERC20 call returning a single uint256.
func (e *Engine) erc20Read(ctx context.Context, token common.Address, method string, args ...interface{}) (*big.Int, error) {
	data, err := e.erc20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	raw, err := e.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}

	out, err := e.erc20ABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s returned a non-integer result", method)
	}
	return value, nil
}

// submit builds a legacy transaction with the pending nonce and current
// gas price, signs it and broadcasts it.
func (e *Engine) submit(ctx context.Context, to common.Address, value *big.Int, gasLimit uint64, data []byte) (*types.Transaction, error) {
	nonce, err := e.client.PendingNonceAt(ctx, e.address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nonce: %w", err)
	}
	gasPrice, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gas price: %w", err)
	}

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(e.chain.ChainID)), e.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := e.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to submit transaction: %w", err)
	}
	return signed, nil
}

// confirm blocks until the transaction is mined or the confirmation budget
// elapses. A client-side timeout does not prove the transaction was never
// mined; the hash is included so the operator can reconcile later.
func (e *Engine) confirm(ctx context.Context, tx *types.Transaction) (*TxResult, error) {
	waitCtx, cancel := context.WithTimeout(ctx, e.confirmTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, e.client, tx)
	if err != nil {
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s (tx %s)", ErrConfirmTimeout, e.confirmTimeout, tx.Hash().Hex())
		}
		return nil, fmt.Errorf("receipt wait failed for %s: %w", tx.Hash().Hex(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s", ErrReverted, tx.Hash().Hex())
	}

	return &TxResult{
		Hash:    tx.Hash().Hex(),
		URL:     e.chain.ExplorerTxURL + tx.Hash().Hex(),
		GasUsed: receipt.GasUsed,
	}, nil
}
