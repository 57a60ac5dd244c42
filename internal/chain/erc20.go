package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ERC20 binds the collateral token for the signer's allowance and balance
// against a fixed spender (the market contract).
type ERC20 struct {
	client  *Client
	token   common.Address
	spender common.Address
	abi     abi.ABI
}

func NewERC20(client *Client, token, spender common.Address) (*ERC20, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	return &ERC20{client: client, token: token, spender: spender, abi: parsed}, nil
}

// Address returns the token contract address.
func (t *ERC20) Address() common.Address {
	return t.token
}

// Allowance reads the signer's current allowance for the spender.
func (t *ERC20) Allowance(ctx context.Context) (*big.Int, error) {
	values, err := t.call(ctx, "allowance", t.client.From(), t.spender)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// Approve submits an approval for the spender and returns the transaction
// hash.
func (t *ERC20) Approve(ctx context.Context, amount *big.Int) (common.Hash, error) {
	data, err := t.abi.Pack("approve", t.spender, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack approve: %w", err)
	}
	return t.client.SendCall(ctx, t.token, data)
}

// BalanceOf reads an account's token balance.
func (t *ERC20) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	values, err := t.call(ctx, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// Decimals reads the token's decimals.
func (t *ERC20) Decimals(ctx context.Context) (uint8, error) {
	values, err := t.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	return asUint8(values[0])
}

func (t *ERC20) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := t.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := t.client.CallContract(ctx, ethereum.CallMsg{To: &t.token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := t.abi.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}
