// Package feedtest provides an in-memory feed.Caller for tests.
package feedtest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Caller answers eth_call requests from canned outputs keyed by contract and
// method name. Outputs are ABI-encoded with the method's output arguments.
type Caller struct {
	abis []abi.ABI

	mu        sync.Mutex
	responses map[common.Address]map[string][]interface{}
	failures  map[common.Address]error
	calls     map[string]int
}

// NewCaller returns a Caller that resolves selectors against abis in order.
func NewCaller(abis ...abi.ABI) *Caller {
	return &Caller{
		abis:      abis,
		responses: make(map[common.Address]map[string][]interface{}),
		failures:  make(map[common.Address]error),
		calls:     make(map[string]int),
	}
}

// Set registers the outputs of method on contract.
func (c *Caller) Set(contract common.Address, method string, outputs ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.responses[contract] == nil {
		c.responses[contract] = make(map[string][]interface{})
	}
	c.responses[contract][method] = outputs
}

// Fail makes every call to contract return err.
func (c *Caller) Fail(contract common.Address, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[contract] = err
}

// Calls returns how many times method was called on any contract.
func (c *Caller) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *Caller) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, fmt.Errorf("malformed call")
	}

	for _, parsed := range c.abis {
		method, err := parsed.MethodById(msg.Data[:4])
		if err != nil {
			continue
		}

		c.mu.Lock()
		c.calls[method.Name]++
		failure := c.failures[*msg.To]
		outputs, ok := c.responses[*msg.To][method.Name]
		c.mu.Unlock()

		if failure != nil {
			return nil, failure
		}
		if !ok {
			return nil, fmt.Errorf("execution reverted: %s on %s", method.Name, msg.To.Hex())
		}
		return method.Outputs.Pack(outputs...)
	}
	return nil, fmt.Errorf("unknown selector %x", msg.Data[:4])
}
