// Package chain talks to an archive gateway node over JSON-RPC.
package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"assetScope/internal/model"
)

// Client wraps a JSON-RPC connection to the gateway node.
type Client struct {
	rpcClient *rpc.Client
}

// NewClient creates a new gateway client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return &Client{rpcClient: rpcClient}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// LatestHeight returns the height of the best finalized block.
func (c *Client) LatestHeight(ctx context.Context) (uint64, error) {
	var header struct {
		Number string `json:"number"`
	}
	if err := c.rpcClient.CallContext(ctx, &header, "chain_getHeader"); err != nil {
		return 0, err
	}
	height, err := hexutil.DecodeUint64(header.Number)
	if err != nil {
		return 0, fmt.Errorf("header number %q: %w", header.Number, err)
	}
	return height, nil
}

// GetBlocks fetches the inclusive height range with decoded event envelopes.
func (c *Client) GetBlocks(ctx context.Context, fromHeight, toHeight uint64) ([]model.Block, error) {
	var blocks []model.Block
	if err := c.rpcClient.CallContext(ctx, &blocks, "gateway_getBlocks", fromHeight, toHeight); err != nil {
		return nil, err
	}
	return blocks, nil
}
