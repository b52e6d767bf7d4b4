// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package forkclient

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
	"golang.org/x/time/rate"

	libcommon "github.com/erigontech/erigon-lib/common"
)

// httpClient is a minimal JSON-RPC caller against a remote Ethereum node,
// rate-limited and retried. Responses are parsed scalar-by-scalar with
// fastjson rather than unmarshaled into Go structs: a fork client only ever
// needs a handful of hex fields out of a much larger response object, and
// fastjson avoids allocating the rest.
type httpClient struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	parser   fastjson.Parser
	nextID   int
}

// NewHTTPClient builds a client against endpoint, allowing at most
// requestsPerSecond JSON-RPC calls per second.
func NewHTTPClient(endpoint string, requestsPerSecond float64) RPCClient {
	return &httpClient{
		endpoint: endpoint,
		http:     &http.Client{},
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (c *httpClient) call(ctx context.Context, method string, params ...interface{}) (*fastjson.Value, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	c.nextID++
	id := c.nextID

	var body bytes.Buffer
	fmt.Fprintf(&body, `{"jsonrpc":"2.0","id":%d,"method":%q,"params":[`, id, method)
	for i, p := range params {
		if i > 0 {
			body.WriteByte(',')
		}
		switch v := p.(type) {
		case string:
			fmt.Fprintf(&body, "%q", v)
		case bool:
			fmt.Fprintf(&body, "%t", v)
		default:
			fmt.Fprintf(&body, "%v", v)
		}
	}
	body.WriteString("]}")

	var respBody []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body.Bytes()))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("forkclient: remote status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("forkclient: remote status %d", resp.StatusCode))
		}
		respBody, err = io.ReadAll(resp.Body)
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, errors.Wrapf(err, "forkclient: %s", method)
	}

	v, err := c.parser.ParseBytes(respBody)
	if err != nil {
		return nil, errors.Wrapf(err, "forkclient: parse %s response", method)
	}
	if errVal := v.Get("error"); errVal != nil {
		return nil, fmt.Errorf("forkclient: %s: %s", method, errVal.String())
	}
	return v.Get("result"), nil
}

func hexToU64(s string) uint64 {
	s = strings.TrimPrefix(s, "0x")
	n, _ := strconv.ParseUint(s, 16, 64)
	return n
}

func hexToU256(s string) libcommon.U256 {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return libcommon.U256FromBig(new(uint256.Int).SetBytes(b))
}

func hexToHash(s string) libcommon.Hash {
	s = strings.TrimPrefix(s, "0x")
	b, _ := hex.DecodeString(s)
	return libcommon.BytesToHash(b)
}

func hexToBytes(s string) libcommon.Bytes {
	s = strings.TrimPrefix(s, "0x")
	b, _ := hex.DecodeString(s)
	return libcommon.Bytes(b)
}

func (c *httpClient) HeaderByNumber(ctx context.Context, number uint64) (*RemoteHeader, error) {
	result, err := c.call(ctx, "eth_getBlockByNumber", fmt.Sprintf("0x%x", number), false)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Type() == fastjson.TypeNull {
		return nil, fmt.Errorf("forkclient: block %d not found", number)
	}
	h := &RemoteHeader{
		Number:      hexToU64(string(result.GetStringBytes("number"))),
		Hash:        hexToHash(string(result.GetStringBytes("hash"))),
		ParentHash:  hexToHash(string(result.GetStringBytes("parentHash"))),
		Timestamp:   hexToU64(string(result.GetStringBytes("timestamp"))),
		Beneficiary: libcommon.BytesToAddress(hexToBytes(string(result.GetStringBytes("miner")))),
		StateRoot:   hexToHash(string(result.GetStringBytes("stateRoot"))),
		GasLimit:    hexToU64(string(result.GetStringBytes("gasLimit"))),
		GasUsed:     hexToU64(string(result.GetStringBytes("gasUsed"))),
	}
	if bf := result.GetStringBytes("baseFeePerGas"); bf != nil {
		v := hexToU256(string(bf))
		h.BaseFeePerGas = &v
	}
	return h, nil
}

func (c *httpClient) BlockByNumber(ctx context.Context, number uint64) (*RemoteBlock, error) {
	header, err := c.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	result, err := c.call(ctx, "eth_getBlockByNumber", fmt.Sprintf("0x%x", number), false)
	if err != nil {
		return nil, err
	}
	var txs []libcommon.Hash
	for _, item := range result.GetArray("transactions") {
		txs = append(txs, hexToHash(string(item.GetStringBytes())))
	}
	return &RemoteBlock{Header: *header, Transactions: txs}, nil
}

func (c *httpClient) AccountAt(ctx context.Context, address libcommon.Address, blockNumber uint64) (*RemoteAccount, error) {
	tag := fmt.Sprintf("0x%x", blockNumber)
	balanceResult, err := c.call(ctx, "eth_getBalance", address.String(), tag)
	if err != nil {
		return nil, err
	}
	nonceResult, err := c.call(ctx, "eth_getTransactionCount", address.String(), tag)
	if err != nil {
		return nil, err
	}
	codeResult, err := c.call(ctx, "eth_getCode", address.String(), tag)
	if err != nil {
		return nil, err
	}
	code := hexToBytes(string(codeResult.GetStringBytes()))
	codeHash := libcommon.EmptyCodeHash
	if len(code) > 0 {
		codeHash = libcommon.Keccak256(code)
	}
	return &RemoteAccount{
		Balance:  hexToU256(string(balanceResult.GetStringBytes())),
		Nonce:    hexToU64(string(nonceResult.GetStringBytes())),
		CodeHash: codeHash,
	}, nil
}

func (c *httpClient) StorageAt(ctx context.Context, address libcommon.Address, slot libcommon.U256, blockNumber uint64) (libcommon.U256, error) {
	tag := fmt.Sprintf("0x%x", blockNumber)
	result, err := c.call(ctx, "eth_getStorageAt", address.String(), slot.Uint256().Hex(), tag)
	if err != nil {
		return libcommon.U256{}, err
	}
	return hexToU256(string(result.GetStringBytes())), nil
}

func (c *httpClient) CodeAt(ctx context.Context, address libcommon.Address, blockNumber uint64) (libcommon.Bytes, error) {
	tag := fmt.Sprintf("0x%x", blockNumber)
	result, err := c.call(ctx, "eth_getCode", address.String(), tag)
	if err != nil {
		return nil, err
	}
	return hexToBytes(string(result.GetStringBytes())), nil
}
