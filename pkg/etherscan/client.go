package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenguard/honeypot-checker/pkg/types"
)

// ErrNotVerified means the contract has no published source on the explorer.
// A status, not a fault.
var ErrNotVerified = errors.New("etherscan: contract source code not verified")

// Client talks to the Etherscan-compatible account/contract API.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type transferRow struct {
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	GasPrice        string `json:"gasPrice"`
	GasUsed         string `json:"gasUsed"`
	ContractAddress string `json:"contractAddress"`
	Hash            string `json:"hash"`
}

func (c *Client) get(ctx context.Context, q url.Values) (*apiResponse, error) {
	q.Set("apikey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("etherscan request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("etherscan: HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("etherscan read body: %w", err)
	}
	out := new(apiResponse)
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("etherscan decode response: %w", err)
	}
	return out, nil
}

// TokenTransfers fetches one page of token-transfer events for the contract.
// Pages are 1-based; offset is the page size. An exhausted history comes back
// as an empty slice with a nil error so callers can tell "done" from "broken".
func (c *Client) TokenTransfers(ctx context.Context, token common.Address, page, offset int, order types.SortOrder) ([]types.TransferRecord, error) {
	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", "tokentx")
	q.Set("contractaddress", token.Hex())
	q.Set("page", strconv.Itoa(page))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("sort", string(order))

	resp, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}
	if resp.Status != "1" {
		if strings.Contains(resp.Message, "No transactions found") {
			return nil, nil
		}
		return nil, fmt.Errorf("etherscan API error: %s", apiErrorDetail(resp))
	}

	var rows []transferRow
	if err := json.Unmarshal(resp.Result, &rows); err != nil {
		return nil, fmt.Errorf("etherscan decode transfers: %w", err)
	}

	records := make([]types.TransferRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r transferRow) toRecord() (types.TransferRecord, error) {
	value, ok := new(big.Int).SetString(r.Value, 10)
	if !ok {
		return types.TransferRecord{}, fmt.Errorf("etherscan: bad value %q in tx %s", r.Value, r.Hash)
	}
	gasPrice, ok := new(big.Int).SetString(r.GasPrice, 10)
	if !ok {
		return types.TransferRecord{}, fmt.Errorf("etherscan: bad gasPrice %q in tx %s", r.GasPrice, r.Hash)
	}
	gasUsed, ok := new(big.Int).SetString(r.GasUsed, 10)
	if !ok {
		return types.TransferRecord{}, fmt.Errorf("etherscan: bad gasUsed %q in tx %s", r.GasUsed, r.Hash)
	}
	return types.TransferRecord{
		From:            common.HexToAddress(r.From),
		To:              common.HexToAddress(r.To),
		Value:           value,
		GasPrice:        gasPrice,
		GasUsed:         gasUsed,
		ContractAddress: common.HexToAddress(r.ContractAddress),
		TxHash:          common.HexToHash(r.Hash),
	}, nil
}

// ContractABI fetches the verified ABI JSON for the contract, or
// ErrNotVerified when the explorer has no source for it.
func (c *Client) ContractABI(ctx context.Context, address common.Address) (string, error) {
	q := url.Values{}
	q.Set("module", "contract")
	q.Set("action", "getabi")
	q.Set("address", address.Hex())

	resp, err := c.get(ctx, q)
	if err != nil {
		return "", err
	}
	if resp.Status != "1" {
		return "", ErrNotVerified
	}
	var abiJSON string
	if err := json.Unmarshal(resp.Result, &abiJSON); err != nil {
		return "", fmt.Errorf("etherscan decode abi: %w", err)
	}
	return abiJSON, nil
}

// IsContractVerified reports whether the contract has published source.
// Transport errors still surface; NotVerified does not.
func (c *Client) IsContractVerified(ctx context.Context, address common.Address) (bool, error) {
	_, err := c.ContractABI(ctx, address)
	if errors.Is(err, ErrNotVerified) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func apiErrorDetail(resp *apiResponse) string {
	var detail string
	if err := json.Unmarshal(resp.Result, &detail); err == nil && detail != "" {
		return fmt.Sprintf("%s: %s", resp.Message, detail)
	}
	return resp.Message
}
