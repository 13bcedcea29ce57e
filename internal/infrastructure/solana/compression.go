package solana

import (
	"context"
	"fmt"
	"strconv"
)

// CompressionClient is the ZK-compression indexer surface (Photon API). The
// compressed transfer engine re-derives its state from these queries on every
// invocation.
type CompressionClient interface {
	// GetCompressedTokenAccountsByOwner lists compressed token accounts for
	// an owner, optionally narrowed to one mint.
	GetCompressedTokenAccountsByOwner(ctx context.Context, owner string, mint string) ([]CompressedTokenAccount, error)

	// GetValidityProof fetches a proof that the given account hashes exist in
	// the state tree, required to spend them.
	GetValidityProof(ctx context.Context, hashes []string) (*ValidityProof, error)
}

// CompressedTokenAccount is one compressed balance entry.
type CompressedTokenAccount struct {
	Hash   string
	Owner  string
	Mint   string
	Amount uint64
}

// ValidityProof is the compressed proof blob plus the root it verifies
// against.
type ValidityProof struct {
	Proof []byte
	Root  string
}

// GetCompressedTokenAccountsByOwner implements CompressionClient over the
// same JSON-RPC transport.
func (c *HTTPClient) GetCompressedTokenAccountsByOwner(ctx context.Context, owner string, mint string) ([]CompressedTokenAccount, error) {
	opts := map[string]interface{}{"owner": owner}
	if mint != "" {
		opts["mint"] = mint
	}

	var result struct {
		Value struct {
			Items []struct {
				Account struct {
					Hash string `json:"hash"`
				} `json:"account"`
				TokenData struct {
					Owner  string `json:"owner"`
					Mint   string `json:"mint"`
					Amount string `json:"amount"`
				} `json:"tokenData"`
			} `json:"items"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getCompressedTokenAccountsByOwner", []interface{}{opts}, &result); err != nil {
		return nil, err
	}

	accounts := make([]CompressedTokenAccount, 0, len(result.Value.Items))
	for _, item := range result.Value.Items {
		amount, err := strconv.ParseUint(item.TokenData.Amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse compressed amount %q: %w", item.TokenData.Amount, err)
		}
		accounts = append(accounts, CompressedTokenAccount{
			Hash:   item.Account.Hash,
			Owner:  item.TokenData.Owner,
			Mint:   item.TokenData.Mint,
			Amount: amount,
		})
	}
	return accounts, nil
}

// GetValidityProof implements CompressionClient over the same JSON-RPC
// transport.
func (c *HTTPClient) GetValidityProof(ctx context.Context, hashes []string) (*ValidityProof, error) {
	params := []interface{}{
		map[string]interface{}{"hashes": hashes},
	}

	var result struct {
		Value struct {
			CompressedProof *struct {
				A []byte `json:"a"`
				B []byte `json:"b"`
				C []byte `json:"c"`
			} `json:"compressedProof"`
			Roots []string `json:"roots"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getValidityProof", params, &result); err != nil {
		return nil, err
	}
	if result.Value.CompressedProof == nil {
		return nil, nil
	}

	proof := make([]byte, 0, len(result.Value.CompressedProof.A)+len(result.Value.CompressedProof.B)+len(result.Value.CompressedProof.C))
	proof = append(proof, result.Value.CompressedProof.A...)
	proof = append(proof, result.Value.CompressedProof.B...)
	proof = append(proof, result.Value.CompressedProof.C...)

	vp := &ValidityProof{Proof: proof}
	if len(result.Value.Roots) > 0 {
		vp.Root = result.Value.Roots[0]
	}
	return vp, nil
}
