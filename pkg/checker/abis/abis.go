package abis

import (
	"bytes"
	_ "embed"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed erc20.json
var erc20 []byte

//go:embed univ2router.json
var univ2router []byte

var (
	ERC20           abi.ABI
	UniswapV2Router abi.ABI
)

func init() {
	builder := []struct {
		ABI  *abi.ABI
		data []byte
	}{
		{&ERC20, erc20},
		{&UniswapV2Router, univ2router},
	}

	for _, b := range builder {
		var err error
		*b.ABI, err = abi.JSON(bytes.NewReader(b.data))
		if err != nil {
			panic(err)
		}
	}
}
