package data

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotCSV = `from_address,to_address,value,gas_price,gas_used,contract_address,tx_hash
0x0000000000000000000000000000000000001111,0x0000000000000000000000000000000000002222,1000,2,21000,0x36e6309aa7a923FB111AE50B56BFb3CFB2256F89,0x0000000000000000000000000000000000000000000000000000000000000001
0x0000000000000000000000000000000000002222,0x0000000000000000000000000000000000003333,400,3,52000,0x36e6309aa7a923FB111AE50B56BFb3CFB2256F89,0x0000000000000000000000000000000000000000000000000000000000000002
0x0000000000000000000000000000000000001111,0x0000000000000000000000000000000000002222,777,1,21000,0x000000000000000000000000000000000000beef,0x0000000000000000000000000000000000000000000000000000000000000003
`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transfers.csv")
	require.NoError(t, os.WriteFile(path, []byte(snapshotCSV), 0600))
	return path
}

func TestReadTransfersFromCSVFiltersByToken(t *testing.T) {
	token := common.HexToAddress("0x36e6309aa7a923FB111AE50B56BFb3CFB2256F89")

	records, err := ReadTransfersFromCSV(writeSnapshot(t), token)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, common.HexToAddress("0x1111"), records[0].From)
	assert.Equal(t, common.HexToAddress("0x2222"), records[0].To)
	assert.Equal(t, big.NewInt(1000), records[0].Value)
	assert.Equal(t, big.NewInt(2), records[0].GasPrice)
	assert.Equal(t, big.NewInt(21000), records[0].GasUsed)
	assert.Equal(t, token, records[0].ContractAddress)
	assert.Equal(t, big.NewInt(400), records[1].Value)
}

func TestReadTransfersFromCSVZeroTokenKeepsEverything(t *testing.T) {
	records, err := ReadTransfersFromCSV(writeSnapshot(t), common.Address{})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestReadTransfersFromCSVMissingFile(t *testing.T) {
	_, err := ReadTransfersFromCSV(filepath.Join(t.TempDir(), "nope.csv"), common.Address{})
	assert.Error(t, err)
}

func TestReadTransfersFromCSVMalformedRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	body := "from_address,to_address,value,gas_price,gas_used,contract_address,tx_hash\nnot-an-address,0x0000000000000000000000000000000000002222,1,1,1,0x000000000000000000000000000000000000beef,0x0000000000000000000000000000000000000000000000000000000000000001\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	_, err := ReadTransfersFromCSV(path, common.Address{})
	assert.Error(t, err)
}
