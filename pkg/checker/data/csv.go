package data

import (
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gocarina/gocsv"

	"github.com/tokenguard/honeypot-checker/pkg/types"
)

// ReadTransfersFromCSV loads a transfer-history snapshot. When token is a
// non-zero address, rows recorded against other contracts are dropped.
func ReadTransfersFromCSV(csvFile string, token common.Address) ([]types.TransferRecord, error) {
	f, err := os.Open(csvFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var (
		rows []*types.TransferRecord
	)

	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, err
	}

	records := make([]types.TransferRecord, 0, len(rows))
	for _, row := range rows {
		if token != (common.Address{}) && row.ContractAddress != token {
			continue
		}
		records = append(records, *row)
	}
	return records, nil
}
