package memory

import (
	"testing"

	"moneytrack/internal/ledger"
	"moneytrack/internal/storage/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ledger.Store { return New() })
}
