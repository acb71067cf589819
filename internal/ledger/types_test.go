package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionHash(t *testing.T) {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	h1 := TransactionHash(date, dec("1500.00"), "WIRE FROM PROMOTER GMBH")
	h2 := TransactionHash(date, dec("1500.00"), "WIRE FROM PROMOTER GMBH")
	assert.Equal(t, h1, h2, "same inputs hash identically")
	assert.Len(t, h1, 64)

	h3 := TransactionHash(date, dec("1500.01"), "WIRE FROM PROMOTER GMBH")
	assert.NotEqual(t, h1, h3, "amount is part of the dedup key")

	h4 := TransactionHash(date.AddDate(0, 0, 1), dec("1500.00"), "WIRE FROM PROMOTER GMBH")
	assert.NotEqual(t, h1, h4, "date is part of the dedup key")

	h5 := TransactionHash(date, dec("1500.00"), "WIRE FROM OTHER GMBH")
	assert.NotEqual(t, h1, h5, "description is part of the dedup key")

	// Time-of-day is ignored; only the calendar date feeds the hash.
	noon := time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, h1, TransactionHash(noon, dec("1500.00"), "WIRE FROM PROMOTER GMBH"))
}
