package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/transfer-store/transfer"
)

var rec = transfer.Transfer{Amount: 50, Date: "2022-01-22", IBAN: "DE1232", AccountHolder: "a b", Note: "note"}

func TestAddTransfer(t *testing.T) {
	one, err := addTransfer(transfer.Transfers{}, "1a", rec)
	require.NoError(t, err)
	assert.Equal(t, transfer.Transfers{"1a": rec}, one)

	two, err := addTransfer(one, "1b", rec)
	require.NoError(t, err)
	assert.Equal(t, transfer.Transfers{"1a": rec, "1b": rec}, two)
	assert.Len(t, one, 1, "input must not be modified")

	_, err = addTransfer(two, "1a", rec)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUpdateTransfer(t *testing.T) {
	other := transfer.Transfer{Amount: -50, Date: "2022-01-24", IBAN: "DE1232"}
	base := transfer.Transfers{"1a": rec}

	got, err := updateTransfer(base, "1a", other)
	require.NoError(t, err)
	assert.Equal(t, transfer.Transfers{"1a": other}, got)
	assert.Equal(t, rec, base["1a"])

	_, err = updateTransfer(transfer.Transfers{}, "1a", other)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTransfer(t *testing.T) {
	base := transfer.Transfers{"1a": rec}
	assert.Equal(t, transfer.Transfers{}, deleteTransfer(base, "1a"))
	assert.Equal(t, transfer.Transfers{"1a": rec}, deleteTransfer(base, "zz"))
	assert.Len(t, base, 1)
	assert.Equal(t, transfer.Transfers{}, deleteTransfer(nil, "1a"))
}

func TestInternalErrorWrapsOnce(t *testing.T) {
	inner := internal("read", assert.AnError)
	outer := internal("write", inner)
	assert.Same(t, inner, outer)
	assert.ErrorIs(t, outer, assert.AnError)
	assert.ErrorIs(t, outer, ErrInternal)
	assert.Nil(t, internal("read", nil))
}
