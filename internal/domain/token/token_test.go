package token

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolderAddressFallbackOrder(t *testing.T) {
	addr, err := HolderAddress(HolderAccount{Address: "ata", PublicKey: "pk"})
	require.NoError(t, err)
	assert.Equal(t, "ata", addr)

	addr, err = HolderAddress(HolderAccount{Address: "  ", PublicKey: "pk"})
	require.NoError(t, err)
	assert.Equal(t, "pk", addr)

	_, err = HolderAddress(HolderAccount{})
	assert.ErrorIs(t, err, ErrHolderAddressMissing)
}

func TestScaleSupply(t *testing.T) {
	got, err := ScaleSupply(1000, 9, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), got)

	got, err = ScaleSupply(1000, 9, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000_000), got)

	got, err = ScaleSupply(0, 255, true)
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = ScaleSupply(math.MaxUint64, 0, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got)

	_, err = ScaleSupply(2, 19, true)
	assert.ErrorIs(t, err, ErrSupplyOverflow)

	_, err = ScaleSupply(1, 20, true)
	assert.ErrorIs(t, err, ErrSupplyOverflow)
}

func TestUISupply(t *testing.T) {
	assert.Equal(t, "0.000001", UISupply(1000, 9))
	assert.Equal(t, "1000", UISupply(1_000_000_000_000, 9))
	assert.Equal(t, "1.5", UISupply(1500, 3))
	assert.Equal(t, "42", UISupply(42, 0))
}

func TestStepErrorUnwraps(t *testing.T) {
	cause := errors.New("rpc down")
	err := fmt.Errorf("issue: %w", &StepError{Step: StepMintTo, Err: cause})

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepMintTo, stepErr.Step)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "rpc down", stepErr.Error())

	assert.Equal(t, "create_mint failed", (&StepError{Step: StepCreateMint}).Error())
}

func TestValidationError(t *testing.T) {
	err := Invalid(ErrFieldsRequired)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.ErrorIs(t, err, ErrFieldsRequired)
	assert.Equal(t, "decimals and supply required", err.Error())
}
