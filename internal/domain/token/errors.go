// internal/domain/token/errors.go
package token

import (
	"errors"
	"fmt"
)

var (
	ErrFieldsRequired       = errors.New("decimals and supply required")
	ErrInvalidDecimals      = errors.New("decimals must be an integer between 0 and 255")
	ErrInvalidSupply        = errors.New("supply must be a non-negative integer")
	ErrSupplyOverflow       = errors.New("supply exceeds the maximum token amount")
	ErrEmptyMintAddress     = errors.New("createMint failed")
	ErrHolderAddressMissing = errors.New("token account has no address")
)

// Step は発行処理のどの段階かを表します。
type Step string

const (
	StepCreateMint           Step = "create_mint"
	StepResolveHolderAccount Step = "resolve_holder_account"
	StepMintTo               Step = "mint_to"
)

// StepError はチェーン呼び出しの失敗です（HTTP 500）。
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Step)
	}
	return e.Err.Error()
}

func (e *StepError) Unwrap() error { return e.Err }

// ValidationError はリクエスト不正です（HTTP 400）。チェーン呼び出し前に返されます。
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid wraps err as a ValidationError.
func Invalid(err error) error {
	return &ValidationError{Err: err}
}
