// internal/adapters/in/http/handlers/token_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	tokendom "github.com/ALEX-SHR-SUDO/check/internal/domain/token"
)

const (
	maxBodyBytes       = 1 << 20
	genericIssueFailed = "token issuance failed"
)

// TokenIssuer は handler が依存する最小のユースケース IF です。
type TokenIssuer interface {
	Issue(ctx context.Context, p tokendom.IssueParams) (*tokendom.IssueResult, error)
}

// TokenHandlerOptions は /create-token の挙動を切り替える設定です。
type TokenHandlerOptions struct {
	// DefaultsEnabled: decimals/supply が無い場合に 9/1000 を使う
	DefaultsEnabled bool
	// ScaleWholeUnits: supply を 10^decimals 倍して最小単位にする
	ScaleWholeUnits bool
	// ExposeErrors: チェーン側のエラーメッセージをそのまま返す
	ExposeErrors bool
}

type TokenHandler struct {
	uc       TokenIssuer
	opts     TokenHandlerOptions
	validate *validator.Validate
}

func NewTokenHandler(uc TokenIssuer, opts TokenHandlerOptions) *TokenHandler {
	return &TokenHandler{
		uc:       uc,
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type createTokenRequest struct {
	Decimals *int64  `json:"decimals" validate:"required,min=0,max=255"`
	Supply   *uint64 `json:"supply" validate:"required"`
}

type createTokenResponse struct {
	Success      bool   `json:"success"`
	MintAddress  string `json:"mintAddress"`
	OwnerAccount string `json:"ownerAccount"`
	TxSignature  string `json:"txSignature,omitempty"`
	Decimals     uint8  `json:"decimals"`
	// Amount はミントした最小単位の量（u64 を文字列で返す）
	Amount   string `json:"amount"`
	UISupply string `json:"uiSupply"`
}

// CreateToken handles POST /create-token.
func (h *TokenHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	logger := log.With().
		Str("component", "token_handler").
		Str("requestId", middleware.GetReqID(r.Context())).
		Logger()

	params, err := h.parseParams(w, r)
	if err != nil {
		logger.Info().Err(err).Msg("rejected create-token request")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// クライアントが切断しても、送信済みのチェーン処理は中断しない
	ctx := context.WithoutCancel(r.Context())

	res, err := h.uc.Issue(ctx, params)
	if err != nil {
		h.writeIssueError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createTokenResponse{
		Success:      true,
		MintAddress:  res.MintAddress,
		OwnerAccount: res.OwnerAccount,
		TxSignature:  res.TxSignature,
		Decimals:     params.Decimals,
		Amount:       strconv.FormatUint(params.Supply, 10),
		UISupply:     tokendom.UISupply(params.Supply, params.Decimals),
	})
}

// parseParams はボディを読み、デフォルト補完・検証・スケーリングを行います。
// 返すエラーはすべて 400 扱いです。
func (h *TokenHandler) parseParams(w http.ResponseWriter, r *http.Request) (tokendom.IssueParams, error) {
	var req createTokenRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return tokendom.IssueParams{}, decodeError(err)
	}
	// JSON 値の後ろに余計なデータがあるボディは受け付けない
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return tokendom.IssueParams{}, tokendom.Invalid(errors.New("invalid JSON body"))
	}

	if h.opts.DefaultsEnabled {
		if req.Decimals == nil {
			d := int64(tokendom.DefaultDecimals)
			req.Decimals = &d
		}
		if req.Supply == nil {
			s := tokendom.DefaultSupply
			req.Supply = &s
		}
	}

	if err := h.validate.Struct(req); err != nil {
		return tokendom.IssueParams{}, validationError(err)
	}

	decimals := uint8(*req.Decimals)
	supply, err := tokendom.ScaleSupply(*req.Supply, decimals, h.opts.ScaleWholeUnits)
	if err != nil {
		return tokendom.IssueParams{}, tokendom.Invalid(err)
	}

	return tokendom.IssueParams{Decimals: decimals, Supply: supply}, nil
}

func (h *TokenHandler) writeIssueError(w http.ResponseWriter, err error) {
	resp := errorResponse{Success: false, Error: genericIssueFailed}
	if h.opts.ExposeErrors {
		resp.Error = err.Error()
	}

	var stepErr *tokendom.StepError
	if errors.As(err, &stepErr) {
		resp.Step = string(stepErr.Step)
	}

	log.Error().Err(err).Str("component", "token_handler").Str("step", resp.Step).Msg("error in /create-token")
	writeJSON(w, http.StatusInternalServerError, resp)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch typeErr.Field {
		case "decimals":
			return tokendom.Invalid(tokendom.ErrInvalidDecimals)
		case "supply":
			return tokendom.Invalid(tokendom.ErrInvalidSupply)
		}
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return tokendom.Invalid(errors.New("request body too large"))
	}
	return tokendom.Invalid(errors.New("invalid JSON body"))
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return tokendom.Invalid(err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return tokendom.Invalid(tokendom.ErrFieldsRequired)
		}
	}
	for _, fe := range fieldErrs {
		if fe.Field() == "Decimals" {
			return tokendom.Invalid(tokendom.ErrInvalidDecimals)
		}
	}
	return tokendom.Invalid(tokendom.ErrInvalidSupply)
}
