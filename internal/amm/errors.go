package amm

import "errors"

// Revert reasons, as the reference contracts spell them.
var (
	ErrTransferFailed              = errors.New("UniswapV2: TRANSFER_FAILED")
	ErrTransferFromFailed          = errors.New("TransferHelper: TRANSFER_FROM_FAILED")
	ErrInsufficientOutputAmount    = errors.New("UniswapV2: INSUFFICIENT_OUTPUT_AMOUNT")
	ErrInsufficientInputAmount     = errors.New("UniswapV2: INSUFFICIENT_INPUT_AMOUNT")
	ErrInsufficientLiquidity       = errors.New("UniswapV2: INSUFFICIENT_LIQUIDITY")
	ErrInsufficientLiquidityMinted = errors.New("UniswapV2: INSUFFICIENT_LIQUIDITY_MINTED")
	ErrK                           = errors.New("UniswapV2: K")
	ErrIdenticalAddresses          = errors.New("UniswapV2: IDENTICAL_ADDRESSES")
	ErrZeroAddress                 = errors.New("UniswapV2: ZERO_ADDRESS")
	ErrPairExists                  = errors.New("UniswapV2: PAIR_EXISTS")
	ErrPairNotFound                = errors.New("UniswapV2: PAIR_NOT_FOUND")
	ErrRouterOutput                = errors.New("UniswapV2Router: INSUFFICIENT_OUTPUT_AMOUNT")
	ErrRouterAAmount               = errors.New("UniswapV2Router: INSUFFICIENT_A_AMOUNT")
	ErrRouterBAmount               = errors.New("UniswapV2Router: INSUFFICIENT_B_AMOUNT")
	ErrInvalidPath                 = errors.New("UniswapV2Router: INVALID_PATH")
	ErrUnknownToken                = errors.New("amm: token not registered")
	ErrInsufficientNative          = errors.New("amm: insufficient native balance")
)
