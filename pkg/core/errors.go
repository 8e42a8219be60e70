package core

import "errors"

// =============================================================================
// Error taxonomy
// =============================================================================

// Kind classifies a failure by how a caller can recover from it.
type Kind int

const (
	// KindUnknown is reported for errors that did not originate here.
	KindUnknown Kind = iota
	// KindInit covers re-initialization and use-before-init misuse. Fatal.
	KindInit
	// KindParameter covers values rejected on their own merit (floors, malformed
	// config). The caller may retry with a valid value.
	KindParameter
	// KindPermission covers callers lacking the required role.
	KindPermission
	// KindTradingGate covers transfers blocked while trading is disabled.
	KindTradingGate
	// KindLimit covers anti-whale violations during a transfer.
	KindLimit
	// KindLedger covers balance and allowance shortfalls.
	KindLedger
	// KindCollaborator covers denials and failures of external collaborators.
	KindCollaborator
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindParameter:
		return "parameter"
	case KindPermission:
		return "permission"
	case KindTradingGate:
		return "trading_gate"
	case KindLimit:
		return "limit"
	case KindLedger:
		return "ledger"
	case KindCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

// Error is a token failure. Error() returns the revert reason verbatim so it can
// be matched by clients that only see strings.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func newError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Initialization.
var (
	ErrAlreadyInitialized = newError(KindInit, "Initializable: contract is already initialized")
	ErrNotInitialized     = newError(KindInit, "Token not initialized")
)

// Parameters.
var (
	ErrMaxTxBelowFloor     = newError(KindParameter, "maxTxAmount < 0.01%")
	ErrMaxWalletBelowFloor = newError(KindParameter, "maxWalletAmount < 0.01%")
	ErrInvalidConfig       = newError(KindParameter, "Invalid token configuration")
	ErrTaxTooHigh          = newError(KindParameter, "Tax exceeds denominator")
	ErrMathOverflow        = newError(KindParameter, "Arithmetic overflow")
)

// Permissions.
var (
	ErrNotKarmaDeployer = newError(KindPermission, "Only Karma deployer")
	ErrNotKarma         = newError(KindPermission, "Only karma deployer")
	ErrNotKarmaDisable  = newError(KindPermission, "Only karma deployer can disable")
	ErrNotLimitsManager = newError(KindPermission, "Only limits manager")
	ErrNotOwner         = newError(KindPermission, "Ownable: caller is not the owner")
	ErrZeroOwner        = newError(KindParameter, "Ownable: new owner is the zero address")
)

// Trading gate.
var (
	ErrAlreadyEnabled  = newError(KindTradingGate, "Trading already active")
	ErrAlreadyDisabled = newError(KindTradingGate, "Trading not active")
	ErrTradingDisabled = newError(KindTradingGate, "Trading not enabled")
)

// Transfer limits.
var (
	ErrMaxTxExceeded     = newError(KindLimit, "Max transaction exceeded")
	ErrMaxWalletExceeded = newError(KindLimit, "Max wallet exceeded")
)

// Ledger.
var (
	ErrTransferFromZero      = newError(KindLedger, "ERC20: transfer from the zero address")
	ErrTransferToZero        = newError(KindLedger, "ERC20: transfer to the zero address")
	ErrApproveFromZero       = newError(KindLedger, "ERC20: approve from the zero address")
	ErrApproveToZero         = newError(KindLedger, "ERC20: approve to the zero address")
	ErrInsufficientBalance   = newError(KindLedger, "ERC20: transfer amount exceeds balance")
	ErrInsufficientAllowance = newError(KindLedger, "ERC20: insufficient allowance")
)

// Collaborators.
var (
	ErrAntiBotDenied      = newError(KindCollaborator, "AntiBot: transfer denied")
	ErrDistributionFailed = newError(KindCollaborator, "Reflection distribution failed")
	ErrPairResolution     = newError(KindCollaborator, "Pair resolution failed")
)
