// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"

	"github.com/nezha-labs/staking/fixedpoint"
)

// Code is the stable numeric identifier of a failure, safe to persist and to
// branch on in downstream tooling.
type Code uint32

const (
	InvalidInstruction Code = iota
	NumericalOverflow
	NotEnoughStakeBalance
	EpochExpectedEndIsInPast
	WinningCombinationAlreadyPublished
	WinningCombinationNotPublished
	JackpotNotClaimableYet
	JackpotAlreadyClaimable
	NoPrizeToClaim
	YieldNotWithdrawn
	ReturnAmountIsZero
	WinnersAlreadyPublished
	InvalidWinnerTier
	ProcessedWinnersMetaMismatch
	WinnerIndexOutOfBounds
	WrongNumberOfWinnersInPage
	UnexpectedWinnerIndex
	PageIndexOutOfBounds
	RemovedInstruction
	ReturnAmountIsNonZeroButInvestedIsZero
	InvalidPrizeClaim
	PrizeAlreadyClaimed
	StakeUpdateRequestExists
	StakeUpdateAmountMismatch
	ProgramAlreadyInitialized
	PageIndexNotInSequence
	InsufficientBalance
	StakeUpdateQueueNotDrained
	InsuranceReserveShortfall
	WinnersOutOfOrder
	StakeUpdateAmountIsZero
	InvalidWinningCombination
	DivisionByZero

	numPlainCodes
)

const (
	missingSignatureBase        Code = 100
	invalidConstantBase         Code = 200
	invalidAccountBase          Code = 300
	invalidEpochStatusBase      Code = 400
	invalidStakeUpdateStateBase Code = 450
	unknownErrorBase            Code = 10000
)

var plainMessages = [numPlainCodes]string{
	"invalid instruction",
	"numerical overflow",
	"not enough stake balance",
	"epoch expected end is in the past",
	"winning combination already published",
	"winning combination not published",
	"jackpot not claimable yet",
	"jackpot already claimable",
	"no prize to claim",
	"yield not withdrawn",
	"return amount is zero",
	"winners already published",
	"invalid winner tier",
	"processed winners do not match meta",
	"winner index out of bounds",
	"wrong number of winners in page",
	"unexpected winner index",
	"page index out of bounds",
	"removed instruction",
	"return amount is non-zero but invested amount is zero",
	"invalid prize claim",
	"prize already claimed",
	"stake update request exists",
	"stake update amount mismatch",
	"program already initialized",
	"page index not in sequence",
	"insufficient balance",
	"stake update queue not drained",
	"insurance reserve cannot cover the premium",
	"winners out of order",
	"stake update amount is zero",
	"invalid winning combination",
	"division by zero",
}

// Kind groups codes so callers can branch without matching messages.
type Kind uint8

const (
	KindStaking Kind = iota
	KindInvalidInstruction
	KindArithmetic
	KindMissingSignature
	KindInvalidConstant
	KindInvalidAccount
	KindInvalidEpochStatus
	KindInvalidStakeUpdateState
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindStaking:
		return "staking"
	case KindInvalidInstruction:
		return "invalid-instruction"
	case KindArithmetic:
		return "arithmetic"
	case KindMissingSignature:
		return "missing-signature"
	case KindInvalidConstant:
		return "invalid-constant"
	case KindInvalidAccount:
		return "invalid-account"
	case KindInvalidEpochStatus:
		return "invalid-epoch-status"
	case KindInvalidStakeUpdateState:
		return "invalid-stake-update-state"
	default:
		return "unknown"
	}
}

// ErrRevert is a typed engine failure. An operation that returns one has not
// mutated any record.
type ErrRevert struct {
	code    Code
	kind    Kind
	message string
	cause   error
}

func (e *ErrRevert) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (code %d): %v", e.message, e.code, e.cause)
	}
	return fmt.Sprintf("%s (code %d)", e.message, e.code)
}

func (e *ErrRevert) Unwrap() error { return e.cause }

// Code returns the stable numeric code.
func (e *ErrRevert) Code() Code { return e.code }

// Kind returns the failure group.
func (e *ErrRevert) Kind() Kind { return e.kind }

// Is matches another ErrRevert carrying the same code.
func (e *ErrRevert) Is(target error) bool {
	var t *ErrRevert
	if errors.As(target, &t) {
		return t.code == e.code
	}
	return false
}

func kindOf(code Code) Kind {
	switch code {
	case InvalidInstruction, RemovedInstruction:
		return KindInvalidInstruction
	case NumericalOverflow, DivisionByZero:
		return KindArithmetic
	default:
		return KindStaking
	}
}

// New creates a failure for one of the plain codes.
func New(code Code) *ErrRevert {
	if code >= numPlainCodes {
		return FromCode(uint32(code))
	}
	return &ErrRevert{code: code, kind: kindOf(code), message: plainMessages[code]}
}

// Newf creates a failure for a plain code with extra context appended to the message.
func Newf(code Code, format string, args ...any) *ErrRevert {
	e := New(code)
	e.message = e.message + ": " + fmt.Sprintf(format, args...)
	return e
}

// Arithmetic maps a fixed-point failure onto DivisionByZero or NumericalOverflow,
// keeping the cause. Errors that already are reverts pass through unchanged.
func Arithmetic(err error) error {
	if err == nil {
		return nil
	}
	if IsRevertErr(err) {
		return err
	}
	code := NumericalOverflow
	if errors.Is(err, fixedpoint.ErrDivisionByZero) {
		code = DivisionByZero
	}
	e := New(code)
	e.cause = err
	return e
}

// MissingSignature reports that the signer holding role did not sign.
func MissingSignature(role Role) *ErrRevert {
	return &ErrRevert{
		code:    missingSignatureBase + Code(role),
		kind:    KindMissingSignature,
		message: "missing signature: " + role.String(),
	}
}

// InvalidConstant reports a key or configuration value outside policy.
func InvalidConstant(c Constant) *ErrRevert {
	return &ErrRevert{
		code:    invalidConstantBase + Code(c),
		kind:    KindInvalidConstant,
		message: "invalid constant: " + c.String(),
	}
}

// InvalidAccount reports a record that does not match the one the operation addresses.
func InvalidAccount(r RecordType) *ErrRevert {
	return &ErrRevert{
		code:    invalidAccountBase + Code(r),
		kind:    KindInvalidAccount,
		message: "invalid account: " + r.String(),
	}
}

// Status is the shape shared by the epoch status and stake update state enums.
type Status interface {
	~uint8
	fmt.Stringer
}

// InvalidEpochStatus reports that the epoch was not in the expected status.
// The code carries the actual status.
func InvalidEpochStatus[S Status](expected, actual S) *ErrRevert {
	return &ErrRevert{
		code:    invalidEpochStatusBase + Code(actual),
		kind:    KindInvalidEpochStatus,
		message: fmt.Sprintf("invalid epoch status: expected %v, actual %v", expected, actual),
	}
}

// InvalidStakeUpdateState reports a stake update request in the wrong state.
func InvalidStakeUpdateState[S Status](actual S) *ErrRevert {
	return &ErrRevert{
		code:    invalidStakeUpdateStateBase + Code(actual),
		kind:    KindInvalidStakeUpdateState,
		message: fmt.Sprintf("invalid stake update state: %v", actual),
	}
}

// UnknownError wraps a foreign code raised by a collaborator.
func UnknownError(code uint32) *ErrRevert {
	return &ErrRevert{
		code:    unknownErrorBase + Code(code),
		kind:    KindUnknown,
		message: fmt.Sprintf("unknown error %d", code),
	}
}

// FromCode decodes any numeric code. Codes this build does not know decode to
// KindUnknown while keeping their value.
func FromCode(code uint32) *ErrRevert {
	c := Code(code)
	switch {
	case c < numPlainCodes:
		return New(c)
	case c >= missingSignatureBase && c < missingSignatureBase+Code(numRoles):
		return MissingSignature(Role(c - missingSignatureBase))
	case c >= invalidConstantBase && c < invalidAccountBase && Constant(c-invalidConstantBase).known():
		return InvalidConstant(Constant(c - invalidConstantBase))
	case c >= invalidAccountBase && c < invalidAccountBase+Code(numRecordTypes):
		return InvalidAccount(RecordType(c - invalidAccountBase))
	case c >= invalidEpochStatusBase && c < invalidStakeUpdateStateBase:
		return &ErrRevert{
			code:    c,
			kind:    KindInvalidEpochStatus,
			message: fmt.Sprintf("invalid epoch status: actual %d", c-invalidEpochStatusBase),
		}
	case c >= invalidStakeUpdateStateBase && c < invalidStakeUpdateStateBase+50:
		return &ErrRevert{
			code:    c,
			kind:    KindInvalidStakeUpdateState,
			message: fmt.Sprintf("invalid stake update state: %d", c-invalidStakeUpdateStateBase),
		}
	case c >= unknownErrorBase:
		return UnknownError(code - uint32(unknownErrorBase))
	}
	return &ErrRevert{code: c, kind: KindUnknown, message: fmt.Sprintf("unknown error %d", code)}
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// CodeOf extracts the code of a revert, reporting false for any other error.
func CodeOf(err error) (Code, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.code, true
	}
	return 0, false
}
