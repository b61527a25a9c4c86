package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error wraps exactly one of these so handlers
// can map to an HTTP status with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
)

// Not-found errors
var (
	ErrUserNotFound        = fmt.Errorf("%w: user", ErrNotFound)
	ErrBookNotFound        = fmt.Errorf("%w: book", ErrNotFound)
	ErrAccountNotFound     = fmt.Errorf("%w: account", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("%w: transaction", ErrNotFound)
	ErrCurrencyNotFound    = fmt.Errorf("%w: currency", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("%w: category", ErrNotFound)
	ErrTagNotFound         = fmt.Errorf("%w: tag", ErrNotFound)
	ErrPersonNotFound      = fmt.Errorf("%w: person", ErrNotFound)
	ErrBudgetNotFound      = fmt.Errorf("%w: budget", ErrNotFound)
	ErrMemberNotFound      = fmt.Errorf("%w: member", ErrNotFound)
	ErrAPITokenNotFound    = fmt.Errorf("%w: api token", ErrNotFound)
	ErrReceiptNotFound     = fmt.Errorf("%w: receipt", ErrNotFound)
)

// Validation errors
var (
	ErrNameRequired           = fmt.Errorf("%w: name is required", ErrValidation)
	ErrNameLength             = fmt.Errorf("%w: name length out of range", ErrValidation)
	ErrInvalidAmount          = fmt.Errorf("%w: amount out of range", ErrValidation)
	ErrInvalidRate            = fmt.Errorf("%w: rate must be positive", ErrValidation)
	ErrInvalidTransactionType = fmt.Errorf("%w: invalid transaction type", ErrValidation)
	ErrInvalidPermission      = fmt.Errorf("%w: invalid permission", ErrValidation)
	ErrInvalidPeriod          = fmt.Errorf("%w: invalid budget period", ErrValidation)
	ErrInvalidColor           = fmt.Errorf("%w: invalid color", ErrValidation)
	ErrInvalidPersonType      = fmt.Errorf("%w: invalid person type", ErrValidation)
	ErrCurrencyNotInBook      = fmt.Errorf("%w: currency not in book currency set", ErrValidation)
	ErrDefaultCurrencyMissing = fmt.Errorf("%w: default currency must be in currency set", ErrValidation)
	ErrEmptyCurrencySet       = fmt.Errorf("%w: book needs at least one currency", ErrValidation)
	ErrCategoryTypeMismatch   = fmt.Errorf("%w: category type does not match transaction type", ErrValidation)
	ErrSameAccountTransfer    = fmt.Errorf("%w: transfer needs two distinct accounts", ErrValidation)
	ErrCodeImmutable          = fmt.Errorf("%w: currency code cannot change", ErrValidation)
	ErrEmailRequired          = fmt.Errorf("%w: email is required", ErrValidation)
	ErrCodeRequired           = fmt.Errorf("%w: currency code is required", ErrValidation)
	ErrDescriptionTooLong     = fmt.Errorf("%w: description too long", ErrValidation)
	ErrInvalidBucket          = fmt.Errorf("%w: bucket must be day or month", ErrValidation)
	ErrInvalidTimezone        = fmt.Errorf("%w: unknown timezone", ErrValidation)
	ErrTransferToSelf         = fmt.Errorf("%w: cannot transfer a book to yourself", ErrValidation)
	ErrInvalidImage           = fmt.Errorf("%w: unsupported or corrupt image", ErrValidation)
	ErrImageTooLarge          = fmt.Errorf("%w: image exceeds size limit", ErrValidation)
	ErrImageTooSmall          = fmt.Errorf("%w: image below minimum dimensions", ErrValidation)
)

// Conflict errors (business-rule violations)
var (
	ErrCurrencyInUse         = fmt.Errorf("%w: currency is referenced by a book or account", ErrConflict)
	ErrSystemDefaultCurrency = fmt.Errorf("%w: system default currency cannot be deleted", ErrConflict)
	ErrDuplicateCurrency     = fmt.Errorf("%w: currency code already exists", ErrConflict)
	ErrAccountHasTxns        = fmt.Errorf("%w: account has transactions", ErrConflict)
	ErrBookHasAccounts       = fmt.Errorf("%w: book still has accounts", ErrConflict)
	ErrCategoryInUse         = fmt.Errorf("%w: category is referenced by transactions", ErrConflict)
	ErrTagInUse              = fmt.Errorf("%w: tag is referenced by transactions", ErrConflict)
	ErrPersonInUse           = fmt.Errorf("%w: person is referenced by transactions", ErrConflict)
	ErrAlreadyMember         = fmt.Errorf("%w: user is already a member", ErrConflict)
	ErrCurrencyLocked        = fmt.Errorf("%w: account currency is locked after its first transaction", ErrConflict)
	ErrTransferLegLocked     = fmt.Errorf("%w: transfer legs cannot be edited individually", ErrConflict)
	ErrTooManyAPITokens      = fmt.Errorf("%w: too many active api tokens", ErrConflict)
)

// Authorization errors
var (
	ErrNotMember           = fmt.Errorf("%w: not a member of this book", ErrForbidden)
	ErrInsufficientRole    = fmt.Errorf("%w: insufficient permission", ErrForbidden)
	ErrCreatorImmutable    = fmt.Errorf("%w: the creator cannot be removed or reassigned", ErrForbidden)
	ErrCannotRemoveSelf    = fmt.Errorf("%w: cannot remove yourself", ErrForbidden)
	ErrOnlyCreatorTransfer = fmt.Errorf("%w: only the creator can transfer a book", ErrForbidden)
)

// Validation constants
const (
	MinAccountNameLength = 2
	MaxAccountNameLength = 20
	MaxNameLength        = 255
	MaxDescriptionLength = 1000
)
