// Package status defines the closed set of record status codes the core
// assigns to completed transactions.
package status

// Code is a record's outcome status. The zero value, Unknown, is never a
// legal terminal status for an externalized record.
type Code int

const (
	Unknown Code = iota
	Success
	DuplicateTransaction
	InvalidTransactionBody
	InvalidSignature
	InsufficientPayerBalance
	Unauthorized
	NotSupported
	AuthorizationFailed
	EntityNotAllowedToDelete
	MaxChildRecordsExceeded
	InvalidAccountID
	InsufficientAccountBalance
	HandlerFailure
)

var names = map[Code]string{
	Unknown:                    "UNKNOWN",
	Success:                    "SUCCESS",
	DuplicateTransaction:       "DUPLICATE_TRANSACTION",
	InvalidTransactionBody:     "INVALID_TRANSACTION_BODY",
	InvalidSignature:           "INVALID_SIGNATURE",
	InsufficientPayerBalance:   "INSUFFICIENT_PAYER_BALANCE",
	Unauthorized:               "UNAUTHORIZED",
	NotSupported:               "NOT_SUPPORTED",
	AuthorizationFailed:        "AUTHORIZATION_FAILED",
	EntityNotAllowedToDelete:   "ENTITY_NOT_ALLOWED_TO_DELETE",
	MaxChildRecordsExceeded:    "MAX_CHILD_RECORDS_EXCEEDED",
	InvalidAccountID:           "INVALID_ACCOUNT_ID",
	InsufficientAccountBalance: "INSUFFICIENT_ACCOUNT_BALANCE",
	HandlerFailure:             "HANDLER_FAILURE",
}

// String renders the wire-style SCREAMING_SNAKE_CASE name.
func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsSuccess reports whether c represents a successful, externalizable
// transaction outcome.
func (c Code) IsSuccess() bool { return c == Success }
