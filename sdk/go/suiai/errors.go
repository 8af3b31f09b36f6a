package suiai

import (
	xerrors "SuiAI-SDK/internal/errors"
)

// Code identifies an error category.
type Code = xerrors.Code

// Error codes returned by the SDK.
const (
	CodeUnknown             = xerrors.CodeUnknown
	CodeInvalidArgument     = xerrors.CodeInvalidArgument
	CodeNotFound            = xerrors.CodeNotFound
	CodeMissingIdentity     = xerrors.CodeMissingIdentity
	CodeInvalidMnemonic     = xerrors.CodeInvalidMnemonic
	CodeInvalidKeyEncoding  = xerrors.CodeInvalidKeyEncoding
	CodeNetwork             = xerrors.CodeNetwork
	CodeRejectedTransaction = xerrors.CodeRejectedTransaction
	CodeLedgerFault         = xerrors.CodeLedgerFault
	CodeNotImplemented      = xerrors.CodeNotImplemented
	CodeDecoding            = xerrors.CodeDecoding
)

// Sentinels for errors.Is. Matching is by code, so any error carrying the
// same code matches regardless of message or metadata.
var (
	ErrMissingIdentity     error = xerrors.New(CodeMissingIdentity, "")
	ErrInvalidMnemonic     error = xerrors.New(CodeInvalidMnemonic, "")
	ErrInvalidKeyEncoding  error = xerrors.New(CodeInvalidKeyEncoding, "")
	ErrNetwork             error = xerrors.New(CodeNetwork, "")
	ErrRejectedTransaction error = xerrors.New(CodeRejectedTransaction, "")
	ErrLedgerFault         error = xerrors.New(CodeLedgerFault, "")
	ErrNotImplemented      error = xerrors.New(CodeNotImplemented, "")
	ErrDecoding            error = xerrors.New(CodeDecoding, "")
	ErrNotFound            error = xerrors.New(CodeNotFound, "")
	ErrInvalidArgument     error = xerrors.New(CodeInvalidArgument, "")
)

// CodeOf returns the code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	return xerrors.CodeOf(err)
}

// MetadataOf returns the key/value context attached to err, such as the
// transaction digest and whether the submission outcome is unknown.
func MetadataOf(err error) map[string]string {
	return xerrors.MetadataOf(err)
}

// IsRetryable reports whether repeating the call may succeed. The SDK never
// retries on its own.
func IsRetryable(err error) bool {
	return xerrors.RetryableError(err)
}
