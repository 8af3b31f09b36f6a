package errors

import (
	stdErrors "errors"
	"fmt"
	"sync"
)

// Code 表示 SDK 内统一的错误码。
type Code string

// Severity 描述错误的严重程度，用于日志分级。
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Attributes 为错误码提供默认行为。
type Attributes struct {
	Message   string
	Severity  Severity
	Retryable bool
}

const (
	CodeUnknown             Code = "UNKNOWN"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeNotFound            Code = "NOT_FOUND"
	CodeMissingIdentity     Code = "MISSING_IDENTITY"
	CodeInvalidMnemonic     Code = "INVALID_MNEMONIC"
	CodeInvalidKeyEncoding  Code = "INVALID_KEY_ENCODING"
	CodeNetwork             Code = "NETWORK_ERROR"
	CodeRejectedTransaction Code = "REJECTED_TRANSACTION"
	CodeLedgerFault         Code = "LEDGER_FAULT"
	CodeNotImplemented      Code = "NOT_IMPLEMENTED"
	CodeDecoding            Code = "DECODING_ERROR"
	CodeStorageFailure      Code = "STORAGE_FAILURE"
)

// Metadata keys shared by the submission path.
const (
	MetaDigest    = "digest"
	MetaOutcome   = "outcome"
	MetaGasUsed   = "gas_used"
	MetaRequestID = "request_id"
	MetaObjectID  = "object_id"
)

var (
	registryMu sync.RWMutex
	registry   = map[Code]Attributes{
		CodeUnknown: {
			Message:  "unknown error",
			Severity: SeverityCritical,
		},
		CodeInvalidArgument: {
			Message:  "invalid argument",
			Severity: SeverityInfo,
		},
		CodeNotFound: {
			Message:  "resource not found",
			Severity: SeverityInfo,
		},
		CodeMissingIdentity: {
			Message:  "signing identity is not set",
			Severity: SeverityInfo,
		},
		CodeInvalidMnemonic: {
			Message:  "invalid mnemonic phrase",
			Severity: SeverityInfo,
		},
		CodeInvalidKeyEncoding: {
			Message:  "invalid secret key encoding",
			Severity: SeverityInfo,
		},
		CodeNetwork: {
			Message:   "ledger transport failure",
			Severity:  SeverityWarning,
			Retryable: true,
		},
		CodeRejectedTransaction: {
			Message:  "transaction rejected by ledger",
			Severity: SeverityWarning,
		},
		CodeLedgerFault: {
			Message:  "transaction execution aborted",
			Severity: SeverityWarning,
		},
		CodeNotImplemented: {
			Message:  "capability not implemented",
			Severity: SeverityInfo,
		},
		CodeDecoding: {
			Message:  "malformed inference output",
			Severity: SeverityWarning,
		},
		CodeStorageFailure: {
			Message:   "storage failure",
			Severity:  SeverityCritical,
			Retryable: true,
		},
	}
)

// Register 允许调用方注册新的错误码描述。
func Register(code Code, attr Attributes) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[code] = attr
}

// AttributesOf 返回错误码对应的属性。若未注册则返回 UNKNOWN 的属性。
func AttributesOf(code Code) Attributes {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if attr, ok := registry[code]; ok {
		return attr
	}
	return registry[CodeUnknown]
}

// Error 是 SDK 内统一的错误类型。
type Error struct {
	code      Code
	message   string
	cause     error
	metadata  map[string]string
	retryable *bool
	severity  *Severity
}

// Option 定义可选配置。
type Option func(*Error)

// WithMetadata 附加额外信息。
func WithMetadata(key, value string) Option {
	return func(e *Error) {
		if e.metadata == nil {
			e.metadata = make(map[string]string)
		}
		e.metadata[key] = value
	}
}

// WithRetryable 指定错误是否可重试。
func WithRetryable(retryable bool) Option {
	return func(e *Error) {
		e.retryable = &retryable
	}
}

// WithSeverity 覆盖默认严重程度。
func WithSeverity(sev Severity) Option {
	return func(e *Error) {
		e.severity = &sev
	}
}

// New 创建一个新的错误实例。
func New(code Code, message string, opts ...Option) *Error {
	if message == "" {
		message = AttributesOf(code).Message
	}
	e := &Error{code: code, message: message}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Wrap 在已有错误外包裹统一错误类型。
func Wrap(code Code, cause error, message string, opts ...Option) *Error {
	e := New(code, message, opts...)
	e.cause = cause
	return e
}

// Annotate 返回追加了元数据的副本，原错误保持不变；非统一错误会先包装为 UNKNOWN。
func Annotate(err error, opts ...Option) error {
	if err == nil {
		return nil
	}
	e, ok := From(err)
	if ok {
		clone := *e
		clone.metadata = e.Metadata()
		e = &clone
	} else {
		e = Wrap(CodeUnknown, err, "")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Error 实现 error 接口。
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

// Unwrap 实现 errors.Unwrap。
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is 允许通过 errors.Is 判断是否相同错误码。
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.code == t.code
}

// Code 返回错误码。
func (e *Error) Code() Code {
	if e == nil {
		return CodeUnknown
	}
	return e.code
}

// Message 返回错误信息。
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Metadata 返回附加信息的副本。
func (e *Error) Metadata() map[string]string {
	if e == nil || len(e.metadata) == 0 {
		return nil
	}
	clone := make(map[string]string, len(e.metadata))
	for k, v := range e.metadata {
		clone[k] = v
	}
	return clone
}

// Retryable 判断是否可重试。
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	if e.retryable != nil {
		return *e.retryable
	}
	return AttributesOf(e.code).Retryable
}

// Severity 返回错误严重程度。
func (e *Error) Severity() Severity {
	if e == nil {
		return SeverityInfo
	}
	if e.severity != nil {
		return *e.severity
	}
	return AttributesOf(e.code).Severity
}

// From 尝试从 error 中解析统一错误类型。
func From(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var target *Error
	if stdErrors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf 返回错误对应的错误码。
func CodeOf(err error) Code {
	if e, ok := From(err); ok {
		return e.Code()
	}
	return CodeUnknown
}

// MetadataOf 返回错误上附带的元数据。
func MetadataOf(err error) map[string]string {
	if e, ok := From(err); ok {
		return e.Metadata()
	}
	return nil
}

// RetryableError 判断任意 error 是否可重试。
func RetryableError(err error) bool {
	if e, ok := From(err); ok {
		return e.Retryable()
	}
	return false
}

// SeverityOf 返回错误严重程度。
func SeverityOf(err error) Severity {
	if e, ok := From(err); ok {
		return e.Severity()
	}
	return AttributesOf(CodeUnknown).Severity
}
