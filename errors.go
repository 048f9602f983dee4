package pqagg

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of an aggregation library error
type ErrorCategory string

const (
	ErrorCategoryValidation    ErrorCategory = "validation"
	ErrorCategoryThreshold     ErrorCategory = "threshold"
	ErrorCategoryCryptographic ErrorCategory = "cryptographic"
	ErrorCategoryKeyGeneration ErrorCategory = "key_generation"
	ErrorCategorySigning       ErrorCategory = "signing"
	ErrorCategoryAggregation   ErrorCategory = "aggregation"
	ErrorCategoryPolicy        ErrorCategory = "policy"
	ErrorCategoryRotation      ErrorCategory = "rotation"
	ErrorCategoryEncoding      ErrorCategory = "encoding"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"      // Non-critical, operation can continue
	ErrorSeverityMedium   ErrorSeverity = "medium"   // Important, may affect functionality
	ErrorSeverityHigh     ErrorSeverity = "high"     // Critical, operation should stop
	ErrorSeverityCritical ErrorSeverity = "critical" // System-level failure
)

// Error codes surfaced to callers. Library consumers are expected to branch
// on the code, not on the message text.
const (
	CodeInsufficientSignatures = "INSUFFICIENT_SIGNATURES"
	CodeInvalidInput           = "INVALID_INPUT"
	CodeMerkleProofInvalid     = "MERKLE_PROOF_INVALID"
	CodeSignatureInvalid       = "SIGNATURE_INVALID"
	CodeAggregationFailed      = "AGGREGATION_FAILED"
	CodeKeygenFailed           = "KEY_GENERATION_FAILED"
	CodePolicyViolation        = "POLICY_VIOLATION"
	CodeRotationInvalid        = "ROTATION_INVALID"
	CodeMalformedProof         = "MALFORMED_PROOF"
	CodeRandomnessFailure      = "RANDOMNESS_GENERATION_FAILED"
)

// AggregateError is the structured error type returned by all fallible
// operations in this package. Nothing here panics on attacker-controlled
// input; malformed proofs, empty inputs and out-of-range indices are
// ordinary control flow.
type AggregateError struct {
	Category    ErrorCategory          `json:"category"`
	Severity    ErrorSeverity          `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Cause       error                  `json:"-"` // Original error, not serialized
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// Error implements the error interface
func (e *AggregateError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AggregateError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error. The receiver is copied
// so shared sentinel values are never mutated.
func (e *AggregateError) WithContext(key string, value interface{}) *AggregateError {
	newError := e.clone()
	newError.Context[key] = value
	return newError
}

// WithCause sets the underlying cause of the error
func (e *AggregateError) WithCause(cause error) *AggregateError {
	newError := e.clone()
	newError.Cause = cause
	return newError
}

// WithDetails sets the human-readable detail string
func (e *AggregateError) WithDetails(details string) *AggregateError {
	newError := e.clone()
	newError.Details = details
	return newError
}

func (e *AggregateError) clone() *AggregateError {
	newError := &AggregateError{
		Category:    e.Category,
		Severity:    e.Severity,
		Code:        e.Code,
		Message:     e.Message,
		Details:     e.Details,
		Cause:       e.Cause,
		Recoverable: e.Recoverable,
		Context:     make(map[string]interface{}, len(e.Context)),
	}
	for k, v := range e.Context {
		newError.Context[k] = v
	}
	return newError
}

// IsRecoverable returns whether the error is recoverable
func (e *AggregateError) IsRecoverable() bool {
	return e.Recoverable
}

// NewAggregateError creates a new structured error
func NewAggregateError(category ErrorCategory, severity ErrorSeverity, code, message string) *AggregateError {
	return &AggregateError{
		Category:    category,
		Severity:    severity,
		Code:        code,
		Message:     message,
		Context:     make(map[string]interface{}),
		Recoverable: severity != ErrorSeverityCritical,
	}
}

// Typed constructors for the error taxonomy.

func errInsufficientSignatures(required, provided int) *AggregateError {
	return NewAggregateError(ErrorCategoryThreshold, ErrorSeverityHigh,
		CodeInsufficientSignatures, "insufficient signatures for aggregation").
		WithDetails(fmt.Sprintf("%d required, %d provided", required, provided)).
		WithContext("required", required).
		WithContext("provided", provided)
}

func errInvalidInput(reason string) *AggregateError {
	return NewAggregateError(ErrorCategoryValidation, ErrorSeverityHigh,
		CodeInvalidInput, "invalid input").
		WithDetails(reason)
}

func errMerkleProofInvalid(index int, reason string) *AggregateError {
	return NewAggregateError(ErrorCategoryCryptographic, ErrorSeverityHigh,
		CodeMerkleProofInvalid, "merkle proof verification failed").
		WithDetails(fmt.Sprintf("index %d: %s", index, reason)).
		WithContext("index", index)
}

func errSignatureInvalid(signerIndex int) *AggregateError {
	return NewAggregateError(ErrorCategoryCryptographic, ErrorSeverityHigh,
		CodeSignatureInvalid, "signature verification failed").
		WithDetails(fmt.Sprintf("signer %d", signerIndex)).
		WithContext("signer_index", signerIndex)
}

func errAggregationFailed(reason string) *AggregateError {
	return NewAggregateError(ErrorCategoryAggregation, ErrorSeverityHigh,
		CodeAggregationFailed, "proof aggregation failed").
		WithDetails(reason)
}

func errKeygenFailed(reason string) *AggregateError {
	return NewAggregateError(ErrorCategoryKeyGeneration, ErrorSeverityHigh,
		CodeKeygenFailed, "key generation failed").
		WithDetails(reason)
}

func errPolicyViolation(reason string) *AggregateError {
	return NewAggregateError(ErrorCategoryPolicy, ErrorSeverityMedium,
		CodePolicyViolation, "threshold policy violated").
		WithDetails(reason)
}

func errRotationInvalid(reason string) *AggregateError {
	return NewAggregateError(ErrorCategoryRotation, ErrorSeverityHigh,
		CodeRotationInvalid, "committee rotation rejected").
		WithDetails(reason)
}

func errMalformedProof(reason string) *AggregateError {
	return NewAggregateError(ErrorCategoryEncoding, ErrorSeverityMedium,
		CodeMalformedProof, "malformed proof encoding").
		WithDetails(reason)
}

func errRandomnessFailure(cause error) *AggregateError {
	return NewAggregateError(ErrorCategoryCryptographic, ErrorSeverityCritical,
		CodeRandomnessFailure, "failed to generate secure randomness").
		WithCause(cause)
}

// Error helper functions

// IsErrorCategory checks if an error belongs to a specific category
func IsErrorCategory(err error, category ErrorCategory) bool {
	var aggErr *AggregateError
	if errors.As(err, &aggErr) {
		return aggErr.Category == category
	}
	return false
}

// IsErrorCode checks if an error carries a specific code
func IsErrorCode(err error, code string) bool {
	var aggErr *AggregateError
	if errors.As(err, &aggErr) {
		return aggErr.Code == code
	}
	return false
}

// IsRecoverableError checks if an error is recoverable
func IsRecoverableError(err error) bool {
	var aggErr *AggregateError
	if errors.As(err, &aggErr) {
		return aggErr.IsRecoverable()
	}
	return true // Unstructured errors are assumed recoverable
}

// GetErrorContext extracts context from a structured error
func GetErrorContext(err error) map[string]interface{} {
	var aggErr *AggregateError
	if errors.As(err, &aggErr) {
		return aggErr.Context
	}
	return nil
}
