package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	// Churn scoring module.
	EncodingError       failure.ErrorCode = "EncodingError"       // Category value missing from the trained encoder
	InvalidProbability  failure.ErrorCode = "InvalidProbability"  // Inference produced a value outside [0,1]
	InvalidThreshold    failure.ErrorCode = "InvalidThreshold"    // Persisted threshold artifact out of (0,1)
	InvalidCustomer     failure.ErrorCode = "InvalidCustomer"     // Raw record violates numeric constraints
	ModelNotReady       failure.ErrorCode = "ModelNotReady"       // Artifacts not loaded
	ArtifactMissing     failure.ErrorCode = "ArtifactMissing"     // Required artifact file absent or malformed
	PredictionNotFound  failure.ErrorCode = "PredictionNotFound"  // Unknown prediction id in history
	UnknownProfileType  failure.ErrorCode = "UnknownProfileType"  // Sample generator got an unknown profile
	InvalidBatchRequest failure.ErrorCode = "InvalidBatchRequest" // Empty or mismatched batch payload
)
