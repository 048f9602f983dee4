package pqagg

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// AuditEventType represents the type of audit event
type AuditEventType string

const (
	AuditEventKeySetup          AuditEventType = "key_setup"
	AuditEventProofAggregation  AuditEventType = "proof_aggregation"
	AuditEventRotationApplied   AuditEventType = "committee_rotation_applied"
	AuditEventRotationRejected  AuditEventType = "committee_rotation_rejected"
	AuditEventValidationFailure AuditEventType = "validation_failure"
)

// AuditEventReason represents why an event occurred
type AuditEventReason string

const (
	ReasonEpochTransition     AuditEventReason = "epoch_transition"
	ReasonManualTrigger       AuditEventReason = "manual_trigger"
	ReasonInitialization      AuditEventReason = "initialization"
	ReasonPolicyViolation     AuditEventReason = "policy_violation"
	ReasonVerificationFailure AuditEventReason = "verification_failure"
	ReasonEpochRegression     AuditEventReason = "epoch_regression"
)

// AuditEvent records one security-relevant library event. Root hashes are
// hex-encoded so events serialize cleanly to JSON.
type AuditEvent struct {
	EventID   string           `json:"event_id"`
	Timestamp time.Time        `json:"timestamp"`
	EventType AuditEventType   `json:"event_type"`
	Reason    AuditEventReason `json:"reason"`

	OldRoot string `json:"old_root,omitempty"`
	NewRoot string `json:"new_root,omitempty"`
	Epoch   uint64 `json:"epoch,omitempty"`

	NumSignatures    int `json:"num_signatures,omitempty"`
	ParticipantCount int `json:"participant_count,omitempty"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// AuditEventHandler is implemented by applications that want to record
// security-relevant events. The library never logs on its own.
type AuditEventHandler interface {
	// OnRotationApplied is called when a committee rotation is accepted
	OnRotationApplied(event *AuditEvent)

	// OnRotationRejected is called when a committee rotation is refused
	OnRotationRejected(event *AuditEvent)

	// OnValidationFailure is called when parameter validation fails
	OnValidationFailure(event *AuditEvent)
}

// NullAuditHandler is a no-op implementation of AuditEventHandler, used when
// no audit handling is needed.
type NullAuditHandler struct{}

func (n *NullAuditHandler) OnRotationApplied(event *AuditEvent)   {}
func (n *NullAuditHandler) OnRotationRejected(event *AuditEvent)  {}
func (n *NullAuditHandler) OnValidationFailure(event *AuditEvent) {}

// AuditEventBuilder constructs audit events with proper defaults
type AuditEventBuilder struct {
	event *AuditEvent
}

// NewAuditEventBuilder creates a builder for the given event type and reason
func NewAuditEventBuilder(eventType AuditEventType, reason AuditEventReason) *AuditEventBuilder {
	return &AuditEventBuilder{
		event: &AuditEvent{
			EventID:   generateEventID(),
			Timestamp: time.Now(),
			EventType: eventType,
			Reason:    reason,
			Success:   true,
			Metadata:  make(map[string]interface{}),
		},
	}
}

// WithRoots records the old and new committee roots
func (b *AuditEventBuilder) WithRoots(oldRoot, newRoot [32]byte) *AuditEventBuilder {
	b.event.OldRoot = hex.EncodeToString(oldRoot[:])
	b.event.NewRoot = hex.EncodeToString(newRoot[:])
	return b
}

// WithEpoch records the epoch the event belongs to
func (b *AuditEventBuilder) WithEpoch(epoch uint64) *AuditEventBuilder {
	b.event.Epoch = epoch
	return b
}

// WithSignatures records how many signatures backed the event
func (b *AuditEventBuilder) WithSignatures(numSignatures int) *AuditEventBuilder {
	b.event.NumSignatures = numSignatures
	return b
}

// WithParticipants records the committee size
func (b *AuditEventBuilder) WithParticipants(count int) *AuditEventBuilder {
	b.event.ParticipantCount = count
	return b
}

// WithError marks the event as failed and records the error
func (b *AuditEventBuilder) WithError(err error) *AuditEventBuilder {
	b.event.Success = false
	if err != nil {
		b.event.Error = err.Error()
	}
	return b
}

// WithMetadata attaches an arbitrary key/value pair
func (b *AuditEventBuilder) WithMetadata(key string, value interface{}) *AuditEventBuilder {
	b.event.Metadata[key] = value
	return b
}

// Build returns the constructed event
func (b *AuditEventBuilder) Build() *AuditEvent {
	return b.event
}

func generateEventID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Timestamp fallback keeps IDs usable if the RNG is unavailable
		return fmt.Sprintf("evt-%d", time.Now().UnixNano())
	}
	return "evt-" + hex.EncodeToString(buf[:])
}
