package pqagg

import (
	"fmt"
)

// RotationManager tracks the currently trusted committee root across epochs
// and decides whether to accept rotation proofs. State transitions are
// audited through an injected handler.
//
// The manager is not safe for concurrent use; callers that rotate from
// multiple goroutines must serialize access.
type RotationManager struct {
	trustedRoot     [32]byte
	epoch           uint64
	totalValidators int
	policy          ThresholdPolicy
	validator       *ThresholdValidator
	audit           AuditEventHandler
}

// NewRotationManager creates a manager anchored at an initial trusted root.
// totalValidators is the committee size behind that root; policy decides how
// many signatures a rotation proof must carry. A nil audit handler disables
// auditing.
func NewRotationManager(initialRoot [32]byte, totalValidators int, policy ThresholdPolicy, audit AuditEventHandler) (*RotationManager, error) {
	if totalValidators <= 0 {
		return nil, errInvalidInput(fmt.Sprintf("validator count must be positive, got %d", totalValidators))
	}
	if totalValidators > MaxCommitteeSize {
		return nil, errInvalidInput(
			fmt.Sprintf("validator count %d exceeds committee cap %d", totalValidators, MaxCommitteeSize))
	}
	if audit == nil {
		audit = &NullAuditHandler{}
	}
	return &RotationManager{
		trustedRoot:     initialRoot,
		totalValidators: totalValidators,
		policy:          policy,
		validator:       NewDefaultThresholdValidator(),
		audit:           audit,
	}, nil
}

// TrustedRoot returns the committee root the manager currently trusts.
func (rm *RotationManager) TrustedRoot() [32]byte {
	return rm.trustedRoot
}

// Epoch returns the epoch of the last applied rotation, zero before any.
func (rm *RotationManager) Epoch() uint64 {
	return rm.epoch
}

// ApplyRotation verifies a rotation proof against the trusted root and, on
// success, advances the trust anchor to the new root. Epochs must strictly
// increase; a replayed or out-of-order rotation is rejected before any
// cryptographic work.
func (rm *RotationManager) ApplyRotation(rotation *RotationProof, newCommitteeSize int) error {
	if rotation == nil {
		return errRotationInvalid("rotation proof is nil")
	}

	if rotation.Epoch <= rm.epoch {
		err := errRotationInvalid(
			fmt.Sprintf("epoch %d does not advance current epoch %d", rotation.Epoch, rm.epoch))
		rm.audit.OnRotationRejected(rm.rejectionEvent(rotation, ReasonEpochRegression, err))
		return err
	}

	threshold := rotation.Proof.NumSignatures()
	if vr := rm.validator.ValidateThresholdParameters(newCommitteeSize, 1); !vr.Valid {
		err := errRotationInvalid(
			fmt.Sprintf("new committee size %d is invalid: %v", newCommitteeSize, vr.Errors))
		rm.audit.OnValidationFailure(rm.rejectionEvent(rotation, ReasonPolicyViolation, err))
		return err
	}

	if !VerifyRotationProof(rotation, rm.trustedRoot) {
		err := errRotationInvalid("proof does not verify against the trusted root")
		rm.audit.OnRotationRejected(rm.rejectionEvent(rotation, ReasonVerificationFailure, err))
		return err
	}

	if !rm.policy.Satisfied(threshold, rm.totalValidators) {
		err := errPolicyViolation(
			fmt.Sprintf("rotation carries %d signatures, policy requires %d of %d",
				threshold, rm.policy.RequiredSignatures(rm.totalValidators), rm.totalValidators))
		rm.audit.OnRotationRejected(rm.rejectionEvent(rotation, ReasonPolicyViolation, err))
		return err
	}

	rm.audit.OnRotationApplied(
		NewAuditEventBuilder(AuditEventRotationApplied, ReasonEpochTransition).
			WithRoots(rotation.OldRoot, rotation.NewRoot).
			WithEpoch(rotation.Epoch).
			WithSignatures(threshold).
			WithParticipants(newCommitteeSize).
			Build())

	rm.trustedRoot = rotation.NewRoot
	rm.epoch = rotation.Epoch
	rm.totalValidators = newCommitteeSize
	return nil
}

func (rm *RotationManager) rejectionEvent(rotation *RotationProof, reason AuditEventReason, err error) *AuditEvent {
	return NewAuditEventBuilder(AuditEventRotationRejected, reason).
		WithRoots(rotation.OldRoot, rotation.NewRoot).
		WithEpoch(rotation.Epoch).
		WithSignatures(rotation.Proof.NumSignatures()).
		WithError(err).
		Build()
}
