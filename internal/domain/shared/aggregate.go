package shared

// BaseVoucher is embedded by every transactional document. It carries the
// identity, the optimistic-locking version and the submission lifecycle.
type BaseVoucher struct {
	BaseEntity
	Version   int
	DocStatus DocStatus
}

// NewBaseVoucher creates a Draft voucher with a generated ID
func NewBaseVoucher() BaseVoucher {
	return BaseVoucher{
		BaseEntity: NewBaseEntity(),
		Version:    1,
		DocStatus:  DocStatusDraft,
	}
}

// GetVersion returns the aggregate version for optimistic locking
func (v *BaseVoucher) GetVersion() int {
	return v.Version
}

// IncrementVersion increments the version number
func (v *BaseVoucher) IncrementVersion() {
	v.Version++
}

// IsDraft reports whether the voucher has not been submitted yet
func (v *BaseVoucher) IsDraft() bool {
	return v.DocStatus == DocStatusDraft
}

// IsSubmitted reports whether the voucher is submitted and not cancelled
func (v *BaseVoucher) IsSubmitted() bool {
	return v.DocStatus == DocStatusSubmitted
}

// IsCancelled reports whether the voucher was voided
func (v *BaseVoucher) IsCancelled() bool {
	return v.DocStatus == DocStatusCancelled
}

// MarkSubmitted performs the irreversible Draft -> Submitted transition
func (v *BaseVoucher) MarkSubmitted() error {
	if !v.DocStatus.CanTransitionTo(DocStatusSubmitted) {
		return NewDomainError("INVALID_STATE", "Cannot submit document with status "+v.DocStatus.String())
	}
	v.DocStatus = DocStatusSubmitted
	v.Touch()
	return nil
}

// MarkCancelled performs the Submitted -> Cancelled transition
func (v *BaseVoucher) MarkCancelled() error {
	if !v.DocStatus.CanTransitionTo(DocStatusCancelled) {
		return NewDomainError("INVALID_STATE", "Cannot cancel document with status "+v.DocStatus.String())
	}
	v.DocStatus = DocStatusCancelled
	v.Touch()
	return nil
}
