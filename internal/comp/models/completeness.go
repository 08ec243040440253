package models

import "strings"

// Reason is one completeness gap on a comp.
type Reason string

const (
	ReasonMissingTenant             Reason = "missing_tenant"
	ReasonMissingBuilding           Reason = "missing_building"
	ReasonMissingLeaseSF            Reason = "missing_lease_sf"
	ReasonMissingStartDate          Reason = "missing_start_date"
	ReasonMissingTerm               Reason = "missing_term"
	ReasonMissingPricing            Reason = "missing_pricing"
	ReasonMissingReimbursement      Reason = "missing_reimbursement"
	ReasonMissingReimbursementNotes Reason = "missing_reimbursement_notes"
)

// Reimbursement notes count as present only at this length or above.
const minReimbursementNotesLen = 10

var reasonLabels = map[Reason]string{
	ReasonMissingTenant:             "Missing tenant name",
	ReasonMissingBuilding:           "Missing building/address",
	ReasonMissingLeaseSF:            "Missing lease SF",
	ReasonMissingStartDate:          "Missing lease start date",
	ReasonMissingTerm:               "Missing lease term",
	ReasonMissingPricing:            "Missing rent pricing",
	ReasonMissingReimbursement:      "Missing reimbursement method",
	ReasonMissingReimbursementNotes: "Missing reimbursement notes (required when 'other')",
}

// Label returns the display string for the reason, or the raw code for an
// unknown one.
func (r Reason) Label() string {
	if label, ok := reasonLabels[r]; ok {
		return label
	}
	return string(r)
}

// DeriveIncompleteReasons evaluates the fixed predicate list against the comp
// and returns the gaps in declaration order. Empty means complete. The result
// is derived on every call, never stored, so it can't go stale against the
// fields it summarizes.
func DeriveIncompleteReasons(c LeaseComp) []Reason {
	var reasons []Reason

	if c.TenantNameRaw == nil || strings.TrimSpace(*c.TenantNameRaw) == "" {
		reasons = append(reasons, ReasonMissingTenant)
	}
	if c.BuildingID.IsNil() {
		reasons = append(reasons, ReasonMissingBuilding)
	}
	if c.LeaseSF == nil {
		reasons = append(reasons, ReasonMissingLeaseSF)
	}
	if c.LeaseStartDate == nil {
		reasons = append(reasons, ReasonMissingStartDate)
	}
	if c.LeaseTermMonths == nil && c.LeaseEndDate == nil {
		reasons = append(reasons, ReasonMissingTerm)
	}
	if c.RentPSFCents == nil {
		reasons = append(reasons, ReasonMissingPricing)
	}
	if c.ReimbursementMethod == nil {
		reasons = append(reasons, ReasonMissingReimbursement)
	}
	if c.ReimbursementMethod != nil && *c.ReimbursementMethod == ReimbursementOther {
		if c.ReimbursementOtherNotes == nil ||
			len(strings.TrimSpace(*c.ReimbursementOtherNotes)) < minReimbursementNotesLen {
			reasons = append(reasons, ReasonMissingReimbursementNotes)
		}
	}

	return reasons
}
