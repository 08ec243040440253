package models

import (
	"comphub/internal/history"
)

// DetailsSchema is the ordered field set that participates in lease-details
// diffing. Labels are the exact strings shown in the audit trail; order here
// is the order diffs are emitted in.
var DetailsSchema = history.Schema{
	{Key: "lease_type", Label: "Lease Type"},
	{Key: "lease_status", Label: "Lease Status"},
	{Key: "lease_sf", Label: "Lease SF"},
	{Key: "lease_sf_type", Label: "Lease SF Type"},
	{Key: "lease_sf_confidence", Label: "Lease SF Confidence"},
	{Key: "office_sf_lease", Label: "Office SF (Lease)"},
	{Key: "office_pct_lease", Label: "Office %"},
	{Key: "office_sf_lease_type", Label: "Office SF Type"},
	{Key: "office_sf_lease_confidence", Label: "Office SF Confidence"},
	{Key: "signed_date", Label: "Lease Sign Date"},
	{Key: "signed_date_confidence", Label: "Lease Sign Date Confidence"},
	{Key: "lease_start_date", Label: "Lease Start Date"},
	{Key: "lease_start_date_confidence", Label: "Lease Start Date Confidence"},
	{Key: "lease_term_months", Label: "Term (Months)"},
	{Key: "lease_term_months_confidence", Label: "Term Confidence"},
	{Key: "lease_end_date", Label: "Lease End Date"},
	{Key: "lease_end_date_confidence", Label: "Lease End Date Confidence"},
	{Key: "rent_psf_cents", Label: "Starting Rate"},
	{Key: "starting_rate_units", Label: "Starting Rate Units"},
	{Key: "starting_rate_confidence", Label: "Starting Rate Confidence"},
	{Key: "reimbursement_method", Label: "Reimbursement Method"},
	{Key: "opex_cents", Label: "Est. Yr 1 OpEx"},
	{Key: "opex_units", Label: "Est. Yr 1 OpEx Units"},
	{Key: "opex_confidence", Label: "Est. Yr 1 OpEx Confidence"},
	{Key: "escalation_value", Label: "Escalations"},
	{Key: "escalation_units", Label: "Escalation Units"},
	{Key: "escalation_frequency_months", Label: "Escalation Frequency (Months)"},
	{Key: "escalation_confidence", Label: "Escalation Confidence"},
	{Key: "free_rent_months", Label: "Free Rent (Months)"},
	{Key: "free_rent_amount_cents", Label: "Free Rent (Amount)"},
	{Key: "free_rent_units", Label: "Free Rent Units"},
	{Key: "free_rent_confidence", Label: "Free Rent Confidence"},
	{Key: "ti_allowance_cents", Label: "TI"},
	{Key: "ti_units", Label: "TI Units"},
	{Key: "ti_confidence", Label: "TI Confidence"},
	{Key: "presentation_comments_external", Label: "Presentation Comments (External)"},
	{Key: "presentation_comments_internal", Label: "Presentation Comments (Internal)"},
	{Key: "misc_commentary", Label: "Misc Commentary"},
}

// ConfidentialitySchema covers the two confidentiality settings.
var ConfidentialitySchema = history.Schema{
	{Key: "internal_access_level", Label: "Internal Access Level"},
	{Key: "export_detail_level", Label: "Export Detail Level"},
}

// Labels referenced by the event-splitting logic in the service layer.
var (
	LeaseStatusLabel         = DetailsSchema.LabelFor("lease_status")
	InternalAccessLevelLabel = ConfidentialitySchema.LabelFor("internal_access_level")
	ExportDetailLevelLabel   = ConfidentialitySchema.LabelFor("export_detail_level")
)

// DetailsSnapshot captures the comp's diffable lease-details values.
func DetailsSnapshot(c LeaseComp) history.Snapshot {
	return history.Snapshot{
		"lease_type":                     c.LeaseType,
		"lease_status":                   c.LeaseStatus,
		"lease_sf":                       c.LeaseSF,
		"lease_sf_type":                  c.LeaseSFType,
		"lease_sf_confidence":            c.LeaseSFConfid,
		"office_sf_lease":                c.OfficeSFLease,
		"office_pct_lease":               c.OfficePctLease,
		"office_sf_lease_type":           c.OfficeSFType,
		"office_sf_lease_confidence":     c.OfficeSFConfid,
		"signed_date":                    c.SignedDate,
		"signed_date_confidence":         c.SignedConfid,
		"lease_start_date":               c.LeaseStartDate,
		"lease_start_date_confidence":    c.StartConfid,
		"lease_term_months":              c.LeaseTermMonths,
		"lease_term_months_confidence":   c.TermConfid,
		"lease_end_date":                 c.LeaseEndDate,
		"lease_end_date_confidence":      c.EndConfid,
		"rent_psf_cents":                 c.RentPSFCents,
		"starting_rate_units":            c.StartingRateUnits,
		"starting_rate_confidence":       c.StartingRateConfid,
		"reimbursement_method":           c.ReimbursementMethod,
		"opex_cents":                     c.OpexCents,
		"opex_units":                     c.OpexUnits,
		"opex_confidence":                c.OpexConfid,
		"escalation_value":               c.EscalationValue,
		"escalation_units":               c.EscalationUnits,
		"escalation_frequency_months":    c.EscalationFrequencyMonths,
		"escalation_confidence":          c.EscalationConfid,
		"free_rent_months":               c.FreeRentMonths,
		"free_rent_amount_cents":         c.FreeRentAmountCents,
		"free_rent_units":                c.FreeRentUnits,
		"free_rent_confidence":           c.FreeRentConfid,
		"ti_allowance_cents":             c.TIAllowanceCents,
		"ti_units":                       c.TIUnits,
		"ti_confidence":                  c.TIConfid,
		"presentation_comments_external": c.PresentationCommentsExternal,
		"presentation_comments_internal": c.PresentationCommentsInternal,
		"misc_commentary":                c.MiscCommentary,
	}
}

// ConfidentialitySnapshot captures the two confidentiality settings.
func ConfidentialitySnapshot(c LeaseComp) history.Snapshot {
	return history.Snapshot{
		"internal_access_level": c.InternalAccessLevel,
		"export_detail_level":   c.ExportDetailLevel,
	}
}
