package handler

import (
	"time"

	compModel "comphub/internal/comp/models"
	"comphub/internal/comp/service"
)

// detailsRequest is the full lease-details form payload. JSON field names
// match the database column names.
type detailsRequest struct {
	LeaseType                    *string  `json:"lease_type"`
	LeaseStatus                  *string  `json:"lease_status"`
	LeaseSF                      *int64   `json:"lease_sf"`
	LeaseSFType                  *string  `json:"lease_sf_type"`
	LeaseSFConfidence            *string  `json:"lease_sf_confidence"`
	OfficeSFLease                *int64   `json:"office_sf_lease"`
	OfficePctLease               *float64 `json:"office_pct_lease"`
	OfficeSFLeaseType            *string  `json:"office_sf_lease_type"`
	OfficeSFLeaseConfidence      *string  `json:"office_sf_lease_confidence"`
	SignedDate                   *string  `json:"signed_date"`
	SignedDateConfidence         *string  `json:"signed_date_confidence"`
	LeaseStartDate               *string  `json:"lease_start_date"`
	LeaseStartDateConfidence     *string  `json:"lease_start_date_confidence"`
	LeaseTermMonths              *int64   `json:"lease_term_months"`
	LeaseTermMonthsConfidence    *string  `json:"lease_term_months_confidence"`
	LeaseEndDate                 *string  `json:"lease_end_date"`
	LeaseEndDateConfidence       *string  `json:"lease_end_date_confidence"`
	RentPSFCents                 *int64   `json:"rent_psf_cents"`
	StartingRateUnits            *string  `json:"starting_rate_units"`
	StartingRateConfidence       *string  `json:"starting_rate_confidence"`
	ReimbursementMethod          *string  `json:"reimbursement_method"`
	ReimbursementOtherNotes      *string  `json:"reimbursement_other_notes"`
	OpexCents                    *int64   `json:"opex_cents"`
	OpexUnits                    *string  `json:"opex_units"`
	OpexConfidence               *string  `json:"opex_confidence"`
	EscalationValue              *float64 `json:"escalation_value"`
	EscalationUnits              *string  `json:"escalation_units"`
	EscalationFrequencyMonths    *int64   `json:"escalation_frequency_months"`
	EscalationConfidence         *string  `json:"escalation_confidence"`
	FreeRentMonths               *int64   `json:"free_rent_months"`
	FreeRentAmountCents          *int64   `json:"free_rent_amount_cents"`
	FreeRentUnits                *string  `json:"free_rent_units"`
	FreeRentConfidence           *string  `json:"free_rent_confidence"`
	TIAllowanceCents             *int64   `json:"ti_allowance_cents"`
	TIUnits                      *string  `json:"ti_units"`
	TIConfidence                 *string  `json:"ti_confidence"`
	PresentationCommentsExternal *string  `json:"presentation_comments_external"`
	PresentationCommentsInternal *string  `json:"presentation_comments_internal"`
	MiscCommentary               *string  `json:"misc_commentary"`
}

func (r detailsRequest) toInput() service.UpdateLeaseDetailsInput {
	return service.UpdateLeaseDetailsInput{
		LeaseType:                    r.LeaseType,
		LeaseStatus:                  r.LeaseStatus,
		LeaseSF:                      r.LeaseSF,
		LeaseSFType:                  r.LeaseSFType,
		LeaseSFConfidence:            r.LeaseSFConfidence,
		OfficeSFLease:                r.OfficeSFLease,
		OfficePctLease:               r.OfficePctLease,
		OfficeSFLeaseType:            r.OfficeSFLeaseType,
		OfficeSFLeaseConfidence:      r.OfficeSFLeaseConfidence,
		SignedDate:                   r.SignedDate,
		SignedDateConfidence:         r.SignedDateConfidence,
		LeaseStartDate:               r.LeaseStartDate,
		LeaseStartDateConfidence:     r.LeaseStartDateConfidence,
		LeaseTermMonths:              r.LeaseTermMonths,
		LeaseTermMonthsConfidence:    r.LeaseTermMonthsConfidence,
		LeaseEndDate:                 r.LeaseEndDate,
		LeaseEndDateConfidence:       r.LeaseEndDateConfidence,
		RentPSFCents:                 r.RentPSFCents,
		StartingRateUnits:            r.StartingRateUnits,
		StartingRateConfidence:       r.StartingRateConfidence,
		ReimbursementMethod:          r.ReimbursementMethod,
		ReimbursementOtherNotes:      r.ReimbursementOtherNotes,
		OpexCents:                    r.OpexCents,
		OpexUnits:                    r.OpexUnits,
		OpexConfidence:               r.OpexConfidence,
		EscalationValue:              r.EscalationValue,
		EscalationUnits:              r.EscalationUnits,
		EscalationFrequencyMonths:    r.EscalationFrequencyMonths,
		EscalationConfidence:         r.EscalationConfidence,
		FreeRentMonths:               r.FreeRentMonths,
		FreeRentAmountCents:          r.FreeRentAmountCents,
		FreeRentUnits:                r.FreeRentUnits,
		FreeRentConfidence:           r.FreeRentConfidence,
		TIAllowanceCents:             r.TIAllowanceCents,
		TIUnits:                      r.TIUnits,
		TIConfidence:                 r.TIConfidence,
		PresentationCommentsExternal: r.PresentationCommentsExternal,
		PresentationCommentsInternal: r.PresentationCommentsInternal,
		MiscCommentary:               r.MiscCommentary,
	}
}

type compResponse struct {
	ID                           string    `json:"id"`
	TeamID                       string    `json:"team_id"`
	BuildingID                   string    `json:"building_id"`
	Status                       string    `json:"status"`
	TenantNameRaw                *string   `json:"tenant_name_raw"`
	LeaseType                    *string   `json:"lease_type"`
	LeaseStatus                  *string   `json:"lease_status"`
	LeaseSF                      *int64    `json:"lease_sf"`
	LeaseSFType                  *string   `json:"lease_sf_type"`
	LeaseSFConfidence            *string   `json:"lease_sf_confidence"`
	OfficeSFLease                *int64    `json:"office_sf_lease"`
	OfficePctLease               *float64  `json:"office_pct_lease"`
	OfficeSFLeaseType            *string   `json:"office_sf_lease_type"`
	OfficeSFLeaseConfidence      *string   `json:"office_sf_lease_confidence"`
	SignedDate                   *string   `json:"signed_date"`
	SignedDateConfidence         *string   `json:"signed_date_confidence"`
	LeaseStartDate               *string   `json:"lease_start_date"`
	LeaseStartDateConfidence     *string   `json:"lease_start_date_confidence"`
	LeaseTermMonths              *int64    `json:"lease_term_months"`
	LeaseTermMonthsConfidence    *string   `json:"lease_term_months_confidence"`
	LeaseEndDate                 *string   `json:"lease_end_date"`
	LeaseEndDateConfidence       *string   `json:"lease_end_date_confidence"`
	RentPSFCents                 *int64    `json:"rent_psf_cents"`
	StartingRateUnits            *string   `json:"starting_rate_units"`
	StartingRateConfidence       *string   `json:"starting_rate_confidence"`
	ReimbursementMethod          *string   `json:"reimbursement_method"`
	ReimbursementOtherNotes      *string   `json:"reimbursement_other_notes"`
	OpexCents                    *int64    `json:"opex_cents"`
	OpexUnits                    *string   `json:"opex_units"`
	OpexConfidence               *string   `json:"opex_confidence"`
	EscalationValue              *float64  `json:"escalation_value"`
	EscalationUnits              *string   `json:"escalation_units"`
	EscalationFrequencyMonths    *int64    `json:"escalation_frequency_months"`
	EscalationConfidence         *string   `json:"escalation_confidence"`
	FreeRentMonths               *int64    `json:"free_rent_months"`
	FreeRentAmountCents          *int64    `json:"free_rent_amount_cents"`
	FreeRentUnits                *string   `json:"free_rent_units"`
	FreeRentConfidence           *string   `json:"free_rent_confidence"`
	TIAllowanceCents             *int64    `json:"ti_allowance_cents"`
	TIUnits                      *string   `json:"ti_units"`
	TIConfidence                 *string   `json:"ti_confidence"`
	PresentationCommentsExternal *string   `json:"presentation_comments_external"`
	PresentationCommentsInternal *string   `json:"presentation_comments_internal"`
	MiscCommentary               *string   `json:"misc_commentary"`
	InternalAccessLevel          string    `json:"internal_access_level"`
	ExportDetailLevel            string    `json:"export_detail_level"`
	CreatedAt                    time.Time `json:"created_at"`
	UpdatedAt                    time.Time `json:"updated_at"`
	CreatedBy                    string    `json:"created_by"`
	UpdatedBy                    string    `json:"updated_by"`
}

type reasonResponse struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type compDetailResponse struct {
	compResponse
	IsComplete        bool             `json:"is_complete"`
	IncompleteReasons []reasonResponse `json:"incomplete_reasons"`
}

func toCompResponse(c compModel.LeaseComp) compResponse {
	return compResponse{
		ID:                           c.ID.String(),
		TeamID:                       c.TeamID.String(),
		BuildingID:                   c.BuildingID.String(),
		Status:                       string(c.Status),
		TenantNameRaw:                c.TenantNameRaw,
		LeaseType:                    enumStr(c.LeaseType),
		LeaseStatus:                  enumStr(c.LeaseStatus),
		LeaseSF:                      c.LeaseSF,
		LeaseSFType:                  enumStr(c.LeaseSFType),
		LeaseSFConfidence:            enumStr(c.LeaseSFConfid),
		OfficeSFLease:                c.OfficeSFLease,
		OfficePctLease:               c.OfficePctLease,
		OfficeSFLeaseType:            enumStr(c.OfficeSFType),
		OfficeSFLeaseConfidence:      enumStr(c.OfficeSFConfid),
		SignedDate:                   enumStr(c.SignedDate),
		SignedDateConfidence:         enumStr(c.SignedConfid),
		LeaseStartDate:               enumStr(c.LeaseStartDate),
		LeaseStartDateConfidence:     enumStr(c.StartConfid),
		LeaseTermMonths:              c.LeaseTermMonths,
		LeaseTermMonthsConfidence:    enumStr(c.TermConfid),
		LeaseEndDate:                 enumStr(c.LeaseEndDate),
		LeaseEndDateConfidence:       enumStr(c.EndConfid),
		RentPSFCents:                 c.RentPSFCents,
		StartingRateUnits:            enumStr(c.StartingRateUnits),
		StartingRateConfidence:       enumStr(c.StartingRateConfid),
		ReimbursementMethod:          enumStr(c.ReimbursementMethod),
		ReimbursementOtherNotes:      c.ReimbursementOtherNotes,
		OpexCents:                    c.OpexCents,
		OpexUnits:                    enumStr(c.OpexUnits),
		OpexConfidence:               enumStr(c.OpexConfid),
		EscalationValue:              c.EscalationValue,
		EscalationUnits:              enumStr(c.EscalationUnits),
		EscalationFrequencyMonths:    c.EscalationFrequencyMonths,
		EscalationConfidence:         enumStr(c.EscalationConfid),
		FreeRentMonths:               c.FreeRentMonths,
		FreeRentAmountCents:          c.FreeRentAmountCents,
		FreeRentUnits:                enumStr(c.FreeRentUnits),
		FreeRentConfidence:           enumStr(c.FreeRentConfid),
		TIAllowanceCents:             c.TIAllowanceCents,
		TIUnits:                      enumStr(c.TIUnits),
		TIConfidence:                 enumStr(c.TIConfid),
		PresentationCommentsExternal: c.PresentationCommentsExternal,
		PresentationCommentsInternal: c.PresentationCommentsInternal,
		MiscCommentary:               c.MiscCommentary,
		InternalAccessLevel:          string(c.InternalAccessLevel),
		ExportDetailLevel:            string(c.ExportDetailLevel),
		CreatedAt:                    c.CreatedAt,
		UpdatedAt:                    c.UpdatedAt,
		CreatedBy:                    c.CreatedBy.String(),
		UpdatedBy:                    c.UpdatedBy.String(),
	}
}

func enumStr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
