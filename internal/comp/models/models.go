// Package models defines the lease comp record and its enum vocabulary.
package models

import (
	"time"

	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
)

// CompStatus is the record lifecycle state.
type CompStatus string

const (
	CompStatusDraft  CompStatus = "draft"
	CompStatusActive CompStatus = "active"
)

// LeaseType classifies the transaction.
type LeaseType string

const (
	LeaseTypeNew       LeaseType = "new"
	LeaseTypeRenewal   LeaseType = "renewal"
	LeaseTypeExpansion LeaseType = "expansion"
	LeaseTypeSublease  LeaseType = "sublease"
)

// LeaseStatus is how far along the deal is.
type LeaseStatus string

const (
	LeaseStatusSigned   LeaseStatus = "signed"
	LeaseStatusPending  LeaseStatus = "pending"
	LeaseStatusProposal LeaseStatus = "proposal"
)

// LeaseSfType qualifies the lease square footage measurement.
type LeaseSfType string

const (
	LeaseSfTypeSingleStory  LeaseSfType = "single_story"
	LeaseSfTypeRBAIncl2ndFl LeaseSfType = "rba_incl_2nd_fl"
)

// OfficeSfLeaseType qualifies the office square footage measurement.
type OfficeSfLeaseType string

const (
	OfficeSfTypeSingleStory OfficeSfLeaseType = "single_story"
	OfficeSfTypeMultiStory  OfficeSfLeaseType = "multi_story"
)

// Confidence marks a value as confirmed or estimated.
type Confidence string

const (
	ConfidenceConfirmed Confidence = "confirmed"
	ConfidenceEstimated Confidence = "estimated"
)

// RateUnits is the denomination of a rate value.
type RateUnits string

const (
	RateUnitsSfYr  RateUnits = "sf_yr"
	RateUnitsSfMo  RateUnits = "sf_mo"
	RateUnitsMo    RateUnits = "mo"
	RateUnitsYr    RateUnits = "yr"
	RateUnitsAcMo  RateUnits = "ac_mo"
	RateUnitsLsfYr RateUnits = "lsf_yr"
	RateUnitsLsfMo RateUnits = "lsf_mo"
)

// ReimbursementMethod is the expense reimbursement structure.
type ReimbursementMethod string

const (
	ReimbursementNet           ReimbursementMethod = "net"
	ReimbursementGross         ReimbursementMethod = "gross"
	ReimbursementModifiedGross ReimbursementMethod = "modified_gross"
	ReimbursementBaseYear      ReimbursementMethod = "base_year"
	ReimbursementOther         ReimbursementMethod = "other"
)

// EscalationUnits is the denomination of the escalation value.
type EscalationUnits string

const (
	EscalationUnitsPct EscalationUnits = "pct"
	EscalationUnitsSf  EscalationUnits = "sf"
	EscalationUnitsMo  EscalationUnits = "mo"
)

// FreeRentUnits says whether free rent is tracked in months or dollars.
type FreeRentUnits string

const (
	FreeRentUnitsMonths FreeRentUnits = "mos"
	FreeRentUnitsAmount FreeRentUnits = "amount"
)

// TiUnits says whether the TI allowance is per-SF or a lump amount.
type TiUnits string

const (
	TiUnitsSf     TiUnits = "sf"
	TiUnitsAmount TiUnits = "amount"
)

// InternalAccessLevel controls who inside the team can open the comp.
type InternalAccessLevel string

const (
	AccessAllTeam      InternalAccessLevel = "all_team"
	AccessOwnerAdminMe InternalAccessLevel = "owner_admin_me"
	AccessOwnerMe      InternalAccessLevel = "owner_me"
	AccessJustMe       InternalAccessLevel = "just_me"
)

// ExportDetailLevel controls what exports may include.
type ExportDetailLevel string

const (
	ExportAllVisible     ExportDetailLevel = "all_visible"
	ExportHideMajorTerms ExportDetailLevel = "hide_major_terms"
	ExportHideAll        ExportDetailLevel = "hide_all"
	ExportExcluded       ExportDetailLevel = "excluded"
)

func parseEnum[T ~string](value string, name string, valid ...T) (T, error) {
	for _, v := range valid {
		if T(value) == v {
			return v, nil
		}
	}
	var zero T
	return zero, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s %q", name, value)
}

func ParseCompStatus(s string) (CompStatus, error) {
	return parseEnum(s, "comp status", CompStatusDraft, CompStatusActive)
}

func ParseLeaseType(s string) (LeaseType, error) {
	return parseEnum(s, "lease type", LeaseTypeNew, LeaseTypeRenewal, LeaseTypeExpansion, LeaseTypeSublease)
}

func ParseLeaseStatus(s string) (LeaseStatus, error) {
	return parseEnum(s, "lease status", LeaseStatusSigned, LeaseStatusPending, LeaseStatusProposal)
}

func ParseLeaseSfType(s string) (LeaseSfType, error) {
	return parseEnum(s, "lease sf type", LeaseSfTypeSingleStory, LeaseSfTypeRBAIncl2ndFl)
}

func ParseOfficeSfLeaseType(s string) (OfficeSfLeaseType, error) {
	return parseEnum(s, "office sf type", OfficeSfTypeSingleStory, OfficeSfTypeMultiStory)
}

func ParseConfidence(s string) (Confidence, error) {
	return parseEnum(s, "confidence", ConfidenceConfirmed, ConfidenceEstimated)
}

func ParseRateUnits(s string) (RateUnits, error) {
	return parseEnum(s, "rate units",
		RateUnitsSfYr, RateUnitsSfMo, RateUnitsMo, RateUnitsYr, RateUnitsAcMo, RateUnitsLsfYr, RateUnitsLsfMo)
}

func ParseReimbursementMethod(s string) (ReimbursementMethod, error) {
	return parseEnum(s, "reimbursement method",
		ReimbursementNet, ReimbursementGross, ReimbursementModifiedGross, ReimbursementBaseYear, ReimbursementOther)
}

func ParseEscalationUnits(s string) (EscalationUnits, error) {
	return parseEnum(s, "escalation units", EscalationUnitsPct, EscalationUnitsSf, EscalationUnitsMo)
}

func ParseFreeRentUnits(s string) (FreeRentUnits, error) {
	return parseEnum(s, "free rent units", FreeRentUnitsMonths, FreeRentUnitsAmount)
}

func ParseTiUnits(s string) (TiUnits, error) {
	return parseEnum(s, "ti units", TiUnitsSf, TiUnitsAmount)
}

func ParseInternalAccessLevel(s string) (InternalAccessLevel, error) {
	return parseEnum(s, "internal access level", AccessAllTeam, AccessOwnerAdminMe, AccessOwnerMe, AccessJustMe)
}

func ParseExportDetailLevel(s string) (ExportDetailLevel, error) {
	return parseEnum(s, "export detail level", ExportAllVisible, ExportHideMajorTerms, ExportHideAll, ExportExcluded)
}

// LeaseComp is the main record. Monetary values are integer cents; square
// footage and month counts are integers; nullable columns are pointers so an
// absent value is distinguishable from a zero.
type LeaseComp struct {
	ID         id.CompID
	TeamID     id.TeamID
	BuildingID id.BuildingID
	Status     CompStatus

	TenantNameRaw        *string
	TenantNameNormalized *string

	LeaseSF         *int64
	LeaseSFType     *LeaseSfType
	LeaseSFConfid   *Confidence
	OfficeSFLease   *int64
	OfficePctLease  *float64
	OfficeSFType    *OfficeSfLeaseType
	OfficeSFConfid  *Confidence
	LeaseType       *LeaseType
	LeaseStatus     *LeaseStatus
	SignedDate      *id.Date
	SignedConfid    *Confidence
	LeaseStartDate  *id.Date
	StartConfid     *Confidence
	LeaseTermMonths *int64
	TermConfid      *Confidence
	LeaseEndDate    *id.Date
	EndConfid       *Confidence

	RentPSFCents            *int64
	StartingRateUnits       *RateUnits
	StartingRateConfid      *Confidence
	ReimbursementMethod     *ReimbursementMethod
	ReimbursementOtherNotes *string
	OpexCents               *int64
	OpexUnits               *RateUnits
	OpexConfid              *Confidence

	EscalationValue           *float64
	EscalationUnits           *EscalationUnits
	EscalationFrequencyMonths *int64
	EscalationConfid          *Confidence

	FreeRentMonths      *int64
	FreeRentAmountCents *int64
	FreeRentUnits       *FreeRentUnits
	FreeRentConfid      *Confidence

	TIAllowanceCents *int64
	TIUnits          *TiUnits
	TIConfid         *Confidence

	PresentationCommentsExternal *string
	PresentationCommentsInternal *string
	MiscCommentary               *string

	InternalAccessLevel InternalAccessLevel
	ExportDetailLevel   ExportDetailLevel

	IsDeleted bool
	DeletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy id.UserID
	UpdatedBy id.UserID
}
