// Package models defines the four lease option variants and their enums.
package models

import (
	"time"

	"comphub/internal/history"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
)

// Kind discriminates the option variants. Each kind persists to its own
// table and carries its own field set.
type Kind string

const (
	KindRenewal     Kind = "renewal"
	KindTermination Kind = "termination"
	KindExpansion   Kind = "expansion"
	KindPurchase    Kind = "purchase"
)

var kindLabels = map[Kind]string{
	KindRenewal:     "Renewal",
	KindTermination: "Termination",
	KindExpansion:   "Expansion",
	KindPurchase:    "Purchase",
}

// Label returns the display form used in event summaries.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

func ParseKind(s string) (Kind, error) {
	return parseEnum(s, "option kind", KindRenewal, KindTermination, KindExpansion, KindPurchase)
}

// ExerciseWindowType says how the tenant's exercise window is bounded.
type ExerciseWindowType string

const (
	ExerciseByDeadline   ExerciseWindowType = "by_deadline"
	ExerciseBetweenDates ExerciseWindowType = "between_dates"
	ExerciseRolling      ExerciseWindowType = "rolling"
)

// RollingTriggerType anchors a rolling exercise window.
type RollingTriggerType string

const (
	RollingFromLeaseStart RollingTriggerType = "lease_start"
	RollingFromLeaseEnd   RollingTriggerType = "lease_end"
	RollingFromFixedDate  RollingTriggerType = "fixed_date"
)

// NoticeMethod says how required notice is measured.
type NoticeMethod string

const (
	NoticeDaysPrior NoticeMethod = "days_prior"
	NoticeFixedDate NoticeMethod = "fixed_date"
)

// RenewalRateBasis sets how the renewal rent is determined.
type RenewalRateBasis string

const (
	RateBasisFMV           RenewalRateBasis = "fmv"
	RateBasisPctFMV        RenewalRateBasis = "pct_fmv"
	RateBasisFixedRate     RenewalRateBasis = "fixed_rate"
	RateBasisCPIAdjustment RenewalRateBasis = "cpi_adjustment"
)

// FloorCapType bounds a renewal rate floor or cap.
type FloorCapType string

const (
	FloorCapPctPriorRent FloorCapType = "pct_prior_rent"
	FloorCapFixedSF      FloorCapType = "fixed_sf"
	FloorCapOther        FloorCapType = "other"
)

// CpiFrequency is the CPI adjustment cadence.
type CpiFrequency string

const (
	CpiAnnual     CpiFrequency = "annual"
	CpiSemiAnnual CpiFrequency = "semi_annual"
	CpiQuarterly  CpiFrequency = "quarterly"
	CpiMonthly    CpiFrequency = "monthly"
	CpiOther      CpiFrequency = "other"
)

// TerminationType distinguishes a single exercise date from an ongoing right.
type TerminationType string

const (
	TerminationOneTime TerminationType = "one_time"
	TerminationOngoing TerminationType = "ongoing"
)

// ExpansionType is the flavor of expansion right.
type ExpansionType string

const (
	ExpansionROFO           ExpansionType = "rofo"
	ExpansionROFR           ExpansionType = "rofr"
	ExpansionFixedExpansion ExpansionType = "fixed_expansion"
	ExpansionMustTake       ExpansionType = "must_take"
)

// ExpansionTiming says when the expansion right can be exercised.
type ExpansionTiming string

const (
	TimingOngoing      ExpansionTiming = "ongoing"
	TimingDateSpecific ExpansionTiming = "date_specific"
)

// ExpansionRateBasis sets the rent on expansion space.
type ExpansionRateBasis string

const (
	ExpansionRateFMV       ExpansionRateBasis = "fmv"
	ExpansionRateSameTerms ExpansionRateBasis = "same_terms"
	ExpansionRateFixedRate ExpansionRateBasis = "fixed_rate"
	ExpansionRatePreAgreed ExpansionRateBasis = "pre_agreed"
)

// PurchaseStructure is how the purchase right is structured.
type PurchaseStructure string

const (
	PurchaseFixedDate PurchaseStructure = "fixed_date"
	PurchaseROFR      PurchaseStructure = "rofr"
)

// PurchasePriceBasis sets how the purchase price is determined.
type PurchasePriceBasis string

const (
	PriceFixed        PurchasePriceBasis = "fixed_price"
	PriceFMV          PurchasePriceBasis = "fmv"
	PriceFormulaBased PurchasePriceBasis = "formula_based"
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

func ParseExerciseWindowType(s string) (ExerciseWindowType, error) {
	return parseEnum(s, "exercise window type", ExerciseByDeadline, ExerciseBetweenDates, ExerciseRolling)
}

func ParseRollingTriggerType(s string) (RollingTriggerType, error) {
	return parseEnum(s, "rolling trigger type", RollingFromLeaseStart, RollingFromLeaseEnd, RollingFromFixedDate)
}

func ParseNoticeMethod(s string) (NoticeMethod, error) {
	return parseEnum(s, "notice method", NoticeDaysPrior, NoticeFixedDate)
}

func ParseRenewalRateBasis(s string) (RenewalRateBasis, error) {
	return parseEnum(s, "rate basis", RateBasisFMV, RateBasisPctFMV, RateBasisFixedRate, RateBasisCPIAdjustment)
}

func ParseFloorCapType(s string) (FloorCapType, error) {
	return parseEnum(s, "floor/cap type", FloorCapPctPriorRent, FloorCapFixedSF, FloorCapOther)
}

func ParseCpiFrequency(s string) (CpiFrequency, error) {
	return parseEnum(s, "CPI frequency", CpiAnnual, CpiSemiAnnual, CpiQuarterly, CpiMonthly, CpiOther)
}

func ParseTerminationType(s string) (TerminationType, error) {
	return parseEnum(s, "termination type", TerminationOneTime, TerminationOngoing)
}

func ParseExpansionType(s string) (ExpansionType, error) {
	return parseEnum(s, "expansion type", ExpansionROFO, ExpansionROFR, ExpansionFixedExpansion, ExpansionMustTake)
}

func ParseExpansionTiming(s string) (ExpansionTiming, error) {
	return parseEnum(s, "expansion timing", TimingOngoing, TimingDateSpecific)
}

func ParseExpansionRateBasis(s string) (ExpansionRateBasis, error) {
	return parseEnum(s, "expansion rate basis", ExpansionRateFMV, ExpansionRateSameTerms, ExpansionRateFixedRate, ExpansionRatePreAgreed)
}

func ParsePurchaseStructure(s string) (PurchaseStructure, error) {
	return parseEnum(s, "purchase structure", PurchaseFixedDate, PurchaseROFR)
}

func ParsePurchasePriceBasis(s string) (PurchasePriceBasis, error) {
	return parseEnum(s, "price basis", PriceFixed, PriceFMV, PriceFormulaBased)
}

// Meta carries the fields shared by every option variant.
type Meta struct {
	ID        id.OptionID
	CompID    id.CompID
	TeamID    id.TeamID
	Number    int
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy *id.UserID
	UpdatedBy *id.UserID
}

// ExerciseWindow is the window/notice block shared by the renewal,
// termination and purchase variants.
type ExerciseWindow struct {
	WindowType     *ExerciseWindowType
	Deadline       *id.Date
	WindowStart    *id.Date
	WindowEnd      *id.Date
	RollingTrigger *RollingTriggerType
	RollingMonths  *int64
	RollingDate    *id.Date
	NoticeMethod   *NoticeMethod
	NoticeDays     *int64
	NoticeDate     *id.Date
}

// Renewal is a right to extend the lease term.
type Renewal struct {
	Meta
	ExerciseWindow
	TermMonths        *int64
	RateBasis         *RenewalRateBasis
	PctOfFMV          *float64
	FloorType         *FloorCapType
	FloorValue        *float64
	FloorOverrideText *string
	CapType           *FloorCapType
	CapValue          *float64
	CapOverrideText   *string
	CpiIndex          *string
	CpiFrequency      *CpiFrequency
	CpiMin            *string
	CpiMax            *string
	Commentary        *string
}

// Termination is a right to end the lease early.
type Termination struct {
	Meta
	ExerciseWindow
	Type       *TerminationType
	FeeCents   *int64
	Commentary *string
}

// Expansion is a right to take additional space.
type Expansion struct {
	Meta
	Type         *ExpansionType
	SubjectSuite *string
	DecisionDays *int64
	Timing       *ExpansionTiming
	TimingDate   *id.Date
	RateBasis    *ExpansionRateBasis
	Commentary   *string
}

// Purchase is a right to buy the property.
type Purchase struct {
	Meta
	ExerciseWindow
	Structure      *PurchaseStructure
	PriceBasis     *PurchasePriceBasis
	PriceCents     *int64
	PricingFormula *string
	Commentary     *string
}

func (r *Renewal) Kind() Kind     { return KindRenewal }
func (t *Termination) Kind() Kind { return KindTermination }
func (e *Expansion) Kind() Kind   { return KindExpansion }
func (p *Purchase) Kind() Kind    { return KindPurchase }

func (r *Renewal) OptionMeta() *Meta     { return &r.Meta }
func (t *Termination) OptionMeta() *Meta { return &t.Meta }
func (e *Expansion) OptionMeta() *Meta   { return &e.Meta }
func (p *Purchase) OptionMeta() *Meta    { return &p.Meta }

// Option is the interface every variant satisfies. Snapshot keys align with
// the variant's Schema plus "option_number", which only the removal schema
// diffs over.
type Option interface {
	Kind() Kind
	OptionMeta() *Meta
	Schema() history.Schema
	Snapshot() history.Snapshot
}
