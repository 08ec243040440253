package handler

import (
	"time"

	optionModel "comphub/internal/option/models"
	"comphub/internal/option/service"
	id "comphub/pkg/domain"
)

type exerciseWindowRequest struct {
	ExerciseWindowType *string `json:"exercise_window_type"`
	ExerciseDeadline   *string `json:"exercise_deadline"`
	WindowStartDate    *string `json:"window_start_date"`
	WindowEndDate      *string `json:"window_end_date"`
	RollingTriggerType *string `json:"rolling_trigger_type"`
	RollingTriggerMos  *int64  `json:"rolling_trigger_months"`
	RollingTriggerDate *string `json:"rolling_trigger_date"`
	NoticeMethod       *string `json:"notice_method"`
	NoticeDaysPrior    *int64  `json:"notice_days_prior"`
	NoticeFixedDate    *string `json:"notice_fixed_date"`
}

func (req exerciseWindowRequest) toInput() service.ExerciseWindowInput {
	return service.ExerciseWindowInput{
		WindowType:     req.ExerciseWindowType,
		Deadline:       req.ExerciseDeadline,
		WindowStart:    req.WindowStartDate,
		WindowEnd:      req.WindowEndDate,
		RollingTrigger: req.RollingTriggerType,
		RollingMonths:  req.RollingTriggerMos,
		RollingDate:    req.RollingTriggerDate,
		NoticeMethod:   req.NoticeMethod,
		NoticeDays:     req.NoticeDaysPrior,
		NoticeDate:     req.NoticeFixedDate,
	}
}

type renewalRequest struct {
	exerciseWindowRequest
	RenewalTermMonths *int64   `json:"renewal_term_months"`
	RateBasis         *string  `json:"rate_basis"`
	PctOfFMV          *float64 `json:"pct_of_fmv"`
	FloorType         *string  `json:"floor_type"`
	FloorValue        *float64 `json:"floor_value"`
	FloorOverrideText *string  `json:"floor_override_text"`
	CapType           *string  `json:"cap_type"`
	CapValue          *float64 `json:"cap_value"`
	CapOverrideText   *string  `json:"cap_override_text"`
	CpiIndex          *string  `json:"cpi_index"`
	CpiFrequency      *string  `json:"cpi_frequency"`
	CpiMin            *string  `json:"cpi_min"`
	CpiMax            *string  `json:"cpi_max"`
	Commentary        *string  `json:"commentary"`
}

func (req renewalRequest) toInput() service.RenewalInput {
	return service.RenewalInput{
		ExerciseWindowInput: req.exerciseWindowRequest.toInput(),
		TermMonths:          req.RenewalTermMonths,
		RateBasis:           req.RateBasis,
		PctOfFMV:            req.PctOfFMV,
		FloorType:           req.FloorType,
		FloorValue:          req.FloorValue,
		FloorOverrideText:   req.FloorOverrideText,
		CapType:             req.CapType,
		CapValue:            req.CapValue,
		CapOverrideText:     req.CapOverrideText,
		CpiIndex:            req.CpiIndex,
		CpiFrequency:        req.CpiFrequency,
		CpiMin:              req.CpiMin,
		CpiMax:              req.CpiMax,
		Commentary:          req.Commentary,
	}
}

type terminationRequest struct {
	exerciseWindowRequest
	Type                *string `json:"type"`
	TerminationFeeCents *int64  `json:"termination_fee_cents"`
	Commentary          *string `json:"commentary"`
}

func (req terminationRequest) toInput() service.TerminationInput {
	return service.TerminationInput{
		ExerciseWindowInput: req.exerciseWindowRequest.toInput(),
		Type:                req.Type,
		FeeCents:            req.TerminationFeeCents,
		Commentary:          req.Commentary,
	}
}

type expansionRequest struct {
	Type               *string `json:"type"`
	SubjectSuite       *string `json:"subject_suite"`
	DecisionWindowDays *int64  `json:"decision_window_days"`
	Timing             *string `json:"timing"`
	TimingDate         *string `json:"timing_date"`
	RateBasis          *string `json:"rate_basis"`
	Commentary         *string `json:"commentary"`
}

func (req expansionRequest) toInput() service.ExpansionInput {
	return service.ExpansionInput{
		Type:         req.Type,
		SubjectSuite: req.SubjectSuite,
		DecisionDays: req.DecisionWindowDays,
		Timing:       req.Timing,
		TimingDate:   req.TimingDate,
		RateBasis:    req.RateBasis,
		Commentary:   req.Commentary,
	}
}

type purchaseRequest struct {
	exerciseWindowRequest
	Structure          *string `json:"structure"`
	PriceBasis         *string `json:"price_basis"`
	PurchasePriceCents *int64  `json:"purchase_price_cents"`
	PricingFormula     *string `json:"pricing_formula"`
	Commentary         *string `json:"commentary"`
}

func (req purchaseRequest) toInput() service.PurchaseInput {
	return service.PurchaseInput{
		ExerciseWindowInput: req.exerciseWindowRequest.toInput(),
		Structure:           req.Structure,
		PriceBasis:          req.PriceBasis,
		PriceCents:          req.PurchasePriceCents,
		PricingFormula:      req.PricingFormula,
		Commentary:          req.Commentary,
	}
}

type optionMetaResponse struct {
	ID           string    `json:"id"`
	LeaseCompID  string    `json:"lease_comp_id"`
	TeamID       string    `json:"team_id"`
	Kind         string    `json:"kind"`
	OptionNumber int       `json:"option_number"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	CreatedBy    *string   `json:"created_by"`
	UpdatedBy    *string   `json:"updated_by"`
}

type exerciseWindowResponse struct {
	ExerciseWindowType *string `json:"exercise_window_type"`
	ExerciseDeadline   *string `json:"exercise_deadline"`
	WindowStartDate    *string `json:"window_start_date"`
	WindowEndDate      *string `json:"window_end_date"`
	RollingTriggerType *string `json:"rolling_trigger_type"`
	RollingTriggerMos  *int64  `json:"rolling_trigger_months"`
	RollingTriggerDate *string `json:"rolling_trigger_date"`
	NoticeMethod       *string `json:"notice_method"`
	NoticeDaysPrior    *int64  `json:"notice_days_prior"`
	NoticeFixedDate    *string `json:"notice_fixed_date"`
}

type renewalResponse struct {
	optionMetaResponse
	exerciseWindowResponse
	RenewalTermMonths *int64   `json:"renewal_term_months"`
	RateBasis         *string  `json:"rate_basis"`
	PctOfFMV          *float64 `json:"pct_of_fmv"`
	FloorType         *string  `json:"floor_type"`
	FloorValue        *float64 `json:"floor_value"`
	FloorOverrideText *string  `json:"floor_override_text"`
	CapType           *string  `json:"cap_type"`
	CapValue          *float64 `json:"cap_value"`
	CapOverrideText   *string  `json:"cap_override_text"`
	CpiIndex          *string  `json:"cpi_index"`
	CpiFrequency      *string  `json:"cpi_frequency"`
	CpiMin            *string  `json:"cpi_min"`
	CpiMax            *string  `json:"cpi_max"`
	Commentary        *string  `json:"commentary"`
}

type terminationResponse struct {
	optionMetaResponse
	exerciseWindowResponse
	Type                *string `json:"type"`
	TerminationFeeCents *int64  `json:"termination_fee_cents"`
	Commentary          *string `json:"commentary"`
}

type expansionResponse struct {
	optionMetaResponse
	Type               *string `json:"type"`
	SubjectSuite       *string `json:"subject_suite"`
	DecisionWindowDays *int64  `json:"decision_window_days"`
	Timing             *string `json:"timing"`
	TimingDate         *string `json:"timing_date"`
	RateBasis          *string `json:"rate_basis"`
	Commentary         *string `json:"commentary"`
}

type purchaseResponse struct {
	optionMetaResponse
	exerciseWindowResponse
	Structure          *string `json:"structure"`
	PriceBasis         *string `json:"price_basis"`
	PurchasePriceCents *int64  `json:"purchase_price_cents"`
	PricingFormula     *string `json:"pricing_formula"`
	Commentary         *string `json:"commentary"`
}

type listResponse struct {
	Renewal     []any `json:"renewal"`
	Termination []any `json:"termination"`
	Expansion   []any `json:"expansion"`
	Purchase    []any `json:"purchase"`
}

func toListResponse(opts []optionModel.Option) listResponse {
	resp := listResponse{
		Renewal:     []any{},
		Termination: []any{},
		Expansion:   []any{},
		Purchase:    []any{},
	}
	for _, opt := range opts {
		switch opt.Kind() {
		case optionModel.KindRenewal:
			resp.Renewal = append(resp.Renewal, toOptionResponse(opt))
		case optionModel.KindTermination:
			resp.Termination = append(resp.Termination, toOptionResponse(opt))
		case optionModel.KindExpansion:
			resp.Expansion = append(resp.Expansion, toOptionResponse(opt))
		case optionModel.KindPurchase:
			resp.Purchase = append(resp.Purchase, toOptionResponse(opt))
		}
	}
	return resp
}

func toOptionResponse(opt optionModel.Option) any {
	switch o := opt.(type) {
	case *optionModel.Renewal:
		return renewalResponse{
			optionMetaResponse:     toMetaResponse(opt),
			exerciseWindowResponse: toWindowResponse(o.ExerciseWindow),
			RenewalTermMonths:      o.TermMonths,
			RateBasis:              enumPtr(o.RateBasis),
			PctOfFMV:               o.PctOfFMV,
			FloorType:              enumPtr(o.FloorType),
			FloorValue:             o.FloorValue,
			FloorOverrideText:      o.FloorOverrideText,
			CapType:                enumPtr(o.CapType),
			CapValue:               o.CapValue,
			CapOverrideText:        o.CapOverrideText,
			CpiIndex:               o.CpiIndex,
			CpiFrequency:           enumPtr(o.CpiFrequency),
			CpiMin:                 o.CpiMin,
			CpiMax:                 o.CpiMax,
			Commentary:             o.Commentary,
		}
	case *optionModel.Termination:
		return terminationResponse{
			optionMetaResponse:     toMetaResponse(opt),
			exerciseWindowResponse: toWindowResponse(o.ExerciseWindow),
			Type:                   enumPtr(o.Type),
			TerminationFeeCents:    o.FeeCents,
			Commentary:             o.Commentary,
		}
	case *optionModel.Expansion:
		return expansionResponse{
			optionMetaResponse: toMetaResponse(opt),
			Type:               enumPtr(o.Type),
			SubjectSuite:       o.SubjectSuite,
			DecisionWindowDays: o.DecisionDays,
			Timing:             enumPtr(o.Timing),
			TimingDate:         datePtr(o.TimingDate),
			RateBasis:          enumPtr(o.RateBasis),
			Commentary:         o.Commentary,
		}
	case *optionModel.Purchase:
		return purchaseResponse{
			optionMetaResponse:     toMetaResponse(opt),
			exerciseWindowResponse: toWindowResponse(o.ExerciseWindow),
			Structure:              enumPtr(o.Structure),
			PriceBasis:             enumPtr(o.PriceBasis),
			PurchasePriceCents:     o.PriceCents,
			PricingFormula:         o.PricingFormula,
			Commentary:             o.Commentary,
		}
	default:
		return nil
	}
}

func toMetaResponse(opt optionModel.Option) optionMetaResponse {
	meta := opt.OptionMeta()
	return optionMetaResponse{
		ID:           meta.ID.String(),
		LeaseCompID:  meta.CompID.String(),
		TeamID:       meta.TeamID.String(),
		Kind:         string(opt.Kind()),
		OptionNumber: meta.Number,
		CreatedAt:    meta.CreatedAt,
		UpdatedAt:    meta.UpdatedAt,
		CreatedBy:    userPtr(meta.CreatedBy),
		UpdatedBy:    userPtr(meta.UpdatedBy),
	}
}

func toWindowResponse(w optionModel.ExerciseWindow) exerciseWindowResponse {
	return exerciseWindowResponse{
		ExerciseWindowType: enumPtr(w.WindowType),
		ExerciseDeadline:   datePtr(w.Deadline),
		WindowStartDate:    datePtr(w.WindowStart),
		WindowEndDate:      datePtr(w.WindowEnd),
		RollingTriggerType: enumPtr(w.RollingTrigger),
		RollingTriggerMos:  w.RollingMonths,
		RollingTriggerDate: datePtr(w.RollingDate),
		NoticeMethod:       enumPtr(w.NoticeMethod),
		NoticeDaysPrior:    w.NoticeDays,
		NoticeFixedDate:    datePtr(w.NoticeDate),
	}
}

func enumPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func datePtr(d *id.Date) *string {
	if d == nil {
		return nil
	}
	s := string(*d)
	return &s
}

func userPtr(u *id.UserID) *string {
	if u == nil {
		return nil
	}
	s := u.String()
	return &s
}
