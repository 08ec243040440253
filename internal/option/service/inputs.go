package service

import (
	"strings"

	"comphub/internal/option/models"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
)

// ExerciseWindowInput is the raw window/notice block shared by the renewal,
// termination and purchase inputs. Enum and date fields arrive as strings;
// blank means unset.
type ExerciseWindowInput struct {
	WindowType     *string
	Deadline       *string
	WindowStart    *string
	WindowEnd      *string
	RollingTrigger *string
	RollingMonths  *int64
	RollingDate    *string
	NoticeMethod   *string
	NoticeDays     *int64
	NoticeDate     *string
}

func (in ExerciseWindowInput) build() (models.ExerciseWindow, error) {
	var (
		w   models.ExerciseWindow
		err error
	)
	if w.WindowType, err = parseOptional(in.WindowType, models.ParseExerciseWindowType); err != nil {
		return w, err
	}
	if w.Deadline, err = parseOptional(in.Deadline, id.ParseDate); err != nil {
		return w, err
	}
	if w.WindowStart, err = parseOptional(in.WindowStart, id.ParseDate); err != nil {
		return w, err
	}
	if w.WindowEnd, err = parseOptional(in.WindowEnd, id.ParseDate); err != nil {
		return w, err
	}
	if w.RollingTrigger, err = parseOptional(in.RollingTrigger, models.ParseRollingTriggerType); err != nil {
		return w, err
	}
	if w.RollingMonths, err = nonNegative(in.RollingMonths, "rolling trigger months"); err != nil {
		return w, err
	}
	if w.RollingDate, err = parseOptional(in.RollingDate, id.ParseDate); err != nil {
		return w, err
	}
	if w.NoticeMethod, err = parseOptional(in.NoticeMethod, models.ParseNoticeMethod); err != nil {
		return w, err
	}
	if w.NoticeDays, err = nonNegative(in.NoticeDays, "notice days prior"); err != nil {
		return w, err
	}
	if w.NoticeDate, err = parseOptional(in.NoticeDate, id.ParseDate); err != nil {
		return w, err
	}
	return w, nil
}

// RenewalInput builds a renewal option.
type RenewalInput struct {
	ExerciseWindowInput
	TermMonths        *int64
	RateBasis         *string
	PctOfFMV          *float64
	FloorType         *string
	FloorValue        *float64
	FloorOverrideText *string
	CapType           *string
	CapValue          *float64
	CapOverrideText   *string
	CpiIndex          *string
	CpiFrequency      *string
	CpiMin            *string
	CpiMax            *string
	Commentary        *string
}

func (in RenewalInput) Kind() models.Kind { return models.KindRenewal }

func (in RenewalInput) build() (models.Option, error) {
	window, err := in.ExerciseWindowInput.build()
	if err != nil {
		return nil, err
	}
	opt := &models.Renewal{ExerciseWindow: window}
	if opt.TermMonths, err = nonNegative(in.TermMonths, "renewal term months"); err != nil {
		return nil, err
	}
	if opt.RateBasis, err = parseOptional(in.RateBasis, models.ParseRenewalRateBasis); err != nil {
		return nil, err
	}
	if opt.PctOfFMV, err = nonNegativeFloat(in.PctOfFMV, "% of FMV"); err != nil {
		return nil, err
	}
	if opt.FloorType, err = parseOptional(in.FloorType, models.ParseFloorCapType); err != nil {
		return nil, err
	}
	if opt.FloorValue, err = nonNegativeFloat(in.FloorValue, "floor value"); err != nil {
		return nil, err
	}
	opt.FloorOverrideText = trimmedOrNil(in.FloorOverrideText)
	if opt.CapType, err = parseOptional(in.CapType, models.ParseFloorCapType); err != nil {
		return nil, err
	}
	if opt.CapValue, err = nonNegativeFloat(in.CapValue, "cap value"); err != nil {
		return nil, err
	}
	opt.CapOverrideText = trimmedOrNil(in.CapOverrideText)
	opt.CpiIndex = trimmedOrNil(in.CpiIndex)
	if opt.CpiFrequency, err = parseOptional(in.CpiFrequency, models.ParseCpiFrequency); err != nil {
		return nil, err
	}
	opt.CpiMin = trimmedOrNil(in.CpiMin)
	opt.CpiMax = trimmedOrNil(in.CpiMax)
	opt.Commentary = trimmedOrNil(in.Commentary)
	return opt, nil
}

// TerminationInput builds a termination option.
type TerminationInput struct {
	ExerciseWindowInput
	Type       *string
	FeeCents   *int64
	Commentary *string
}

func (in TerminationInput) Kind() models.Kind { return models.KindTermination }

func (in TerminationInput) build() (models.Option, error) {
	window, err := in.ExerciseWindowInput.build()
	if err != nil {
		return nil, err
	}
	opt := &models.Termination{ExerciseWindow: window}
	if opt.Type, err = parseOptional(in.Type, models.ParseTerminationType); err != nil {
		return nil, err
	}
	if opt.FeeCents, err = nonNegative(in.FeeCents, "termination fee"); err != nil {
		return nil, err
	}
	opt.Commentary = trimmedOrNil(in.Commentary)
	return opt, nil
}

// ExpansionInput builds an expansion option.
type ExpansionInput struct {
	Type         *string
	SubjectSuite *string
	DecisionDays *int64
	Timing       *string
	TimingDate   *string
	RateBasis    *string
	Commentary   *string
}

func (in ExpansionInput) Kind() models.Kind { return models.KindExpansion }

func (in ExpansionInput) build() (models.Option, error) {
	opt := &models.Expansion{}
	var err error
	if opt.Type, err = parseOptional(in.Type, models.ParseExpansionType); err != nil {
		return nil, err
	}
	opt.SubjectSuite = trimmedOrNil(in.SubjectSuite)
	if opt.DecisionDays, err = nonNegative(in.DecisionDays, "decision window days"); err != nil {
		return nil, err
	}
	if opt.Timing, err = parseOptional(in.Timing, models.ParseExpansionTiming); err != nil {
		return nil, err
	}
	if opt.TimingDate, err = parseOptional(in.TimingDate, id.ParseDate); err != nil {
		return nil, err
	}
	if opt.RateBasis, err = parseOptional(in.RateBasis, models.ParseExpansionRateBasis); err != nil {
		return nil, err
	}
	opt.Commentary = trimmedOrNil(in.Commentary)
	return opt, nil
}

// PurchaseInput builds a purchase option.
type PurchaseInput struct {
	ExerciseWindowInput
	Structure      *string
	PriceBasis     *string
	PriceCents     *int64
	PricingFormula *string
	Commentary     *string
}

func (in PurchaseInput) Kind() models.Kind { return models.KindPurchase }

func (in PurchaseInput) build() (models.Option, error) {
	window, err := in.ExerciseWindowInput.build()
	if err != nil {
		return nil, err
	}
	opt := &models.Purchase{ExerciseWindow: window}
	if opt.Structure, err = parseOptional(in.Structure, models.ParsePurchaseStructure); err != nil {
		return nil, err
	}
	if opt.PriceBasis, err = parseOptional(in.PriceBasis, models.ParsePurchasePriceBasis); err != nil {
		return nil, err
	}
	if opt.PriceCents, err = nonNegative(in.PriceCents, "purchase price"); err != nil {
		return nil, err
	}
	opt.PricingFormula = trimmedOrNil(in.PricingFormula)
	opt.Commentary = trimmedOrNil(in.Commentary)
	return opt, nil
}

func parseOptional[T any](raw *string, parse func(string) (T, error)) (*T, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	v, err := parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func nonNegative(v *int64, name string) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	if *v < 0 {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be negative", name)
	}
	return v, nil
}

func nonNegativeFloat(v *float64, name string) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	if *v < 0 {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be negative", name)
	}
	return v, nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
