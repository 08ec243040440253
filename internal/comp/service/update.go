package service

import (
	"context"
	"fmt"
	"strings"

	"comphub/internal/comp/models"
	"comphub/internal/history"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/requestcontext"
)

// Lease terms beyond this are treated as data entry errors and clamped.
const maxLeaseTermMonths = 1200

// UpdateLeaseDetailsInput carries the full editable lease-details field set.
// Enum and date fields arrive as raw strings and are validated here; a nil
// pointer clears the column. The whole set is written on every save, matching
// the form it backs.
type UpdateLeaseDetailsInput struct {
	LeaseType                    *string
	LeaseStatus                  *string
	LeaseSF                      *int64
	LeaseSFType                  *string
	LeaseSFConfidence            *string
	OfficeSFLease                *int64
	OfficePctLease               *float64
	OfficeSFLeaseType            *string
	OfficeSFLeaseConfidence      *string
	SignedDate                   *string
	SignedDateConfidence         *string
	LeaseStartDate               *string
	LeaseStartDateConfidence     *string
	LeaseTermMonths              *int64
	LeaseTermMonthsConfidence    *string
	LeaseEndDate                 *string
	LeaseEndDateConfidence       *string
	RentPSFCents                 *int64
	StartingRateUnits            *string
	StartingRateConfidence       *string
	ReimbursementMethod          *string
	ReimbursementOtherNotes      *string
	OpexCents                    *int64
	OpexUnits                    *string
	OpexConfidence               *string
	EscalationValue              *float64
	EscalationUnits              *string
	EscalationFrequencyMonths    *int64
	EscalationConfidence         *string
	FreeRentMonths               *int64
	FreeRentAmountCents          *int64
	FreeRentUnits                *string
	FreeRentConfidence           *string
	TIAllowanceCents             *int64
	TIUnits                      *string
	TIConfidence                 *string
	PresentationCommentsExternal *string
	PresentationCommentsInternal *string
	MiscCommentary               *string
}

// UpdateLeaseDetails validates the input, writes the comp, and records the
// change. A lease_status change is logged as its own status_changed event;
// every other changed field goes into one fields_edited event. A save that
// changes nothing logs nothing. Concurrency is last-write-wins.
func (s *Service) UpdateLeaseDetails(ctx context.Context, compID id.CompID, input UpdateLeaseDetailsInput) (models.LeaseComp, error) {
	actor, teamID, err := callerIdentity(ctx)
	if err != nil {
		return models.LeaseComp{}, err
	}

	comp, err := s.store.GetByID(ctx, teamID, compID)
	if err != nil {
		return models.LeaseComp{}, s.translateStoreErr(err, "failed to load comp")
	}
	before := models.DetailsSnapshot(comp)

	if err := applyDetails(&comp, input); err != nil {
		return models.LeaseComp{}, err
	}
	comp.UpdatedBy = actor
	comp.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, comp); err != nil {
		return models.LeaseComp{}, s.translateStoreErr(err, "failed to update comp")
	}

	diffs := history.ComputeDiffs(before, models.DetailsSnapshot(comp), models.DetailsSchema)
	if len(diffs) == 0 {
		return comp, nil
	}

	var statusDiff *history.DiffInput
	otherDiffs := make([]history.DiffInput, 0, len(diffs))
	for i := range diffs {
		if diffs[i].FieldLabel == models.LeaseStatusLabel {
			statusDiff = &diffs[i]
			continue
		}
		otherDiffs = append(otherDiffs, diffs[i])
	}

	if statusDiff != nil {
		entry := history.Entry{
			CompID:      compID,
			TeamID:      teamID,
			Type:        history.EventStatusChanged,
			Summary:     fmt.Sprintf("Lease Status: %s → %s", valueOrDash(statusDiff.OldValue), valueOrDash(statusDiff.NewValue)),
			ActorUserID: actor,
			Diffs:       []history.DiffInput{*statusDiff},
		}
		if err := s.logBlocking(ctx, entry); err != nil {
			return comp, err
		}
	}
	if len(otherDiffs) > 0 {
		entry := history.Entry{
			CompID:      compID,
			TeamID:      teamID,
			Type:        history.EventFieldsEdited,
			Summary:     "Lease details updated",
			ActorUserID: actor,
			Diffs:       otherDiffs,
		}
		if err := s.logBlocking(ctx, entry); err != nil {
			return comp, err
		}
	}
	return comp, nil
}

// applyDetails validates and normalizes the input onto the comp in place.
func applyDetails(comp *models.LeaseComp, input UpdateLeaseDetailsInput) error {
	var err error

	if comp.LeaseType, err = parseOptional(input.LeaseType, models.ParseLeaseType); err != nil {
		return err
	}
	if comp.LeaseStatus, err = parseOptional(input.LeaseStatus, models.ParseLeaseStatus); err != nil {
		return err
	}
	if comp.LeaseSF, err = nonNegative(input.LeaseSF, "lease sf"); err != nil {
		return err
	}
	if comp.LeaseSFType, err = parseOptional(input.LeaseSFType, models.ParseLeaseSfType); err != nil {
		return err
	}
	if comp.LeaseSFConfid, err = parseOptional(input.LeaseSFConfidence, models.ParseConfidence); err != nil {
		return err
	}
	if comp.OfficeSFLease, err = nonNegative(input.OfficeSFLease, "office sf"); err != nil {
		return err
	}
	comp.OfficePctLease = clampPct(input.OfficePctLease)
	if comp.OfficeSFType, err = parseOptional(input.OfficeSFLeaseType, models.ParseOfficeSfLeaseType); err != nil {
		return err
	}
	if comp.OfficeSFConfid, err = parseOptional(input.OfficeSFLeaseConfidence, models.ParseConfidence); err != nil {
		return err
	}
	if comp.SignedDate, err = parseOptional(input.SignedDate, id.ParseDate); err != nil {
		return err
	}
	if comp.SignedConfid, err = parseOptional(input.SignedDateConfidence, models.ParseConfidence); err != nil {
		return err
	}
	if comp.LeaseStartDate, err = parseOptional(input.LeaseStartDate, id.ParseDate); err != nil {
		return err
	}
	if comp.StartConfid, err = parseOptional(input.LeaseStartDateConfidence, models.ParseConfidence); err != nil {
		return err
	}
	if comp.LeaseTermMonths, err = nonNegative(input.LeaseTermMonths, "lease term"); err != nil {
		return err
	}
	if comp.LeaseTermMonths != nil && *comp.LeaseTermMonths > maxLeaseTermMonths {
		clamped := int64(maxLeaseTermMonths)
		comp.LeaseTermMonths = &clamped
	}
	if comp.TermConfid, err = parseOptional(input.LeaseTermMonthsConfidence, models.ParseConfidence); err != nil {
		return err
	}
	if comp.LeaseEndDate, err = parseOptional(input.LeaseEndDate, id.ParseDate); err != nil {
		return err
	}
	if comp.LeaseEndDate != nil {
		snapped := comp.LeaseEndDate.EndOfMonth()
		comp.LeaseEndDate = &snapped
	}
	if comp.EndConfid, err = parseOptional(input.LeaseEndDateConfidence, models.ParseConfidence); err != nil {
		return err
	}
	if comp.RentPSFCents, err = nonNegative(input.RentPSFCents, "starting rate"); err != nil {
		return err
	}
	if comp.StartingRateUnits, err = parseOptional(input.StartingRateUnits, models.ParseRateUnits); err != nil {
		return err
	}
	if comp.StartingRateConfid, err = parseOptional(input.StartingRateConfidence, models.ParseConfidence); err != nil {
		return err
	}
	if comp.ReimbursementMethod, err = parseOptional(input.ReimbursementMethod, models.ParseReimbursementMethod); err != nil {
		return err
	}
	comp.ReimbursementOtherNotes = trimmedOrNil(input.ReimbursementOtherNotes)
	if comp.OpexCents, err = nonNegative(input.OpexCents, "opex"); err != nil {
		return err
	}
	if comp.OpexUnits, err = parseOptional(input.OpexUnits, models.ParseRateUnits); err != nil {
		return err
	}
	if comp.OpexConfid, err = parseOptional(input.OpexConfidence, models.ParseConfidence); err != nil {
		return err
	}
	if comp.EscalationValue, err = nonNegativeFloat(input.EscalationValue, "escalation value"); err != nil {
		return err
	}
	if comp.EscalationUnits, err = parseOptional(input.EscalationUnits, models.ParseEscalationUnits); err != nil {
		return err
	}
	if comp.EscalationFrequencyMonths, err = nonNegative(input.EscalationFrequencyMonths, "escalation frequency"); err != nil {
		return err
	}
	if comp.EscalationConfid, err = parseOptional(input.EscalationConfidence, models.ParseConfidence); err != nil {
		return err
	}
	if comp.FreeRentMonths, err = nonNegative(input.FreeRentMonths, "free rent months"); err != nil {
		return err
	}
	if comp.FreeRentAmountCents, err = nonNegative(input.FreeRentAmountCents, "free rent amount"); err != nil {
		return err
	}
	if comp.FreeRentUnits, err = parseOptional(input.FreeRentUnits, models.ParseFreeRentUnits); err != nil {
		return err
	}
	if comp.FreeRentConfid, err = parseOptional(input.FreeRentConfidence, models.ParseConfidence); err != nil {
		return err
	}
	if comp.TIAllowanceCents, err = nonNegative(input.TIAllowanceCents, "ti allowance"); err != nil {
		return err
	}
	if comp.TIUnits, err = parseOptional(input.TIUnits, models.ParseTiUnits); err != nil {
		return err
	}
	if comp.TIConfid, err = parseOptional(input.TIConfidence, models.ParseConfidence); err != nil {
		return err
	}
	comp.PresentationCommentsExternal = trimmedOrNil(input.PresentationCommentsExternal)
	comp.PresentationCommentsInternal = trimmedOrNil(input.PresentationCommentsInternal)
	comp.MiscCommentary = trimmedOrNil(input.MiscCommentary)
	return nil
}

// UpdateConfidentialityInput sets both confidentiality levels.
type UpdateConfidentialityInput struct {
	InternalAccessLevel string
	ExportDetailLevel   string
}

// UpdateConfidentiality writes the two settings and records each change under
// its own event type: confidentiality_changed for the access level,
// export_level_changed for the export level.
func (s *Service) UpdateConfidentiality(ctx context.Context, compID id.CompID, input UpdateConfidentialityInput) (models.LeaseComp, error) {
	actor, teamID, err := callerIdentity(ctx)
	if err != nil {
		return models.LeaseComp{}, err
	}

	accessLevel, err := models.ParseInternalAccessLevel(input.InternalAccessLevel)
	if err != nil {
		return models.LeaseComp{}, err
	}
	exportLevel, err := models.ParseExportDetailLevel(input.ExportDetailLevel)
	if err != nil {
		return models.LeaseComp{}, err
	}

	comp, err := s.store.GetByID(ctx, teamID, compID)
	if err != nil {
		return models.LeaseComp{}, s.translateStoreErr(err, "failed to load comp")
	}
	before := models.ConfidentialitySnapshot(comp)

	comp.InternalAccessLevel = accessLevel
	comp.ExportDetailLevel = exportLevel
	comp.UpdatedBy = actor
	comp.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, comp); err != nil {
		return models.LeaseComp{}, s.translateStoreErr(err, "failed to update comp")
	}

	diffs := history.ComputeDiffs(before, models.ConfidentialitySnapshot(comp), models.ConfidentialitySchema)
	for _, eventSplit := range []struct {
		label     string
		eventType history.EventType
	}{
		{models.InternalAccessLevelLabel, history.EventConfidentialityChanged},
		{models.ExportDetailLevelLabel, history.EventExportLevelChanged},
	} {
		var matched []history.DiffInput
		var summaries []string
		for _, d := range diffs {
			if d.FieldLabel == eventSplit.label {
				matched = append(matched, d)
				summaries = append(summaries,
					fmt.Sprintf("%s: %s → %s", d.FieldLabel, valueOrDash(d.OldValue), valueOrDash(d.NewValue)))
			}
		}
		if len(matched) == 0 {
			continue
		}
		entry := history.Entry{
			CompID:      compID,
			TeamID:      teamID,
			Type:        eventSplit.eventType,
			Summary:     strings.Join(summaries, ", "),
			ActorUserID: actor,
			Diffs:       matched,
		}
		if err := s.logBlocking(ctx, entry); err != nil {
			return comp, err
		}
	}
	return comp, nil
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

// clampPct bounds a percentage to [0, 100].
func clampPct(v *float64) *float64 {
	if v == nil {
		return nil
	}
	pct := *v
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return &pct
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
