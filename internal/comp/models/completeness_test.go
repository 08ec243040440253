package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "comphub/pkg/domain"
)

func strPtr(s string) *string { return &s }
func intPtr(n int64) *int64   { return &n }

func completeComp() LeaseComp {
	method := ReimbursementNet
	start := id.Date("2025-01-01")
	return LeaseComp{
		BuildingID:          id.BuildingID(uuid.New()),
		TenantNameRaw:       strPtr("Acme Corp"),
		LeaseSF:             intPtr(12000),
		LeaseStartDate:      &start,
		LeaseTermMonths:     intPtr(60),
		RentPSFCents:        intPtr(1250),
		ReimbursementMethod: &method,
	}
}

func TestDeriveIncompleteReasons(t *testing.T) {
	t.Run("complete comp has no reasons", func(t *testing.T) {
		assert.Empty(t, DeriveIncompleteReasons(completeComp()))
	})

	t.Run("each missing field reports its code", func(t *testing.T) {
		comp := LeaseComp{}
		assert.Equal(t, []Reason{
			ReasonMissingTenant,
			ReasonMissingBuilding,
			ReasonMissingLeaseSF,
			ReasonMissingStartDate,
			ReasonMissingTerm,
			ReasonMissingPricing,
			ReasonMissingReimbursement,
		}, DeriveIncompleteReasons(comp))
	})

	t.Run("whitespace tenant name counts as missing", func(t *testing.T) {
		comp := completeComp()
		comp.TenantNameRaw = strPtr("   ")
		assert.Contains(t, DeriveIncompleteReasons(comp), ReasonMissingTenant)
	})

	t.Run("end date satisfies term without months", func(t *testing.T) {
		comp := completeComp()
		comp.LeaseTermMonths = nil
		end := id.Date("2030-01-31")
		comp.LeaseEndDate = &end
		assert.NotContains(t, DeriveIncompleteReasons(comp), ReasonMissingTerm)
	})

	t.Run("other reimbursement needs notes of ten characters", func(t *testing.T) {
		comp := completeComp()
		other := ReimbursementOther
		comp.ReimbursementMethod = &other

		comp.ReimbursementOtherNotes = nil
		assert.Contains(t, DeriveIncompleteReasons(comp), ReasonMissingReimbursementNotes)

		comp.ReimbursementOtherNotes = strPtr("too short")
		assert.Contains(t, DeriveIncompleteReasons(comp), ReasonMissingReimbursementNotes)

		comp.ReimbursementOtherNotes = strPtr("long enough notes")
		assert.NotContains(t, DeriveIncompleteReasons(comp), ReasonMissingReimbursementNotes)
	})

	t.Run("three gaps report three codes in order", func(t *testing.T) {
		comp := completeComp()
		comp.TenantNameRaw = nil
		comp.LeaseSF = nil
		other := ReimbursementOther
		comp.ReimbursementMethod = &other
		comp.ReimbursementOtherNotes = strPtr("ok")

		assert.Equal(t, []Reason{
			ReasonMissingTenant,
			ReasonMissingLeaseSF,
			ReasonMissingReimbursementNotes,
		}, DeriveIncompleteReasons(comp))
	})

	t.Run("evaluation is pure", func(t *testing.T) {
		comp := completeComp()
		comp.LeaseSF = nil
		first := DeriveIncompleteReasons(comp)
		second := DeriveIncompleteReasons(comp)
		assert.Equal(t, first, second)
	})
}

func TestReasonLabel(t *testing.T) {
	assert.Equal(t, "Missing tenant name", ReasonMissingTenant.Label())
	assert.Equal(t, "Missing reimbursement notes (required when 'other')", ReasonMissingReimbursementNotes.Label())
	assert.Equal(t, "made_up_code", Reason("made_up_code").Label())
}
