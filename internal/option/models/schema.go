package models

import "comphub/internal/history"

// Per-kind audit schemas. Order matches the entry forms, and the removal
// schema for a kind is its edit schema with Option Number in front.

var exerciseWindowSchema = history.Schema{
	{Key: "exercise_window_type", Label: "Exercise Window Type"},
	{Key: "exercise_deadline", Label: "Exercise Deadline"},
	{Key: "window_start_date", Label: "Window Start Date"},
	{Key: "window_end_date", Label: "Window End Date"},
	{Key: "rolling_trigger_type", Label: "Rolling Trigger Type"},
	{Key: "rolling_trigger_months", Label: "Rolling Trigger Months"},
	{Key: "rolling_trigger_date", Label: "Rolling Trigger Date"},
	{Key: "notice_method", Label: "Notice Method"},
	{Key: "notice_days_prior", Label: "Notice Days Prior"},
	{Key: "notice_fixed_date", Label: "Notice Fixed Date"},
}

var renewalSchema = append(append(history.Schema{}, exerciseWindowSchema...), history.Schema{
	{Key: "renewal_term_months", Label: "Renewal Term (months)"},
	{Key: "rate_basis", Label: "Rate Basis"},
	{Key: "pct_of_fmv", Label: "% of FMV"},
	{Key: "floor_type", Label: "Floor Type"},
	{Key: "floor_value", Label: "Floor Value"},
	{Key: "floor_override_text", Label: "Floor Override Text"},
	{Key: "cap_type", Label: "Cap Type"},
	{Key: "cap_value", Label: "Cap Value"},
	{Key: "cap_override_text", Label: "Cap Override Text"},
	{Key: "cpi_index", Label: "CPI Index"},
	{Key: "cpi_frequency", Label: "CPI Frequency"},
	{Key: "cpi_min", Label: "CPI Min"},
	{Key: "cpi_max", Label: "CPI Max"},
	{Key: "commentary", Label: "Commentary"},
}...)

var terminationSchema = append(history.Schema{
	{Key: "type", Label: "Type"},
}, append(append(history.Schema{}, exerciseWindowSchema...), history.Schema{
	{Key: "termination_fee_cents", Label: "Termination Fee"},
	{Key: "commentary", Label: "Commentary"},
}...)...)

var expansionSchema = history.Schema{
	{Key: "type", Label: "Type"},
	{Key: "subject_suite", Label: "Subject Suite"},
	{Key: "decision_window_days", Label: "Decision Window (days)"},
	{Key: "timing", Label: "Timing"},
	{Key: "timing_date", Label: "Timing Date"},
	{Key: "rate_basis", Label: "Rate Basis"},
	{Key: "commentary", Label: "Commentary"},
}

var purchaseSchema = append(history.Schema{
	{Key: "structure", Label: "Structure"},
}, append(append(history.Schema{}, exerciseWindowSchema...), history.Schema{
	{Key: "price_basis", Label: "Price Basis"},
	{Key: "purchase_price_cents", Label: "Purchase Price"},
	{Key: "pricing_formula", Label: "Pricing Formula"},
	{Key: "commentary", Label: "Commentary"},
}...)...)

func (r *Renewal) Schema() history.Schema     { return renewalSchema }
func (t *Termination) Schema() history.Schema { return terminationSchema }
func (e *Expansion) Schema() history.Schema   { return expansionSchema }
func (p *Purchase) Schema() history.Schema    { return purchaseSchema }

// RemovalSchema returns the schema used when an option is deleted, which
// also records the option number.
func RemovalSchema(opt Option) history.Schema {
	s := make(history.Schema, 0, len(opt.Schema())+1)
	s = append(s, history.Field{Key: "option_number", Label: "Option Number"})
	return append(s, opt.Schema()...)
}

func (w ExerciseWindow) snapshotInto(snap history.Snapshot) {
	snap["exercise_window_type"] = w.WindowType
	snap["exercise_deadline"] = w.Deadline
	snap["window_start_date"] = w.WindowStart
	snap["window_end_date"] = w.WindowEnd
	snap["rolling_trigger_type"] = w.RollingTrigger
	snap["rolling_trigger_months"] = w.RollingMonths
	snap["rolling_trigger_date"] = w.RollingDate
	snap["notice_method"] = w.NoticeMethod
	snap["notice_days_prior"] = w.NoticeDays
	snap["notice_fixed_date"] = w.NoticeDate
}

func (r *Renewal) Snapshot() history.Snapshot {
	snap := history.Snapshot{"option_number": r.Number}
	r.ExerciseWindow.snapshotInto(snap)
	snap["renewal_term_months"] = r.TermMonths
	snap["rate_basis"] = r.RateBasis
	snap["pct_of_fmv"] = r.PctOfFMV
	snap["floor_type"] = r.FloorType
	snap["floor_value"] = r.FloorValue
	snap["floor_override_text"] = r.FloorOverrideText
	snap["cap_type"] = r.CapType
	snap["cap_value"] = r.CapValue
	snap["cap_override_text"] = r.CapOverrideText
	snap["cpi_index"] = r.CpiIndex
	snap["cpi_frequency"] = r.CpiFrequency
	snap["cpi_min"] = r.CpiMin
	snap["cpi_max"] = r.CpiMax
	snap["commentary"] = r.Commentary
	return snap
}

func (t *Termination) Snapshot() history.Snapshot {
	snap := history.Snapshot{"option_number": t.Number}
	t.ExerciseWindow.snapshotInto(snap)
	snap["type"] = t.Type
	snap["termination_fee_cents"] = t.FeeCents
	snap["commentary"] = t.Commentary
	return snap
}

func (e *Expansion) Snapshot() history.Snapshot {
	return history.Snapshot{
		"option_number":        e.Number,
		"type":                 e.Type,
		"subject_suite":        e.SubjectSuite,
		"decision_window_days": e.DecisionDays,
		"timing":               e.Timing,
		"timing_date":          e.TimingDate,
		"rate_basis":           e.RateBasis,
		"commentary":           e.Commentary,
	}
}

func (p *Purchase) Snapshot() history.Snapshot {
	snap := history.Snapshot{"option_number": p.Number}
	p.ExerciseWindow.snapshotInto(snap)
	snap["structure"] = p.Structure
	snap["price_basis"] = p.PriceBasis
	snap["purchase_price_cents"] = p.PriceCents
	snap["pricing_formula"] = p.PricingFormula
	snap["commentary"] = p.Commentary
	return snap
}
