// Package postgres implements the option store over the four per-kind
// option tables.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"comphub/internal/option/models"
	pgplatform "comphub/internal/platform/postgres"
	id "comphub/pkg/domain"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/platform/tx"
)

// Store persists lease options.
type Store struct {
	db *sql.DB
}

// New creates an option store backed by db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var tables = map[models.Kind]string{
	models.KindRenewal:     "lease_comp_renewal_options",
	models.KindTermination: "lease_comp_termination_options",
	models.KindExpansion:   "lease_comp_expansion_options",
	models.KindPurchase:    "lease_comp_purchase_options",
}

// listKinds fixes the ordering of ListByComp output.
var listKinds = []models.Kind{
	models.KindRenewal, models.KindTermination, models.KindExpansion, models.KindPurchase,
}

const windowColumns = `exercise_window_type, exercise_deadline, window_start_date, window_end_date,
	rolling_trigger_type, rolling_trigger_months, rolling_trigger_date,
	notice_method, notice_days_prior, notice_fixed_date`

const metaSuffix = `created_at, updated_at, created_by, updated_by`

var kindColumns = map[models.Kind]string{
	models.KindRenewal: `id, lease_comp_id, team_id, option_number, ` + windowColumns + `,
	renewal_term_months, rate_basis, pct_of_fmv,
	floor_type, floor_value, floor_override_text,
	cap_type, cap_value, cap_override_text,
	cpi_index, cpi_frequency, cpi_min, cpi_max, commentary, ` + metaSuffix,
	models.KindTermination: `id, lease_comp_id, team_id, option_number, type, ` + windowColumns + `,
	termination_fee_cents, commentary, ` + metaSuffix,
	models.KindExpansion: `id, lease_comp_id, team_id, option_number, type, subject_suite,
	decision_window_days, timing, timing_date, rate_basis, commentary, ` + metaSuffix,
	models.KindPurchase: `id, lease_comp_id, team_id, option_number, structure, ` + windowColumns + `,
	price_basis, purchase_price_cents, pricing_formula, commentary, ` + metaSuffix,
}

// Insert writes a new option row into its kind's table.
func (s *Store) Insert(ctx context.Context, opt models.Option) error {
	args := insertArgs(opt)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tables[opt.Kind()], kindColumns[opt.Kind()], placeholders(len(args)))

	if _, err := s.exec(ctx, query, args...); err != nil {
		return translateErr(err, "insert option")
	}
	return nil
}

// Update rewrites all mutable columns of an existing option.
func (s *Store) Update(ctx context.Context, opt models.Option) error {
	query, args := updateQuery(opt)
	result, err := s.exec(ctx, query, args...)
	if err != nil {
		return translateErr(err, "update option")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update option: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// GetByID loads one option of the given kind, team-scoped.
func (s *Store) GetByID(ctx context.Context, teamID id.TeamID, kind models.Kind, optionID id.OptionID) (models.Option, error) {
	table, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("get option: unknown kind %q", kind)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND team_id = $2", kindColumns[kind], table)

	opt, err := scanOption(kind, s.queryRow(ctx, query, uuid.UUID(optionID), uuid.UUID(teamID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, translateErr(err, "get option")
	}
	return opt, nil
}

// ListByComp returns every option on the comp: renewals first, then
// terminations, expansions and purchases, each ordered by option number.
func (s *Store) ListByComp(ctx context.Context, teamID id.TeamID, compID id.CompID) ([]models.Option, error) {
	var out []models.Option
	for _, kind := range listKinds {
		query := fmt.Sprintf(
			"SELECT %s FROM %s WHERE lease_comp_id = $1 AND team_id = $2 ORDER BY option_number ASC",
			kindColumns[kind], tables[kind])

		rows, err := s.query(ctx, query, uuid.UUID(compID), uuid.UUID(teamID))
		if err != nil {
			return nil, translateErr(err, "list options")
		}
		for rows.Next() {
			opt, err := scanOption(kind, rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("list options: %w", err)
			}
			out = append(out, opt)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("list options: %w", err)
		}
		rows.Close()
	}
	return out, nil
}

// Delete removes one option row, team-scoped.
func (s *Store) Delete(ctx context.Context, teamID id.TeamID, kind models.Kind, optionID id.OptionID) error {
	table, ok := tables[kind]
	if !ok {
		return fmt.Errorf("delete option: unknown kind %q", kind)
	}
	result, err := s.exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND team_id = $2", table),
		uuid.UUID(optionID), uuid.UUID(teamID))
	if err != nil {
		return translateErr(err, "delete option")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete option: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// NextNumber returns one past the highest option number the comp has for the
// kind, starting at 1.
func (s *Store) NextNumber(ctx context.Context, teamID id.TeamID, compID id.CompID, kind models.Kind) (int, error) {
	table, ok := tables[kind]
	if !ok {
		return 0, fmt.Errorf("next option number: unknown kind %q", kind)
	}
	query := fmt.Sprintf(
		"SELECT COALESCE(MAX(option_number), 0) + 1 FROM %s WHERE lease_comp_id = $1 AND team_id = $2",
		table)

	var next int
	if err := s.queryRow(ctx, query, uuid.UUID(compID), uuid.UUID(teamID)).Scan(&next); err != nil {
		return 0, translateErr(err, "next option number")
	}
	return next, nil
}

func insertArgs(opt models.Option) []any {
	meta := opt.OptionMeta()
	args := []any{uuid.UUID(meta.ID), uuid.UUID(meta.CompID), uuid.UUID(meta.TeamID), meta.Number}
	args = append(args, kindArgs(opt)...)
	return append(args, meta.CreatedAt, meta.UpdatedAt, userToNull(meta.CreatedBy), userToNull(meta.UpdatedBy))
}

// kindArgs returns the variant's own column values in kindColumns order,
// between the shared prefix and the meta suffix.
func kindArgs(opt models.Option) []any {
	switch o := opt.(type) {
	case *models.Renewal:
		return append(windowArgs(o.ExerciseWindow),
			o.TermMonths, enumToNull(o.RateBasis), o.PctOfFMV,
			enumToNull(o.FloorType), o.FloorValue, o.FloorOverrideText,
			enumToNull(o.CapType), o.CapValue, o.CapOverrideText,
			o.CpiIndex, enumToNull(o.CpiFrequency), o.CpiMin, o.CpiMax, o.Commentary)
	case *models.Termination:
		args := []any{enumToNull(o.Type)}
		args = append(args, windowArgs(o.ExerciseWindow)...)
		return append(args, o.FeeCents, o.Commentary)
	case *models.Expansion:
		return []any{
			enumToNull(o.Type), o.SubjectSuite, o.DecisionDays,
			enumToNull(o.Timing), dateToNull(o.TimingDate), enumToNull(o.RateBasis), o.Commentary,
		}
	case *models.Purchase:
		args := []any{enumToNull(o.Structure)}
		args = append(args, windowArgs(o.ExerciseWindow)...)
		return append(args, enumToNull(o.PriceBasis), o.PriceCents, o.PricingFormula, o.Commentary)
	default:
		panic(fmt.Sprintf("unknown option type %T", opt))
	}
}

func windowArgs(w models.ExerciseWindow) []any {
	return []any{
		enumToNull(w.WindowType), dateToNull(w.Deadline), dateToNull(w.WindowStart), dateToNull(w.WindowEnd),
		enumToNull(w.RollingTrigger), w.RollingMonths, dateToNull(w.RollingDate),
		enumToNull(w.NoticeMethod), w.NoticeDays, dateToNull(w.NoticeDate),
	}
}

var kindSetColumns = map[models.Kind][]string{
	models.KindRenewal: {
		"exercise_window_type", "exercise_deadline", "window_start_date", "window_end_date",
		"rolling_trigger_type", "rolling_trigger_months", "rolling_trigger_date",
		"notice_method", "notice_days_prior", "notice_fixed_date",
		"renewal_term_months", "rate_basis", "pct_of_fmv",
		"floor_type", "floor_value", "floor_override_text",
		"cap_type", "cap_value", "cap_override_text",
		"cpi_index", "cpi_frequency", "cpi_min", "cpi_max", "commentary",
	},
	models.KindTermination: {
		"type",
		"exercise_window_type", "exercise_deadline", "window_start_date", "window_end_date",
		"rolling_trigger_type", "rolling_trigger_months", "rolling_trigger_date",
		"notice_method", "notice_days_prior", "notice_fixed_date",
		"termination_fee_cents", "commentary",
	},
	models.KindExpansion: {
		"type", "subject_suite", "decision_window_days", "timing", "timing_date", "rate_basis", "commentary",
	},
	models.KindPurchase: {
		"structure",
		"exercise_window_type", "exercise_deadline", "window_start_date", "window_end_date",
		"rolling_trigger_type", "rolling_trigger_months", "rolling_trigger_date",
		"notice_method", "notice_days_prior", "notice_fixed_date",
		"price_basis", "purchase_price_cents", "pricing_formula", "commentary",
	},
}

func updateQuery(opt models.Option) (string, []any) {
	meta := opt.OptionMeta()
	columns := kindSetColumns[opt.Kind()]

	assignments := make([]string, 0, len(columns)+2)
	args := []any{uuid.UUID(meta.ID), uuid.UUID(meta.TeamID)}
	args = append(args, kindArgs(opt)...)
	for i, col := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, i+3))
	}
	assignments = append(assignments,
		fmt.Sprintf("updated_at = $%d", len(columns)+3),
		fmt.Sprintf("updated_by = $%d", len(columns)+4))
	args = append(args, meta.UpdatedAt, userToNull(meta.UpdatedBy))

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1 AND team_id = $2",
		tables[opt.Kind()], strings.Join(assignments, ", "))
	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOption(kind models.Kind, row rowScanner) (models.Option, error) {
	switch kind {
	case models.KindRenewal:
		return scanRenewal(row)
	case models.KindTermination:
		return scanTermination(row)
	case models.KindExpansion:
		return scanExpansion(row)
	case models.KindPurchase:
		return scanPurchase(row)
	default:
		return nil, fmt.Errorf("unknown option kind %q", kind)
	}
}

// scanMeta holds the shared column intermediates around a kind's own fields.
type scanMeta struct {
	id        uuid.UUID
	compID    uuid.UUID
	teamID    uuid.UUID
	number    int
	createdBy uuid.NullUUID
	updatedBy uuid.NullUUID
}

func (m *scanMeta) apply(meta *models.Meta) {
	meta.ID = id.OptionID(m.id)
	meta.CompID = id.CompID(m.compID)
	meta.TeamID = id.TeamID(m.teamID)
	meta.Number = m.number
	meta.CreatedBy = nullToUser(m.createdBy)
	meta.UpdatedBy = nullToUser(m.updatedBy)
}

type scanWindow struct {
	windowType     sql.NullString
	deadline       sql.NullTime
	windowStart    sql.NullTime
	windowEnd      sql.NullTime
	rollingTrigger sql.NullString
	rollingMonths  sql.NullInt64
	rollingDate    sql.NullTime
	noticeMethod   sql.NullString
	noticeDays     sql.NullInt64
	noticeDate     sql.NullTime
}

func (w *scanWindow) dests() []any {
	return []any{
		&w.windowType, &w.deadline, &w.windowStart, &w.windowEnd,
		&w.rollingTrigger, &w.rollingMonths, &w.rollingDate,
		&w.noticeMethod, &w.noticeDays, &w.noticeDate,
	}
}

func (w *scanWindow) window() models.ExerciseWindow {
	return models.ExerciseWindow{
		WindowType:     nullToEnum[models.ExerciseWindowType](w.windowType),
		Deadline:       nullToDate(w.deadline),
		WindowStart:    nullToDate(w.windowStart),
		WindowEnd:      nullToDate(w.windowEnd),
		RollingTrigger: nullToEnum[models.RollingTriggerType](w.rollingTrigger),
		RollingMonths:  nullToInt(w.rollingMonths),
		RollingDate:    nullToDate(w.rollingDate),
		NoticeMethod:   nullToEnum[models.NoticeMethod](w.noticeMethod),
		NoticeDays:     nullToInt(w.noticeDays),
		NoticeDate:     nullToDate(w.noticeDate),
	}
}

func scanRenewal(row rowScanner) (models.Option, error) {
	var (
		m        scanMeta
		w        scanWindow
		term     sql.NullInt64
		basis    sql.NullString
		pct      sql.NullFloat64
		floorT   sql.NullString
		floorV   sql.NullFloat64
		floorTxt sql.NullString
		capT     sql.NullString
		capV     sql.NullFloat64
		capTxt   sql.NullString
		cpiIdx   sql.NullString
		cpiFreq  sql.NullString
		cpiMin   sql.NullString
		cpiMax   sql.NullString
		comment  sql.NullString
		opt      models.Renewal
	)
	dests := []any{&m.id, &m.compID, &m.teamID, &m.number}
	dests = append(dests, w.dests()...)
	dests = append(dests,
		&term, &basis, &pct, &floorT, &floorV, &floorTxt,
		&capT, &capV, &capTxt, &cpiIdx, &cpiFreq, &cpiMin, &cpiMax, &comment,
		&opt.CreatedAt, &opt.UpdatedAt, &m.createdBy, &m.updatedBy)
	if err := row.Scan(dests...); err != nil {
		return nil, err
	}
	m.apply(&opt.Meta)
	opt.ExerciseWindow = w.window()
	opt.TermMonths = nullToInt(term)
	opt.RateBasis = nullToEnum[models.RenewalRateBasis](basis)
	opt.PctOfFMV = nullToFloat(pct)
	opt.FloorType = nullToEnum[models.FloorCapType](floorT)
	opt.FloorValue = nullToFloat(floorV)
	opt.FloorOverrideText = nullToString(floorTxt)
	opt.CapType = nullToEnum[models.FloorCapType](capT)
	opt.CapValue = nullToFloat(capV)
	opt.CapOverrideText = nullToString(capTxt)
	opt.CpiIndex = nullToString(cpiIdx)
	opt.CpiFrequency = nullToEnum[models.CpiFrequency](cpiFreq)
	opt.CpiMin = nullToString(cpiMin)
	opt.CpiMax = nullToString(cpiMax)
	opt.Commentary = nullToString(comment)
	return &opt, nil
}

func scanTermination(row rowScanner) (models.Option, error) {
	var (
		m       scanMeta
		typ     sql.NullString
		w       scanWindow
		fee     sql.NullInt64
		comment sql.NullString
		opt     models.Termination
	)
	dests := []any{&m.id, &m.compID, &m.teamID, &m.number, &typ}
	dests = append(dests, w.dests()...)
	dests = append(dests, &fee, &comment, &opt.CreatedAt, &opt.UpdatedAt, &m.createdBy, &m.updatedBy)
	if err := row.Scan(dests...); err != nil {
		return nil, err
	}
	m.apply(&opt.Meta)
	opt.ExerciseWindow = w.window()
	opt.Type = nullToEnum[models.TerminationType](typ)
	opt.FeeCents = nullToInt(fee)
	opt.Commentary = nullToString(comment)
	return &opt, nil
}

func scanExpansion(row rowScanner) (models.Option, error) {
	var (
		m       scanMeta
		typ     sql.NullString
		suite   sql.NullString
		days    sql.NullInt64
		timing  sql.NullString
		date    sql.NullTime
		basis   sql.NullString
		comment sql.NullString
		opt     models.Expansion
	)
	err := row.Scan(&m.id, &m.compID, &m.teamID, &m.number,
		&typ, &suite, &days, &timing, &date, &basis, &comment,
		&opt.CreatedAt, &opt.UpdatedAt, &m.createdBy, &m.updatedBy)
	if err != nil {
		return nil, err
	}
	m.apply(&opt.Meta)
	opt.Type = nullToEnum[models.ExpansionType](typ)
	opt.SubjectSuite = nullToString(suite)
	opt.DecisionDays = nullToInt(days)
	opt.Timing = nullToEnum[models.ExpansionTiming](timing)
	opt.TimingDate = nullToDate(date)
	opt.RateBasis = nullToEnum[models.ExpansionRateBasis](basis)
	opt.Commentary = nullToString(comment)
	return &opt, nil
}

func scanPurchase(row rowScanner) (models.Option, error) {
	var (
		m       scanMeta
		structure sql.NullString
		w       scanWindow
		basis   sql.NullString
		price   sql.NullInt64
		formula sql.NullString
		comment sql.NullString
		opt     models.Purchase
	)
	dests := []any{&m.id, &m.compID, &m.teamID, &m.number, &structure}
	dests = append(dests, w.dests()...)
	dests = append(dests, &basis, &price, &formula, &comment,
		&opt.CreatedAt, &opt.UpdatedAt, &m.createdBy, &m.updatedBy)
	if err := row.Scan(dests...); err != nil {
		return nil, err
	}
	m.apply(&opt.Meta)
	opt.ExerciseWindow = w.window()
	opt.Structure = nullToEnum[models.PurchaseStructure](structure)
	opt.PriceBasis = nullToEnum[models.PurchasePriceBasis](basis)
	opt.PriceCents = nullToInt(price)
	opt.PricingFormula = nullToString(formula)
	opt.Commentary = nullToString(comment)
	return &opt, nil
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

func translateErr(err error, op string) error {
	if pgplatform.IsPermissionDenied(err) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrPermissionDenied)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func enumToNull[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func dateToNull(d *id.Date) any {
	if d == nil {
		return nil
	}
	return d.Time()
}

func userToNull(u *id.UserID) any {
	if u == nil {
		return nil
	}
	return uuid.UUID(*u)
}

func nullToUser(nu uuid.NullUUID) *id.UserID {
	if !nu.Valid {
		return nil
	}
	u := id.UserID(nu.UUID)
	return &u
}

func nullToEnum[T ~string](ns sql.NullString) *T {
	if !ns.Valid {
		return nil
	}
	v := T(ns.String)
	return &v
}

func nullToString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullToInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	return &ni.Int64
}

func nullToFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}

func nullToDate(nt sql.NullTime) *id.Date {
	if !nt.Valid {
		return nil
	}
	d := id.DateOf(nt.Time)
	return &d
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx.ExecContext(ctx, query, args...)
	}
	return s.db.ExecContext(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx.QueryContext(ctx, query, args...)
	}
	return s.db.QueryContext(ctx, query, args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx.QueryRowContext(ctx, query, args...)
	}
	return s.db.QueryRowContext(ctx, query, args...)
}
