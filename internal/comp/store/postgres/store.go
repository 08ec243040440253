// Package postgres implements the comp store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"comphub/internal/comp/models"
	pgplatform "comphub/internal/platform/postgres"
	id "comphub/pkg/domain"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/platform/tx"
)

// Store persists lease comps.
type Store struct {
	db *sql.DB
}

// New creates a comp store backed by db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const compColumns = `
	id, team_id, building_id, status, tenant_name_raw, tenant_name_normalized,
	lease_type, lease_status,
	lease_sf, lease_sf_type, lease_sf_confidence,
	office_sf_lease, office_pct_lease, office_sf_lease_type, office_sf_lease_confidence,
	signed_date, signed_date_confidence,
	lease_start_date, lease_start_date_confidence,
	lease_term_months, lease_term_months_confidence,
	lease_end_date, lease_end_date_confidence,
	rent_psf_cents, starting_rate_units, starting_rate_confidence,
	reimbursement_method, reimbursement_other_notes,
	opex_cents, opex_units, opex_confidence,
	escalation_value, escalation_units, escalation_frequency_months, escalation_confidence,
	free_rent_months, free_rent_amount_cents, free_rent_units, free_rent_confidence,
	ti_allowance_cents, ti_units, ti_confidence,
	presentation_comments_external, presentation_comments_internal, misc_commentary,
	internal_access_level, export_detail_level,
	is_deleted, deleted_at, created_at, updated_at, created_by, updated_by`

// Insert writes a new comp row.
func (s *Store) Insert(ctx context.Context, c models.LeaseComp) error {
	query := `
		INSERT INTO lease_comps (` + compColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35, $36, $37, $38, $39, $40,
			$41, $42, $43, $44, $45, $46, $47, $48, $49, $50,
			$51, $52, $53)`

	_, err := s.exec(ctx, query, compArgs(c)...)
	if err != nil {
		return translateErr(err, "insert comp")
	}
	return nil
}

// Update rewrites all mutable columns of an existing comp.
func (s *Store) Update(ctx context.Context, c models.LeaseComp) error {
	query := `
		UPDATE lease_comps SET
			status = $3, tenant_name_raw = $4, tenant_name_normalized = $5,
			lease_type = $6, lease_status = $7,
			lease_sf = $8, lease_sf_type = $9, lease_sf_confidence = $10,
			office_sf_lease = $11, office_pct_lease = $12, office_sf_lease_type = $13, office_sf_lease_confidence = $14,
			signed_date = $15, signed_date_confidence = $16,
			lease_start_date = $17, lease_start_date_confidence = $18,
			lease_term_months = $19, lease_term_months_confidence = $20,
			lease_end_date = $21, lease_end_date_confidence = $22,
			rent_psf_cents = $23, starting_rate_units = $24, starting_rate_confidence = $25,
			reimbursement_method = $26, reimbursement_other_notes = $27,
			opex_cents = $28, opex_units = $29, opex_confidence = $30,
			escalation_value = $31, escalation_units = $32, escalation_frequency_months = $33, escalation_confidence = $34,
			free_rent_months = $35, free_rent_amount_cents = $36, free_rent_units = $37, free_rent_confidence = $38,
			ti_allowance_cents = $39, ti_units = $40, ti_confidence = $41,
			presentation_comments_external = $42, presentation_comments_internal = $43, misc_commentary = $44,
			internal_access_level = $45, export_detail_level = $46,
			updated_at = $47, updated_by = $48
		WHERE id = $1 AND team_id = $2 AND is_deleted = FALSE`

	result, err := s.exec(ctx, query,
		uuid.UUID(c.ID), uuid.UUID(c.TeamID),
		string(c.Status), c.TenantNameRaw, c.TenantNameNormalized,
		enumToNull(c.LeaseType), enumToNull(c.LeaseStatus),
		c.LeaseSF, enumToNull(c.LeaseSFType), enumToNull(c.LeaseSFConfid),
		c.OfficeSFLease, c.OfficePctLease, enumToNull(c.OfficeSFType), enumToNull(c.OfficeSFConfid),
		dateToNull(c.SignedDate), enumToNull(c.SignedConfid),
		dateToNull(c.LeaseStartDate), enumToNull(c.StartConfid),
		c.LeaseTermMonths, enumToNull(c.TermConfid),
		dateToNull(c.LeaseEndDate), enumToNull(c.EndConfid),
		c.RentPSFCents, enumToNull(c.StartingRateUnits), enumToNull(c.StartingRateConfid),
		enumToNull(c.ReimbursementMethod), c.ReimbursementOtherNotes,
		c.OpexCents, enumToNull(c.OpexUnits), enumToNull(c.OpexConfid),
		c.EscalationValue, enumToNull(c.EscalationUnits), c.EscalationFrequencyMonths, enumToNull(c.EscalationConfid),
		c.FreeRentMonths, c.FreeRentAmountCents, enumToNull(c.FreeRentUnits), enumToNull(c.FreeRentConfid),
		c.TIAllowanceCents, enumToNull(c.TIUnits), enumToNull(c.TIConfid),
		c.PresentationCommentsExternal, c.PresentationCommentsInternal, c.MiscCommentary,
		string(c.InternalAccessLevel), string(c.ExportDetailLevel),
		c.UpdatedAt, uuid.UUID(c.UpdatedBy),
	)
	if err != nil {
		return translateErr(err, "update comp")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update comp: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// GetByID loads one comp scoped to the team.
func (s *Store) GetByID(ctx context.Context, teamID id.TeamID, compID id.CompID) (models.LeaseComp, error) {
	query := `SELECT ` + compColumns + ` FROM lease_comps WHERE id = $1 AND team_id = $2 AND is_deleted = FALSE`
	row := s.queryRow(ctx, query, uuid.UUID(compID), uuid.UUID(teamID))
	comp, err := scanComp(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LeaseComp{}, sentinel.ErrNotFound
		}
		return models.LeaseComp{}, translateErr(err, "get comp")
	}
	return comp, nil
}

// List returns the team's comps, newest first.
func (s *Store) List(ctx context.Context, teamID id.TeamID) ([]models.LeaseComp, error) {
	query := `SELECT ` + compColumns + ` FROM lease_comps WHERE team_id = $1 AND is_deleted = FALSE ORDER BY created_at DESC, id DESC`
	rows, err := s.query(ctx, query, uuid.UUID(teamID))
	if err != nil {
		return nil, translateErr(err, "list comps")
	}
	defer rows.Close()

	var comps []models.LeaseComp
	for rows.Next() {
		comp, err := scanComp(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comp: %w", err)
		}
		comps = append(comps, comp)
	}
	return comps, rows.Err()
}

func compArgs(c models.LeaseComp) []any {
	return []any{
		uuid.UUID(c.ID), uuid.UUID(c.TeamID), uuid.UUID(c.BuildingID),
		string(c.Status), c.TenantNameRaw, c.TenantNameNormalized,
		enumToNull(c.LeaseType), enumToNull(c.LeaseStatus),
		c.LeaseSF, enumToNull(c.LeaseSFType), enumToNull(c.LeaseSFConfid),
		c.OfficeSFLease, c.OfficePctLease, enumToNull(c.OfficeSFType), enumToNull(c.OfficeSFConfid),
		dateToNull(c.SignedDate), enumToNull(c.SignedConfid),
		dateToNull(c.LeaseStartDate), enumToNull(c.StartConfid),
		c.LeaseTermMonths, enumToNull(c.TermConfid),
		dateToNull(c.LeaseEndDate), enumToNull(c.EndConfid),
		c.RentPSFCents, enumToNull(c.StartingRateUnits), enumToNull(c.StartingRateConfid),
		enumToNull(c.ReimbursementMethod), c.ReimbursementOtherNotes,
		c.OpexCents, enumToNull(c.OpexUnits), enumToNull(c.OpexConfid),
		c.EscalationValue, enumToNull(c.EscalationUnits), c.EscalationFrequencyMonths, enumToNull(c.EscalationConfid),
		c.FreeRentMonths, c.FreeRentAmountCents, enumToNull(c.FreeRentUnits), enumToNull(c.FreeRentConfid),
		c.TIAllowanceCents, enumToNull(c.TIUnits), enumToNull(c.TIConfid),
		c.PresentationCommentsExternal, c.PresentationCommentsInternal, c.MiscCommentary,
		string(c.InternalAccessLevel), string(c.ExportDetailLevel),
		c.IsDeleted, c.DeletedAt, c.CreatedAt, c.UpdatedAt,
		uuid.UUID(c.CreatedBy), uuid.UUID(c.UpdatedBy),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComp(row rowScanner) (models.LeaseComp, error) {
	var c models.LeaseComp
	var compID, teamID, buildingID, createdBy, updatedBy uuid.UUID
	var status, accessLevel, exportLevel string
	var tenantRaw, tenantNorm sql.NullString
	var leaseType, leaseStatus, leaseSfType, leaseSfConf sql.NullString
	var officeSfType, officeSfConf sql.NullString
	var signedConf, startConf, termConf, endConf sql.NullString
	var rateUnits, rateConf, reimbMethod, reimbNotes sql.NullString
	var opexUnits, opexConf, escUnits, escConf sql.NullString
	var frUnits, frConf, tiUnits, tiConf sql.NullString
	var commentsExt, commentsInt, miscComm sql.NullString
	var leaseSf, officeSf, termMonths, rentCents, opexCents sql.NullInt64
	var escFreq, frMonths, frCents, tiCents sql.NullInt64
	var officePct, escValue sql.NullFloat64
	var signedDate, startDate, endDate, deletedAt sql.NullTime

	err := row.Scan(
		&compID, &teamID, &buildingID, &status, &tenantRaw, &tenantNorm,
		&leaseType, &leaseStatus,
		&leaseSf, &leaseSfType, &leaseSfConf,
		&officeSf, &officePct, &officeSfType, &officeSfConf,
		&signedDate, &signedConf,
		&startDate, &startConf,
		&termMonths, &termConf,
		&endDate, &endConf,
		&rentCents, &rateUnits, &rateConf,
		&reimbMethod, &reimbNotes,
		&opexCents, &opexUnits, &opexConf,
		&escValue, &escUnits, &escFreq, &escConf,
		&frMonths, &frCents, &frUnits, &frConf,
		&tiCents, &tiUnits, &tiConf,
		&commentsExt, &commentsInt, &miscComm,
		&accessLevel, &exportLevel,
		&c.IsDeleted, &deletedAt, &c.CreatedAt, &c.UpdatedAt, &createdBy, &updatedBy,
	)
	if err != nil {
		return models.LeaseComp{}, err
	}

	c.ID = id.CompID(compID)
	c.TeamID = id.TeamID(teamID)
	c.BuildingID = id.BuildingID(buildingID)
	c.Status = models.CompStatus(status)
	c.TenantNameRaw = nullToString(tenantRaw)
	c.TenantNameNormalized = nullToString(tenantNorm)
	c.LeaseType = nullToEnum[models.LeaseType](leaseType)
	c.LeaseStatus = nullToEnum[models.LeaseStatus](leaseStatus)
	c.LeaseSF = nullToInt(leaseSf)
	c.LeaseSFType = nullToEnum[models.LeaseSfType](leaseSfType)
	c.LeaseSFConfid = nullToEnum[models.Confidence](leaseSfConf)
	c.OfficeSFLease = nullToInt(officeSf)
	c.OfficePctLease = nullToFloat(officePct)
	c.OfficeSFType = nullToEnum[models.OfficeSfLeaseType](officeSfType)
	c.OfficeSFConfid = nullToEnum[models.Confidence](officeSfConf)
	c.SignedDate = nullToDate(signedDate)
	c.SignedConfid = nullToEnum[models.Confidence](signedConf)
	c.LeaseStartDate = nullToDate(startDate)
	c.StartConfid = nullToEnum[models.Confidence](startConf)
	c.LeaseTermMonths = nullToInt(termMonths)
	c.TermConfid = nullToEnum[models.Confidence](termConf)
	c.LeaseEndDate = nullToDate(endDate)
	c.EndConfid = nullToEnum[models.Confidence](endConf)
	c.RentPSFCents = nullToInt(rentCents)
	c.StartingRateUnits = nullToEnum[models.RateUnits](rateUnits)
	c.StartingRateConfid = nullToEnum[models.Confidence](rateConf)
	c.ReimbursementMethod = nullToEnum[models.ReimbursementMethod](reimbMethod)
	c.ReimbursementOtherNotes = nullToString(reimbNotes)
	c.OpexCents = nullToInt(opexCents)
	c.OpexUnits = nullToEnum[models.RateUnits](opexUnits)
	c.OpexConfid = nullToEnum[models.Confidence](opexConf)
	c.EscalationValue = nullToFloat(escValue)
	c.EscalationUnits = nullToEnum[models.EscalationUnits](escUnits)
	c.EscalationFrequencyMonths = nullToInt(escFreq)
	c.EscalationConfid = nullToEnum[models.Confidence](escConf)
	c.FreeRentMonths = nullToInt(frMonths)
	c.FreeRentAmountCents = nullToInt(frCents)
	c.FreeRentUnits = nullToEnum[models.FreeRentUnits](frUnits)
	c.FreeRentConfid = nullToEnum[models.Confidence](frConf)
	c.TIAllowanceCents = nullToInt(tiCents)
	c.TIUnits = nullToEnum[models.TiUnits](tiUnits)
	c.TIConfid = nullToEnum[models.Confidence](tiConf)
	c.PresentationCommentsExternal = nullToString(commentsExt)
	c.PresentationCommentsInternal = nullToString(commentsInt)
	c.MiscCommentary = nullToString(miscComm)
	c.InternalAccessLevel = models.InternalAccessLevel(accessLevel)
	c.ExportDetailLevel = models.ExportDetailLevel(exportLevel)
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	c.CreatedBy = id.UserID(createdBy)
	c.UpdatedBy = id.UserID(updatedBy)
	return c, nil
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
