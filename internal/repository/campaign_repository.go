package repository

import (
	"database/sql"
	"fmt"
	"time"

	apperrors "github.com/Tasknova/What-app-Nandlal-sub001/internal/errors"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id int64) (*model.Campaign, error)
	ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error)
	ListDue(now time.Time) ([]*model.Campaign, error)
	ListStuckSending(olderThan time.Time) ([]*model.Campaign, error)

	// MarkSending is the at-most-once intake gate: it flips the campaign
	// out of `scheduled` and reports whether this caller won the race.
	MarkSending(id int64) (bool, error)
	Reschedule(id int64, at time.Time) (bool, error)

	// MarkFailed moves a sending campaign to failed and reports whether the
	// row was still in `sending`. Guarded like the other lifecycle mutations.
	MarkFailed(id int64) (bool, error)

	// FinalizeDispatch closes the dispatch phase. Counters are derived from
	// the message rows in the same statement, so receipts reconciled while
	// the contact loop was still running are never overwritten.
	FinalizeDispatch(id int64) error

	// SyncCounters recomputes the counter buckets from the message rows.
	SyncCounters(id int64) error

	GetMessageStats(id int64) (map[string]int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, client_id, name, template_id, group_id, variable_mapping, status, scheduled_for,
        sent_count, delivered_count, failed_count, created_at, updated_at`

func scanCampaign(row interface{ Scan(...interface{}) error }) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID, &c.ClientID, &c.Name, &c.TemplateID, &c.GroupID, &c.VariableMapping,
		&c.Status, &c.ScheduledFor, &c.SentCount, &c.DeliveredCount, &c.FailedCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now().UTC()
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}
	query := `
        INSERT INTO campaigns (client_id, name, template_id, group_id, variable_mapping, status, scheduled_for, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		c.ClientID, c.Name, c.TemplateID, c.GroupID, c.VariableMapping, c.Status, c.ScheduledFor, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) GetByID(id int64) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	countArgs := []interface{}{}
	if status != "" {
		countQuery += " AND status=$1"
		countArgs = append(countArgs, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// ListDue selects campaigns ready for dispatch. Comparison is UTC only; the
// UI converts local times before persisting.
func (r *CampaignRepository) ListDue(now time.Time) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
        FROM campaigns
        WHERE status=$1 AND scheduled_for IS NOT NULL AND scheduled_for <= $2
        ORDER BY scheduled_for ASC, id ASC`
	return r.queryCampaigns(query, model.CampaignStatusScheduled, now.UTC())
}

func (r *CampaignRepository) ListStuckSending(olderThan time.Time) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
        FROM campaigns
        WHERE status=$1 AND updated_at IS NOT NULL AND updated_at <= $2
        ORDER BY updated_at ASC`
	return r.queryCampaigns(query, model.CampaignStatusSending, olderThan.UTC())
}

func (r *CampaignRepository) queryCampaigns(query string, args ...interface{}) ([]*model.Campaign, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) MarkSending(id int64) (bool, error) {
	res, err := r.DB.Exec(
		`UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
		model.CampaignStatusSending, id, model.CampaignStatusScheduled,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Reschedule moves a draft or scheduled campaign to `scheduled` at the given
// time. Used by the send-now endpoint with at=now.
func (r *CampaignRepository) Reschedule(id int64, at time.Time) (bool, error) {
	res, err := r.DB.Exec(
		`UPDATE campaigns SET status=$1, scheduled_for=$2, updated_at=NOW()
         WHERE id=$3 AND status IN ($4, $5)`,
		model.CampaignStatusScheduled, at.UTC(), id,
		model.CampaignStatusDraft, model.CampaignStatusScheduled,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *CampaignRepository) MarkFailed(id int64) (bool, error) {
	res, err := r.DB.Exec(
		`UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
		model.CampaignStatusFailed, id, model.CampaignStatusSending,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// The message rows are the source of truth for the counter buckets; both the
// finalize and the receipt rollup recount them in a single statement instead
// of carrying increments, so a receipt that lands while the dispatch loop is
// still running cannot leave a message counted in two buckets.
const counterRecount = `
        sent_count=(SELECT COUNT(*) FROM messages WHERE campaign_id=$1 AND status='sent'),
        delivered_count=(SELECT COUNT(*) FROM messages WHERE campaign_id=$1 AND status='delivered'),
        failed_count=(SELECT COUNT(*) FROM messages WHERE campaign_id=$1 AND status='failed')`

func (r *CampaignRepository) FinalizeDispatch(id int64) error {
	_, err := r.DB.Exec(
		`UPDATE campaigns SET status=$2,`+counterRecount+`, updated_at=NOW()
         WHERE id=$1 AND status=$3`,
		id, model.CampaignStatusSent, model.CampaignStatusSending,
	)
	return err
}

func (r *CampaignRepository) SyncCounters(id int64) error {
	_, err := r.DB.Exec(
		`UPDATE campaigns SET`+counterRecount+`, updated_at=NOW() WHERE id=$1`, id)
	return err
}

// GetMessageStats returns live per-status message counts for a campaign.
func (r *CampaignRepository) GetMessageStats(id int64) (map[string]int, error) {
	rows, err := r.DB.Query(
		`SELECT status, COUNT(*) FROM messages WHERE campaign_id=$1 GROUP BY status`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"pending": 0, "sent": 0, "delivered": 0, "failed": 0, "unknown": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
