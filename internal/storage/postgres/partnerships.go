package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// UpsertPartnerships writes all rows in one batch
func (s *Store) UpsertPartnerships(ctx context.Context, ownerID string, partnerships []*models.Partnership) error {
	if len(partnerships) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for _, p := range partnerships {
		var posted *time.Time
		if !p.PostedDate.IsZero() {
			posted = &p.PostedDate
		}
		b.Queue(`
			INSERT INTO partnerships (id, user_id, creator_name, video_url, cost_usd, status, posted_date, platform,
				views, likes, comments, shares, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5::numeric,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			ON CONFLICT (user_id, id) DO UPDATE SET
				creator_name = EXCLUDED.creator_name,
				video_url = EXCLUDED.video_url,
				cost_usd = EXCLUDED.cost_usd,
				status = EXCLUDED.status,
				posted_date = EXCLUDED.posted_date,
				platform = EXCLUDED.platform,
				views = EXCLUDED.views,
				likes = EXCLUDED.likes,
				comments = EXCLUDED.comments,
				shares = EXCLUDED.shares,
				updated_at = EXCLUDED.updated_at`,
			p.ID, ownerID, p.CreatorName, p.VideoURL, p.CostUSD.String(), string(p.Status), posted, p.Platform,
			p.Views, p.Likes, p.Comments, p.Shares, p.CreatedAt, p.UpdatedAt,
		)
	}

	br := s.pool.SendBatch(ctx, b)
	for range partnerships {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to upsert partnership: %w", err)
		}
	}
	return br.Close()
}

func (s *Store) ListPartnerships(ctx context.Context, ownerID string) ([]*models.Partnership, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, creator_name, video_url, cost_usd::text, status, posted_date, platform,
			views, likes, comments, shares, created_at, updated_at
		FROM partnerships WHERE user_id = $1 ORDER BY posted_date DESC NULLS LAST`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list partnerships: %w", err)
	}
	defer rows.Close()

	var out []*models.Partnership
	for rows.Next() {
		var (
			p            models.Partnership
			cost, status string
			posted       *time.Time
		)
		if err := rows.Scan(&p.ID, &p.CreatorName, &p.VideoURL, &cost, &status, &posted, &p.Platform,
			&p.Views, &p.Likes, &p.Comments, &p.Shares, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partnership: %w", err)
		}
		if p.CostUSD, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("invalid cost for partnership %s: %w", p.ID, err)
		}
		if posted != nil {
			p.PostedDate = *posted
		}
		p.Status = models.PartnershipStatus(status)
		p.OwnerID = ownerID
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *Store) DeletePartnership(ctx context.Context, ownerID, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM partnerships WHERE user_id = $1 AND id = $2`, ownerID, id); err != nil {
		return fmt.Errorf("failed to delete partnership %s: %w", id, err)
	}
	return nil
}

func (s *Store) UpsertCredentials(ctx context.Context, ownerID string, creds *models.AppStoreCredentials) error {
	updated := creds.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO app_store_creds (user_id, app_name, app_id, vendor_number, issuer_id, key_id, private_key, verified_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (user_id) DO UPDATE SET
			app_name = EXCLUDED.app_name,
			app_id = EXCLUDED.app_id,
			vendor_number = EXCLUDED.vendor_number,
			issuer_id = EXCLUDED.issuer_id,
			key_id = EXCLUDED.key_id,
			private_key = EXCLUDED.private_key,
			verified_at = EXCLUDED.verified_at,
			updated_at = EXCLUDED.updated_at`,
		ownerID, creds.AppName, creds.AppID, creds.VendorNumber, creds.IssuerID, creds.KeyID, creds.PrivateKey, creds.VerifiedAt, updated,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert credentials: %w", err)
	}
	return nil
}

func (s *Store) GetCredentials(ctx context.Context, ownerID string) (*models.AppStoreCredentials, error) {
	var creds models.AppStoreCredentials
	err := s.pool.QueryRow(ctx, `
		SELECT app_name, app_id, vendor_number, issuer_id, key_id, private_key, verified_at, updated_at
		FROM app_store_creds WHERE user_id = $1`, ownerID).
		Scan(&creds.AppName, &creds.AppID, &creds.VendorNumber, &creds.IssuerID, &creds.KeyID, &creds.PrivateKey, &creds.VerifiedAt, &creds.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return &creds, nil
}
