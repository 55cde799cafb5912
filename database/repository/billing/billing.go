package billingRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flatmate/database"
	"flatmate/models"
	"flatmate/utils"

	"firebase.google.com/go/v4/db"
	"github.com/go-redis/redis/v8"
)

const (
	configNode     = "config/maintenance"
	configCacheKey = "billing:config"
	configCacheTTL = time.Minute
)

// BillingRepository holds the single society-wide billing
// configuration. Get returns nil (no error) when no configuration has
// been saved yet.
type BillingRepository interface {
	Get(ctx context.Context) (*models.BillingConfig, error)
	Save(ctx context.Context, cfg *models.BillingConfig) error
}

// FirebaseBillingRepo implements BillingRepository on the Realtime
// Database with a short-lived Redis read-through cache, since the
// config is read on every quote and payment.
type FirebaseBillingRepo struct {
	client *db.Client
	cache  *redis.Client
}

// NewFirebaseBillingRepo creates a new BillingRepository backed by the
// global database and cache clients.
func NewFirebaseBillingRepo() BillingRepository {
	return &FirebaseBillingRepo{
		client: database.DBClient,
		cache:  utils.GetCacheClient(),
	}
}

func (r *FirebaseBillingRepo) Get(ctx context.Context) (*models.BillingConfig, error) {
	if r.cache != nil {
		if b, err := r.cache.Get(ctx, configCacheKey).Bytes(); err == nil {
			var cfg models.BillingConfig
			if err := json.Unmarshal(b, &cfg); err == nil {
				return &cfg, nil
			}
		}
	}

	var raw map[string]interface{}
	if err := r.client.NewRef(configNode).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("billing repo: failed to fetch config: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("billing repo: failed to decode config: %w", err)
	}
	var cfg models.BillingConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("billing repo: failed to decode config: %w", err)
	}

	if r.cache != nil {
		_ = r.cache.Set(ctx, configCacheKey, b, configCacheTTL).Err()
	}
	return &cfg, nil
}

func (r *FirebaseBillingRepo) Save(ctx context.Context, cfg *models.BillingConfig) error {
	fields := map[string]interface{}{
		"maintenanceCharge": cfg.MaintenanceCharge,
		"waterCharge":       cfg.WaterCharge,
		"sinkingFund":       cfg.SinkingFund,
		"lateFee":           cfg.LateFee,
		"contactEmail":      cfg.ContactEmail,
		"dueDateISO":        cfg.DueDateISO,
	}
	// Keep the legacy day-of-month field in sync for older consumers.
	if cfg.DueDateISO != "" {
		if t, err := time.Parse("2006-01-02", cfg.DueDateISO); err == nil {
			fields["dueDate"] = fmt.Sprintf("%d", t.Day())
		}
	}
	if err := r.client.NewRef(configNode).Update(ctx, fields); err != nil {
		return fmt.Errorf("billing repo: failed to save config: %w", err)
	}
	if r.cache != nil {
		_ = r.cache.Del(ctx, configCacheKey).Err()
	}
	return nil
}
