package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/perpliq/perpliq/internal/domain"
)

// ReportCache implements domain.ReportCache, storing each completed report
// as a JSON blob with a TTL.
//
// Key schema:
//
//	report:{INSTRUMENT} - JSON-encoded domain.Report
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewReportCache creates a ReportCache backed by the given Client. Reports
// expire after ttl; a zero ttl stores nothing.
func NewReportCache(c *Client, ttl time.Duration) *ReportCache {
	return &ReportCache{rdb: c.rdb, ttl: ttl}
}

func reportKey(instrument string) string {
	return "report:" + strings.ToUpper(instrument)
}

// SetReport stores the report under its instrument key.
func (rc *ReportCache) SetReport(ctx context.Context, report domain.Report) error {
	if rc.ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("redis: marshal report %s: %w", report.Instrument, err)
	}
	if err := rc.rdb.Set(ctx, reportKey(report.Instrument), data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set report %s: %w", report.Instrument, err)
	}
	return nil
}

// GetReport returns the cached report for the instrument, or
// domain.ErrNotFound when the key is absent or expired.
func (rc *ReportCache) GetReport(ctx context.Context, instrument string) (domain.Report, error) {
	data, err := rc.rdb.Get(ctx, reportKey(instrument)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Report{}, domain.ErrNotFound
		}
		return domain.Report{}, fmt.Errorf("redis: get report %s: %w", instrument, err)
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return domain.Report{}, fmt.Errorf("redis: unmarshal report %s: %w", instrument, err)
	}
	return report, nil
}

// Compile-time interface check.
var _ domain.ReportCache = (*ReportCache)(nil)
