package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"hospital-admin-dashboard/internal/metrics"
	"hospital-admin-dashboard/internal/models"
)

const doctorListKey = "dashboard:doctors:list"

// DoctorLister is the upstream doctor source.
type DoctorLister interface {
	List(ctx context.Context) ([]models.Doctor, error)
}

// DoctorCache serves the doctor list from Redis, filling it from the
// upstream source on a miss. With a nil client it passes straight through.
type DoctorCache struct {
	source  DoctorLister
	rdb     *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewDoctorCache creates a DoctorCache.
func NewDoctorCache(source DoctorLister, rdb *redis.Client, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *DoctorCache {
	return &DoctorCache{source: source, rdb: rdb, ttl: ttl, logger: logger, metrics: m}
}

// List returns all doctors. Redis failures fall back to the source.
func (c *DoctorCache) List(ctx context.Context) ([]models.Doctor, error) {
	if c.rdb == nil {
		return c.source.List(ctx)
	}

	raw, err := c.rdb.Get(ctx, doctorListKey).Bytes()
	switch {
	case err == nil:
		var doctors []models.Doctor
		if jsonErr := json.Unmarshal(raw, &doctors); jsonErr == nil {
			c.metrics.ObserveDoctorCache("hit")
			return doctors, nil
		}
		c.logger.Warn("Discarding undecodable doctor cache entry")
	case errors.Is(err, redis.Nil):
		c.metrics.ObserveDoctorCache("miss")
	default:
		c.metrics.ObserveDoctorCache("error")
		c.logger.Warn("Doctor cache read failed", zap.Error(err))
	}

	doctors, err := c.source.List(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(doctors)
	if err == nil {
		err = c.rdb.Set(ctx, doctorListKey, data, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("Doctor cache write failed", zap.Error(err))
	}
	return doctors, nil
}

// Invalidate drops the cached list.
func (c *DoctorCache) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, doctorListKey).Err()
}
