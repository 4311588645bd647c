package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mbolis/survey-studio/analytics"
)

// ReportCache keeps computed analytics reports until the survey or its
// responses change.
//
// Every invalidation bumps a per-survey generation. Get reports the
// generation it looked under and Set stores under the generation it is
// given, so a report computed before an invalidation is never served after
// it.
type ReportCache interface {
	Get(ctx context.Context, surveyID string) (report *analytics.Report, gen int64, err error)
	Set(ctx context.Context, surveyID string, gen int64, report analytics.Report) error
	Invalidate(ctx context.Context, surveyID string) error
}

type reportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a Redis backed report cache.
func NewReportCache(client *redis.Client, ttl time.Duration) ReportCache {
	return &reportCache{
		client: client,
		ttl:    ttl,
	}
}

func generationKey(surveyID string) string {
	return fmt.Sprintf("survey:%s:gen", surveyID)
}

func reportKey(surveyID string, gen int64) string {
	return fmt.Sprintf("survey:%s:report:%d", surveyID, gen)
}

// Get returns a nil report on a miss.
func (c *reportCache) Get(ctx context.Context, surveyID string) (*analytics.Report, int64, error) {
	gen, err := c.client.Get(ctx, generationKey(surveyID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}

	data, err := c.client.Get(ctx, reportKey(surveyID, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, nil
	}
	if err != nil {
		return nil, 0, err
	}
	var report analytics.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, 0, err
	}
	return &report, gen, nil
}

func (c *reportCache) Set(ctx context.Context, surveyID string, gen int64, report analytics.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, reportKey(surveyID, gen), data, c.ttl).Err()
}

// Invalidate moves the survey to a new generation and drops the report of
// the old one. Reports set under an old generation expire with their TTL.
func (c *reportCache) Invalidate(ctx context.Context, surveyID string) error {
	gen, err := c.client.Incr(ctx, generationKey(surveyID)).Result()
	if err != nil {
		return err
	}
	return c.client.Del(ctx, reportKey(surveyID, gen-1)).Err()
}

type noCache struct{}

// Disabled is the cache used when no Redis is configured: it never hits.
func Disabled() ReportCache {
	return noCache{}
}

func (noCache) Get(context.Context, string) (*analytics.Report, int64, error) { return nil, 0, nil }
func (noCache) Set(context.Context, string, int64, analytics.Report) error    { return nil }
func (noCache) Invalidate(context.Context, string) error                      { return nil }
