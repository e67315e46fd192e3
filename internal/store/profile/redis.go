package profile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore keeps profiles in Redis hashes: profile:<id> for attributes and
// tallies, profile:<id>:patterns for per-pattern counters.
type RedisStore struct {
	rdb *goredis.Client
}

// NewRedisStore connects and pings; a dead Redis fails construction rather
// than failing silently later.
func NewRedisStore(addr string) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func profileKey(id string) string { return "profile:" + id }

func (s *RedisStore) Get(ctx context.Context, participantID string) (Profile, error) {
	fields, err := s.rdb.HGetAll(ctx, profileKey(participantID)).Result()
	if err != nil {
		return Profile{}, fmt.Errorf("profile hgetall: %w", err)
	}
	if len(fields) == 0 {
		return Profile{}, ErrNotFound
	}

	profile := Profile{
		ID:          participantID,
		DisplayName: fields["displayName"],
	}
	// Absence of the consent field means the participant never opted out.
	profile.MediationConsent = true
	if raw, ok := fields["mediationConsent"]; ok {
		profile.MediationConsent, _ = strconv.ParseBool(raw)
	}
	profile.Interventions, _ = strconv.ParseInt(fields["interventions"], 10, 64)
	if raw := fields["lastIntervention"]; raw != "" {
		profile.LastIntervention, _ = time.Parse(time.RFC3339Nano, raw)
	}
	return profile, nil
}

func (s *RedisStore) RecordIntervention(ctx context.Context, participantID, patternID string) error {
	key := profileKey(participantID)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	pipe := s.rdb.TxPipeline()
	pipe.HIncrBy(ctx, key, "interventions", 1)
	pipe.HSet(ctx, key, "lastIntervention", now)
	pipe.HIncrBy(ctx, key+":patterns", patternID, 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("profile record intervention: %w", err)
	}
	return nil
}
