package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	revokeStatusMissing int64 = -1
	revokeStatusNoop    int64 = 0
	revokeStatusFlipped int64 = 1
)

// expiredRetention keeps session keys alive past their logical expiry.
// Expiry is enforced from the stored expires_at field, so the extra
// window only makes expired and revoked tokens report as themselves
// instead of degrading to not-found the moment Redis drops the key.
const expiredRetention = 24 * time.Hour

const revokeIfActiveScript = `
local revoked = redis.call("HGET", KEYS[1], "revoked")
if not revoked then
  return -1
end
if revoked == "1" then
  return 0
end
redis.call("HSET", KEYS[1], "revoked", "1")
return 1
`

var revokeIfActiveLua = redis.NewScript(revokeIfActiveScript)

const revokeScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "revoked", "1")
return 1
`

var revokeLua = redis.NewScript(revokeScript)

const revokeAllScript = `
local ids = redis.call("SMEMBERS", KEYS[1])
local flipped = 0
for _, id in ipairs(ids) do
  local key = ARGV[1] .. id
  if redis.call("HGET", key, "revoked") == "0" then
    redis.call("HSET", key, "revoked", "1")
    flipped = flipped + 1
  end
end
return flipped
`

var revokeAllLua = redis.NewScript(revokeAllScript)

// RedisStore keeps refresh sessions in Redis. Each session is a hash
// keyed by ID, with a string key indexing token hash to ID and a set
// per administrator for revoke-all.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "adminauth"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) sessionKey(id string) string {
	return s.prefix + ":s:" + id
}

func (s *RedisStore) hashKey(tokenHash string) string {
	return s.prefix + ":h:" + tokenHash
}

func (s *RedisStore) adminKey(adminID string) string {
	return s.prefix + ":a:" + adminID
}

func (s *RedisStore) Create(ctx context.Context, sess *RefreshSession) error {
	dropAt := sess.ExpiresAt.Add(expiredRetention)

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		key := s.sessionKey(sess.ID)
		pipe.HSet(ctx, key,
			"admin_id", sess.AdminID,
			"token_hash", sess.TokenHash,
			"ip", sess.IP,
			"user_agent", sess.UserAgent,
			"expires_at", sess.ExpiresAt.Unix(),
			"revoked", boolField(sess.Revoked),
			"created_at", sess.CreatedAt.Unix(),
		)
		pipe.ExpireAt(ctx, key, dropAt)
		pipe.Set(ctx, s.hashKey(sess.TokenHash), sess.ID, 0)
		pipe.ExpireAt(ctx, s.hashKey(sess.TokenHash), dropAt)
		pipe.SAdd(ctx, s.adminKey(sess.AdminID), sess.ID)
		pipe.ExpireAt(ctx, s.adminKey(sess.AdminID), dropAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) FindByTokenHash(ctx context.Context, tokenHash string) (*RefreshSession, error) {
	id, err := s.redis.Get(ctx, s.hashKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	fields, err := s.redis.HGetAll(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return decodeSession(id, fields)
}

func (s *RedisStore) RevokeIfActive(ctx context.Context, id string) (bool, error) {
	status, err := revokeIfActiveLua.Run(ctx, s.redis, []string{s.sessionKey(id)}).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch status {
	case revokeStatusFlipped:
		return true, nil
	case revokeStatusNoop:
		return false, nil
	default:
		return false, ErrNotFound
	}
}

func (s *RedisStore) Revoke(ctx context.Context, id string) error {
	existed, err := revokeLua.Run(ctx, s.redis, []string{s.sessionKey(id)}).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if existed == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) RevokeAllForAdmin(ctx context.Context, adminID string) (int, error) {
	flipped, err := revokeAllLua.Run(ctx, s.redis,
		[]string{s.adminKey(adminID)},
		s.prefix+":s:",
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return int(flipped), nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func decodeSession(id string, fields map[string]string) (*RefreshSession, error) {
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session %s: bad expires_at: %w", id, err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session %s: bad created_at: %w", id, err)
	}

	return &RefreshSession{
		ID:        id,
		AdminID:   fields["admin_id"],
		TokenHash: fields["token_hash"],
		IP:        fields["ip"],
		UserAgent: fields["user_agent"],
		ExpiresAt: time.Unix(expiresAt, 0),
		Revoked:   fields["revoked"] == "1",
		CreatedAt: time.Unix(createdAt, 0),
	}, nil
}
