package config

import "time"

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

type SessionConfig interface {
	GetSessionCookieName() string
	GetSessionTTL() time.Duration
	GetSessionStore() string
	GetRedisAddress() string
	GetSQLitePath() string
	GetSweepSchedule() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE", "ums_session")
}

// GetSessionTTL bounds how long a stored credential survives without a logout.
func (Session) GetSessionTTL() time.Duration {
	return GetEnvDuration("SESSION_TTL", 7*24*time.Hour) // matches the API refresh token lifetime
}

func (Session) GetSessionStore() string {
	return GetEnv("SESSION_STORE", StoreMemory)
}

func (Session) GetRedisAddress() string {
	return GetEnv("REDIS_ADDRESS", "localhost:6379")
}

func (Session) GetSQLitePath() string {
	return GetEnv("SQLITE_PATH", "./data/sessions.sqlite")
}

func (Session) GetSweepSchedule() string {
	return GetEnv("SESSION_SWEEP_SCHEDULE", "@every 15m")
}
