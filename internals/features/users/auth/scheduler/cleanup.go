package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	authRepo "hrportal_backend/internals/features/users/auth/repository"
)

const defaultCleanupSpec = "@daily"

// blacklistRetention keeps expired blacklist rows for TOKEN_BLACKLIST_TTL_DAYS (default 7).
func blacklistRetention() time.Duration {
	ttlDays := 7
	if val := os.Getenv("TOKEN_BLACKLIST_TTL_DAYS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			ttlDays = parsed
		}
	}
	return time.Duration(ttlDays) * 24 * time.Hour
}

// RunCleanup purges expired blacklist entries and dead refresh tokens once.
func RunCleanup(db *gorm.DB, now time.Time) (blacklisted, refresh int64) {
	log.Println("[CLEANUP] purging token_blacklist and refresh_tokens")

	n, err := authRepo.CleanupExpiredBlacklist(db, now.Add(-blacklistRetention()))
	if err != nil {
		log.Printf("[CLEANUP ERROR] token_blacklist: %v", err)
	} else {
		blacklisted = n
	}

	n, err = authRepo.CleanupRefreshTokens(db, now)
	if err != nil {
		log.Printf("[CLEANUP ERROR] refresh_tokens: %v", err)
	} else {
		refresh = n
	}

	log.Printf("[CLEANUP] removed %d blacklisted and %d refresh tokens", blacklisted, refresh)
	return blacklisted, refresh
}

// StartBlacklistCleanupScheduler registers RunCleanup on CLEANUP_CRON and
// starts the cron. Callers stop it with Stop() on shutdown.
func StartBlacklistCleanupScheduler(db *gorm.DB) (*cron.Cron, error) {
	spec := os.Getenv("CLEANUP_CRON")
	if spec == "" {
		spec = defaultCleanupSpec
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, func() { RunCleanup(db, time.Now().UTC()) }); err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("[CLEANUP] scheduler started (%s)", spec)
	return c, nil
}
