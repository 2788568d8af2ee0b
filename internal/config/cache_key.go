package config

import (
	"fmt"
	"time"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AdminSessionKey returns the cache key for an admin's login session.
func (r *CacheKeyStruct) AdminSessionKey(adminID int) string {
	return fmt.Sprintf("login:admin:%d", adminID)
}

// DashboardKey returns the cache key for an admin's dashboard snapshot.
func (r *CacheKeyStruct) DashboardKey(adminID int) string {
	return fmt.Sprintf("dashboard:admin:%d", adminID)
}

// ModelsListKey returns the cache key for the scoring service's model inventory.
func (r *CacheKeyStruct) ModelsListKey() string {
	return "ml:models"
}

// PredictionChannel returns the Pub/Sub channel carrying an admin's live
// prediction feed.
func (r *CacheKeyStruct) PredictionChannel(adminID int) string {
	return fmt.Sprintf("predictions:admin:%d", adminID)
}

// DashboardTTL bounds how stale a cached dashboard snapshot may get.
const DashboardTTL = 60 * time.Second

// ModelsListTTL bounds how long the model inventory is trusted without
// re-asking the scoring service.
const ModelsListTTL = 5 * time.Minute

var CacheKey = NewCacheKeyStruct()
