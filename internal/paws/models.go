package paws

import "time"

// Balance is the paw economy state for one user. NextReplenishAt is
// computed, not stored.
type Balance struct {
	UserID          string    `json:"user_id"`
	Balance         int       `json:"balance"`
	MaxPaws         int       `json:"max_paws"`
	DailyAdsWatched int       `json:"daily_ads_watched"`
	MaxDailyAds     int       `json:"max_daily_ads"`
	IsSubscribed    bool      `json:"is_subscribed"`
	LastReplenishAt time.Time `json:"last_replenish_at"`
	NextReplenishAt time.Time `json:"next_replenish_at,omitempty"`
}
