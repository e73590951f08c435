package paws

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/TonniAndreev/doteworld-sub001/internal/config"
	"github.com/TonniAndreev/doteworld-sub001/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

var (
	ErrInsufficientPaws = errors.New("insufficient paws")
	ErrDailyAdCap       = errors.New("daily ad reward cap reached")
)

// Service owns the paw ledger. Every mutation is a single conditional
// SQL statement so the database row is the serialization point: two
// racing credits or debits cannot both pass the same guard.
type Service struct {
	db             db.Querier
	maxPaws        int
	maxDailyAds    int
	walkStartCost  int
	replenishEvery time.Duration
}

func NewService(q db.Querier, cfg config.Config) *Service {
	return &Service{
		db:             q,
		maxPaws:        cfg.MaxPaws,
		maxDailyAds:    cfg.MaxDailyAds,
		walkStartCost:  cfg.WalkStartCost,
		replenishEvery: time.Duration(cfg.PawReplenishMinutes) * time.Minute,
	}
}

// WalkReward converts a walk distance into paws: floor(km * 10).
func WalkReward(distanceKm float64) int {
	if distanceKm <= 0 {
		return 0
	}
	return int(math.Floor(distanceKm * 10))
}

// EnsureLedger creates the ledger row for a new user. Mutations call it
// before their conditional statement, so a user whose row was never
// seeded starts from a full balance instead of being locked out.
func (s *Service) EnsureLedger(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO paws_balances (user_id, balance, max_paws, max_daily_ads, last_replenish_at)
		VALUES ($1,$2,$2,$3,now())
		ON CONFLICT (user_id) DO NOTHING
	`, userID, s.maxPaws, s.maxDailyAds)
	return err
}

// Balance returns the ledger after applying any timed replenishment
// owed since last_replenish_at. A user without a row gets one created
// at the full balance.
func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	b, err := s.fetch(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		if err := s.EnsureLedger(ctx, userID); err != nil {
			return Balance{}, err
		}
		b, err = s.fetch(ctx, userID)
	}
	if err != nil {
		return Balance{}, err
	}

	if owed := s.owedPaws(b); owed > 0 {
		newLast := b.LastReplenishAt.Add(time.Duration(owed) * s.replenishEvery)
		// optimistic: only applies if nobody replenished concurrently
		tag, err := s.db.Exec(ctx, `
			UPDATE paws_balances
			SET balance = LEAST(balance + $2, max_paws), last_replenish_at = $3
			WHERE user_id = $1 AND last_replenish_at = $4
		`, userID, owed, newLast, b.LastReplenishAt)
		if err != nil {
			return Balance{}, err
		}
		if tag.RowsAffected() == 1 {
			b.Balance = min(b.Balance+owed, b.MaxPaws)
			b.LastReplenishAt = newLast
		} else if b, err = s.fetch(ctx, userID); err != nil {
			return Balance{}, err
		}
	}

	if !b.IsSubscribed && b.Balance < b.MaxPaws {
		b.NextReplenishAt = b.LastReplenishAt.Add(s.replenishEvery)
	}
	return b, nil
}

// DebitWalkStart takes the walk start cost from the balance.
// Subscribers pass without being charged.
func (s *Service) DebitWalkStart(ctx context.Context, userID string) error {
	if err := s.EnsureLedger(ctx, userID); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE paws_balances
		SET balance = CASE WHEN is_subscribed THEN balance ELSE balance - $2 END
		WHERE user_id = $1 AND (is_subscribed OR balance >= $2)
	`, userID, s.walkStartCost)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientPaws
	}
	return nil
}

// CreditWalkReward credits floor(km*10) paws, capped at max_paws.
// Returns the number of paws the reward was worth.
func (s *Service) CreditWalkReward(ctx context.Context, userID string, distanceKm float64) (int, error) {
	reward := WalkReward(distanceKm)
	if reward == 0 {
		return 0, nil
	}
	_, err := s.db.Exec(ctx, `
		UPDATE paws_balances
		SET balance = LEAST(balance + $2, max_paws)
		WHERE user_id = $1
	`, userID, reward)
	if err != nil {
		return 0, err
	}
	log.Debug().Str("user_id", userID).Int("paws", reward).Msg("walk reward credited")
	return reward, nil
}

// CreditAdWatch credits one paw for a completed rewarded ad, bounded by
// the daily cap. The day column resets the counter on a new UTC day
// inside the same statement, so concurrent completions cannot exceed
// the cap.
func (s *Service) CreditAdWatch(ctx context.Context, userID string) error {
	if err := s.EnsureLedger(ctx, userID); err != nil {
		return err
	}
	today := time.Now().UTC().Format("2006-01-02")
	tag, err := s.db.Exec(ctx, `
		UPDATE paws_balances
		SET balance = LEAST(balance + 1, max_paws),
		    daily_ads_watched = CASE WHEN ads_day = $2::date THEN daily_ads_watched + 1 ELSE 1 END,
		    ads_day = $2::date
		WHERE user_id = $1 AND (ads_day IS DISTINCT FROM $2::date OR daily_ads_watched < max_daily_ads)
	`, userID, today)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDailyAdCap
	}
	return nil
}

// SetSubscribed toggles the unlimited entitlement. Activating tops the
// balance up to max_paws so a lapsed subscription leaves a full tank.
func (s *Service) SetSubscribed(ctx context.Context, userID string, active bool) error {
	if err := s.EnsureLedger(ctx, userID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		UPDATE paws_balances
		SET is_subscribed = $2,
		    balance = CASE WHEN $2 THEN max_paws ELSE balance END
		WHERE user_id = $1
	`, userID, active)
	return err
}

func (s *Service) fetch(ctx context.Context, userID string) (Balance, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, balance, max_paws,
		       CASE WHEN ads_day = CURRENT_DATE THEN daily_ads_watched ELSE 0 END,
		       max_daily_ads, is_subscribed, last_replenish_at
		FROM paws_balances WHERE user_id = $1
	`, userID)
	var b Balance
	if err := row.Scan(&b.UserID, &b.Balance, &b.MaxPaws, &b.DailyAdsWatched, &b.MaxDailyAds, &b.IsSubscribed, &b.LastReplenishAt); err != nil {
		return Balance{}, err
	}
	return b, nil
}

func (s *Service) owedPaws(b Balance) int {
	if b.IsSubscribed || b.Balance >= b.MaxPaws || s.replenishEvery <= 0 {
		return 0
	}
	elapsed := time.Since(b.LastReplenishAt)
	owed := int(elapsed / s.replenishEvery)
	if owed > b.MaxPaws-b.Balance {
		owed = b.MaxPaws - b.Balance
	}
	if owed < 0 {
		owed = 0
	}
	return owed
}
