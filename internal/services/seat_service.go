package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cinema-ticket/internal/pricing"
	"cinema-ticket/internal/status"
	"cinema-ticket/monitoring"

	"github.com/redis/go-redis/v9"
)

const (
	lockPrefix = "lock:"
	soldPrefix = "sold:"
)

// The scripts act only when the keys still hold ARGV[1].
var (
	extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

	// sellScript returns the 1-based index of the first key not holding ARGV[1], or 0 once every key is sold.
	sellScript = redis.NewScript(`
for i, key in ipairs(KEYS) do
	if redis.call("GET", key) ~= ARGV[1] then
		return i
	end
end
for _, key in ipairs(KEYS) do
	redis.call("SET", key, ARGV[2])
end
return 0`)
)

// SeatService keeps live seat state in Redis. A seat key holds "lock:<user>" with a TTL
// while the seat is being bought and "sold:<user>" without one once paid.
type SeatService struct {
	Redis   redis.Cmdable
	LockTTL time.Duration
}

func NewSeatService(redisClient redis.Cmdable, lockTTL time.Duration) *SeatService {
	return &SeatService{Redis: redisClient, LockTTL: lockTTL}
}

func seatKey(showtimeID, seatID string) string {
	return fmt.Sprintf("seat:%s:%s", showtimeID, seatID)
}

// LockSeats locks every seat for userID or none of them. Seats the user already holds get their TTL
// refreshed and are kept when the call fails.
func (s *SeatService) LockSeats(ctx context.Context, showtimeID string, seatIDs []string, userID string) error {
	var taken []string

	for _, seatID := range seatIDs {
		res, err := s.lockOne(ctx, showtimeID, seatID, userID)
		if err == nil && res != lockConflict {
			if res == lockTaken {
				taken = append(taken, seatID)
			}
			continue
		}

		s.rollback(ctx, showtimeID, taken, userID)
		if err != nil {
			slog.Error("Failed to lock seat", "error", err, "showtime_id", showtimeID, "seat_id", seatID, "user_id", userID)
			return err
		}
		monitoring.TrackSeatLock("lock", "conflict")
		return fmt.Errorf("%w: %s", status.ErrSeatUnavailable, seatID)
	}

	monitoring.TrackSeatLock("lock", "acquired")
	return nil
}

type lockResult int

const (
	lockConflict lockResult = iota
	lockTaken
	lockRefreshed
)

func (s *SeatService) lockOne(ctx context.Context, showtimeID, seatID, userID string) (lockResult, error) {
	key := seatKey(showtimeID, seatID)

	ok, err := s.Redis.SetNX(ctx, key, lockPrefix+userID, s.LockTTL).Result()
	if err != nil {
		return lockConflict, err
	}
	if ok {
		return lockTaken, nil
	}

	refreshed, err := extendScript.Run(ctx, s.Redis, []string{key}, lockPrefix+userID, s.LockTTL.Milliseconds()).Int64()
	if err != nil {
		return lockConflict, err
	}
	if refreshed == 1 {
		return lockRefreshed, nil
	}
	return lockConflict, nil
}

// rollback releases seats that were newly locked by a failed LockSeats call.
func (s *SeatService) rollback(ctx context.Context, showtimeID string, seatIDs []string, userID string) {
	if len(seatIDs) == 0 {
		return
	}
	if _, err := s.UnlockSeats(ctx, showtimeID, seatIDs, userID); err != nil {
		slog.Error("Failed to roll back seat locks", "error", err, "showtime_id", showtimeID, "seats", seatIDs)
	}
}

// UnlockSeats releases the seats userID has locked and returns how many were released.
// Seats locked by others or already sold are left alone.
func (s *SeatService) UnlockSeats(ctx context.Context, showtimeID string, seatIDs []string, userID string) (int, error) {
	released := 0
	for _, seatID := range seatIDs {
		n, err := releaseScript.Run(ctx, s.Redis, []string{seatKey(showtimeID, seatID)}, lockPrefix+userID).Int64()
		if err != nil {
			return released, fmt.Errorf("unlock seat %s: %w", seatID, err)
		}
		released += int(n)
	}
	monitoring.TrackSeatLock("unlock", "released")
	return released, nil
}

// ExtendLocks verifies userID holds every seat and extends the locks to ttl.
func (s *SeatService) ExtendLocks(ctx context.Context, showtimeID string, seatIDs []string, userID string, ttl time.Duration) error {
	for _, seatID := range seatIDs {
		n, err := extendScript.Run(ctx, s.Redis, []string{seatKey(showtimeID, seatID)}, lockPrefix+userID, ttl.Milliseconds()).Int64()
		if err != nil {
			return fmt.Errorf("extend seat %s: %w", seatID, err)
		}
		if n != 1 {
			return fmt.Errorf("%w: %s", status.ErrSeatNotLocked, seatID)
		}
	}
	return nil
}

// MarkSold turns userID's locks into sales. Either every seat is still locked by userID and all
// of them are sold, or nothing changes and ErrSeatNotLocked names the first seat that was lost.
func (s *SeatService) MarkSold(ctx context.Context, showtimeID string, seatIDs []string, userID string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	keys := make([]string, len(seatIDs))
	for i, id := range seatIDs {
		keys[i] = seatKey(showtimeID, id)
	}

	lost, err := sellScript.Run(ctx, s.Redis, keys, lockPrefix+userID, soldPrefix+userID).Int64()
	if err != nil {
		slog.Error("Failed to mark seats as sold", "error", err, "showtime_id", showtimeID, "seats", seatIDs)
		return err
	}
	if lost > 0 {
		monitoring.TrackSeatLock("sell", "lost")
		return fmt.Errorf("%w: %s", status.ErrSeatNotLocked, seatIDs[lost-1])
	}
	monitoring.TrackSeatLock("sell", "sold")
	return nil
}

// SellFree marks free seats as sold to userID without a checkout. Seats that are locked or
// already sold are skipped. It returns how many seats were sold.
func (s *SeatService) SellFree(ctx context.Context, showtimeID string, seatIDs []string, userID string) (int, error) {
	sold := 0
	for _, seatID := range seatIDs {
		ok, err := s.Redis.SetNX(ctx, seatKey(showtimeID, seatID), soldPrefix+userID, 0).Result()
		if err != nil {
			return sold, fmt.Errorf("sell seat %s: %w", seatID, err)
		}
		if ok {
			sold++
		}
	}
	return sold, nil
}

// Availability returns the live status of each seat.
func (s *SeatService) Availability(ctx context.Context, showtimeID string, seatIDs []string) (map[string]pricing.Status, error) {
	availability, _, err := s.Snapshot(ctx, showtimeID, seatIDs, "")
	return availability, err
}

// Snapshot returns the live status of each seat and, in seat order, the seats locked by userID.
func (s *SeatService) Snapshot(ctx context.Context, showtimeID string, seatIDs []string, userID string) (map[string]pricing.Status, []string, error) {
	availability := make(map[string]pricing.Status, len(seatIDs))
	if len(seatIDs) == 0 {
		return availability, nil, nil
	}

	keys := make([]string, len(seatIDs))
	for i, id := range seatIDs {
		keys[i] = seatKey(showtimeID, id)
	}

	values, err := s.Redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, err
	}

	var held []string
	for i, id := range seatIDs {
		v, _ := values[i].(string)
		switch {
		case strings.HasPrefix(v, soldPrefix):
			availability[id] = pricing.StatusBooked
		case strings.HasPrefix(v, lockPrefix):
			availability[id] = pricing.StatusLocked
			if userID != "" && v == lockPrefix+userID {
				held = append(held, id)
			}
		default:
			availability[id] = pricing.StatusAvailable
		}
	}
	return availability, held, nil
}

// LockedBy returns the user holding a lock on the seat, or "" when it is not locked.
func (s *SeatService) LockedBy(ctx context.Context, showtimeID, seatID string) (string, error) {
	v, err := s.Redis.Get(ctx, seatKey(showtimeID, seatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if user, ok := strings.CutPrefix(v, lockPrefix); ok {
		return user, nil
	}
	return "", nil
}
