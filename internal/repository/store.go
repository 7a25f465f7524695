package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"nearbot/internal/domain/entities"
)

const (
	toiletKeyPrefix  = "toilet:"
	lotteryKeyPrefix = "lottery:"
)

// ToiletKey is the KV key holding one region's toilet records.
func ToiletKey(partition string) string { return toiletKeyPrefix + partition }

// LotteryKey is the KV key holding game's draw published on date. An empty
// game names the first draw listed for that date, whatever its game.
func LotteryKey(game, date string) string { return lotteryKeyPrefix + game + ":" + date }

// Store implements PartitionStore and LotteryStore on top of any KV by
// encoding each partition or draw as one JSON blob.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Lookup decodes the region's blob. Missing regions are empty, not errors.
func (s *Store) Lookup(ctx context.Context, partition string) ([]entities.ToiletRecord, error) {
	raw, err := s.kv.Get(ctx, ToiletKey(partition))
	if errors.Is(err, ErrNotFound) {
		return []entities.ToiletRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup partition %s: %w", partition, err)
	}

	var records []entities.ToiletRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode partition %s: %w", partition, err)
	}
	if records == nil {
		records = []entities.ToiletRecord{}
	}
	return records, nil
}

// Save replaces the region's blob.
func (s *Store) Save(ctx context.Context, partition string, records []entities.ToiletRecord) error {
	if records == nil {
		records = []entities.ToiletRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode partition %s: %w", partition, err)
	}
	if err := s.kv.Set(ctx, ToiletKey(partition), raw); err != nil {
		return fmt.Errorf("save partition %s: %w", partition, err)
	}
	return nil
}

// GetDraw returns the cached draw for game and date or ErrNotFound.
func (s *Store) GetDraw(ctx context.Context, game, date string) (*entities.LotteryDraw, error) {
	raw, err := s.kv.Get(ctx, LotteryKey(game, date))
	if err != nil {
		return nil, err
	}
	var draw entities.LotteryDraw
	if err := json.Unmarshal(raw, &draw); err != nil {
		return nil, fmt.Errorf("decode lottery draw %s: %w", date, err)
	}
	return &draw, nil
}

// SaveDraw caches draw under game, which is either draw.Game or empty for
// the any-game slot of its date.
func (s *Store) SaveDraw(ctx context.Context, game string, draw *entities.LotteryDraw) error {
	if draw == nil || draw.Date == "" {
		return errors.New("lottery draw must have a date")
	}
	raw, err := json.Marshal(draw)
	if err != nil {
		return fmt.Errorf("encode lottery draw %s: %w", draw.Date, err)
	}
	return s.kv.Set(ctx, LotteryKey(game, draw.Date), raw)
}
