package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps each record as a meta hash plus a list of turns.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Connect opens a client and checks the server answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func metaKey(tableID string) string  { return fmt.Sprintf("table:%s:meta", tableID) }
func turnsKey(tableID string) string { return fmt.Sprintf("table:%s:turns", tableID) }

func (s *RedisStore) Create(ctx context.Context, rec Record) error {
	rules, err := json.Marshal(rec.Rules)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return fmt.Errorf("encode players: %w", err)
	}

	created, err := s.rdb.HSetNX(ctx, metaKey(rec.TableID), "seed", strconv.FormatUint(rec.Seed, 10)).Result()
	if err != nil {
		return fmt.Errorf("create replay %s: %w", rec.TableID, err)
	}
	if !created {
		return ErrExists
	}
	data := map[string]interface{}{
		"rules":   string(rules),
		"players": string(players),
	}
	if err := s.rdb.HSet(ctx, metaKey(rec.TableID), data).Err(); err != nil {
		return fmt.Errorf("create replay %s: %w", rec.TableID, err)
	}
	for _, turn := range rec.Turns {
		if err := s.Append(ctx, rec.TableID, turn); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStore) Append(ctx context.Context, tableID string, turn Turn) error {
	exists, err := s.rdb.Exists(ctx, metaKey(tableID)).Result()
	if err != nil {
		return fmt.Errorf("append replay %s: %w", tableID, err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	raw, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode turn: %w", err)
	}
	if err := s.rdb.RPush(ctx, turnsKey(tableID), raw).Err(); err != nil {
		return fmt.Errorf("append replay %s: %w", tableID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, tableID string) (Record, error) {
	meta, err := s.rdb.HGetAll(ctx, metaKey(tableID)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("load replay %s: %w", tableID, err)
	}
	if len(meta) == 0 {
		return Record{}, ErrNotFound
	}

	rec := Record{TableID: tableID}
	if rec.Seed, err = strconv.ParseUint(meta["seed"], 10, 64); err != nil {
		return Record{}, fmt.Errorf("load replay %s: seed: %w", tableID, err)
	}
	if err := json.Unmarshal([]byte(meta["rules"]), &rec.Rules); err != nil {
		return Record{}, fmt.Errorf("load replay %s: rules: %w", tableID, err)
	}
	if err := json.Unmarshal([]byte(meta["players"]), &rec.Players); err != nil {
		return Record{}, fmt.Errorf("load replay %s: players: %w", tableID, err)
	}

	raw, err := s.rdb.LRange(ctx, turnsKey(tableID), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return Record{}, fmt.Errorf("load replay %s: turns: %w", tableID, err)
	}
	for i, r := range raw {
		var turn Turn
		if err := json.Unmarshal([]byte(r), &turn); err != nil {
			return Record{}, fmt.Errorf("load replay %s: turn %d: %w", tableID, i, err)
		}
		rec.Turns = append(rec.Turns, turn)
	}
	return rec, nil
}
