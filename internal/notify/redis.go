package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	pendingKey = "freshkeeper:tickets:%s"
	ticketKey  = "freshkeeper:ticket:%s"
	authKey    = "freshkeeper:notifications:authorization"
)

// RedisService — хранилище отложенных напоминаний поверх Redis:
// ZSET на владельца с временем срабатывания в score
// и хеш с полезной нагрузкой на тикет.
type RedisService struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

var _ Service = (*RedisService)(nil)

// NewRedisClient создаёт и проверяет подключение к Redis.
func NewRedisClient(addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewRedisService создаёт сервис уведомлений поверх клиента Redis.
func NewRedisService(client *redis.Client, logger *zap.SugaredLogger) *RedisService {
	return &RedisService{client: client, logger: logger}
}

// AuthorizationStatus читает флаг разрешения. Отсутствие флага трактуется
// как granted: для серверного хранилища запрет — явное действие оператора.
func (s *RedisService) AuthorizationStatus(ctx context.Context) (Status, error) {
	v, err := s.client.Get(ctx, authKey).Result()
	if err == redis.Nil {
		return StatusGranted, nil
	}
	if err != nil {
		return StatusNotDetermined, fmt.Errorf("read authorization flag: %w", err)
	}
	switch v {
	case "granted":
		return StatusGranted, nil
	case "denied":
		return StatusDenied, nil
	default:
		return StatusNotDetermined, nil
	}
}

func (s *RedisService) Schedule(ctx context.Context, ownerID, ticketID string, fireAt time.Time, title, body string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, fmt.Sprintf(ticketKey, ticketID),
		"fire_at", fireAt.Format(time.RFC3339),
		"title", title,
		"body", body,
	)
	pipe.ZAdd(ctx, fmt.Sprintf(pendingKey, ownerID), redis.Z{Score: float64(fireAt.Unix()), Member: ticketID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("schedule ticket %s: %w", ticketID, err)
	}
	return nil
}

func (s *RedisService) Cancel(ctx context.Context, ownerID string, ticketIDs ...string) error {
	if len(ticketIDs) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	for _, id := range ticketIDs {
		pipe.ZRem(ctx, fmt.Sprintf(pendingKey, ownerID), id)
		pipe.Del(ctx, fmt.Sprintf(ticketKey, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cancel tickets: %w", err)
	}
	return nil
}

func (s *RedisService) ListPending(ctx context.Context, ownerID string) ([]Ticket, error) {
	zs, err := s.client.ZRangeWithScores(ctx, fmt.Sprintf(pendingKey, ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list pending tickets: %w", err)
	}

	tickets := make([]Ticket, 0, len(zs))
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		t := Ticket{ID: id, FireAt: time.Unix(int64(z.Score), 0)}
		fields, err := s.client.HGetAll(ctx, fmt.Sprintf(ticketKey, id)).Result()
		if err != nil {
			// тикет без полезной нагрузки всё равно отдаём: id и время известны
			s.logger.Warnw("ListPending: failed to read ticket payload", "ticket_id", id, "error", err)
		} else {
			t.Title = fields["title"]
			t.Body = fields["body"]
			if at, perr := time.Parse(time.RFC3339, fields["fire_at"]); perr == nil {
				t.FireAt = at
			}
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}
