package queue

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/config"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/utils/idgen"
)

// redisQueue is a Redis-backed queue: a list for due jobs and a sorted set
// keyed by NotBefore for scheduled ones. A background loop promotes matured
// jobs into the list so Dequeue stays a single RPop.
type redisQueue struct {
	client     *redis.Client
	readyKey   string
	delayedKey string
	closed     int32
	stopCh     chan struct{}
	logger     logger.Logger
}

const (
	defaultKeyPrefix  = "blogpub:queue:"
	promotionInterval = 5 * time.Second
)

// NewRedisQueue connects to Redis and returns a persistent queue.
func NewRedisQueue(cfg *config.RedisConfig, log logger.Logger) (Queue, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrInvalidRequest, "redis configuration is required")
	}
	if log == nil {
		log = logger.Discard
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrConnection, "connecting to redis")
	}

	prefix := defaultKeyPrefix
	if cfg.KeyPrefix != "" {
		prefix = cfg.KeyPrefix + ":"
	}

	q := &redisQueue{
		client:     client,
		readyKey:   prefix + "ready",
		delayedKey: prefix + "delayed",
		stopCh:     make(chan struct{}),
		logger:     log,
	}
	go q.promoteLoop()

	log.Info("redis queue ready", "addr", cfg.Addr, "prefix", prefix)
	return q, nil
}

// Enqueue implements Queue.
func (q *redisQueue) Enqueue(ctx context.Context, job *Job) error {
	if atomic.LoadInt32(&q.closed) == 1 {
		return errors.New(errors.ErrQueueClosed, "queue is closed")
	}
	if job == nil || job.Request == nil {
		return errors.New(errors.ErrJobMalformed, "job carries no request")
	}

	if job.ID == "" {
		job.ID = idgen.Default.GenerateWithPrefix("job")
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, errors.ErrJobMalformed, "encoding job")
	}

	if !job.Due(time.Now()) {
		err = q.client.ZAdd(ctx, q.delayedKey, redis.Z{
			Score:  float64(job.NotBefore.Unix()),
			Member: data,
		}).Err()
	} else {
		err = q.client.LPush(ctx, q.readyKey, data).Err()
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrConnection, "enqueueing job")
	}

	q.logger.Debug("job enqueued", "id", job.ID, "platform", job.Request.Platform)
	return nil
}

// Dequeue implements Queue.
func (q *redisQueue) Dequeue(ctx context.Context) (*Job, error) {
	if atomic.LoadInt32(&q.closed) == 1 {
		return nil, errors.New(errors.ErrQueueClosed, "queue is closed")
	}

	data, err := q.client.RPop(ctx, q.readyKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConnection, "dequeueing job")
	}

	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		q.logger.Error("dropping undecodable job", "error", err)
		return nil, errors.Wrap(err, errors.ErrJobMalformed, "decoding job")
	}
	job.Attempts++
	return &job, nil
}

// Size implements Queue.
func (q *redisQueue) Size(ctx context.Context) (int, error) {
	if atomic.LoadInt32(&q.closed) == 1 {
		return 0, errors.New(errors.ErrQueueClosed, "queue is closed")
	}
	pipe := q.client.Pipeline()
	ready := pipe.LLen(ctx, q.readyKey)
	delayed := pipe.ZCard(ctx, q.delayedKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errors.Wrap(err, errors.ErrConnection, "reading queue size")
	}
	return int(ready.Val() + delayed.Val()), nil
}

// Close implements Queue.
func (q *redisQueue) Close() error {
	if !atomic.CompareAndSwapInt32(&q.closed, 0, 1) {
		return nil
	}
	close(q.stopCh)
	return q.client.Close()
}

// promoteLoop moves matured delayed jobs into the ready list.
func (q *redisQueue) promoteLoop() {
	ticker := time.NewTicker(promotionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.stopCh:
			return
		case <-ticker.C:
			q.promoteDue()
		}
	}
}

func (q *redisQueue) promoteDue() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	max := strconv.FormatInt(time.Now().Unix(), 10)
	members, err := q.client.ZRangeByScore(ctx, q.delayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		q.logger.Error("reading delayed jobs", "error", err)
		return
	}

	for _, member := range members {
		pipe := q.client.TxPipeline()
		pipe.ZRem(ctx, q.delayedKey, member)
		pipe.LPush(ctx, q.readyKey, member)
		if _, err := pipe.Exec(ctx); err != nil {
			q.logger.Error("promoting delayed job", "error", err)
		}
	}
}
