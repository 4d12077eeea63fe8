package monthsummary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

const (
	defaultPrefix = "fitkits:month-summary"
	defaultTTL    = 5 * time.Minute
	generationTTL = 24 * time.Hour

	resultHit  = "hit"
	resultMiss = "miss"
	resultErr  = "error"
)

var (
	// setIfGeneration пишет сводку, только если поколение месяца не менялось с момента чтения
	setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
	current = '0'
end
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

	// bumpGeneration сдвигает поколение и удаляет сводку одним шагом
	bumpGeneration = redis.NewScript(`
redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[1])
return redis.call('DEL', KEYS[2])
`)
)

// RedisCache кэш месячных сводок в Redis.
// Ключ: {prefix}:{venueId}:{YYYY-MM}, значение - JSON domain.MonthSummary.
// Рядом лежит счётчик поколения {key}:gen: Invalidate его увеличивает, а Set пишет
// только при совпадении с поколением, прочитанным до обращения к хранилищу.
type RedisCache struct {
	rdb     redis.Cmdable
	ttl     time.Duration
	prefix  string
	metrics Metrics
}

// NewRedisCache создает кэш поверх клиента Redis
func NewRedisCache(rdb redis.Cmdable, ttl time.Duration, prefix string, metrics Metrics) *RedisCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisCache{rdb: rdb, ttl: ttl, prefix: prefix, metrics: metrics}
}

// Key ключ сводки площадки за месяц
func (c *RedisCache) Key(venueID int64, year int, month time.Month) string {
	return fmt.Sprintf("%s:%d:%04d-%02d", c.prefix, venueID, year, int(month))
}

func (c *RedisCache) generationKey(venueID int64, year int, month time.Month) string {
	return c.Key(venueID, year, month) + ":gen"
}

// Generation текущее поколение сводки. Читается до выборки из хранилища и передаётся в Set.
func (c *RedisCache) Generation(ctx context.Context, venueID int64, year int, month time.Month) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.generationKey(venueID, year, month)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: generation: %v", ErrCacheRead, err)
	}
	return gen, nil
}

// Get возвращает сводку из кэша. false без ошибки - промах.
func (c *RedisCache) Get(ctx context.Context, venueID int64, year int, month time.Month) (*domain.MonthSummary, bool, error) {
	raw, err := c.rdb.Get(ctx, c.Key(venueID, year, month)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.observe(resultMiss)
		return nil, false, nil
	}
	if err != nil {
		c.observe(resultErr)
		return nil, false, fmt.Errorf("%w: %v", ErrCacheRead, err)
	}

	var summary domain.MonthSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		c.observe(resultErr)
		return nil, false, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}

	c.observe(resultHit)
	return &summary, true, nil
}

// Set сохраняет сводку с TTL, если поколение не изменилось.
// Иначе возвращает ErrGenerationChanged и ничего не пишет.
func (c *RedisCache) Set(ctx context.Context, summary *domain.MonthSummary, generation int64) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("%w: marshal summary: %v", ErrCacheWrite, err)
	}

	month := time.Month(summary.Month)
	keys := []string{c.generationKey(summary.VenueID, summary.Year, month), c.Key(summary.VenueID, summary.Year, month)}
	stored, err := setIfGeneration.Run(ctx, c.rdb, keys, strconv.FormatInt(generation, 10), string(raw), c.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}
	if stored == 0 {
		return fmt.Errorf("%w: venue=%d month=%04d-%02d", ErrGenerationChanged, summary.VenueID, summary.Year, summary.Month)
	}
	return nil
}

// Invalidate удаляет сводку площадки за месяц и сдвигает её поколение
func (c *RedisCache) Invalidate(ctx context.Context, venueID int64, year int, month time.Month) error {
	keys := []string{c.generationKey(venueID, year, month), c.Key(venueID, year, month)}
	if err := bumpGeneration.Run(ctx, c.rdb, keys, generationTTL.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("%w: invalidate: %v", ErrCacheWrite, err)
	}
	return nil
}

func (c *RedisCache) observe(result string) {
	if c.metrics != nil {
		c.metrics.IncCacheRequest(result)
	}
}

// NopCache кэш-заглушка, когда Redis не настроен: всегда промах
type NopCache struct{}

// Get всегда промах
func (NopCache) Get(context.Context, int64, int, time.Month) (*domain.MonthSummary, bool, error) {
	return nil, false, nil
}

// Generation всегда 0
func (NopCache) Generation(context.Context, int64, int, time.Month) (int64, error) {
	return 0, nil
}

// Set ничего не делает
func (NopCache) Set(context.Context, *domain.MonthSummary, int64) error {
	return nil
}

// Invalidate ничего не делает
func (NopCache) Invalidate(context.Context, int64, int, time.Month) error {
	return nil
}
