package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"taskflow/internal/cache"
	"taskflow/internal/events"
	"taskflow/internal/logger"
)

// Cache tags owned by each entity. Item entries carry both the list tag and
// "<list>/<id>", so a write to any row drops every derived read.
const (
	TasksTag        = "tasks"
	AppointmentsTag = "appointments"
	CategoriesTag   = "categories"
)

// changes invalidates cached reads and announces a committed write.
// Neither step can fail the write that triggered it.
type changes struct {
	cache  cache.Cache
	events events.Publisher
	entity string
	tag    string
}

func newChanges(c cache.Cache, pub events.Publisher, entity, tag string) changes {
	if pub == nil {
		pub = events.Nop{}
	}
	return changes{cache: c, events: pub, entity: entity, tag: tag}
}

func (c changes) record(ctx context.Context, action events.Action, id uint, extraTags ...string) {
	tags := append([]string{c.tag, cache.Tag(c.tag, idString(id))}, extraTags...)
	if c.cache != nil {
		if err := c.cache.Invalidate(ctx, tags...); err != nil {
			logger.WarnContext(ctx, "Cache invalidation failed", "tags", tags, "error", err)
		}
	}

	ev := events.Event{Entity: c.entity, Action: action, ID: id, At: time.Now()}
	if err := c.events.Publish(ctx, ev); err != nil {
		logger.WarnContext(ctx, "Event publish failed", "subject", ev.Subject(), "error", err)
	}
}

func (c changes) itemKey(id uint) string {
	return c.tag + ":id:" + idString(id)
}

func (c changes) itemTags(id uint) []string {
	return []string{c.tag, cache.Tag(c.tag, idString(id))}
}

// readThrough serves key from the cache, loading and storing it on a miss.
// The store is skipped when one of tags was invalidated during the load.
// Cache errors degrade to a plain load.
func readThrough[T any](ctx context.Context, c cache.Cache, key string, tags []string, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}

	var cached T
	ok, err := c.Get(ctx, key, &cached)
	if err != nil {
		logger.WarnContext(ctx, "Cache read failed", "key", key, "error", err)
	} else if ok {
		return cached, nil
	}

	version, verr := c.Version(ctx, tags...)
	if verr != nil {
		logger.WarnContext(ctx, "Cache version failed", "key", key, "error", verr)
	}

	value, err := load()
	if err != nil || verr != nil {
		return value, err
	}
	if _, err := c.SetIfCurrent(ctx, version, key, value, tags...); err != nil {
		logger.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}
	return value, nil
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// filterKey renders list parameters in a stable order for use as a cache key.
func filterKey(prefix string, params url.Values) string {
	return fmt.Sprintf("%s:list?%s", prefix, params.Encode())
}
