// Package testutil provides an in-memory database and fakes for tests.
package testutil

import (
	"sync"
	"testing"
	"time"

	"dental-inventory/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory sqlite database. It is held on a single
// connection: every connection to ":memory:" would otherwise see its own
// empty database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Event is one call recorded by Publisher.
type Event struct {
	Action  string
	Payload interface{}
	Message string
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *Publisher) Publish(action string, payload interface{}, message string) {
	p.mu.Lock()
	p.events = append(p.events, Event{Action: action, Payload: payload, Message: message})
	p.mu.Unlock()
}

func (p *Publisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// Actions returns the action of every recorded event, in order.
func (p *Publisher) Actions() []string {
	var actions []string
	for _, e := range p.Events() {
		actions = append(actions, e.Action)
	}
	return actions
}
