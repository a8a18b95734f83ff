package service

import (
	"context"
	"fmt"
	"shopco-api/internal/client"
	"shopco-api/internal/config"
	"shopco-api/internal/model"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory sqlite database with the full schema.
// One connection keeps every statement on the same in-memory file.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.InitDBClient(config.Database{
		Driver:       "sqlite",
		URL:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		Email:      email,
		Password:   "not-a-real-hash",
		FirstName:  "Jane",
		LastName:   "Doe",
		Street:     "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
		Role:       model.RoleUser,
		IsActive:   true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedProduct creates a product under a fresh brand and type. oldPrice may be empty.
func seedProduct(t *testing.T, db *gorm.DB, name, price, oldPrice string) *model.Product {
	t.Helper()

	brand := &model.Brand{Name: "brand-" + uuid.NewString()}
	require.NoError(t, db.Create(brand).Error)
	productType := &model.Type{Name: "type-" + uuid.NewString()}
	require.NoError(t, db.Create(productType).Error)

	product := &model.Product{
		Name:    name,
		Price:   decimal.RequireFromString(price),
		BrandID: brand.ID,
		TypeID:  productType.ID,
	}
	if oldPrice != "" {
		product.OldPrice = decimal.NewNullDecimal(decimal.RequireFromString(oldPrice))
	}
	require.NoError(t, db.Omit("Brand", "Type", "Info").Create(product).Error)
	return product
}

type publishedEvent struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}
