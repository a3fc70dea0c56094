// Package events связывает движок с NATS: снимки каталога приходят по подписке,
// исключения сопоставления уходят публикацией. Контекст трассировки едет в заголовках.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"catalog-matcher/internal/matching/model"
)

const (
	DefaultCatalogSubject   = "catalog.snapshot"
	DefaultExceptionSubject = "catalog.mapping.exception"
)

// CatalogUpdater - то, что умеет принять новый каталог (движок сопоставления).
type CatalogUpdater interface {
	UpdateCatalog(items []model.CatalogItem)
}

// Publisher публикует исключения на ручной разбор. Реализуется Bridge; в тестах подменяется.
type Publisher interface {
	PublishExceptions(ctx context.Context, exs []model.MappingException) error
}

type Options struct {
	CatalogSubject   string
	ExceptionSubject string
}

type Bridge struct {
	nc   *nats.Conn
	opts Options
	log  zerolog.Logger

	mu  sync.Mutex
	sub *nats.Subscription
}

func NewBridge(nc *nats.Conn, opts Options, log zerolog.Logger) *Bridge {
	if opts.CatalogSubject == "" {
		opts.CatalogSubject = DefaultCatalogSubject
	}
	if opts.ExceptionSubject == "" {
		opts.ExceptionSubject = DefaultExceptionSubject
	}
	return &Bridge{nc: nc, opts: opts, log: log.With().Str("component", "events").Logger()}
}

// Start подписывается на снимки каталога. Битые сообщения пропускаются с предупреждением.
func (b *Bridge) Start(u CatalogUpdater) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		return errors.New("events: bridge already started")
	}
	sub, err := subscribe(b.nc, b.opts.CatalogSubject, func(ctx context.Context, items []model.CatalogItem) {
		u.UpdateCatalog(items)
		b.log.Info().Int("items", len(items)).Str("subject", b.opts.CatalogSubject).Msg("catalog snapshot applied")
	}, func(err error) {
		b.log.Warn().Err(err).Str("subject", b.opts.CatalogSubject).Msg("malformed catalog snapshot dropped")
	})
	if err != nil {
		return err
	}
	b.sub = sub
	return nil
}

// PublishExceptions шлёт каждое исключение отдельным сообщением.
func (b *Bridge) PublishExceptions(ctx context.Context, exs []model.MappingException) error {
	var errs []error
	for _, ex := range exs {
		if err := publish(ctx, b.nc, b.opts.ExceptionSubject, ex); err != nil {
			errs = append(errs, err)
		}
	}
	if len(exs) > 0 {
		b.log.Debug().Int("count", len(exs)).Str("subject", b.opts.ExceptionSubject).Msg("exceptions published")
	}
	return errors.Join(errs...)
}

// Close снимает подписку и дожидается отправки буфера. Соединение закрывает владелец.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	if b.sub != nil {
		err = b.sub.Unsubscribe()
		b.sub = nil
	}
	if !b.nc.IsClosed() {
		err = errors.Join(err, b.nc.Flush())
	}
	return err
}

// headerCarrier - заголовки nats.Msg как TextMapCarrier для otel.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

func publish[T any](ctx context.Context, nc *nats.Conn, subject string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	return nc.PublishMsg(msg)
}

func subscribe[T any](nc *nats.Conn, subject string, handler func(context.Context, T), onErr func(error)) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		var v T
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			onErr(err)
			return
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*headerCarrier)(msg))
		handler(ctx, v)
	})
}
