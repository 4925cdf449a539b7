// Package kafka publishes and consumes catalog events and keeps the recently
// viewed lists in a goka group table.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	CommitUncommittedOffsets(context.Context) error
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

// NewProducerClient connects a synchronous all-ISR producer to topic.
func NewProducerClient(
	ctx context.Context, seedBrokers []string, topic string, tlsConfig *tls.Config,
) (*kgo.Client, error) {
	const op = "NewProducerClient"

	opts := []kgo.Opt{
		kgo.SeedBrokers(seedBrokers...),
		kgo.DefaultProduceTopicAlways(),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.AllowAutoTopicCreation(),
	}
	if tlsConfig != nil {
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}

	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, opErr(err, op)
	}
	if err := cl.Ping(ctx); err != nil {
		cl.Close()
		return nil, opErr(err, op)
	}
	return cl, nil
}

// NewConsumerClient joins group on topic with manual offset commits.
func NewConsumerClient(
	seedBrokers []string, topic, group string, tlsConfig *tls.Config,
) (*kgo.Client, error) {
	const op = "NewConsumerClient"

	opts := []kgo.Opt{
		kgo.SeedBrokers(seedBrokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup(group),
		kgo.DisableAutoCommit(),
	}
	if tlsConfig != nil {
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}

	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, opErr(err, op)
	}
	return cl, nil
}

// ApplyGokaTLS makes every goka processor, view and emitter created
// afterwards dial the brokers over TLS.
func ApplyGokaTLS(tlsConfig *tls.Config) {
	if tlsConfig == nil {
		return
	}
	config := goka.DefaultConfig()
	config.Net.TLS.Enable = true
	config.Net.TLS.Config = tlsConfig
	goka.ReplaceGlobalConfig(config)
}

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func productToSchemaV1(v domain.Product) (s schema.ProductV1) {
	s.ProductID = v.ID
	s.Name = v.Name
	s.PriceLabel = v.PriceLabel
	s.NumericPrice = v.NumericPrice
	s.OriginalPrice = v.OriginalPrice
	s.OfferPrice = v.OfferPrice
	s.Category = v.Category
	s.Brand = v.Brand
	s.Rating = v.Rating
	s.ReviewCount = int64(v.ReviewCount)
	s.SoldCount = int64(v.SoldCount)
	s.InStock = v.InStock
	s.IsNew = v.IsNew
	s.IsHot = v.IsHot
	s.ShortDescription = v.ShortDescription

	s.Features = v.Features
	if s.Features == nil {
		s.Features = []string{}
	}
	s.Specifications = v.Specifications
	if s.Specifications == nil {
		s.Specifications = map[string]string{}
	}

	s.Images = make([]schema.ProductImageV1, len(v.Images))
	for i := range v.Images {
		s.Images[i].URL = v.Images[i].URL
		s.Images[i].PublicID = v.Images[i].PublicID
	}
	return
}

func schemaV1ToProduct(s schema.ProductV1) (v domain.Product) {
	v.ID = s.ProductID
	v.Name = s.Name
	v.PriceLabel = s.PriceLabel
	v.NumericPrice = s.NumericPrice
	v.OriginalPrice = s.OriginalPrice
	v.OfferPrice = s.OfferPrice
	v.Category = s.Category
	v.Brand = s.Brand
	v.Rating = s.Rating
	v.ReviewCount = int(s.ReviewCount)
	v.SoldCount = int(s.SoldCount)
	v.InStock = s.InStock
	v.IsNew = s.IsNew
	v.IsHot = s.IsHot
	v.ShortDescription = s.ShortDescription

	if len(s.Features) != 0 {
		v.Features = s.Features
	}
	if len(s.Specifications) != 0 {
		v.Specifications = s.Specifications
	}
	if len(s.Images) != 0 {
		v.Images = make([]domain.ProductImage, len(s.Images))
		for i := range s.Images {
			v.Images[i].URL = s.Images[i].URL
			v.Images[i].PublicID = s.Images[i].PublicID
		}
	}
	return
}

func catalogEventToSchemaV1(e domain.CatalogEvent) schema.CatalogEventV1 {
	s := schema.CatalogEventV1{Op: string(e.Op), ProductID: e.ProductID}
	if e.Op == domain.CatalogUpsert && e.Product != nil {
		p := productToSchemaV1(*e.Product)
		s.Product = &p
	}
	return s
}

func schemaV1ToCatalogEvent(s schema.CatalogEventV1) (domain.CatalogEvent, error) {
	e := domain.CatalogEvent{Op: domain.CatalogOp(s.Op), ProductID: s.ProductID}
	switch e.Op {
	case domain.CatalogUpsert:
		if s.Product == nil {
			return domain.CatalogEvent{}, fmt.Errorf(
				"%w: upsert %q without product", ErrInvalidValueType, s.ProductID,
			)
		}
		p := schemaV1ToProduct(*s.Product)
		e.Product = &p
	case domain.CatalogDelete:
	default:
		return domain.CatalogEvent{}, fmt.Errorf(
			"%w: unknown op %q", ErrInvalidValueType, s.Op,
		)
	}
	return e, nil
}
