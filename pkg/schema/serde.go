package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var ErrTooFewOpts = errors.New("too few options")

// A Serde encodes values into the schema registry wire format and back.
type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// serde is bound to one subject and one registered schema id.
type serde struct {
	subject string
	id      int
	srSerde *sr.Serde
}

func (s serde) Encode(v any) ([]byte, error) {
	b, err := s.srSerde.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s, err)
	}
	return b, nil
}

func (s serde) Decode(data []byte, v any) error {
	if err := s.srSerde.Decode(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", s, err)
	}
	return nil
}

func (s serde) String() string {
	return fmt.Sprintf("%s#%d", s.subject, s.id)
}

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

func (so *serdeOpts) apply(opts []Opt) error {
	for _, o := range opts {
		if err := o(so); err != nil {
			return err
		}
	}
	if so.subject == "" || so.si == nil {
		return ErrTooFewOpts
	}
	return nil
}

func SubjectOpt(subject string) Opt {
	return func(so *serdeOpts) error {
		if subject == "" {
			return errors.New("subject is empty string")
		}
		so.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(sc SchemaIdentifier) Opt {
	return func(so *serdeOpts) error {
		if sc == nil {
			return errors.New("schema identifier is nil")
		}
		so.si = sc
		return nil
	}
}

// NewSerdeCatalogEventV1 registers [CatalogEventV1] under the subject.
func NewSerdeCatalogEventV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeCatalogEventV1"
	return newSerde(ctx, op, CatalogEventSchemaTextV1, CatalogEventV1{}, opts)
}

// NewSerdeRecentlyViewedV1 registers [RecentlyViewedV1] under the subject.
func NewSerdeRecentlyViewedV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeRecentlyViewedV1"
	return newSerde(ctx, op, RecentlyViewedSchemaTextV1, RecentlyViewedV1{}, opts)
}

func newSerde(
	ctx context.Context, op, schemaText string, example any, opts []Opt,
) (Serde, error) {
	var so serdeOpts
	if err := so.apply(opts); err != nil {
		return serde{}, fmt.Errorf("%s: %w", op, err)
	}

	avroSchema, err := avro.Parse(schemaText)
	if err != nil {
		return serde{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := so.si.DetermineID(ctx, so.subject, schemaText)
	if err != nil {
		return serde{}, fmt.Errorf("%s: %w", op, err)
	}

	srSerde := new(sr.Serde)
	srSerde.Register(
		id,
		example,
		sr.EncodeFn(AvroEncodeFn(avroSchema)),
		sr.DecodeFn(AvroDecodeFn(avroSchema)),
	)

	return serde{subject: so.subject, id: id, srSerde: srSerde}, nil
}
