package port

//go:generate mockgen -source=external.go -destination=../../mocks/port/external_mock.go -package=mockport

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-drafts/internal/domain/entity"
)

// ExchangeRateProvider returns how many units of `to` one unit of `from` buys.
type ExchangeRateProvider interface {
	GetRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// ExchangeRateStore maintains the rate table behind a provider.
type ExchangeRateStore interface {
	ExchangeRateProvider
	Upsert(ctx context.Context, rate *entity.ExchangeRate) error
	List(ctx context.Context) ([]*entity.ExchangeRate, error)
}

// NumberSequencer hands out document numbers. Callers must surface a
// failure instead of inventing a number.
type NumberSequencer interface {
	NextNumber(ctx context.Context, kind entity.DocumentKind) (string, error)
}

// MasterDataLookup serves read-only reference data.
// GetByID returns nil, nil when the id is unknown.
type MasterDataLookup interface {
	List(ctx context.Context, kind entity.ReferenceKind) ([]entity.ReferenceItem, error)
	GetByID(ctx context.Context, kind entity.ReferenceKind, id string) (*entity.ReferenceItem, error)
}

// DocumentExporter renders a document into a downloadable file.
type DocumentExporter interface {
	Export(ctx context.Context, doc *entity.DocumentRecord, w io.Writer) error
	ContentType() string
	FileName(doc *entity.DocumentRecord) string
}

// FileArchive keeps copies of generated files.
type FileArchive interface {
	Save(ctx context.Context, folder, name string, content []byte) (string, error)
	Read(ctx context.Context, folder, name string) ([]byte, error)
}
