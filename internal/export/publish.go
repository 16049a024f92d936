package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"nutriplan/internal/blob"
	"nutriplan/internal/core"
	"nutriplan/pkg/domain"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (valid: csv, json)", s)
}

func (f Format) contentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// WriteLogs encodes logs in format f.
func WriteLogs(w io.Writer, f Format, logs []core.DatedLog, now time.Time) error {
	if f == FormatCSV {
		return LogsToCSV(w, logs)
	}
	return LogsToJSON(w, logs, now)
}

// WriteGrocery encodes items in format f.
func WriteGrocery(w io.Writer, f Format, items []domain.GroceryItem, now time.Time) error {
	if f == FormatCSV {
		return GroceryToCSV(w, items)
	}
	return GroceryToJSON(w, items, now)
}

// Published describes an export stored in a blob store.
type Published struct {
	Info blob.Info
	// URL is a presigned download link, empty when the driver cannot sign.
	URL string
}

// Publisher stores exports in a blob store under a key prefix.
type Publisher struct {
	store  blob.Store
	prefix string
	expiry time.Duration
	now    func() time.Time
}

// NewPublisher returns a Publisher. expiry bounds presigned URLs; zero uses
// the driver default.
func NewPublisher(store blob.Store, prefix string, expiry time.Duration) *Publisher {
	return &Publisher{store: store, prefix: prefix, expiry: expiry, now: func() time.Time { return time.Now().UTC() }}
}

// Key returns the object key for an export named name.
func (p *Publisher) Key(name string, f Format) string {
	return path.Join(p.prefix, name+"."+string(f))
}

// PublishLogs stores logs under <prefix>/<from>_<to>.<format>, replacing an
// earlier export of the same range.
func (p *Publisher) PublishLogs(ctx context.Context, f Format, from, to string, logs []core.DatedLog) (Published, error) {
	var buf bytes.Buffer
	if err := WriteLogs(&buf, f, logs, p.now()); err != nil {
		return Published{}, err
	}
	return p.put(ctx, p.Key("food-log_"+from+"_"+to, f), f, &buf, map[string]string{"from": from, "to": to})
}

// PublishGrocery stores the list under <prefix>/grocery-list.<format>.
func (p *Publisher) PublishGrocery(ctx context.Context, f Format, items []domain.GroceryItem) (Published, error) {
	var buf bytes.Buffer
	if err := WriteGrocery(&buf, f, items, p.now()); err != nil {
		return Published{}, err
	}
	return p.put(ctx, p.Key("grocery-list", f), f, &buf, nil)
}

func (p *Publisher) put(ctx context.Context, key string, f Format, body io.Reader, meta map[string]string) (Published, error) {
	info, err := p.store.Put(ctx, key, body, blob.PutOptions{ContentType: f.contentType(), Metadata: meta, Overwrite: true})
	if err != nil {
		return Published{}, fmt.Errorf("publish %s: %w", key, err)
	}
	url, err := p.store.PresignURL(ctx, key, blob.SignedURLOptions{Method: "GET", Expiry: p.expiry})
	switch {
	case errors.Is(err, blob.ErrUnsupported):
		url = ""
	case err != nil:
		return Published{}, fmt.Errorf("presign %s: %w", key, err)
	}
	return Published{Info: info, URL: url}, nil
}
