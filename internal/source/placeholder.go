package source

import (
	"context"
	"log/slog"
	"time"

	"github.com/rusq/legalspend/types"
)

// PlaceholderNames are the known spend-management integrations that are not
// implemented yet.  Configuring one of them yields a source that satisfies
// the full contract but reports as disconnected.
var PlaceholderNames = []string{
	"simplelegal",
	"brightflag",
	"tymetrix",
	"onit",
	"dynamics365",
	"netsuite",
}

// Placeholder is the adapter for a known but not-yet-supported integration.
// Returning empty results instead of errors keeps the manager's
// initialisation loop uniform: the source shows up as "configured but
// inactive" rather than crashing startup.
type Placeholder struct {
	name string
	lg   *slog.Logger
}

var _ Sourcer = (*Placeholder)(nil)

// NewPlaceholder creates a placeholder adapter for cfg.
func NewPlaceholder(cfg Config, _ Options) (Sourcer, error) {
	return &Placeholder{
		name: cfg.Name,
		lg:   slog.With("source", cfg.Name),
	}, nil
}

func (p *Placeholder) Name() string { return p.name }
func (p *Placeholder) Type() Type   { return TypeAPI }

func (p *Placeholder) SpendData(ctx context.Context, _, _ time.Time, _ Filters) ([]types.LegalSpendRecord, error) {
	p.lg.WarnContext(ctx, "integration is not implemented yet")
	return nil, nil
}

func (p *Placeholder) Vendors(ctx context.Context) ([]types.Vendor, error) {
	p.lg.WarnContext(ctx, "integration is not implemented yet")
	return nil, nil
}

func (p *Placeholder) TestConnection(context.Context) bool {
	return false
}
