package scrape

import (
	"context"
	"errors"
	"time"
)

// Target identifies one retailer portal for a scrape run. It is a projection
// of the stored retailer descriptor; adapters never touch persistence.
type Target struct {
	RetailerID string
	Name       string
	PortalURL  string
	Branch     string
	Username   string
}

// Product is a normalized product as it leaves an adapter. Names are raw
// retailer names at this point; validation and standardization happen in the
// ingestion pipeline.
type Product struct {
	ItemCode      string
	Name          string
	Branch        string
	Price         float64
	UnitOfMeasure string
	UnitPrice     float64
	Manufacturer  string
	Country       string
	SeenAt        time.Time
}

// Promotion is a promotion as it leaves an adapter, linked to one item code.
type Promotion struct {
	ItemCode    string
	Branch      string
	PromoID     string
	Description string
	SeenAt      time.Time
}

// Result is the outcome of one adapter run. Both slices empty means "no new
// data": the portal had nothing to offer, prior stored data stays untouched.
type Result struct {
	Products   []Product
	Promotions []Promotion
}

// Empty reports the "no new data" case.
func (r *Result) Empty() bool {
	return len(r.Products) == 0 && len(r.Promotions) == 0
}

// StatusSink receives progress notifications during a scrape run. This is the
// adapter's only coupling to the outside world besides its return value.
// Consumers distinguish terminal success ("Done"), terminal failure (prefix
// "Error") and in-progress (anything else).
type StatusSink interface {
	Publish(retailerID, status string)
}

const (
	StatusStarting = "Starting..."
	StatusDone     = "Done"
)

// Portal family names as they appear in retailer configuration.
const (
	PortalSelfHosted = "selfhosted"
	PortalPublished  = "published"
	PortalMarket     = "market"
)

// Adapter drives one browser session against a retailer portal and returns
// normalized records. Any step failure aborts the run with an error; the
// caller reports it through the status sink and moves on.
type Adapter interface {
	Scrape(ctx context.Context, session *Session, target Target, sink StatusSink) (*Result, error)
}

// ErrUnknownPortal is returned when a retailer descriptor names a portal
// family no adapter implements.
var ErrUnknownPortal = errors.New("unknown portal family")

// NewAdapter returns the adapter implementation for a portal family.
func NewAdapter(portal string) (Adapter, error) {
	switch portal {
	case PortalSelfHosted:
		return &SelfHostedAdapter{}, nil
	case PortalPublished:
		return &PublishedAdapter{}, nil
	case PortalMarket:
		return &MarketAdapter{}, nil
	default:
		return nil, ErrUnknownPortal
	}
}
