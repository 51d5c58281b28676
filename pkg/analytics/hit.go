package analytics

import (
	"net/url"
	"strconv"
	"time"

	"github.com/vnykmshr/gatrack/pkg/common/validation"
)

// ProtocolVersion is the Measurement Protocol version sent with every hit.
const ProtocolVersion = "1"

// DataSource marks hits as originating from an application.
const DataSource = "app"

// HitType is the Measurement Protocol "t" parameter.
type HitType string

// Supported hit types.
const (
	HitPageView   HitType = "pageview"
	HitScreenView HitType = "screenview"
	HitEvent      HitType = "event"
	HitTiming     HitType = "timing"
)

// AppInfo identifies the property and application that hits are reported for.
type AppInfo struct {
	TrackingID string
	ClientID   string
	AppID      string
	AppName    string
	AppVersion string
}

// Validate checks that the fields Google Analytics requires are present.
func (a AppInfo) Validate() error {
	if err := validation.ValidateNotEmpty("analytics", "tracking_id", a.TrackingID); err != nil {
		return err
	}
	return validation.ValidateNotEmpty("analytics", "client_id", a.ClientID)
}

// Values returns the parameters shared by every hit.
func (a AppInfo) Values() url.Values {
	v := url.Values{}
	v.Set("v", ProtocolVersion)
	v.Set("tid", a.TrackingID)
	v.Set("cid", a.ClientID)
	v.Set("ds", DataSource)
	setIf(v, "aid", a.AppID)
	setIf(v, "an", a.AppName)
	setIf(v, "av", a.AppVersion)
	return v
}

// Hit is a single trackable interaction.
type Hit interface {
	// Type reports the hit type.
	Type() HitType

	// Values returns the hit specific parameters, including "t".
	Values() url.Values
}

// PageView records a page view.
type PageView struct {
	Path  string
	Title string
}

func (PageView) Type() HitType { return HitPageView }

func (p PageView) Values() url.Values {
	v := url.Values{"t": {string(HitPageView)}}
	setIf(v, "dp", p.Path)
	setIf(v, "dt", p.Title)
	return v
}

// ScreenView records that a named screen was shown.
type ScreenView struct {
	Name string
}

func (ScreenView) Type() HitType { return HitScreenView }

func (s ScreenView) Values() url.Values {
	return url.Values{
		"t":  {string(HitScreenView)},
		"cd": {s.Name},
	}
}

// Event records a user interaction. Label and Value are optional and
// omitted when empty or zero.
type Event struct {
	Action   string
	Category string
	Label    string
	Value    int64
}

func (Event) Type() HitType { return HitEvent }

func (e Event) Values() url.Values {
	v := url.Values{
		"t":  {string(HitEvent)},
		"ea": {e.Action},
		"ec": {e.Category},
	}
	setIf(v, "el", e.Label)
	if e.Value != 0 {
		v.Set("ev", strconv.FormatInt(e.Value, 10))
	}
	return v
}

// Timing records how long something took. Time is reported in
// milliseconds.
type Timing struct {
	Category string
	Variable string
	Time     time.Duration
	Label    string
}

func (Timing) Type() HitType { return HitTiming }

func (t Timing) Values() url.Values {
	v := url.Values{
		"t":   {string(HitTiming)},
		"utc": {t.Category},
		"utv": {t.Variable},
		"utt": {strconv.FormatInt(t.Time.Milliseconds(), 10)},
	}
	setIf(v, "utl", t.Label)
	return v
}

// Encode merges the application parameters with the hit parameters. Hit
// parameters win on conflict.
func Encode(info AppInfo, h Hit) url.Values {
	v := info.Values()
	for k, vals := range h.Values() {
		v[k] = vals
	}
	return v
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
