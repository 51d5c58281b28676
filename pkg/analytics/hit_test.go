package analytics

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gferrors "github.com/vnykmshr/gatrack/pkg/common/errors"
)

var testApp = AppInfo{
	TrackingID: "UA-1234-1",
	ClientID:   "35009a79-1a05-49d7-b876-2b884d0f825b",
	AppID:      "com.example.app",
	AppName:    "Example",
	AppVersion: "1.2.0",
}

func TestAppInfoValidate(t *testing.T) {
	require.NoError(t, testApp.Validate())

	err := AppInfo{ClientID: "cid"}.Validate()
	require.Error(t, err)
	assert.True(t, gferrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "tracking_id")

	err = AppInfo{TrackingID: "UA-1"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id")
}

func TestAppInfoValues(t *testing.T) {
	v := testApp.Values()
	assert.Equal(t, "1", v.Get("v"))
	assert.Equal(t, "UA-1234-1", v.Get("tid"))
	assert.Equal(t, testApp.ClientID, v.Get("cid"))
	assert.Equal(t, "app", v.Get("ds"))
	assert.Equal(t, "com.example.app", v.Get("aid"))
	assert.Equal(t, "Example", v.Get("an"))
	assert.Equal(t, "1.2.0", v.Get("av"))

	bare := AppInfo{TrackingID: "UA-1", ClientID: "c"}.Values()
	_, ok := bare["aid"]
	assert.False(t, ok, "empty app id should be omitted")
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		hit  Hit
		want url.Values
		omit []string
	}{
		{
			name: "screen view",
			hit:  ScreenView{Name: "home"},
			want: url.Values{"t": {"screenview"}, "cd": {"home"}},
		},
		{
			name: "event with label and value",
			hit:  Event{Action: "click", Category: "mobile", Label: "buy", Value: 3},
			want: url.Values{"t": {"event"}, "ea": {"click"}, "ec": {"mobile"}, "el": {"buy"}, "ev": {"3"}},
		},
		{
			name: "event without optionals",
			hit:  Event{Action: "click", Category: "mobile"},
			want: url.Values{"t": {"event"}, "ea": {"click"}, "ec": {"mobile"}},
			omit: []string{"el", "ev"},
		},
		{
			name: "timing",
			hit:  Timing{Category: "net", Variable: "load", Time: 1500 * time.Millisecond, Label: "cold"},
			want: url.Values{"t": {"timing"}, "utc": {"net"}, "utv": {"load"}, "utt": {"1500"}, "utl": {"cold"}},
		},
		{
			name: "timing without label",
			hit:  Timing{Category: "net", Variable: "load", Time: 20 * time.Millisecond},
			want: url.Values{"t": {"timing"}, "utt": {"20"}},
			omit: []string{"utl"},
		},
		{
			name: "page view",
			hit:  PageView{Path: "/about", Title: "About"},
			want: url.Values{"t": {"pageview"}, "dp": {"/about"}, "dt": {"About"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(testApp, tt.hit)
			assert.Equal(t, string(tt.hit.Type()), got.Get("t"))
			assert.Equal(t, "UA-1234-1", got.Get("tid"))
			assert.Equal(t, "app", got.Get("ds"))
			for k := range tt.want {
				assert.Equal(t, tt.want.Get(k), got.Get(k), "param %s", k)
			}
			for _, k := range tt.omit {
				_, ok := got[k]
				assert.False(t, ok, "param %s should be omitted", k)
			}
		})
	}
}
