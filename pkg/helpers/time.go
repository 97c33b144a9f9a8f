package helpers

import (
	"context"
	"fmt"
	"strings"
	"time"

	mailtpl "github.com/oksasatya/ebook-storefront/pkg/mailer/templates"
)

const emailTimeLayout = "02 January 2006, 15:04 MST"

// localized maps a timestamp key in email data to the display key rewritten in the reader's zone.
var localized = map[string]string{
	"ExpiresAt": "ExpiresAtText",
	"TimeAt":    "Time",
}

// LocalizeEmailTimes looks up data["IP"] and rewrites the display times into
// that location's zone. ok reports whether the lookup succeeded, so callers
// can reuse g for the Location line.
func LocalizeEmailTimes(ctx context.Context, resolver mailtpl.GeoResolver, data map[string]any) (g mailtpl.Geo, ok bool) {
	ip := strings.TrimSpace(fmt.Sprint(data["IP"]))
	if resolver == nil || data["IP"] == nil || ip == "" {
		return g, false
	}
	g, err := resolver.Lookup(ctx, ip)
	if err != nil {
		return g, false
	}
	loc, err := time.LoadLocation(strings.TrimSpace(g.Timezone))
	if g.Timezone == "" || err != nil {
		return g, true
	}
	for src, dst := range localized {
		if t, ok := parseTimeAny(data[src]); ok {
			data[dst] = t.In(loc).Format(emailTimeLayout)
		}
	}
	return g, true
}

func parseTimeAny(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	}
	s := fmt.Sprint(v)
	for _, l := range []string{time.RFC3339Nano, "2006-01-02 15:04:05 -0700 MST", "2006-01-02 15:04:05 -0700"} {
		if t, err := time.Parse(l, s); err == nil {
			return t, !t.IsZero()
		}
	}
	return time.Time{}, false
}
