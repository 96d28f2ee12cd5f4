package osuapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// Base URLs for the two endpoints the API lives on. Beatmap file downloads
// go through the main site, not the api/ prefix.
const (
	DefaultBaseURL     = "https://osu.ppy.sh/api/"
	DefaultFileBaseURL = "https://osu.ppy.sh/"
)

// knownParams is the full set of query parameter names the API recognizes.
var knownParams = map[string]struct{}{
	"a":          {},
	"h":          {},
	"k":          {},
	"m":          {},
	"b":          {},
	"u":          {},
	"s":          {},
	"mp":         {},
	"limit":      {},
	"type":       {},
	"mods":       {},
	"event_days": {},
	"since":      {},
}

// Param is a single named query parameter. A nil Value, an invalid null
// value or a zero time marks the parameter as absent.
type Param struct {
	Key   string
	Value any
}

// Route builds a fully qualified request URL from a base URL, an endpoint
// path, an API key and an ordered set of query parameters.
//
// Parameter names are validated lazily via CheckParams, not at insertion,
// so a route may hold transient invalid state while it is being assembled.
// Values are interpolated into the URL verbatim with no percent-encoding;
// callers that need reserved characters must escape them beforehand.
type Route struct {
	base   string
	path   string
	apiKey string
	keys   []string
	values map[string]string
}

// NewRoute creates a route against the default API base URL. Parameters
// with an absent value are dropped.
func NewRoute(path, apiKey string, params ...Param) *Route {
	return NewRouteWithBase(DefaultBaseURL, path, apiKey, params...)
}

// NewRouteWithBase creates a route against an explicit base URL, mainly so
// tests can point at a local server. An empty base falls back to the
// default.
func NewRouteWithBase(base, path, apiKey string, params ...Param) *Route {
	if base == "" {
		base = DefaultBaseURL
	}
	r := &Route{
		base:   base,
		path:   path,
		apiKey: apiKey,
		values: make(map[string]string),
	}
	for _, p := range params {
		r.AddParam(p.Key, p.Value)
	}
	return r
}

// AddParam adds or replaces a query parameter. When value is absent the
// call is a no-op: nothing is added and an existing entry is left alone.
func (r *Route) AddParam(key string, value any) {
	s, ok := paramString(value)
	if !ok {
		return
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = s
}

// RemoveParam deletes a query parameter and reports whether it was present.
func (r *Route) RemoveParam(key string) bool {
	if _, exists := r.values[key]; !exists {
		return false
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// CheckParams verifies every stored parameter name against the recognized
// set and returns an InvalidArgumentError for the first unknown one.
func (r *Route) CheckParams() error {
	for _, key := range r.keys {
		if _, ok := knownParams[key]; !ok {
			return &InvalidArgumentError{Param: key}
		}
	}
	return nil
}

// Path returns the endpoint path this route targets.
func (r *Route) Path() string {
	return r.path
}

// URL assembles the request URL from the current route state. The API key
// comes first as k=, remaining parameters follow in insertion order. The
// URL is recomputed on every call, so it always reflects the latest
// parameter set.
func (r *Route) URL() string {
	var sb strings.Builder
	sb.WriteString(r.base)
	sb.WriteString(r.path)

	pairs := make([]string, 0, len(r.keys)+1)
	if r.apiKey != "" {
		pairs = append(pairs, "k="+r.apiKey)
	}
	for _, key := range r.keys {
		pairs = append(pairs, key+"="+r.values[key])
	}
	if len(pairs) == 0 {
		return sb.String()
	}
	sb.WriteString("?")
	sb.WriteString(strings.Join(pairs, "&"))
	return sb.String()
}

// paramString renders a query parameter value and reports whether it is
// present at all. Nullable values carry their own absence flag; a zero
// time.Time and a nil pointer count as absent. Enum types render as the
// integers the API expects, not their display names.
func paramString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case GameMode:
		return strconv.Itoa(int(v)), true
	case Mods:
		return strconv.FormatUint(uint64(v), 10), true
	case time.Time:
		if v.IsZero() {
			return "", false
		}
		return v.UTC().Format(TimeLayout), true
	case null.Int:
		if !v.Valid {
			return "", false
		}
		return strconv.FormatInt(v.Int64, 10), true
	case null.Float:
		if !v.Valid {
			return "", false
		}
		return strconv.FormatFloat(v.Float64, 'f', -1, 64), true
	case null.String:
		if !v.Valid {
			return "", false
		}
		return v.String, true
	case null.Bool:
		if !v.Valid {
			return "", false
		}
		if v.Bool {
			return "1", true
		}
		return "0", true
	case null.Time:
		if !v.Valid {
			return "", false
		}
		return v.ValueOrZero().UTC().Format(TimeLayout), true
	default:
		return fmt.Sprint(v), true
	}
}
