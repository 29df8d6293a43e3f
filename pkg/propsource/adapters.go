package propsource

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aretw0/canvas/pkg/registry"
)

const dateLayout = "2006-01-02"

// DefaultAdapters returns a registry with the built-in adapters:
//
//	day_count     days between the "oldest" and "newest" dates
//	unix_to_date  a unix "timestamp" as a date string
//	string_join   "first" and "second" joined by "separator" (default " ")
func DefaultAdapters() *registry.Registry {
	r := registry.NewRegistry()
	r.Register("day_count", dayCount)
	r.Register("unix_to_date", unixToDate)
	r.Register("string_join", stringJoin)
	return r
}

func dayCount(_ context.Context, args map[string]any) (any, error) {
	oldest, err := dateArg(args, "oldest")
	if err != nil {
		return nil, err
	}
	newest, err := dateArg(args, "newest")
	if err != nil {
		return nil, err
	}
	return int(math.Round(newest.Sub(oldest).Hours() / 24)), nil
}

func unixToDate(_ context.Context, args map[string]any) (any, error) {
	var ts int64
	switch v := args["timestamp"].(type) {
	case int:
		ts = int64(v)
	case int64:
		ts = v
	case float64:
		ts = int64(v)
	default:
		return nil, fmt.Errorf("timestamp: expected a number, got %T", args["timestamp"])
	}
	return time.Unix(ts, 0).UTC().Format(dateLayout), nil
}

func stringJoin(_ context.Context, args map[string]any) (any, error) {
	sep := " "
	if s, ok := args["separator"].(string); ok {
		sep = s
	}
	var parts []string
	for _, key := range []string{"first", "second"} {
		v, ok := args[key]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected a string, got %T", key, v)
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep), nil
}

func dateArg(args map[string]any, key string) (time.Time, error) {
	s, ok := args[key].(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: expected a date string, got %T", key, args[key])
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", key, err)
	}
	return t, nil
}
