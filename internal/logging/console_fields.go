package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type infoField struct {
	label string
	value string
}

const maxInfoValueLength = 160

// highlightKeys are rendered first, in this order, when present.
var highlightKeys = []string{
	FieldAlert,
	FieldEventType,
	"title",
	"author",
	"excerpts",
	"high_score_excerpts",
	"reason",
	"error",
	FieldErrorHint,
	FieldImpact,
	FieldURL,
	FieldAttempt,
	"delay",
	"duration",
}

var labels = map[string]string{
	FieldAlert:            "Alert",
	FieldEventType:        "Event",
	FieldErrorHint:        "Hint",
	FieldImpact:           "Impact",
	FieldURL:              "URL",
	FieldRunID:            "Run",
	"high_score_excerpts": "High Score",
}

// selectFields orders fields with highlights first. Debug-only keys and
// overly long values are omitted unless includeDebug is set.
func selectFields(attrs []kv, includeDebug bool) []infoField {
	if len(attrs) == 0 {
		return nil
	}
	used := make([]bool, len(attrs))
	out := make([]infoField, 0, len(attrs))
	appendField := func(idx int) {
		used[idx] = true
		attr := attrs[idx]
		if !includeDebug && isDebugOnlyKey(attr.key) {
			return
		}
		value := formatValueForKey(attr.key, attr.value)
		if !includeDebug && attr.key != "error" && len(value) > maxInfoValueLength {
			return
		}
		out = append(out, infoField{label: displayLabel(attr.key), value: value})
	}
	for _, key := range highlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				appendField(idx)
			}
		}
	}
	for idx := range attrs {
		if !used[idx] {
			appendField(idx)
		}
	}
	return out
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case "", FieldRunID, "size", "status":
		return true
	}
	return strings.HasSuffix(key, "_path")
}

func displayLabel(key string) string {
	if label, ok := labels[key]; ok {
		return label
	}
	parts := strings.Split(strings.ReplaceAll(key, ".", "_"), "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()
	switch {
	case strings.HasSuffix(key, "_bytes") && v.Kind() == slog.KindInt64:
		return humanize.IBytes(uint64(max(v.Int64(), 0)))
	case v.Kind() == slog.KindInt64 && v.Int64() >= 10000:
		return humanize.Comma(v.Int64())
	case v.Kind() == slog.KindDuration:
		return formatDuration(v.Duration())
	case strings.HasSuffix(key, "_percent") && v.Kind() == slog.KindFloat64:
		return fmt.Sprintf("%.1f%%", v.Float64())
	case v.Kind() == slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	case key == "error":
		return truncate(formatValue(v), 300)
	}
	return formatValue(v)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "…"
}

func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return formatValue(v)
	}
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return v.Time().In(time.Local).Format(logTimestampLayout)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" {
		return `""`
	}
	return s
}
