package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxValueLogLen bounds logged argument values. Ingest text and fact
// content routinely run to kilobytes; names, ids and strategies stay
// short.
const maxValueLogLen = 120

// Job submissions and store reads return as soon as the record exists,
// so 100ms already means a stuck backend. ask_question and augment_text
// block on retrieval and model synthesis and are slow by nature.
const (
	slowRequestThreshold   = 100 * time.Millisecond
	slowSynthesisThreshold = 15 * time.Second
)

func slowThreshold(tool string) time.Duration {
	switch tool {
	case "ask_question", "augment_text":
		return slowSynthesisThreshold
	default:
		return slowRequestThreshold
	}
}

// LoggingMiddleware returns middleware that logs every request with its
// tool name, clipped arguments and timing.
func LoggingMiddleware(logger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()

			result, err := next(ctx, method, req)

			duration := time.Since(start)
			tool, args := describeCall(req.GetParams())

			attrs := []any{
				"method", method,
				"duration_ms", duration.Milliseconds(),
			}
			if tool != "" {
				attrs = append(attrs, "tool", tool)
			}
			if args != "" {
				attrs = append(attrs, "args", args)
			}

			if err != nil {
				attrs = append(attrs, "error", err.Error())
				logger.Error("request failed", attrs...)
			} else if duration > slowThreshold(tool) {
				logger.Warn("slow request", attrs...)
			} else {
				logger.Debug("request completed", attrs...)
			}

			return result, err
		}
	}
}

// describeCall extracts the tool name and a clipped argument summary
// from tools/call params. Other methods yield empty strings.
func describeCall(params mcp.Params) (tool, args string) {
	if params == nil {
		return "", ""
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return "", ""
	}

	var call struct {
		Name      string                     `json:"name"`
		Arguments map[string]json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(raw, &call); err != nil || call.Name == "" {
		return "", ""
	}

	keys := make([]string, 0, len(call.Arguments))
	for key := range call.Arguments {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%s", key, clipValue(call.Arguments[key]))
	}
	return call.Name, b.String()
}

// clipValue renders one argument for logging, cutting long strings on a
// rune boundary.
func clipValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// Non-string arguments are short enough to log verbatim.
		return string(raw)
	}
	if runes := []rune(s); len(runes) > maxValueLogLen {
		s = string(runes[:maxValueLogLen]) + "..."
	}
	return fmt.Sprintf("%q", s)
}
