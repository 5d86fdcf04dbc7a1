// Package inbox adapts exported SMS inboxes to service.MessageSource.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/berlinbruno/money-trail/internal/service"
	"github.com/berlinbruno/money-trail/internal/sms"
)

// FileSource reads an inbox export: a JSON or YAML list of {_id, address, body, date}
// objects, date in Unix milliseconds. A missing file is an empty inbox.
type FileSource struct {
	Path string
}

// Decode parses an inbox export. JSON input is accepted as YAML.
func Decode(data []byte) ([]sms.Message, error) {
	var msgs []sms.Message
	if err := yaml.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("decode inbox: %w", err)
	}
	return msgs, nil
}

// ListInboxMessages returns messages matching f, newest first.
func (s *FileSource) ListInboxMessages(ctx context.Context, f service.Filter) ([]sms.Message, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read inbox %s: %w", s.Path, err)
	}
	msgs, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Select(msgs, f)
}

// Select applies f to msgs: body pattern, After < date ≤ Until, newest first, at most
// MaxCount. Zero bounds and a non-positive MaxCount disable the respective limit.
func Select(msgs []sms.Message, f service.Filter) ([]sms.Message, error) {
	var re *regexp.Regexp
	if f.BodyPattern != "" {
		var err error
		if re, err = regexp.Compile(f.BodyPattern); err != nil {
			return nil, fmt.Errorf("compile body pattern: %w", err)
		}
	}
	after, until := f.After.UnixMilli(), f.Until.UnixMilli()

	out := make([]sms.Message, 0, len(msgs))
	for _, m := range msgs {
		if re != nil && !re.MatchString(m.Body) {
			continue
		}
		if !f.After.IsZero() && m.TimestampMillis <= after {
			continue
		}
		if !f.Until.IsZero() && m.TimestampMillis > until {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimestampMillis > out[j].TimestampMillis })
	if f.MaxCount > 0 && len(out) > f.MaxCount {
		out = out[:f.MaxCount]
	}
	return out, nil
}
