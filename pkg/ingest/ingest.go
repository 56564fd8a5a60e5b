// Package ingest is the parser collaborator: it turns a stream of
// newline-delimited JSON records into the event and edge records the core
// consumes. It raises ParseError for malformed input; the only other place
// that raises it is the trace-graph builder, for records it cannot assemble.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/synoptic-go/synoptic/internal/errs"
	"github.com/synoptic-go/synoptic/internal/model"
	"github.com/synoptic-go/synoptic/pkg/synoptic"
)

// TimeKind selects the ITime discriminator for an entire ingest run; the
// spec fixes this once per run rather than per record.
type TimeKind int

const (
	CounterTimeKind TimeKind = iota
	IntTimeKind
	FloatTimeKind
	VectorTimeKind
)

// record is the on-the-wire shape of one JSONL line. Kind selects which of
// the remaining fields apply.
type record struct {
	Kind string `json:"kind"` // "event" or "edge"

	// event fields
	ID      string `json:"id"`
	Type    string `json:"type"`
	PID     string `json:"pid"`
	Trace   string `json:"trace"`
	Line    int    `json:"line"`
	Time    json.RawMessage `json:"time"`

	// edge fields
	From     string          `json:"from"`
	To       string          `json:"to"`
	Relation string          `json:"relation"`
	Delta    json.RawMessage `json:"delta"`
}

// Read streams newline-delimited JSON records from r and assembles a
// synoptic.Log, ready to hand to synoptic.Infer. A line that isn't valid
// JSON is reported wrapped in errs.ErrParse and the scan stops there; an
// edge whose endpoint id no event line defines is also reported wrapped in
// errs.ErrParse, once the whole input has been read.
func Read(r io.Reader, shape model.Shape, tk TimeKind) (synoptic.Log, error) {
	log := synoptic.Log{Shape: shape}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return synoptic.Log{}, errors.Wrapf(errs.ErrParse, "line %d: invalid json: %v", lineNo, err)
		}

		switch rec.Kind {
		case "event":
			t, err := parseTime(rec.Time, tk)
			if err != nil {
				return synoptic.Log{}, errors.Wrapf(errs.ErrParse, "line %d: %v", lineNo, err)
			}
			id := rec.ID
			if id == "" {
				id = uuid.NewString()
			}
			eventType := model.NewEventType(rec.Type)
			if rec.PID != "" {
				eventType = model.NewDistributedEventType(rec.Type, rec.PID)
			}
			log.Events = append(log.Events, model.EventRecord{
				ID:      id,
				Type:    eventType,
				TraceID: rec.Trace,
				Line:    rec.Line,
				Time:    t,
			})
		case "edge":
			delta, err := parseTime(rec.Delta, tk)
			if err != nil {
				return synoptic.Log{}, errors.Wrapf(errs.ErrParse, "line %d: %v", lineNo, err)
			}
			log.Edges = append(log.Edges, model.EdgeRecord{
				From:     rec.From,
				To:       rec.To,
				Relation: rec.Relation,
				Delta:    delta,
			})
		default:
			return synoptic.Log{}, errors.Wrapf(errs.ErrParse, "line %d: unknown record kind %q", lineNo, rec.Kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return synoptic.Log{}, errors.Wrap(errs.ErrParse, err.Error())
	}
	if len(log.Events) == 0 {
		return synoptic.Log{}, errors.Wrap(errs.ErrParse, "no events in input")
	}
	defined := make(map[string]bool, len(log.Events))
	for _, e := range log.Events {
		defined[e.ID] = true
	}
	for _, e := range log.Edges {
		if !defined[e.From] || !defined[e.To] {
			return synoptic.Log{}, errors.Wrapf(errs.ErrParse, "edge %q -> %q references an undefined event id", e.From, e.To)
		}
	}
	return log, nil
}

func parseTime(raw json.RawMessage, tk TimeKind) (model.ITime, error) {
	if len(raw) == 0 {
		return zeroTime(tk), nil
	}
	switch tk {
	case CounterTimeKind:
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return model.CounterTime(v), nil
	case IntTimeKind:
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return model.IntTime(v), nil
	case FloatTimeKind:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return model.FloatTime(v), nil
	case VectorTimeKind:
		var v []int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return model.VectorTime(v), nil
	default:
		return nil, errors.Errorf("unknown time kind %d", tk)
	}
}

func zeroTime(tk TimeKind) model.ITime {
	switch tk {
	case IntTimeKind:
		return model.IntTime(0)
	case FloatTimeKind:
		return model.FloatTime(0)
	case VectorTimeKind:
		return model.VectorTime(nil)
	default:
		return model.CounterTime(0)
	}
}
