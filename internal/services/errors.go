package services

import (
	"errors"
	"fmt"
	"strings"
)

// Marker errors classify failures. Callers test them with errors.Is.
var (
	ErrProbe         = errors.New("probe error")
	ErrEncode        = errors.New("encode error")
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
)

// Kind labels used by metrics and the history ledger.
const (
	KindNone          = ""
	KindProbe         = "probe"
	KindEncode        = "encode"
	KindConfiguration = "configuration"
	KindValidation    = "validation"
	KindUnknown       = "unknown"
)

var kinds = []struct {
	marker error
	kind   string
}{
	{ErrProbe, KindProbe},
	{ErrEncode, KindEncode},
	{ErrConfiguration, KindConfiguration},
	{ErrValidation, KindValidation},
}

// Wrap tags err with marker (ErrEncode when nil) and prefixes the non-blank
// stage, operation, and message, e.g.
//
//	encode error: ffmpeg: pass 1: exited non-zero: exit status 1
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrEncode
	}
	detail := joinNonBlank(": ", stage, operation, message)
	if detail == "" {
		detail = "unspecified failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// Kind returns the label of the first marker err wraps, KindNone for nil and
// KindUnknown for anything unmarked.
func Kind(err error) string {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.marker) {
			return k.kind
		}
	}
	return KindUnknown
}

func joinNonBlank(sep string, values ...string) string {
	kept := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}
