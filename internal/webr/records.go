package webr

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Record is one row of tabular input, mapping column name to a JSON scalar
type Record map[string]interface{}

// Records is an ordered sequence of rows. Order is preserved on the wire.
type Records []Record

// Fields returns the sorted union of field names across all records
func (rs Records) Fields() []string {
	seen := make(map[string]struct{})
	for _, r := range rs {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// Uniform reports whether every record has the same field set.
// The marshaler does not enforce this; callers may check before sending.
func (rs Records) Uniform() bool {
	if len(rs) < 2 {
		return true
	}
	first := rs[0]
	for _, r := range rs[1:] {
		if len(r) != len(first) {
			return false
		}
		for k := range first {
			if _, ok := r[k]; !ok {
				return false
			}
		}
	}
	return true
}

// executeRequest is the wire shape of POST /api/execute
type executeRequest struct {
	Code string   `json:"code"`
	Data []Record `json:"data,omitempty"`
}

// MarshalRequest builds the execute payload. The data field is omitted
// entirely when no records are given.
func MarshalRequest(code string, records Records) ([]byte, error) {
	for i, r := range records {
		for k, v := range r {
			if err := checkScalar(v); err != nil {
				return nil, &RequestError{Field: fmt.Sprintf("data[%d].%s", i, k), Err: err}
			}
		}
	}

	body, err := json.Marshal(executeRequest{Code: code, Data: records})
	if err != nil {
		return nil, &RequestError{Field: "data", Err: fmt.Errorf("%w: %v", ErrInvalidRecord, err)}
	}
	return body, nil
}

func checkScalar(v interface{}) error {
	switch x := v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return nil
	case float32:
		return checkFinite(float64(x))
	case float64:
		return checkFinite(x)
	default:
		return fmt.Errorf("%w: unsupported value type %T", ErrInvalidRecord, v)
	}
}

func checkFinite(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: non-finite number %v", ErrInvalidRecord, f)
	}
	return nil
}
