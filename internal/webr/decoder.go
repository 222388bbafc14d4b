package webr

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math"
	"sync"
	"time"
)

// ExecutionResult is the decoded outcome of one execute call. Success=false
// is a known domain failure, carried as a value and not as an error.
type ExecutionResult struct {
	Success             bool
	Output              string
	ErrorMessage        string
	ExecutionTimeMillis int64
	Artifacts           []*Artifact
}

// ExecutionTime returns the server-reported execution time
func (r *ExecutionResult) ExecutionTime() time.Duration {
	return time.Duration(r.ExecutionTimeMillis) * time.Millisecond
}

// FailedArtifacts returns the indices of artifacts whose payload could not be decoded
func (r *ExecutionResult) FailedArtifacts() []int {
	var failed []int
	for _, a := range r.Artifacts {
		if a.err != nil {
			failed = append(failed, a.index)
		}
	}
	return failed
}

// Artifact is one server-rendered image. The base64 payload is decoded
// when the result is decoded; pixel decoding happens on first Image call.
type Artifact struct {
	index int
	data  []byte
	err   error

	once   sync.Once
	img    image.Image
	format string
	imgErr error
}

// Index returns the position of the artifact in the response
func (a *Artifact) Index() int { return a.index }

// Err returns the per-artifact decode failure, if any
func (a *Artifact) Err() error { return a.err }

// Bytes returns a copy of the raw encoded image bytes
func (a *Artifact) Bytes() ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	return bytes.Clone(a.data), nil
}

// Len returns the size of the raw payload in bytes
func (a *Artifact) Len() int { return len(a.data) }

// Image decodes the payload into an image. The result is cached.
func (a *Artifact) Image() (image.Image, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.once.Do(func() {
		img, format, err := image.Decode(bytes.NewReader(a.data))
		if err != nil {
			a.imgErr = &DecodeError{Op: "decode artifact", Field: "plots", Index: a.index, Err: fmt.Errorf("%w: %v", ErrInvalidImage, err)}
			return
		}
		a.img, a.format = img, format
	})
	return a.img, a.imgErr
}

// Format returns the image format name ("png", "jpeg", "gif") read from
// the header, or "" when it cannot be determined.
func (a *Artifact) Format() string {
	if a.err != nil {
		return ""
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(a.data))
	if err != nil {
		return ""
	}
	return format
}

// NewArtifact wraps raw image bytes, e.g. for tests or re-stored results
func NewArtifact(index int, data []byte) *Artifact {
	return &Artifact{index: index, data: data}
}

const opDecodeResult = "decode result"

// DecodeResult validates and decodes an /api/execute response body
func DecodeResult(body []byte) (*ExecutionResult, error) {
	fields, err := decodeObject(opDecodeResult, body)
	if err != nil {
		return nil, err
	}

	success, ok, err := boolField(opDecodeResult, fields, "success")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missing(opDecodeResult, "success")
	}

	result := &ExecutionResult{Success: success, Artifacts: []*Artifact{}}

	if result.Output, _, err = stringField(opDecodeResult, fields, "output"); err != nil {
		return nil, err
	}

	if !success {
		msg, ok, err := stringField(opDecodeResult, fields, "error")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, missing(opDecodeResult, "error")
		}
		result.ErrorMessage = msg
	}

	millis, ok, err := numberField(opDecodeResult, fields, "executionTime")
	if err != nil {
		return nil, err
	}
	if ok {
		if millis < 0 {
			return nil, &DecodeError{Op: opDecodeResult, Field: "executionTime", Index: -1, Err: fmt.Errorf("%w: negative value %v", ErrMalformedResponse, millis)}
		}
		rounded := math.Round(millis)
		if rounded >= math.MaxInt64 {
			return nil, &DecodeError{Op: opDecodeResult, Field: "executionTime", Index: -1, Err: fmt.Errorf("%w: value %v out of range", ErrMalformedResponse, millis)}
		}
		result.ExecutionTimeMillis = int64(rounded)
	}

	plots, err := arrayField(opDecodeResult, fields, "plots")
	if err != nil {
		return nil, err
	}
	for i, raw := range plots {
		result.Artifacts = append(result.Artifacts, decodeArtifact(i, raw))
	}

	return result, nil
}

func decodeArtifact(index int, raw json.RawMessage) *Artifact {
	a := &Artifact{index: index}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		a.err = &DecodeError{Op: "decode artifact", Field: "plots", Index: index, Err: fmt.Errorf("%w: want base64 string", ErrWrongType)}
		return a
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		a.err = &DecodeError{Op: "decode artifact", Field: "plots", Index: index, Err: fmt.Errorf("%w: %v", ErrInvalidBase64, err)}
		return a
	}
	a.data = data
	return a
}

// Field helpers. Every shape error wraps ErrMalformedResponse together
// with the specific sentinel. A JSON null counts as absent.

func decodeObject(op string, body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		if err == nil {
			err = fmt.Errorf("body is null")
		}
		return nil, &DecodeError{Op: op, Index: -1, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return fields, nil
}

func present(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func missing(op, field string) error {
	return &DecodeError{Op: op, Field: field, Index: -1, Err: fmt.Errorf("%w: %w", ErrMalformedResponse, ErrMissingField)}
}

func wrongType(op, field, want string) error {
	return &DecodeError{Op: op, Field: field, Index: -1, Err: fmt.Errorf("%w: %w: want %s", ErrMalformedResponse, ErrWrongType, want)}
}

func boolField(op string, fields map[string]json.RawMessage, name string) (bool, bool, error) {
	raw, ok := present(fields, name)
	if !ok {
		return false, false, nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, false, wrongType(op, name, "boolean")
	}
	return v, true, nil
}

func stringField(op string, fields map[string]json.RawMessage, name string) (string, bool, error) {
	raw, ok := present(fields, name)
	if !ok {
		return "", false, nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false, wrongType(op, name, "string")
	}
	return v, true, nil
}

func numberField(op string, fields map[string]json.RawMessage, name string) (float64, bool, error) {
	raw, ok := present(fields, name)
	if !ok {
		return 0, false, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false, wrongType(op, name, "number")
	}
	return v, true, nil
}

func arrayField(op string, fields map[string]json.RawMessage, name string) ([]json.RawMessage, error) {
	raw, ok := present(fields, name)
	if !ok {
		return nil, nil
	}
	var v []json.RawMessage
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, wrongType(op, name, "array")
	}
	return v, nil
}
