package ipc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
)

// Command is a request a client may send to the analysis daemon. The variant
// set is closed; every dispatcher switches over all of them, so adding a
// command means updating every dispatch site.
type Command interface {
	isCommand()
}

// GetInfo requests server identity and status.
type GetInfo struct{}

func (GetInfo) isCommand() {}

// DisplayTypeError requests rendered diagnostics, optionally scoped to Paths.
type DisplayTypeError struct {
	Paths []string
}

func (DisplayTypeError) isCommand() {}

// IncrementalUpdate notifies the server that Paths changed and must be
// re-analyzed.
type IncrementalUpdate struct {
	Paths []string
}

func (IncrementalUpdate) isCommand() {}

// Query is a free-form textual query, e.g. "model_errors(taint/sources.toml)".
type Query struct {
	Text string
}

func (Query) isCommand() {}

// Stop requests graceful shutdown.
type Stop struct{}

func (Stop) isCommand() {}

const (
	kindGetInfo           = "get_info"
	kindDisplayTypeError  = "display_type_error"
	kindIncrementalUpdate = "incremental_update"
	kindQuery             = "query"
	kindStop              = "stop"
)

// envelope is the stable wire shape shared by client and server builds.
// Tags must not change while the variant set is unchanged.
type envelope struct {
	Kind  string   `json:"kind"`
	Paths []string `json:"paths,omitempty"`
	Query string   `json:"query,omitempty"`
}

// EncodeCommand renders a command into its canonical wire form.
func EncodeCommand(cmd Command) ([]byte, error) {
	var env envelope
	switch c := cmd.(type) {
	case GetInfo:
		env.Kind = kindGetInfo
	case DisplayTypeError:
		env.Kind = kindDisplayTypeError
		env.Paths = c.Paths
	case IncrementalUpdate:
		env.Kind = kindIncrementalUpdate
		env.Paths = c.Paths
	case Query:
		env.Kind = kindQuery
		env.Query = c.Text
	case Stop:
		env.Kind = kindStop
	default:
		return nil, fmt.Errorf("unsupported command %T", cmd)
	}
	return json.Marshal(env)
}

// DecodeCommand parses a wire payload back into a command value. Path lists
// decode to non-nil slices so round-tripped values compare structurally equal.
func DecodeCommand(payload []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	switch env.Kind {
	case kindGetInfo:
		return GetInfo{}, nil
	case kindDisplayTypeError:
		return DisplayTypeError{Paths: normalizePaths(env.Paths)}, nil
	case kindIncrementalUpdate:
		return IncrementalUpdate{Paths: normalizePaths(env.Paths)}, nil
	case kindQuery:
		return Query{Text: env.Query}, nil
	case kindStop:
		return Stop{}, nil
	default:
		return nil, fmt.Errorf("unknown command kind %q", env.Kind)
	}
}

func normalizePaths(paths []string) []string {
	if paths == nil {
		return []string{}
	}
	return paths
}

// EqualCommands reports structural equality over the canonical encoding, so a
// nil path list and an empty one compare equal.
func EqualCommands(a, b Command) bool {
	left, err := EncodeCommand(a)
	if err != nil {
		return false
	}
	right, err := EncodeCommand(b)
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}

// HashCommand returns a stable hash usable for deduplication and map keys.
func HashCommand(cmd Command) uint64 {
	payload, err := EncodeCommand(cmd)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	h.Write(payload)
	return h.Sum64()
}
