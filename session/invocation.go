package session

import (
	"encoding/json"
	"time"

	"github.com/viant/jsonrpc"
)

// Status is the outcome of a tools/call request.
type Status string

const (
	Pending   Status = "pending"
	Succeeded Status = "succeeded"
	Failed    Status = "failed"
)

// Invocation tracks one tools/call request and its correlated response.
type Invocation struct {
	ID          string
	Tool        string
	Arguments   map[string]interface{}
	Status      Status
	Result      json.RawMessage
	Error       *jsonrpc.Error
	SentAt      time.Time
	CompletedAt time.Time
}

func (i *Invocation) clone() Invocation {
	ret := *i
	if i.Arguments != nil {
		ret.Arguments = make(map[string]interface{}, len(i.Arguments))
		for k, v := range i.Arguments {
			ret.Arguments[k] = v
		}
	}
	return ret
}
