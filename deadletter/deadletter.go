// Package deadletter records items whose worker function failed, so that a
// failing worker is observable instead of silently stalling throughput.
package deadletter

import (
	"context"
	"fmt"
	"time"

	"github.com/jirevwe/liteworker/packer"
	"github.com/oklog/ulid/v2"
)

// Letter is a single failed item.
type Letter struct {
	Id       string    `json:"id" db:"id"`
	Worker   string    `json:"worker" db:"worker"`
	Payload  []byte    `json:"payload" db:"payload"`
	Error    string    `json:"error" db:"error"`
	FailedAt time.Time `json:"failed_at" db:"failed_at"`
}

// Store persists Letters.
type Store interface {
	Record(ctx context.Context, letter *Letter) error
}

// New builds a Letter for item. Items msgpack cannot encode are stored
// as their %+v rendering.
func New(worker string, item any, cause error) *Letter {
	payload, err := packer.EncodeMessage(item)
	if err != nil {
		payload = []byte(fmt.Sprintf("%+v", item))
	}

	letter := &Letter{
		Id:       ulid.Make().String(),
		Worker:   worker,
		Payload:  payload,
		FailedAt: time.Now().UTC(),
	}
	if cause != nil {
		letter.Error = cause.Error()
	}

	return letter
}

// Decode unpacks the letter's payload into v.
func (l *Letter) Decode(v any) error {
	return packer.DecodeMessage(l.Payload, v)
}
