// Package idx mints ULID identifiers. Account ids and session token ids are
// ULIDs, so they sort by the time they were issued.
package idx

import (
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

func (id ID) String() string { return string(id) }

// ErrInvalid reports a string that is not a canonical ULID.
var ErrInvalid = errors.New("idx: invalid ulid")

// Generator mints an id stamped with at. Services hold one so tests can pin
// the ids they expect.
type Generator func(at time.Time) ID

// monotonic serialises access to a monotonic entropy source, so ids minted
// within the same millisecond still sort in the order they were handed out.
type monotonic struct {
	mu      sync.Mutex
	entropy io.Reader
}

var source = sync.OnceValue(func() *monotonic {
	return &monotonic{entropy: ulid.Monotonic(rand.Reader, 0)}
})

func (m *monotonic) mint(at time.Time) ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(at), m.entropy).String())
}

// NewAt mints an id stamped with at.
func NewAt(at time.Time) ID {
	return source().mint(at.UTC())
}

// New mints an id stamped with the current time.
func New() ID {
	return NewAt(time.Now())
}

// Sequence hands out ids in order and mints fresh ones once they run out.
func Sequence(ids ...string) Generator {
	var (
		mu   sync.Mutex
		next int
	)
	return func(at time.Time) ID {
		mu.Lock()
		defer mu.Unlock()
		if next == len(ids) {
			return NewAt(at)
		}
		next++
		return ID(ids[next-1])
	}
}

// Parse accepts a canonical ULID, ignoring surrounding whitespace.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if _, err := ulid.ParseStrict(s); err != nil {
		return "", ErrInvalid
	}
	return ID(s), nil
}

// Time reports when id was minted. ok is false when id is not a ULID.
func (id ID) Time() (t time.Time, ok bool) {
	u, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(u.Time()).UTC(), true
}
