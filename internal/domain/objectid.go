package domain

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// ObjectID is a 12-byte identifier rendered as 24 hex characters. Chunks and
// knowledge bases are both identified this way by the enclosing service.
type ObjectID [12]byte

// NilObjectID is the zero ObjectID
var NilObjectID ObjectID

var (
	objectIDCounter = randomCounter()
	processUnique   = randomProcessUnique()
)

// NewObjectID generates a new ObjectID from the current time, a per-process
// random value and an incrementing counter.
func NewObjectID() ObjectID {
	return newObjectIDFromTime(time.Now())
}

func newObjectIDFromTime(t time.Time) ObjectID {
	var id ObjectID
	binary.BigEndian.PutUint32(id[0:4], uint32(t.Unix()))
	copy(id[4:9], processUnique[:])
	c := atomic.AddUint32(&objectIDCounter, 1)
	id[9] = byte(c >> 16)
	id[10] = byte(c >> 8)
	id[11] = byte(c)
	return id
}

// ParseObjectID parses a 24-character hex string
func ParseObjectID(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != 24 {
		return NilObjectID, ErrInvalidObjectID.WithCause(fmt.Errorf("expected 24 hex characters, got %d", len(s)))
	}
	if _, err := hex.Decode(id[:], []byte(strings.ToLower(s))); err != nil {
		return NilObjectID, ErrInvalidObjectID.WithCause(err)
	}
	return id, nil
}

// MustParseObjectID is like ParseObjectID but panics on error.
func MustParseObjectID(s string) ObjectID {
	id, err := ParseObjectID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Hex returns the canonical lower-case representation.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id ObjectID) String() string {
	return id.Hex()
}

// IsZero reports whether id is the NilObjectID.
func (id ObjectID) IsZero() bool {
	return id == NilObjectID
}

// Timestamp returns the creation time encoded in the first 4 bytes.
func (id ObjectID) Timestamp() time.Time {
	return time.Unix(int64(binary.BigEndian.Uint32(id[0:4])), 0).UTC()
}

// MarshalText implements encoding.TextMarshaler
func (id ObjectID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *ObjectID) UnmarshalText(b []byte) error {
	parsed, err := ParseObjectID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func randomCounter() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("cannot initialize object id counter: %w", err))
	}
	return binary.BigEndian.Uint32(b[:]) & 0x00ffffff
}

func randomProcessUnique() [5]byte {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("cannot initialize object id process value: %w", err))
	}
	return b
}
