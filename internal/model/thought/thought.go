package thought

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListLimit caps how many thoughts the public listing returns.
const ListLimit = 20

var (
	ErrNotFound         = errors.New("thought not found")
	ErrDuplicateMessage = errors.New("message already exists")
	ErrMalformedID      = errors.New("malformed thought id")
)

// ID is the canonical lower-case hex form of a document-store object id.
type ID string

// NewID allocates a fresh identifier.
func NewID() ID {
	return ID(primitive.NewObjectID().Hex())
}

// ParseID validates a client-supplied identifier without touching the store.
func ParseID(raw string) (ID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrMalformedID
	}
	return ID(oid.Hex()), nil
}

func (id ID) String() string { return string(id) }

// Thought is a short message on the public wall.
type Thought struct {
	ID        ID     `json:"_id"`
	Message   string `json:"message"`
	Hearts    int    `json:"hearts"`
	CreatedAt int64  `json:"createdAt"`
}

// New builds a thought ready for insertion. The message is expected to be
// the normalized output of Validate.
func New(message string, now time.Time) Thought {
	return Thought{
		ID:        NewID(),
		Message:   message,
		Hearts:    0,
		CreatedAt: now.UnixMilli(),
	}
}
