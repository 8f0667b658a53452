package task

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces task identifiers. Each call consumes one identifier.
type IDGenerator interface {
	NewID() string
}

// ID schemes selectable from config.
const (
	SchemeToken = "token"
	SchemeULID  = "ulid"
	SchemeUUID  = "uuid"
)

// Schemes lists the supported id schemes.
var Schemes = []string{SchemeToken, SchemeULID, SchemeUUID}

// NewGenerator returns the generator for scheme. An empty scheme means token.
func NewGenerator(scheme string) (IDGenerator, error) {
	switch strings.ToLower(scheme) {
	case "", SchemeToken:
		return TokenGenerator{}, nil
	case SchemeULID:
		return ULIDGenerator{}, nil
	case SchemeUUID:
		return UUIDGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q (want one of %s)", scheme, strings.Join(Schemes, ", "))
	}
}

const (
	tokenLength   = 9
	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// TokenGenerator yields short lowercase base36 tokens. Uniqueness is only
// probabilistic; callers re-draw on collision.
type TokenGenerator struct{}

// NewID implements IDGenerator.
func (TokenGenerator) NewID() string {
	var sb strings.Builder
	sb.Grow(tokenLength)
	limit := big.NewInt(int64(len(tokenAlphabet)))
	for range tokenLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(fmt.Sprintf("reading random source: %v", err))
		}
		sb.WriteByte(tokenAlphabet[n.Int64()])
	}
	return sb.String()
}

// ULIDGenerator yields lexically sortable ULIDs.
type ULIDGenerator struct{}

// NewID implements IDGenerator.
func (ULIDGenerator) NewID() string {
	return strings.ToLower(ulid.MustNew(ulid.Now(), rand.Reader).String())
}

// UUIDGenerator yields random v4 UUIDs.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequenceGenerator replays a fixed list of ids, then falls back to
// "<prefix><n>". It makes id allocation deterministic in tests and scripts.
type SequenceGenerator struct {
	IDs    []string
	Prefix string
	n      int
}

// NewID implements IDGenerator.
func (g *SequenceGenerator) NewID() string {
	defer func() { g.n++ }()
	if g.n < len(g.IDs) {
		return g.IDs[g.n]
	}
	prefix := g.Prefix
	if prefix == "" {
		prefix = "t"
	}
	return fmt.Sprintf("%s%d", prefix, g.n+1)
}
