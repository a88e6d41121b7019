package redis

import (
	"fmt"

	"github.com/hamsterrace/raceboard/internal/model"
)

// Key prefix for all raceboard data
const keyPrefix = "raceboard"

// sessionKey returns the Redis key for a Session, addressed by its token
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// raceSessionKey returns the Redis key for an identity's in-flight race. The
// value is a hash with fields raceIDField and raceDataField.
func raceSessionKey(id model.IdentityID) string {
	return fmt.Sprintf("%s:race:%s", keyPrefix, id)
}

const (
	raceIDField   = "id"
	raceDataField = "data"
)
