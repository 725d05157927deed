package tenant

import "github.com/google/uuid"

// IDGenerator abstracts ID generation so that services do not depend on a
// specific UUID implementation.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator is the production IDGenerator, producing random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
