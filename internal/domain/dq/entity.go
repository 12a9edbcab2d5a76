package dq

import "fmt"

// EntityType identifies which survey table a record or issue refers to.
type EntityType string

const (
	EntityHousehold        EntityType = "household"
	EntityPregnancy        EntityType = "pregnancy"
	EntityPregnancyOutcome EntityType = "pregnancy_outcome"
	EntityDeath            EntityType = "death"
)

// EntityTypes lists every supported entity type in batch-run order.
var EntityTypes = []EntityType{
	EntityHousehold,
	EntityPregnancy,
	EntityPregnancyOutcome,
	EntityDeath,
}

func ParseEntityType(s string) (EntityType, error) {
	for _, t := range EntityTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// EntityRef points at one survey record without exposing its fields.
type EntityRef struct {
	EntityType EntityType
	EntityID   uint64
}
