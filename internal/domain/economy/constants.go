package economy

import (
	"fmt"
)

// BodyPart is a worker body part type
type BodyPart string

const (
	PartWork  BodyPart = "work"
	PartCarry BodyPart = "carry"
	PartMove  BodyPart = "move"
	PartClaim BodyPart = "claim"
)

// Body is a part composition
type Body map[BodyPart]int

// Cost prices the body with the given part cost table
func (b Body) Cost(prices map[BodyPart]float64) float64 {
	total := 0.0
	for part, count := range b {
		total += float64(count) * prices[part]
	}
	return total
}

// Constants is the named configuration table for every economic formula.
// All upkeep figures are expressed per regeneration period.
type Constants struct {
	SourceYieldStandard float64
	SourceYieldHigh     float64

	RegenerationPeriod float64
	RoadDecayPeriod    float64

	HarvestPower float64
	RepairPower  float64

	WorkerLifetime float64
	ClaimLifetime  float64

	ContainerDecay       float64
	ContainerDecayPeriod float64
	ContainerCapacity    float64

	PartCost map[BodyPart]float64

	// HarvesterCarryParts is the fixed carry allocation of a harvester; work and
	// move parts are derived from the yield
	HarvesterCarryParts int

	HaulerBody   Body
	ReserverBody Body

	// TripMultiplier approximates a hauler round trip as a multiple of the road
	// length (two ticks per loaded step out, one tick per step back)
	TripMultiplier float64
}

// DefaultConstants returns the stock world rules
func DefaultConstants() Constants {
	return Constants{
		SourceYieldStandard:  3000,
		SourceYieldHigh:      4000,
		RegenerationPeriod:   300,
		RoadDecayPeriod:      1000,
		HarvestPower:         2,
		RepairPower:          100,
		WorkerLifetime:       1500,
		ClaimLifetime:        600,
		ContainerDecay:       5000,
		ContainerDecayPeriod: 100,
		ContainerCapacity:    2000,
		PartCost: map[BodyPart]float64{
			PartWork:  100,
			PartCarry: 50,
			PartMove:  50,
			PartClaim: 600,
		},
		HarvesterCarryParts: 1,
		HaulerBody:          Body{PartWork: 2, PartCarry: 38, PartMove: 10},
		ReserverBody:        Body{PartClaim: 1, PartMove: 1},
		TripMultiplier:      3,
	}
}

// Validate checks every divisor and price is usable
func (c Constants) Validate() error {
	positive := map[string]float64{
		"source_yield_standard":  c.SourceYieldStandard,
		"source_yield_high":      c.SourceYieldHigh,
		"regeneration_period":    c.RegenerationPeriod,
		"road_decay_period":      c.RoadDecayPeriod,
		"harvest_power":          c.HarvestPower,
		"repair_power":           c.RepairPower,
		"worker_lifetime":        c.WorkerLifetime,
		"claim_lifetime":         c.ClaimLifetime,
		"container_decay_period": c.ContainerDecayPeriod,
		"container_capacity":     c.ContainerCapacity,
		"trip_multiplier":        c.TripMultiplier,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("economy constant %s must be > 0, got %v", name, v)
		}
	}

	for _, part := range []BodyPart{PartWork, PartCarry, PartMove, PartClaim} {
		if c.PartCost[part] < 0 {
			return fmt.Errorf("part cost for %s must be >= 0", part)
		}
	}

	if c.HarvesterCarryParts < 0 {
		return fmt.Errorf("harvester carry parts must be >= 0, got %d", c.HarvesterCarryParts)
	}

	return nil
}
