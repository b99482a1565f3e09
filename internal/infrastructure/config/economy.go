package config

import "github.com/andrescamacho/remoteminer-go/internal/domain/economy"

// EconomyConfig mirrors the simulator's constants table
type EconomyConfig struct {
	SourceYieldStandard  float64 `mapstructure:"source_yield_standard" validate:"gt=0"`
	SourceYieldHigh      float64 `mapstructure:"source_yield_high" validate:"gt=0"`
	RegenerationPeriod   float64 `mapstructure:"regeneration_period" validate:"gt=0"`
	RoadDecayPeriod      float64 `mapstructure:"road_decay_period" validate:"gt=0"`
	HarvestPower         float64 `mapstructure:"harvest_power" validate:"gt=0"`
	RepairPower          float64 `mapstructure:"repair_power" validate:"gt=0"`
	WorkerLifetime       float64 `mapstructure:"worker_lifetime" validate:"gt=0"`
	ClaimLifetime        float64 `mapstructure:"claim_lifetime" validate:"gt=0"`
	ContainerDecay       float64 `mapstructure:"container_decay" validate:"gte=0"`
	ContainerDecayPeriod float64 `mapstructure:"container_decay_period" validate:"gt=0"`
	ContainerCapacity    float64 `mapstructure:"container_capacity" validate:"gt=0"`
	TripMultiplier       float64 `mapstructure:"trip_multiplier" validate:"gt=0"`

	PartCost            PartCostConfig `mapstructure:"part_cost"`
	HarvesterCarryParts int            `mapstructure:"harvester_carry_parts" validate:"min=0"`
	HaulerBody          BodyConfig     `mapstructure:"hauler_body"`
	ReserverBody        BodyConfig     `mapstructure:"reserver_body"`
}

// PartCostConfig prices each body part
type PartCostConfig struct {
	Work  float64 `mapstructure:"work" validate:"gte=0"`
	Carry float64 `mapstructure:"carry" validate:"gte=0"`
	Move  float64 `mapstructure:"move" validate:"gte=0"`
	Claim float64 `mapstructure:"claim" validate:"gte=0"`
}

// BodyConfig counts parts of a worker body
type BodyConfig struct {
	Work  int `mapstructure:"work" validate:"min=0"`
	Carry int `mapstructure:"carry" validate:"min=0"`
	Move  int `mapstructure:"move" validate:"min=0"`
	Claim int `mapstructure:"claim" validate:"min=0"`
}

func (b BodyConfig) toBody() economy.Body {
	body := economy.Body{}
	if b.Work > 0 {
		body[economy.PartWork] = b.Work
	}
	if b.Carry > 0 {
		body[economy.PartCarry] = b.Carry
	}
	if b.Move > 0 {
		body[economy.PartMove] = b.Move
	}
	if b.Claim > 0 {
		body[economy.PartClaim] = b.Claim
	}
	return body
}

func bodyConfigFrom(body economy.Body) BodyConfig {
	return BodyConfig{
		Work:  body[economy.PartWork],
		Carry: body[economy.PartCarry],
		Move:  body[economy.PartMove],
		Claim: body[economy.PartClaim],
	}
}

// ToConstants converts the section into the simulator's table
func (e EconomyConfig) ToConstants() economy.Constants {
	return economy.Constants{
		SourceYieldStandard:  e.SourceYieldStandard,
		SourceYieldHigh:      e.SourceYieldHigh,
		RegenerationPeriod:   e.RegenerationPeriod,
		RoadDecayPeriod:      e.RoadDecayPeriod,
		HarvestPower:         e.HarvestPower,
		RepairPower:          e.RepairPower,
		WorkerLifetime:       e.WorkerLifetime,
		ClaimLifetime:        e.ClaimLifetime,
		ContainerDecay:       e.ContainerDecay,
		ContainerDecayPeriod: e.ContainerDecayPeriod,
		ContainerCapacity:    e.ContainerCapacity,
		PartCost: map[economy.BodyPart]float64{
			economy.PartWork:  e.PartCost.Work,
			economy.PartCarry: e.PartCost.Carry,
			economy.PartMove:  e.PartCost.Move,
			economy.PartClaim: e.PartCost.Claim,
		},
		HarvesterCarryParts: e.HarvesterCarryParts,
		HaulerBody:          e.HaulerBody.toBody(),
		ReserverBody:        e.ReserverBody.toBody(),
		TripMultiplier:      e.TripMultiplier,
	}
}

// economyDefaults fills zero fields from the stock world rules
func economyDefaults(e *EconomyConfig) {
	d := economy.DefaultConstants()

	setFloat := func(field *float64, value float64) {
		if *field == 0 {
			*field = value
		}
	}
	setFloat(&e.SourceYieldStandard, d.SourceYieldStandard)
	setFloat(&e.SourceYieldHigh, d.SourceYieldHigh)
	setFloat(&e.RegenerationPeriod, d.RegenerationPeriod)
	setFloat(&e.RoadDecayPeriod, d.RoadDecayPeriod)
	setFloat(&e.HarvestPower, d.HarvestPower)
	setFloat(&e.RepairPower, d.RepairPower)
	setFloat(&e.WorkerLifetime, d.WorkerLifetime)
	setFloat(&e.ClaimLifetime, d.ClaimLifetime)
	setFloat(&e.ContainerDecay, d.ContainerDecay)
	setFloat(&e.ContainerDecayPeriod, d.ContainerDecayPeriod)
	setFloat(&e.ContainerCapacity, d.ContainerCapacity)
	setFloat(&e.TripMultiplier, d.TripMultiplier)

	if e.PartCost == (PartCostConfig{}) {
		e.PartCost = PartCostConfig{
			Work:  d.PartCost[economy.PartWork],
			Carry: d.PartCost[economy.PartCarry],
			Move:  d.PartCost[economy.PartMove],
			Claim: d.PartCost[economy.PartClaim],
		}
	}
	if e.HarvesterCarryParts == 0 {
		e.HarvesterCarryParts = d.HarvesterCarryParts
	}
	if e.HaulerBody == (BodyConfig{}) {
		e.HaulerBody = bodyConfigFrom(d.HaulerBody)
	}
	if e.ReserverBody == (BodyConfig{}) {
		e.ReserverBody = bodyConfigFrom(d.ReserverBody)
	}
}
