package remote

import (
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// ThreatLevel is the last observed danger in a remote zone
type ThreatLevel string

const (
	ThreatSafe              ThreatLevel = "SAFE"
	ThreatInvaderCore       ThreatLevel = "ENEMY_INVADER_CORE"
	ThreatEnemyAttackCreeps ThreatLevel = "ENEMY_ATTACK_CREEPS"
)

// IsValid reports whether t is a known threat level
func (t ThreatLevel) IsValid() bool {
	switch t {
	case ThreatSafe, ThreatInvaderCore, ThreatEnemyAttackCreeps:
		return true
	}
	return false
}

// ReservationStatus is the health of our reservation on an ordinary zone
type ReservationStatus string

const (
	ReservationStable     ReservationStatus = "STABLE"
	ReservationLow        ReservationStatus = "LOW"
	ReservationUnreserved ReservationStatus = "UNRESERVED"
)

const (
	// reservationLowBelow and reservationStableAbove are reservation ticks
	// thresholds; between them the status is left as is
	reservationLowBelow    = 1000
	reservationStableAbove = 4500
)

// ZoneMetadata is long-lived knowledge about a zone that hosts (or hosted) an
// assignment. Created on the first claim into the zone, never deleted.
type ZoneMetadata struct {
	Zone        string
	ThreatLevel ThreatLevel

	// Ordinary zones
	ReservationState *ReservationStatus
	Reserver         *string

	// Guarded zones
	KeeperExterminator *string

	// Guarded and resource-rich zones
	MineralMiner       *string
	MineralAvailableAt *int
}

// NewZoneMetadata builds the initial record for a zone based on its classification
func NewZoneMetadata(zone string, tick int) *ZoneMetadata {
	md := &ZoneMetadata{Zone: zone, ThreatLevel: ThreatSafe}

	guarded := territory.IsGuardedZone(zone)
	rich := territory.IsResourceRichZone(zone)

	if guarded {
		md.KeeperExterminator = strPtr(Unassigned)
	} else if !rich {
		low := ReservationLow
		md.ReservationState = &low
		md.Reserver = strPtr(Unassigned)
	}

	if guarded || rich {
		md.MineralMiner = strPtr(Unassigned)
		at := tick
		md.MineralAvailableAt = &at
	}

	return md
}

// RequiresReservation reports whether the zone is kept reserved
func (m *ZoneMetadata) RequiresReservation() bool {
	return m.ReservationState != nil
}

// ObserveReservation updates reservation health from the remaining reservation
// ticks and reports whether the status changed
func (m *ZoneMetadata) ObserveReservation(ticksToEnd int) bool {
	if !m.RequiresReservation() {
		return false
	}

	next := *m.ReservationState
	switch {
	case ticksToEnd <= 0:
		next = ReservationUnreserved
	case ticksToEnd < reservationLowBelow:
		next = ReservationLow
	case ticksToEnd > reservationStableAbove:
		next = ReservationStable
	}

	if next == *m.ReservationState {
		return false
	}
	m.ReservationState = &next
	return true
}

// SetThreat records a new threat level
func (m *ZoneMetadata) SetThreat(level ThreatLevel) bool {
	if m.ThreatLevel == level {
		return false
	}
	m.ThreatLevel = level
	return true
}

func strPtr(s string) *string { return &s }
