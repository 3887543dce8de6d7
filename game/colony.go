package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/landscaper/components"
	"github.com/pthm-cable/landscaper/systems"
)

// spawnColony picks the home cell and creates every ant on it, or on its
// own random cell when IndividualStart is set.
func (s *Simulation) spawnColony() error {
	c := s.settings.Colony

	if c.Home != nil {
		if !s.field.Playable(*c.Home) {
			return invalid("home %v outside playable area of a %dx%d field", *c.Home, s.field.Dim(), s.field.Dim())
		}
		s.colony = *c.Home
	} else {
		s.colony = s.field.RandomCell(s.rng)
	}

	s.world = ecs.NewWorld()
	s.antMap = ecs.NewMap3[components.Position, components.Colony, components.Cargo](s.world)
	s.cargoFilter = ecs.NewFilter1[components.Cargo](s.world)

	s.order = make([]ecs.Entity, 0, c.Ants)
	for i := 0; i < c.Ants; i++ {
		start := s.colony
		if c.IndividualStart {
			start = s.field.RandomCell(s.rng)
		}
		e := s.antMap.NewEntity(
			&components.Position{Cell: start},
			&components.Colony{Home: s.colony},
			&components.Cargo{},
		)
		s.order = append(s.order, e)
	}
	return nil
}

// updateAnt runs one ant through the forage/return state machine. Both
// transitions keep the ant in place; otherwise it moves one cell and digs.
func (s *Simulation) updateAnt(pos *components.Position, col *components.Colony, cargo *components.Cargo) {
	current := pos.Cell
	moves := s.field.Neighbors(current, 1, s.settings.Policy.AllowStay)

	var next components.Cell
	var dig float64

	if cargo.Carrying() {
		if current == col.Home {
			cargo.Food = nil
			s.collector.RecordDelivery()
			s.collector.RecordStay()
			return
		}
		next = systems.ChooseNext(s.field, current, moves, systems.Returning{Destination: col.Home}, s.settings.Policy, s.rng)
		systems.LayTrail(s.field, current, col.Home, cargo.Food.Cell, s.settings.Pheromone)
		dig = s.settings.Dig.Food
	} else {
		sensed := s.field.Neighbors(current, s.settings.Colony.SenseRadius, true)
		if food := s.field.FoodNear(sensed); food != nil && food.TakeBite() {
			cargo.Food = food
			s.collector.RecordBite()
			s.collector.RecordStay()
			return
		}
		next = systems.ChooseNext(s.field, current, moves, systems.Exploring{}, s.settings.Policy, s.rng)
		dig = s.settings.Dig.NoFood
	}

	if next == current {
		s.collector.RecordStay()
		return
	}
	systems.Excavate(s.field, current, next, dig)
	pos.Cell = next
	s.collector.RecordMove()
}
