// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package datagen generates random assignment instances.
//
// Every generator draws from an explicit *rand.Rand, so that a seed fully determines
// the instance and concurrent generators never share state.
package datagen

import (
	"errors"
	"fmt"
	"math/rand/v2"

	log "github.com/golang/glog"
	"github.com/salesopt/leadassign/assignment"
	"gonum.org/v1/gonum/stat/distuv"
)

// Range is the half-open interval [Min, Max) of uniformly drawn integers.
type Range struct {
	Min int64 `yaml:"min" json:"min" mapstructure:"min"`
	Max int64 `yaml:"max" json:"max" mapstructure:"max"`
}

func (r Range) draw(rng *rand.Rand) int64 {
	return r.Min + rng.Int64N(r.Max-r.Min)
}

func (r Range) check(name string, min int64) error {
	if r.Min < min || r.Max <= r.Min {
		return fmt.Errorf("invalid %s range [%d,%d), want %d <= min < max", name, r.Min, r.Max, min)
	}
	return nil
}

// Config describes the distribution of generated instances.
type Config struct {
	Leads int `yaml:"leads" json:"leads" mapstructure:"leads"`
	Reps  int `yaml:"reps" json:"reps" mapstructure:"reps"`
	// Slots is the number of time slots, zero for no time slots.
	Slots  int   `yaml:"slots" json:"slots" mapstructure:"slots"`
	Profit Range `yaml:"profit" json:"profit" mapstructure:"profit"`
	// Availability is the probability of a permitted pair, zero for no availability matrix.
	Availability float64 `yaml:"availability" json:"availability" mapstructure:"availability"`
	// Capacity enables the Demand and Capacity ranges.
	Capacity      bool  `yaml:"capacity" json:"capacity" mapstructure:"capacity"`
	DemandRange   Range `yaml:"demand_range" json:"demand_range" mapstructure:"demand_range"`
	CapacityRange Range `yaml:"capacity_range" json:"capacity_range" mapstructure:"capacity_range"`
	// SlotAvailability is the probability that a rep is available at a slot.
	SlotAvailability float64 `yaml:"slot_availability" json:"slot_availability" mapstructure:"slot_availability"`
}

// CPSATDemo is the large instance family: 1000 leads, 1000 reps, profits in [1,100),
// 70% permitted pairs, demands in [10,1000) and capacities in [200,500).
func CPSATDemo() Config {
	return Config{
		Leads:         1000,
		Reps:          1000,
		Profit:        Range{1, 100},
		Availability:  0.7,
		Capacity:      true,
		DemandRange:   Range{10, 1000},
		CapacityRange: Range{200, 500},
	}
}

// SimpleExample is 5 leads and 7 reps with profits in [1,10).
func SimpleExample() Config {
	return Config{Leads: 5, Reps: 7, Profit: Range{1, 10}}
}

// TimeSlotExample is 3 leads, 5 reps and 2 time slots with profits in [1,10) and reps
// available at a slot with probability 0.7.
func TimeSlotExample() Config {
	return Config{Leads: 3, Reps: 5, Slots: 2, Profit: Range{1, 10}, SlotAvailability: 0.7}
}

// Default seeds of the instance families.
const (
	DefaultSeed         uint64 = 42
	DefaultTimeSlotSeed uint64 = 43
)

// NewRand returns a PCG generator seeded with seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Validate checks the sizes, ranges and probabilities.
func (c *Config) Validate() error {
	if c.Leads < 0 || c.Reps < 0 || c.Slots < 0 {
		return fmt.Errorf("invalid sizes L=%d, R=%d, T=%d", c.Leads, c.Reps, c.Slots)
	}
	if err := c.Profit.check("profit", 0); err != nil {
		return err
	}
	if c.Availability < 0 || c.Availability > 1 {
		return fmt.Errorf("availability probability %v not in [0,1]", c.Availability)
	}
	if c.Capacity {
		if err := c.DemandRange.check("demand", 0); err != nil {
			return err
		}
		if err := c.CapacityRange.check("capacity", 1); err != nil {
			return err
		}
	}
	if c.Slots > 0 && (c.SlotAvailability < 0 || c.SlotAvailability > 1) {
		return fmt.Errorf("slot availability probability %v not in [0,1]", c.SlotAvailability)
	}
	if c.Slots == 0 && c.SlotAvailability != 0 {
		return errors.New("slot availability given without slots")
	}
	return nil
}

// Generate draws an instance. Matrices are drawn in a fixed order (profit,
// availability, demand, capacity, lead slots, rep slot availability) so that adding
// an optional part never changes the parts drawn before it.
func Generate(rng *rand.Rand, c Config) (*assignment.Instance, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	inst := &assignment.Instance{Profit: matrix(c.Leads, c.Reps, func() int64 { return c.Profit.draw(rng) })}
	if c.Availability > 0 {
		inst.Availability = bernoulliMatrix(rng, c.Leads, c.Reps, c.Availability)
	}
	if c.Capacity {
		inst.Demand = matrix(c.Leads, c.Reps, func() int64 { return c.DemandRange.draw(rng) })
		inst.Capacity = make([]int64, c.Reps)
		for j := range inst.Capacity {
			inst.Capacity[j] = c.CapacityRange.draw(rng)
		}
	}
	if c.Slots > 0 {
		inst.LeadSlot = make([]int, c.Leads)
		for i := range inst.LeadSlot {
			inst.LeadSlot[i] = rng.IntN(c.Slots)
		}
		inst.RepSlotAvailability = bernoulliMatrix(rng, c.Reps, c.Slots, c.SlotAvailability)
	}
	log.V(1).Infof("generated instance L=%d, R=%d, T=%d", c.Leads, c.Reps, c.Slots)
	return inst, nil
}

func matrix(rows, cols int, draw func() int64) [][]int64 {
	m := make([][]int64, rows)
	for i := range m {
		m[i] = make([]int64, cols)
		for j := range m[i] {
			m[i][j] = draw()
		}
	}
	return m
}

func bernoulliMatrix(rng *rand.Rand, rows, cols int, p float64) [][]int64 {
	b := distuv.Bernoulli{P: p, Src: rng}
	return matrix(rows, cols, func() int64 { return int64(b.Rand()) })
}

// LogInstance logs every entry of the instance at verbosity 1, as e[i][j]=v lines.
func LogInstance(inst *assignment.Instance) {
	log.Infof("L=%d", inst.NumLeads())
	log.Infof("R=%d", inst.NumReps())
	if inst.HasTimeSlots() {
		log.Infof("T=%d", inst.NumSlots())
	}
	if !log.V(1) {
		return
	}
	logMatrix("e", inst.Profit)
	logMatrix("A", inst.Availability)
	logMatrix("D", inst.Demand)
	for j, m := range inst.Capacity {
		log.Infof("M[%d]=%d", j, m)
	}
	for i, s := range inst.LeadSlot {
		log.Infof("t[s[%d]]=%d", i, s)
	}
	logMatrix("a", inst.RepSlotAvailability)
}

func logMatrix(name string, m [][]int64) {
	for i, row := range m {
		for j, v := range row {
			log.Infof("%s[%d][%d]=%d", name, i, j, v)
		}
	}
}
