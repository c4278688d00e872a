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

// Package config reads the run configuration from flags and an optional YAML file.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/salesopt/leadassign/assignment"
	"github.com/salesopt/leadassign/cpmodel"
	"github.com/salesopt/leadassign/datagen"
	"gopkg.in/yaml.v3"
)

// Config is the configuration of one run.
type Config struct {
	// Name labels the run in reports.
	Name string `mapstructure:"name"`
	// Preset selects the generated instance family: cp_sat_demo, simple or time_slots.
	Preset string `mapstructure:"preset"`
	Seed   uint64 `mapstructure:"seed"`
	// Leads, Reps and Slots override the sizes of the preset when positive.
	Leads int `mapstructure:"leads"`
	Reps  int `mapstructure:"reps"`
	Slots int `mapstructure:"slots"`

	Mode          string `mapstructure:"mode"`
	Capacity      string `mapstructure:"capacity"`
	Compatibility string `mapstructure:"compatibility"`
	NoPrecheck    bool   `mapstructure:"no_precheck"`

	Timeout         time.Duration `mapstructure:"timeout"`
	Backend         string        `mapstructure:"backend"`
	RelaxationBound bool          `mapstructure:"relaxation_bound"`
	LogSearch       bool          `mapstructure:"log_search"`

	// Instance is the path of a YAML or JSON instance file used instead of generated data.
	Instance string `mapstructure:"instance"`
	// DumpInstance is the path where the instance is written before solving.
	DumpInstance string `mapstructure:"dump_instance"`
	// ExportLP is the path where the model is written in LP format before solving.
	ExportLP string `mapstructure:"export_lp"`
	// Format is the report format: text or json.
	Format      string `mapstructure:"format"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	PushURL     string `mapstructure:"push_url"`
}

// Presets are the names of the generated instance families.
var Presets = map[string]func() datagen.Config{
	"cp_sat_demo": datagen.CPSATDemo,
	"simple":      datagen.SimpleExample,
	"time_slots":  datagen.TimeSlotExample,
}

// Default returns the configuration of the large demo instance.
func Default() *Config {
	return &Config{
		Name:          "leadassign",
		Preset:        "cp_sat_demo",
		Seed:          datagen.DefaultSeed,
		Mode:          assignment.ExactlyOnePerLead.String(),
		Capacity:      assignment.PerPairCapacity.String(),
		Compatibility: assignment.OmitIncompatible.String(),
		Timeout:       cpmodel.DefaultMaxTime,
		Backend:       cpmodel.DefaultBackend,
		Format:        "text",
	}
}

// RegisterFlags binds the fields of c to flags of fs, with the current values of c as
// defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Name, "name", c.Name, "Name of the run in reports.")
	fs.StringVar(&c.Preset, "preset", c.Preset, "Generated instance family: cp_sat_demo, simple or time_slots.")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "Seed of the instance generator.")
	fs.IntVar(&c.Leads, "leads", c.Leads, "Number of leads, overrides the preset when positive.")
	fs.IntVar(&c.Reps, "reps", c.Reps, "Number of reps, overrides the preset when positive.")
	fs.IntVar(&c.Slots, "slots", c.Slots, "Number of time slots, overrides the preset when positive.")
	fs.StringVar(&c.Mode, "mode", c.Mode, "Assignment mode: EXACT_ONE_PER_LEAD, AT_MOST_ONE_PER_REP or BOTH.")
	fs.StringVar(&c.Capacity, "capacity", c.Capacity, "Capacity policy: PER_PAIR or AGGREGATE.")
	fs.StringVar(&c.Compatibility, "compatibility", c.Compatibility, "Incompatible pairs: OMIT or FORBID.")
	fs.BoolVar(&c.NoPrecheck, "no_precheck", c.NoPrecheck, "Always run the solver, even on models proven infeasible by the precheck.")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Wall-clock budget of the solver.")
	fs.StringVar(&c.Backend, "backend", c.Backend, fmt.Sprintf("Solver backend, one of %v.", cpmodel.Backends()))
	fs.BoolVar(&c.RelaxationBound, "relaxation_bound", c.RelaxationBound, "Compute an LP relaxation bound for FEASIBLE results.")
	fs.BoolVar(&c.LogSearch, "log_search", c.LogSearch, "Log the search progress of the backend.")
	fs.StringVar(&c.Instance, "instance", c.Instance, "YAML or JSON instance file used instead of generated data.")
	fs.StringVar(&c.DumpInstance, "dump_instance", c.DumpInstance, "Write the instance to this YAML file.")
	fs.StringVar(&c.ExportLP, "export_lp", c.ExportLP, "Write the model to this file in LP format.")
	fs.StringVar(&c.Format, "format", c.Format, "Report format: text or json.")
	fs.StringVar(&c.MetricsAddr, "metrics_addr", c.MetricsAddr, "Serve Prometheus metrics on this address.")
	fs.StringVar(&c.PushURL, "push_url", c.PushURL, "Push metrics to this Pushgateway URL when the run ends.")
}

// Load parses args into a configuration. When -config names a YAML file, its values
// replace the defaults and the flags given in args replace the file values.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	c := Default()
	c.RegisterFlags(fs)
	path := fs.String("config", "", "YAML configuration file.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path != "" {
		given := map[string]string{}
		fs.Visit(func(f *flag.Flag) {
			if f.Name != "config" {
				given[f.Name] = f.Value.String()
			}
		})
		if err := c.mergeFile(*path); err != nil {
			return nil, err
		}
		for name, value := range given {
			if err := fs.Set(name, value); err != nil {
				return nil, err
			}
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return c.Merge(b)
}

// Merge decodes YAML data over c. Durations are written as strings such as "90s".
func (c *Config) Merge(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// Validate checks every enumerated value.
func (c *Config) Validate() error {
	if _, err := c.Options(); err != nil {
		return err
	}
	if c.Instance == "" {
		if _, ok := Presets[c.Preset]; !ok {
			return fmt.Errorf("unknown preset %q", c.Preset)
		}
	}
	if c.Leads < 0 || c.Reps < 0 || c.Slots < 0 {
		return fmt.Errorf("invalid sizes L=%d, R=%d, T=%d", c.Leads, c.Reps, c.Slots)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %v", c.Timeout)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("unknown format %q, want text or json", c.Format)
	}
	return nil
}

// Options returns the assignment options.
func (c *Config) Options() (assignment.Options, error) {
	mode, err := assignment.ParseMode(c.Mode)
	if err != nil {
		return assignment.Options{}, err
	}
	capacity, err := assignment.ParseCapacityPolicy(c.Capacity)
	if err != nil {
		return assignment.Options{}, err
	}
	compatibility, err := assignment.ParseCompatibility(c.Compatibility)
	if err != nil {
		return assignment.Options{}, err
	}
	return assignment.Options{
		Mode:            mode,
		Capacity:        capacity,
		Compatibility:   compatibility,
		DisablePrecheck: c.NoPrecheck,
		Solver: cpmodel.Parameters{
			MaxTime:                c.Timeout,
			Backend:                c.Backend,
			ComputeRelaxationBound: c.RelaxationBound,
			LogSearchProgress:      c.LogSearch,
		},
	}, nil
}

// Generator returns the datagen configuration of the preset with the size overrides.
func (c *Config) Generator() (datagen.Config, error) {
	preset, ok := Presets[c.Preset]
	if !ok {
		return datagen.Config{}, fmt.Errorf("unknown preset %q", c.Preset)
	}
	g := preset()
	if c.Leads > 0 {
		g.Leads = c.Leads
	}
	if c.Reps > 0 {
		g.Reps = c.Reps
	}
	if c.Slots > 0 {
		g.Slots = c.Slots
		if g.SlotAvailability == 0 {
			g.SlotAvailability = 0.7
		}
	}
	return g, nil
}

// LoadInstance reads a YAML or JSON instance file.
func LoadInstance(path string) (*assignment.Instance, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instance: %w", err)
	}
	inst := &assignment.Instance{}
	if err := yaml.Unmarshal(b, inst); err != nil {
		return nil, fmt.Errorf("parsing instance %s: %w", path, err)
	}
	if err := inst.Validate(); err != nil {
		return nil, fmt.Errorf("instance %s: %w", path, err)
	}
	return inst, nil
}

// WriteInstance writes inst as YAML.
func WriteInstance(path string, inst *assignment.Instance) error {
	b, err := yaml.Marshal(inst)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
