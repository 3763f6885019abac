package app

import (
	"fmt"

	"gopkg.in/gcfg.v1"

	G "github.com/cbhe/SPH-1/geometry"
	"github.com/cbhe/SPH-1/sim"
)

//Cluster configuration, gcfg INI format. Every field has a working default;
//a config file only overrides what it names. Example:
//
//	[simulation]
//	procs = 5
//	domain-width = 20
//
//	[fluid]
//	smoothing-radius = 0.5

type Config struct {
	Simulation struct {
		Procs          int     //Total ranks including the coordinator
		DomainWidth    float64 `gcfg:"domain-width"`
		DomainHeight   float64 `gcfg:"domain-height"`
		ParticlesX     int     `gcfg:"particles-x"`
		ParticlesY     int     `gcfg:"particles-y"`
		FillHeight     float64 `gcfg:"fill-height"`
		StepsPerFrame  int     `gcfg:"steps-per-frame"`
		CapacityFactor float64 `gcfg:"capacity-factor"`
	}
	Fluid struct {
		SmoothingRadius float64 `gcfg:"smoothing-radius"`
		RestDensity     float64 `gcfg:"rest-density"`
		Gravity         float64
		K               float64
		Dq              float64 //0 defaults to 0.3 * smoothing radius
		Viscosity       float64
		TimeStep        float64 `gcfg:"time-step"`
		Mass            float64 //0 derives mass from rest density and fill
	}
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Simulation.Procs = 3
	cfg.Simulation.DomainWidth = 20
	cfg.Simulation.DomainHeight = 10
	cfg.Simulation.ParticlesX = 100
	cfg.Simulation.ParticlesY = 40
	cfg.Simulation.FillHeight = 5
	cfg.Simulation.StepsPerFrame = 2
	cfg.Simulation.CapacityFactor = 2.0
	cfg.Fluid.SmoothingRadius = 0.5
	cfg.Fluid.RestDensity = 1.0
	cfg.Fluid.Gravity = 9.0
	cfg.Fluid.K = 0.1
	cfg.Fluid.Viscosity = 0.1
	cfg.Fluid.TimeStep = 1.0 / 60.0
	return cfg
}

//ReadConfig - Loads overrides from an INI file on top of the defaults
func ReadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := gcfg.ReadFileInto(cfg, path); err != nil {
		return nil, fmt.Errorf("config %s: %v", path, err)
	}
	return cfg, nil
}

//Validate - The fatal init checks: degenerate domain, too few ranks, or a
//slab too narrow to carry its halo band at the chosen smoothing radius.
func (cfg *Config) Validate() error {
	s := &cfg.Simulation
	f := &cfg.Fluid
	if s.Procs < 2 {
		return fmt.Errorf("config: need at least 2 ranks (1 coordinator + 1 worker), have %d", s.Procs)
	}
	if s.DomainWidth <= 0 || s.DomainHeight <= 0 {
		return fmt.Errorf("config: domain %vx%v is degenerate", s.DomainWidth, s.DomainHeight)
	}
	if s.ParticlesX <= 0 || s.ParticlesY <= 0 {
		return fmt.Errorf("config: particle fill %dx%d is empty", s.ParticlesX, s.ParticlesY)
	}
	if s.FillHeight <= 0 || s.FillHeight > s.DomainHeight {
		return fmt.Errorf("config: fill height %v outside (0, %v]", s.FillHeight, s.DomainHeight)
	}
	if s.StepsPerFrame < 1 {
		return fmt.Errorf("config: steps per frame %d below 1", s.StepsPerFrame)
	}
	if s.CapacityFactor < 1 {
		return fmt.Errorf("config: capacity factor %v below 1", s.CapacityFactor)
	}
	if f.SmoothingRadius <= 0 || f.TimeStep <= 0 {
		return fmt.Errorf("config: smoothing radius and time step must be positive")
	}
	workers := s.Procs - 1
	slab := s.DomainWidth / float64(workers)
	if slab < sim.MIN_SLAB_FACTOR*f.SmoothingRadius {
		return fmt.Errorf("config: slab width %v below %v times smoothing radius %v", slab, sim.MIN_SLAB_FACTOR, f.SmoothingRadius)
	}
	return nil
}

//Settings - Converts the validated config into the shared cluster settings.
//Derived values: dq defaults to 0.3h; particle mass defaults to the value
//that makes the initial fill sit at rest density under the normalized
//kernel.
func (cfg *Config) Settings() sim.Settings {
	s := &cfg.Simulation
	f := &cfg.Fluid

	dq := f.Dq
	if dq == 0 {
		dq = 0.3 * f.SmoothingRadius
	}
	mass := f.Mass
	if mass == 0 {
		fillArea := s.DomainWidth * s.FillHeight
		mass = f.RestDensity * fillArea / float64(s.ParticlesX*s.ParticlesY)
	}

	return sim.Settings{
		Boundary:       G.InitAABB(float32(s.DomainWidth), float32(s.DomainHeight)),
		ParticlesX:     s.ParticlesX,
		ParticlesY:     s.ParticlesY,
		FillHeight:     float32(s.FillHeight),
		CapacityFactor: float32(s.CapacityFactor),
		ParticleMass:   float32(mass),
		Initial: sim.Tunables{
			Gravity:         float32(f.Gravity),
			SmoothingRadius: float32(f.SmoothingRadius),
			K:               float32(f.K),
			Dq:              float32(dq),
			RestDensity:     float32(f.RestDensity),
			Viscosity:       float32(f.Viscosity),
			TimeStep:        float32(f.TimeStep),
			MoverRadius:     0,
			MoverCenterX:    -1,
			MoverCenterY:    -1,
			StepsPerFrame:   s.StepsPerFrame,
		},
	}
}
