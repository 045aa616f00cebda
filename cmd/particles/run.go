package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"particle-sim/internal/commands"
	"particle-sim/internal/debug"
	"particle-sim/internal/engineconfig"
	"particle-sim/internal/env"
	"particle-sim/internal/logger"
	"particle-sim/internal/physics"
	"particle-sim/internal/population"
)

// options are the flags shared by run and config. Only flags the user set override
// the file and environment.
type options struct {
	configPath string
	envPath    string
	ticks      int
	dt         float64
	seed       int64
	count      int
	gravity    bool
	policy     string
	scene      bool
	set        map[string]bool
}

func (o *options) bind(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", engineconfig.ConfigPath, "YAML config file")
	fs.StringVar(&o.envPath, "env", ".env", "dotenv file loaded before PARTICLES_* overrides")
	fs.IntVar(&o.ticks, "ticks", 0, "number of ticks to run (0 runs until interrupted)")
	fs.Float64Var(&o.dt, "dt", 0, "elapsed seconds per tick, before the time factor")
	fs.Int64Var(&o.seed, "seed", 0, "population seed (0 is time based)")
	fs.IntVar(&o.count, "count", 0, "random population size")
	fs.BoolVar(&o.gravity, "gravity", false, "enable mutual gravity")
	fs.StringVar(&o.policy, "policy", "", "collision separation policy: push_back or time_backtrack")
	fs.BoolVar(&o.scene, "scene", false, "use the single diagonal bouncing body instead of a random population")
}

// load resolves the effective configuration: defaults, file, .env and environment, flags.
func (o *options) load(fs *flag.FlagSet) (engineconfig.Config, error) {
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if err := env.Load(o.envPath); err != nil {
		return engineconfig.Config{}, err
	}
	cfg, err := engineconfig.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if o.set["ticks"] {
		cfg.Driver.Ticks = o.ticks
	}
	if o.set["dt"] {
		cfg.Driver.Dt = o.dt
	}
	if o.set["seed"] {
		cfg.Population.Seed = o.seed
	}
	if o.set["count"] {
		cfg.Population.Count = o.count
	}
	if o.set["gravity"] {
		cfg.GravityEnabled = o.gravity
	}
	if o.set["policy"] {
		cfg.CollisionSeparationPolicy = o.policy
	}
	if o.scene {
		cfg.Bodies = population.DefaultScene()
	}
	return cfg, cfg.Validate()
}

func registerRun(reg *commands.Registry) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var o options
	o.bind(fs)
	dump := fs.String("dump", "", "write the final bodies as YAML to this file")
	quiet := fs.Bool("quiet", false, "do not echo reports to stderr")
	mem := fs.Bool("mem", false, "include heap allocation in reports")

	reg.Register("run", "advance the world headlessly and report statistics", fs, func() error {
		cfg, err := o.load(fs)
		if err != nil {
			return err
		}
		log, err := logger.New(cfg.Driver.LogPath)
		if err != nil {
			return err
		}
		defer log.Close()
		if !*quiet {
			log.SetEcho(os.Stderr)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w, err := simulate(ctx, cfg, log, *mem)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, debug.Snapshot(w.Bodies()))
		if *dump != "" {
			return dumpBodies(*dump, w.Bodies())
		}
		return nil
	})
}

func registerConfig(reg *commands.Registry) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var o options
	o.bind(fs)

	reg.Register("config", "print the effective configuration as YAML", fs, func() error {
		cfg, err := o.load(fs)
		if err != nil {
			return err
		}
		return printConfig(os.Stdout, cfg)
	})
}

// simulate builds the world from cfg and advances it cfg.Driver.Ticks times, or until
// ctx is done when Ticks is zero.
func simulate(ctx context.Context, cfg engineconfig.Config, log *logger.Logger, showMem bool) (*physics.World, error) {
	p, err := cfg.Physics()
	if err != nil {
		return nil, err
	}
	bodies, err := cfg.InitialBodies()
	if err != nil {
		return nil, err
	}
	w, err := physics.NewWorld(p, bodies, log)
	if err != nil {
		return nil, err
	}
	mon := debug.New(log)
	mon.Interval = cfg.Driver.ReportInterval
	mon.SetShowMemAlloc(showMem)

	log.Logf("start: %d bodies, %gx%g arena, gravity=%t, policy=%s", w.Len(), p.Width, p.Height, p.GravityEnabled, p.Separation)
	for cfg.Driver.Ticks == 0 || w.Ticks() < cfg.Driver.Ticks {
		if err := ctx.Err(); err != nil {
			log.Logf("interrupted after %d ticks", w.Ticks())
			break
		}
		w.Advance(cfg.Driver.Dt)
		mon.Observe(w)
	}
	mon.Report(w)
	return w, nil
}

func printConfig(out io.Writer, cfg engineconfig.Config) error {
	data, err := engineconfig.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func dumpBodies(path string, bodies []physics.Body) error {
	data, err := yaml.Marshal(map[string]any{"bodies": population.ToDefs(bodies)})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
