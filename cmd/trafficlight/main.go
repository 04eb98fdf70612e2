// Program trafficlight runs a small simulation of traffic lights with
// vehicles waiting for them to turn green.
//
// Usage:
//
//	trafficlight [-config file.yaml] [flags]
//
// Each light cycles between red and green on its own. Each vehicle waits at
// its light for a green phase, crosses, and then queues up again. Since a
// light hands each green phase to a single waiting vehicle, vehicles at a
// busy light may wait several cycles.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/creachadair/lightsync/light"
)

var (
	configPath = flag.String("config", "", "Path to a YAML config file")
	numLights  = flag.Int("lights", 0, "Number of traffic lights")
	numCars    = flag.Int("vehicles", 0, "Number of vehicles per light")
	minDwell   = flag.Duration("min-dwell", 0, "Shortest phase duration")
	maxDwell   = flag.Duration("max-dwell", 0, "Longest phase duration")
	pollEvery  = flag.Duration("poll", 0, "Phase timer polling interval")
	runFor     = flag.Duration("run-for", 0, "Stop after this long (0 runs until interrupted)")
	verbose    = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	}

	cfg, err := resolveConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if cfg.RunFor > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.RunFor)
		defer cancel()
	}

	crossed := run(ctx, cfg, log)
	for i, n := range crossed {
		log.Info().Str("light", lightName(i)).Int("crossings", n).Msg("done")
	}
}

// resolveConfig merges the config file (if any) with flags set on the command
// line. Flags take precedence.
func resolveConfig() (Config, error) {
	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lights":
			cfg.Lights = *numLights
		case "vehicles":
			cfg.Vehicles = *numCars
		case "min-dwell":
			cfg.MinDwell = *minDwell
		case "max-dwell":
			cfg.MaxDwell = *maxDwell
		case "poll":
			cfg.Poll = *pollEvery
		case "run-for":
			cfg.RunFor = *runFor
		}
	})
	return cfg, cfg.check()
}

func lightName(i int) string { return fmt.Sprintf("L%d", i+1) }

// logHooks binds a zerolog logger to the logging hooks of a light.
func logHooks(log zerolog.Logger) *light.Logger {
	return &light.Logger{
		Debugf: func(format string, args ...any) { log.Debug().Msgf(format, args...) },
		Infof:  func(format string, args ...any) { log.Info().Msgf(format, args...) },
	}
}

// run starts the lights and vehicles described by cfg, and runs them until
// ctx ends. It returns the number of vehicle crossings at each light.
func run(ctx context.Context, cfg Config, log zerolog.Logger) []int {
	hooks := logHooks(log)
	lights := make([]*light.Machine, cfg.Lights)
	for i := range lights {
		lights[i] = light.New(cfg.lightConfig(lightName(i), hooks))
		lights[i].Simulate()
	}

	crossed := make([]int, len(lights))
	var μ sync.Mutex
	var wg sync.WaitGroup
	for i, m := range lights {
		for v := range cfg.Vehicles {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n := drive(ctx, m, log.With().Str("light", lightName(i)).Int("vehicle", v+1).Logger())
				μ.Lock()
				defer μ.Unlock()
				crossed[i] += n
			}()
		}
	}
	wg.Wait()

	for _, m := range lights {
		m.Stop()
	}
	return crossed
}

// drive repeatedly waits for m to turn green and crosses, until ctx ends.
// It returns the number of crossings made.
func drive(ctx context.Context, m *light.Machine, log zerolog.Logger) int {
	var n int
	for {
		if err := m.WaitForGreen(ctx); err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				log.Error().Err(err).Msg("waiting for green")
			}
			return n
		}
		n++
		log.Debug().Int("crossings", n).Msg("crossing")
	}
}
