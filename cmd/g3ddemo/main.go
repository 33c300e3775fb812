// Command g3ddemo renders the default scene for a fixed number of frames
// while replaying a short input script, and logs what each frame drew.
//
// With no GPU available it falls back to the headless device:
//
//	g3ddemo -frames 120 -v
//	g3ddemo -device headless -config scene.yaml
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/config"
	"github.com/gogpu/g3d/device"
	_ "github.com/gogpu/g3d/device/headless"
	_ "github.com/gogpu/g3d/device/wgpudevice"
	"github.com/gogpu/g3d/engine"
	_ "github.com/gogpu/wgpu/hal/allbackends"
)

func main() {
	var (
		cfgPath   = flag.String("config", "", "YAML configuration file")
		driver    = flag.String("device", "", "device driver (wgpu, headless); empty picks the best available")
		frames    = flag.Int("frames", 240, "number of frames to render")
		width     = flag.Uint("width", 0, "frame width, overrides the configuration")
		height    = flag.Uint("height", 0, "frame height, overrides the configuration")
		verbose   = flag.Bool("v", false, "log every frame")
		writePath = flag.String("write-config", "", "write the effective configuration to this file and exit")
	)
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	if *driver != "" {
		cfg.Device = *driver
	}
	if *width > 0 {
		cfg.Window.Width = uint32(*width)
	}
	if *height > 0 {
		cfg.Window.Height = uint32(*height)
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if *writePath != "" {
		if err := config.Write(*writePath, cfg); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		return
	}

	level, err := cfg.Level()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	g3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	opts, err := cfg.EngineOptions()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := play(cfg, opts, *frames); err != nil {
		log.Printf("g3ddemo: %v", err)
		os.Exit(1)
	}
}

// play renders frames with a fresh device and engine and closes both
// before returning.
func play(cfg config.Config, opts []engine.Option, frames int) error {
	dev, err := openDevice(cfg)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	defer dev.Close()

	eng, err := engine.New(dev, opts...)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	if err := run(eng, frames, interrupt); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	p := eng.Camera().Position()
	log.Printf("Rendered %d frames on %s, camera at (%.2f, %.2f, %.2f)",
		eng.Frames(), dev.Info().Name, p.X(), p.Y(), p.Z())
	return nil
}

// openDevice opens the configured driver. When no driver is named and the
// GPU cannot be opened, the headless device is used instead.
func openDevice(cfg config.Config) (device.Device, error) {
	dc := device.Config{Width: cfg.Window.Width, Height: cfg.Window.Height}
	dev, err := device.Open(cfg.Device, dc)
	if err == nil || cfg.Device != "" {
		return dev, err
	}
	g3d.Logger().Warn("g3ddemo: GPU unavailable, using headless device", slog.String("err", err.Error()))
	return device.Open(device.DriverHeadless, dc)
}

func run(eng *engine.Engine, frames int, interrupt <-chan os.Signal) error {
	const dt = float32(1) / 60
	s := newScript(eng.Input(), frames)
	start := time.Now()
	for i := 0; i < frames; i++ {
		select {
		case <-interrupt:
			return nil
		default:
		}
		s.step(i)
		if err := eng.Frame(dt); err != nil {
			return err
		}
		st := eng.LastStats()
		g3d.Logger().Debug("g3ddemo: frame",
			slog.Int("frame", i),
			slog.Uint64("seq", st.Frame.Seq),
			slog.Int("drawn", st.Drawn),
			slog.Int("skipped", st.Skipped),
			slog.String("input", eng.Input().Commands().String()))
	}
	g3d.Logger().Info("g3ddemo: done",
		slog.Uint64("frames", eng.Frames()),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
