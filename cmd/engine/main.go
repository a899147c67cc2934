package main

import (
	"database/sql"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hollowpine/StorylineEngine/internal/api"
	"github.com/hollowpine/StorylineEngine/internal/assets"
	"github.com/hollowpine/StorylineEngine/internal/clock"
	"github.com/hollowpine/StorylineEngine/internal/config"
	"github.com/hollowpine/StorylineEngine/internal/cutscene"
	"github.com/hollowpine/StorylineEngine/internal/events"
	"github.com/hollowpine/StorylineEngine/internal/gamestate"
	"github.com/hollowpine/StorylineEngine/internal/mqtt"
	"github.com/hollowpine/StorylineEngine/internal/runlist"
	"github.com/hollowpine/StorylineEngine/internal/storage/postgres"
	"github.com/hollowpine/StorylineEngine/internal/version"
)

func configPath(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

func main() {
	cfg, err := config.LoadEngineConfig(configPath("ENGINE_CONFIG", "config/engine.yaml"))
	if err != nil {
		log.Fatalf("failed to load engine.yaml: %v", err)
	}

	// Postgres is optional: without it events stay in the ring buffer and
	// save/load commands report save.error.
	pg, err := postgres.New(cfg.Engine.ID)
	if err != nil {
		log.Printf("postgres unavailable, running without persistence: %v", err)
		pg = nil
	} else {
		events.SetPostgresClient(pg)
		defer pg.Close()
	}

	hostname, _ := os.Hostname()
	events.Emit("info", "system.startup", "engine starting", map[string]interface{}{
		"engine_id": cfg.Engine.ID,
		"version":   version.Version,
		"hostname":  hostname,
		"pid":       os.Getpid(),
	})

	mqttClient := mqtt.NewClient("storyline-" + cfg.Engine.ID)
	connected := mqttClient.StartWithRetry()
	if connected {
		defer mqttClient.Disconnect()
	}

	var cues *mqtt.CuePublisher
	cuesCfg, err := config.LoadCuesConfig(configPath("CUES_CONFIG", "config/cues.yaml"))
	if err != nil {
		log.Printf("cues.yaml not loaded, cue actions will soft-fail: %v", err)
	} else {
		cues = mqtt.NewCuePublisher(mqttClient, cuesCfg)
	}

	globals := cutscene.NewStore()
	env := &cutscene.Env{Globals: globals, SkipGuard: cfg.SkipStepMultiplier()}
	if cues != nil {
		env.Cues = cues
	}

	library, err := assets.Load(cfg.Assets.Dir, env)
	if err != nil {
		log.Fatalf("failed to load graph assets: %v", err)
	}
	log.Printf("loaded %d graph assets from %s", len(library.Names()), cfg.Assets.Dir)

	state := gamestate.NewManager()
	clk := clock.New()
	if cfg.Engine.TimeScale > 0 {
		clk.SetScale(cfg.Engine.TimeScale)
	}

	registry := runlist.New(state, clk)
	registry.SetLibrary(library)
	if pg != nil {
		registry.SetSaveStore(pg)
	}

	if connected {
		listener := mqtt.NewCommandListener(mqttClient, registry)
		if err := listener.Start(cfg.Engine.ID); err != nil {
			log.Printf("failed to subscribe to command topic: %v", err)
		}
	}

	api.SetController(registry)
	go func() {
		log.Printf("API listening on :%d", cfg.UIPort())
		if err := api.ListenAndServe(cfg.UIPort()); err != nil {
			log.Printf("api server failed: %v", err)
		}
	}()

	// Resume a previous session if an autosave exists.
	if pg != nil {
		data, err := pg.LoadState(runlist.DefaultSlot)
		switch {
		case err == nil && data != "":
			registry.LoadData(data)
			events.Emit("info", "system.startup_restore", "", map[string]interface{}{
				"slot": runlist.DefaultSlot,
			})
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			log.Printf("autosave restore failed: %v", err)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	interval := time.Second / time.Duration(cfg.TickHz())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			registry.Tick(now.Sub(last).Seconds())
			last = now

		case s := <-sig:
			events.Emit("info", "system.shutdown", "engine stopping", map[string]interface{}{
				"signal": s.String(),
			})
			return
		}
	}
}
