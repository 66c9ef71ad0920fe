package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"ludo/app/api"
	"ludo/app/client/llm"
	"ludo/app/client/speechkit"
	"ludo/app/client/websearch"
	"ludo/app/config"
	"ludo/app/service/console"
	"ludo/app/service/conversation"
	"ludo/app/service/engine"
	"ludo/app/service/grounding"
	"ludo/app/service/memory"
	"ludo/app/service/notepad"
	"ludo/app/service/queue"
	"ludo/app/service/transcribe"
	"ludo/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, llm.NewClient)
	do.Provide(di, websearch.NewClient)
	do.Provide(di, speechkit.NewClient)
	do.Provide(di, memory.New)
	do.Provide(di, notepad.New)
	do.Provide(di, grounding.New)
	do.Provide(di, conversation.New)
	do.Provide(di, queue.New)
	do.Provide(di, transcribe.New)
	do.Provide(di, engine.New)
	do.Provide(di, console.New)
	do.Provide(di, api.New)

	slog.Info("Service started", "assistant", cfg.Assistant.Name)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*engine.Service](di).Run(appCtx)

	if cfg.API.Enabled {
		go func() {
			if err := do.MustInvoke[*api.Server](di).Run(appCtx); err != nil {
				slog.Error("HTTP API stopped", "error", err)
			}
		}()
	}

	if cfg.Console.Enabled {
		go func() {
			if err := do.MustInvoke[*console.Service](di).Run(appCtx); err != nil {
				slog.Error("Console stopped", "error", err)
			}
		}()
	}

	<-appCtx.Done()
}
