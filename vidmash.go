// Copyright 2022-2024 The Vidmash Authors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package vidmash wires the compilation engine together: catalog,
// arrangement, generator, progress and the web surface.
package vidmash

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"vidmash/pkg/catalog"
	"vidmash/pkg/ffmpeg"
	"vidmash/pkg/generate"
	"vidmash/pkg/log"
	"vidmash/pkg/storage"
	"vidmash/pkg/system"
	"vidmash/pkg/web"
	"vidmash/pkg/web/auth"
)

// Run starts the app and blocks until shutdown.
func Run(envPath string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApp(ctx, envPath)
	if err != nil {
		return err
	}

	fatal := make(chan error, 1)
	go func() { fatal <- app.run(ctx) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-fatal:
	case sig := <-stop:
		app.log.Info().Src("app").Msgf("received %v, stopping", sig)
	}

	cancel()

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()

	if err := app.server.Shutdown(ctx2); err != nil {
		return err
	}
	app.wg.Wait()
	app.db.Close()
	return err
}

func newApp(ctx context.Context, envPath string) (*app, error) { //nolint:funlen
	envYAML, err := os.ReadFile(envPath)
	if err != nil {
		return nil, fmt.Errorf("could not read env.yaml: %w", err)
	}

	env, err := storage.NewConfigEnv(envPath, envYAML)
	if err != nil {
		return nil, fmt.Errorf("could not get environment config: %w", err)
	}
	if err := env.PrepareEnvironment(); err != nil {
		return nil, fmt.Errorf("could not prepare environment: %w", err)
	}

	wg := &sync.WaitGroup{}
	logger, err := log.NewLogger(env.LogDBPath(), wg)
	if err != nil {
		return nil, fmt.Errorf("could not create logger: %w", err)
	}

	general, err := storage.NewConfigGeneral(env.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("could not get general config: %w", err)
	}

	db, err := catalog.Open(env.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("could not open catalog: %w", err)
	}

	usersConfigPath := filepath.Join(env.ConfigDir, "users.json")
	a, err := auth.NewBasicAuthenticator(usersConfigPath, logger)
	if err != nil {
		return nil, err
	}

	cleanup := func() error {
		return db.CleanupProgress(7 * 24 * time.Hour)
	}
	storageManager := storage.NewManager(env.TempVideoDir(), general, cleanup, logger)

	sys := system.New(storageManager.Usage, logger)

	streams := generate.StreamResolver{
		StashAddr:   env.StashAddr,
		StashAPIKey: env.StashAPIKey,
	}
	generator := generate.NewGenerator(
		env.TempVideoDir(),
		env.MusicDir(),
		env.CompilationDir(),
		ffmpeg.New(env.FFmpegBin),
		db,
		db,
		streams,
		logger,
	)

	mux := http.NewServeMux()

	staticDir := filepath.Join(env.WebDir, "static")
	mux.Handle("/static/", a.User(web.Static(staticDir)))
	mux.Handle("/compilations/", a.User(web.Compilations(env.CompilationDir())))

	mux.Handle("/api/system/status", a.User(web.Status(sys)))

	mux.Handle("/api/general", a.Admin(web.General(general)))
	mux.Handle("/api/general/set", a.Admin(a.CSRF(web.GeneralSet(general))))

	mux.Handle("/api/users", a.Admin(web.Users(a)))
	mux.Handle("/api/user/set", a.Admin(a.CSRF(web.UserSet(a))))
	mux.Handle("/api/user/delete", a.Admin(a.CSRF(web.UserDelete(a))))
	mux.Handle("/api/user/myToken", a.Admin(a.MyToken()))

	mux.Handle("/api/clips", a.User(web.CreateClips(db, streams)))
	mux.Handle("/api/create", a.User(web.CreateCompilation(ctx, generator, logger)))
	mux.Handle("/api/progress/", a.User(web.Progress(db)))
	mux.Handle("/api/funscript/combined", a.User(web.FunscriptCombined(db)))
	mux.Handle("/api/funscript/beat", a.User(web.FunscriptBeat(db)))

	mux.Handle("/api/logs", a.Admin(web.Logs(logger, a)))

	server := &http.Server{Addr: ":" + env.Port, Handler: mux}

	return &app{
		log:     logger,
		env:     env,
		db:      db,
		storage: storageManager,
		system:  sys,
		server:  server,
		wg:      wg,
	}, nil
}

type app struct {
	log     *log.Logger
	env     *storage.ConfigEnv
	db      *catalog.DB
	storage *storage.Manager
	system  *system.System
	server  *http.Server
	wg      *sync.WaitGroup
}

func (a *app) run(ctx context.Context) error {
	if err := a.log.Start(ctx); err != nil {
		return err
	}
	go a.log.LogToStdout(ctx)
	go a.log.LogToDB(ctx) //nolint:errcheck
	time.Sleep(10 * time.Millisecond)

	a.log.Info().Src("app").Msg("starting..")

	go a.storage.PurgeLoop(ctx, 10*time.Minute)
	go a.system.StatusLoop(ctx)

	return a.server.ListenAndServe()
}
