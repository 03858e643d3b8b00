package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/kcal/pkg/config"
	"github.com/charlie0129/kcal/pkg/events"
	"github.com/charlie0129/kcal/pkg/kcal"
	"github.com/charlie0129/kcal/pkg/lut"
	"github.com/charlie0129/kcal/pkg/panel"
)

var (
	conf     config.Config
	gateway  *kcal.Gateway
	display  *panel.Software
	sseHub   *events.EventHub
	reapplyS *Scheduler
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))

	router.GET("/lut-reset", getLUTReset)
	router.PUT("/lut-reset", writeHandler(gateway.ResetLUT))
	router.GET("/lut-edit", getLUTEdit)
	router.PUT("/lut-edit", writeHandler(gateway.EditLUT))
	router.GET("/triplet", getTriplet)
	router.PUT("/triplet", writeHandler(gateway.SetTriplet))
	router.GET("/apply", getApply)
	router.PUT("/apply", writeHandler(gateway.Apply))
	router.GET("/version", getVersion)

	router.POST("/resume", postResume)
	router.GET("/lut", getLUT)
	router.GET("/lut/:index", getLUTEntry)
	router.GET("/config", getConfig)
	router.GET("/events", getEvents)
	router.GET("/reapply", getReapply)
	router.PUT("/reapply", setReapply)
	router.POST("/reapply/skip", skipReapply)

	return router
}

// setupGateway builds the display pipeline described by conf.
func setupGateway() error {
	sink, err := panel.NewSink(conf.Sink(), conf.SinkTarget())
	if err != nil {
		return err
	}

	store := lut.NewStore()
	display = panel.NewSoftware(store.Snapshot, sink)
	gateway = kcal.New(display,
		kcal.WithStore(store),
		kcal.WithEventHub(sseHub),
		kcal.WithVersion(kcal.Version{Major: conf.VersionMajor(), Minor: conf.VersionMinor()}),
	)

	logrus.WithFields(logrus.Fields{
		"sink":    sink.Name(),
		"target":  conf.SinkTarget(),
		"version": gateway.Version().String(),
	}).Info("display pipeline ready")

	return nil
}

func reapplyTask() error {
	if code := gateway.Resume(); code != kcal.StatusOK {
		return &kcal.RefreshError{Code: code}
	}
	return nil
}

func setupReapplyScheduler() error {
	reapplyS = NewScheduler(reapplyTask, func(data any) {
		logrus.Errorf("scheduled re-apply failed: %v", data)
	})
	// Started even without a schedule, so a SIGHUP reload can add one.
	reapplyS.Start()
	if err := reapplyS.Schedule(conf.ReapplySchedule()); err != nil {
		return err
	}

	if next, _ := reapplyS.Status(); !next.IsZero() {
		logrus.Infof("next scheduled re-apply at %s", next.Format(time.DateTime))
	}
	return nil
}

func reloadConfig() {
	err := conf.Load()
	if err != nil {
		logrus.Errorf("failed to reload config: %v", err)
		return
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config reloaded")

	if err := reapplyS.Schedule(conf.ReapplySchedule()); err != nil {
		logrus.Errorf("failed to update re-apply schedule: %v", err)
	}
	// The sink and the version are bound at startup.
	if conf.VersionMajor() != gateway.Version().Major || conf.VersionMinor() != gateway.Version().Minor {
		logrus.Warn("version change takes effect after a daemon restart")
	}
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	sseHub = events.NewEventHub()
	if err := setupGateway(); err != nil {
		logrus.Fatalf("failed to set up display: %v", err)
	}

	if conf.ApplyOnStart() {
		if code := gateway.Resume(); code != kcal.StatusOK {
			logrus.Errorf("initial apply failed with code %d", code)
		}
	}

	if err := setupReapplyScheduler(); err != nil {
		logrus.Errorf("re-apply schedule disabled: %v", err)
	}

	router := setupRoutes()

	// Receive SIGHUP to reload config, SIGUSR1 to re-apply after resume.
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP, syscall.SIGUSR1)
		for sig := range sigc {
			switch sig {
			case syscall.SIGHUP:
				reloadConfig()
			case syscall.SIGUSR1:
				logrus.Info("resume requested by signal")
				gateway.Resume()
			}
		}
	}()

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Remove a socket left behind by a previous run.
	if _, err := os.Stat(unixSocketPath); err == nil {
		logrus.Warnf("removing stale socket %s", unixSocketPath)
		if err := os.Remove(unixSocketPath); err != nil {
			logrus.Fatal(err)
		}
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	// Event streams never go idle, so end them before shutting down.
	sseHub.Close()

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("stopping re-apply scheduler")
	reapplyS.Stop()

	logrus.Info("closing display")
	if err := display.Close(); err != nil {
		logrus.Errorf("failed to close display: %v", err)
	}

	logrus.Info("exiting")
	return nil
}
