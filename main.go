package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"rrs-edge/internal/config"
	"rrs-edge/internal/origin"
	"rrs-edge/internal/rewrite"
)

// All methods on Context are registered as HTTP routes according to the
// pattern they return.
type Context struct {
	origin origin.Store
	log    *zap.Logger
}

type options struct {
	profile rewrite.Config
	rate    float64
	burst   int
}

// handler builds the request pipeline: access log, rate limit, rewrite,
// then the origin.
func (c Context) handler(opts options) http.Handler {
	var h http.Handler = c.Object()
	h = rewrite.Middleware(rewrite.New(opts.profile), h)
	if opts.rate > 0 {
		h = limit(rate.NewLimiter(rate.Limit(opts.rate), max(opts.burst, 1)), h)
	}
	return c.accessLog(h)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func main() {
	addr := flag.String("addr", ":4502", "The address to listen on.")
	originDir := flag.String("origin", "origin", "The directory holding origin objects.")
	configPath := flag.String("config", "", "Optional YAML file with rewrite profiles.")
	profileName := flag.String("profile", "responsive", "The rewrite profile to serve with.")
	rps := flag.Float64("rate", 0, "Requests per second to admit, 0 disables limiting.")
	burst := flag.Int("burst", 50, "Request burst admitted above the rate.")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error.")
	flag.Parse()

	log, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer log.Sync()

	file, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}
	profile, err := file.Profile(*profileName)
	if err != nil {
		log.Fatal("select profile", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	router := Context{
		origin: origin.Store{Dir: *originDir},
		log:    log,
	}
	srv := &http.Server{
		Addr: *addr,
		Handler: router.handler(options{
			profile: profile,
			rate:    *rps,
			burst:   *burst,
		}),
	}
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", zap.Error(err))
			stop()
		}
	}()

	log.Info("serving",
		zap.String("addr", *addr),
		zap.String("origin", *originDir),
		zap.String("profile", *profileName),
		zap.Ints("sizes", profile.Sizes),
		zap.String("extension", profile.Extension),
	)
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
}
