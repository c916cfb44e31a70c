package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/authclient/pkg/authapi"
	"github.com/dmitrymomot/authclient/pkg/authhttp"
	"github.com/dmitrymomot/authclient/pkg/authsession"
	"github.com/dmitrymomot/authclient/pkg/config"
	"github.com/dmitrymomot/authclient/pkg/credstore"
	"github.com/dmitrymomot/authclient/pkg/logger"
	"github.com/dmitrymomot/authclient/pkg/metrics"
	"github.com/dmitrymomot/authclient/pkg/requestid"
)

type cliConfig struct {
	LogLevel    string        `env:"AUTHCTL_LOG_LEVEL" envDefault:"warn"`
	LogFormat   string        `env:"AUTHCTL_LOG_FORMAT" envDefault:"text"`
	Password    string        `env:"AUTHCTL_PASSWORD"`
	MetricsAddr string        `env:"AUTHCTL_METRICS_ADDR"`
	OpenTimeout time.Duration `env:"AUTHCTL_OPEN_TIMEOUT" envDefault:"15s"`
}

type app struct {
	cfg     cliConfig
	api     authapi.Config
	log     *slog.Logger
	store   credstore.Store
	rt      http.RoundTripper
	mgr     *authsession.Manager
	metrics *metrics.Collector

	closeStore func() error
}

func newApp(ctx context.Context) (*app, error) {
	var (
		cfg      cliConfig
		apiCfg   authapi.Config
		sessCfg  authsession.Config
		storeCfg credstore.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&cfg) },
		func() error { return config.Load(&apiCfg) },
		func() error { return config.Load(&sessCfg) },
		func() error { return config.Load(&storeCfg) },
	} {
		if err := load(); err != nil {
			return nil, err
		}
	}

	log := logger.New(
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithAttr(slog.String("service", "authctl")),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	openCtx, cancel := context.WithTimeout(ctx, cfg.OpenTimeout)
	defer cancel()

	store, closeStore, err := credstore.Open(openCtx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	rt := requestid.NewTransport(http.DefaultTransport)
	backend, err := authapi.New(apiCfg,
		authapi.WithLogger(log),
		authapi.WithHTTPClient(&http.Client{Transport: rt}),
	)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	collector := metrics.NewCollector("authctl")
	mgr := authsession.New(backend, store,
		authsession.WithConfig(sessCfg),
		authsession.WithLogger(log),
		authsession.WithRecorder(collector),
	)

	return &app{
		cfg:        cfg,
		api:        apiCfg,
		log:        log,
		store:      store,
		rt:         rt,
		mgr:        mgr,
		metrics:    collector,
		closeStore: closeStore,
	}, nil
}

func (a *app) close() {
	if err := a.mgr.Close(); err != nil {
		a.log.Warn("close session manager", logger.Error(err))
	}
	if err := a.closeStore(); err != nil {
		a.log.Warn("close credential store", logger.Error(err))
	}
}

func (a *app) login(ctx context.Context, username string) error {
	password := a.cfg.Password
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if err := a.mgr.Login(ctx, username, password); err != nil {
		return errors.New(authsession.ErrorMessage(err))
	}
	printSession(a.mgr.Session())
	return nil
}

// restore loads the saved session and fails when there is none.
func (a *app) restore(ctx context.Context) error {
	if err := a.mgr.Restore(ctx); err != nil {
		return errors.New(authsession.ErrorMessage(err))
	}
	if !a.mgr.Session().IsAuthenticated() {
		return errors.New("not logged in")
	}
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	printSession(a.mgr.Session())
	if at, ok := a.mgr.NextRenewal(); ok {
		fmt.Printf("next renewal: %s\n", at.Format(time.RFC3339))
	}
	return nil
}

func (a *app) status() error {
	has := func(key string) bool {
		_, err := a.store.Get(key)
		return err == nil
	}
	fmt.Printf("access token:  %t\n", has(credstore.KeyAccessToken))
	fmt.Printf("refresh token: %t\n", has(credstore.KeyRefreshToken))

	user, err := authsession.CachedUser(a.store)
	switch {
	case err == nil:
		fmt.Printf("user:          %s (id %d)\n", user.DisplayName(), user.ID)
	case errors.Is(err, credstore.ErrKeyNotFound):
		fmt.Println("user:          -")
	default:
		return err
	}
	return nil
}

func (a *app) get(ctx context.Context, target string) error {
	if err := a.restore(ctx); err != nil {
		return err
	}

	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = strings.TrimRight(a.api.BaseURL, "/") + "/" + strings.TrimLeft(target, "/")
	}

	ctx = requestid.WithContext(ctx, requestid.New())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	client := authhttp.NewClient(a.mgr, authhttp.WithBase(a.rt), authhttp.WithLogger(a.log))
	client.Timeout = a.api.Timeout * 2

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, authsession.ErrSessionExpired) {
			return errors.New(authsession.ErrorMessage(err))
		}
		return err
	}
	defer resp.Body.Close()

	fmt.Fprintln(os.Stderr, resp.Status)
	_, err = io.Copy(os.Stdout, resp.Body)
	return err
}

func (a *app) watch(ctx context.Context) error {
	unsubscribe := a.mgr.Subscribe(func(s authsession.Session) {
		line := fmt.Sprintf("%s status=%s", time.Now().Format(time.TimeOnly), s.Status)
		if s.LastError != "" {
			line += fmt.Sprintf(" error=%q", s.LastError)
		}
		fmt.Println(line)
	})
	defer unsubscribe()

	if a.cfg.MetricsAddr != "" {
		srv := a.metricsServer()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := a.restore(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

func (a *app) metricsServer() *http.Server {
	reg := prometheus.NewRegistry()
	a.metrics.MustRegister(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server", logger.Error(err))
		}
	}()
	return srv
}

func (a *app) logout(ctx context.Context) error {
	// Logout revokes whatever token Restore loads.
	if err := a.mgr.Restore(ctx); err != nil {
		a.log.Debug("restore before logout", logger.Error(err))
	}
	a.mgr.Logout(ctx)
	fmt.Println("logged out")
	return nil
}

func keygen() error {
	key, err := credstore.GenerateKey()
	if err != nil {
		return err
	}
	fmt.Println(base64.StdEncoding.EncodeToString(key))
	return nil
}

func printSession(s authsession.Session) {
	fmt.Printf("status: %s\n", s.Status)
	if s.User != nil {
		fmt.Printf("user:   %s <%s> (id %d)\n", s.User.DisplayName(), s.User.Email, s.User.ID)
	}
}
