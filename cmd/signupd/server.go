package main

import (
	"crypto/rand"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	hxcmpecho "github.com/pthm/signupform/adapters/echo"
	"github.com/pthm/signupform/components/signupform"
	"github.com/pthm/signupform/form"
	"github.com/pthm/signupform/i18n"
	"github.com/pthm/signupform/internal/config"
)

// newServer assembles the HTTP application around api.
func newServer(cfg *config.Config, log zerolog.Logger, api form.Submitter, prom *prometheus.Registry) (*echo.Echo, error) {
	catalog, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}

	key, err := cfg.Key()
	if err != nil {
		return nil, err
	}
	if key == nil {
		log.Warn().Msg("no props key configured, using a random key; forms will not survive a restart")
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating props key: %w", err)
		}
	}

	metrics := signupform.NewMetrics(prom)
	sub := metrics.Instrument(api)
	sessions := signupform.NewSessionStore(cfg.SessionCapacity, cfg.SessionTTL, func() *form.Form {
		return form.New(sub, form.WithLogger(log))
	}, log)
	comp := signupform.New(sessions, catalog,
		signupform.WithMetrics(metrics),
		signupform.WithLogger(log),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(
		middleware.Recover(),
		hxcmpecho.RequestID(),
		hxcmpecho.RequestLogger(log),
		hxcmpecho.Locale(catalog),
	)

	reg := hxcmpecho.Mount(e, hxcmpecho.WithKey(key), hxcmpecho.WithLogger(log))
	reg.Add(comp)

	e.GET("/", func(c echo.Context) error {
		return hxcmpecho.Render(c, page(catalog, comp))
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(prom, promhttp.HandlerOpts{})))
	return e, nil
}
