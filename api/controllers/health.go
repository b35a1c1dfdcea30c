package controllers

import (
	"net/http"

	"github.com/raktarhub/raktarhub-backend/api/responses"
	"github.com/raktarhub/raktarhub-backend/pkg/config"
	"github.com/raktarhub/raktarhub-backend/pkg/db"
	pkgerrors "github.com/raktarhub/raktarhub-backend/pkg/errors"
	"github.com/raktarhub/raktarhub-backend/pkg/logger"
	"github.com/raktarhub/raktarhub-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RaktarHub-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RaktarHub-Env", cfg.App.Env)

		checks := map[string]string{}

		if dbP == nil {
			checks["db"] = "missing"
		} else if err := dbP.Ping(r.Context()); err != nil {
			checks["db"] = "down"
		} else {
			checks["db"] = "up"
		}

		if redisP == nil {
			checks["redis"] = "disabled"
		} else if err := redisP.Ping(r.Context()); err != nil {
			checks["redis"] = "down"
		} else {
			checks["redis"] = "up"
		}

		if checks["db"] != "up" || checks["redis"] == "down" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeInternal, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
