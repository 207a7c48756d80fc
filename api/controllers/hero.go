package controllers

import (
	"net/http"

	"github.com/rmadriz/portfolio-backend/api/responses"
	"github.com/rmadriz/portfolio-backend/api/validators"
	"github.com/rmadriz/portfolio-backend/internal/hero"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
)

// HeroGet serves the public landing hero payload.
func HeroGet(svc hero.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// HeroUpdate upserts the single hero row.
func HeroUpdate(svc hero.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload hero.Input
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Update(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
