package wellknown

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/state"
)

type WebfingerLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

type WebfingerResponse struct {
	Subject string          `json:"subject"`
	Links   []WebfingerLink `json:"links"`
}

func Mount(state *state.State, r chi.Router) {
	r.Route("/.well-known/", func(r chi.Router) {
		r.Get("/webfinger", WebfingerEndpoint(state))
	})
}

func WebfingerEndpoint(state *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource := r.URL.Query().Get("resource")
		uri, err := url.Parse(strings.Replace(resource, "acct:", "acct://", 1))
		if err != nil {
			http.Error(w, "failed to parse resource", http.StatusBadRequest)
			return
		}

		actor, err := state.DB.FindLocalActorByUsername(r.Context(), uri.User.Username())
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				http.Error(w, "", http.StatusNotFound)
				return
			}
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		res := WebfingerResponse{
			Subject: resource,
			Links: []WebfingerLink{
				{Rel: "self", Type: "application/activity+json", Href: actor.URI},
			},
		}

		if err = json.NewEncoder(w).Encode(res); err != nil {
			log.Error().Err(err).Msg("unable to marshal webfinger response")
			http.Error(w, "", http.StatusInternalServerError)
		}
	}
}
