package app

import (
	"encoding/json"
	"net/http"
	"time"

	"camo/engine"
	"camo/profile"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func respondText(w http.ResponseWriter, status int, err string) {
	w.WriteHeader(status)
	w.Write([]byte(err))
}

func respondJSON(w http.ResponseWriter, v any) {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(b)
}

type appDetail struct {
	Version    string                 `json:"version"`
	StartTime  time.Time              `json:"start_time"`
	Time       time.Time              `json:"time"`
	Duration   string                 `json:"duration"`
	Statistics engine.Statistics      `json:"statistics"`
	Profiles   []string               `json:"profiles"`
	Rotation   profile.RotationConfig `json:"rotation"`
}

func buildAPIServer(app *App, config *APIConfig) *http.Server {
	token := config.Token
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Infoln(r.RemoteAddr, r.Method, r.RequestURI, r.Proto)
		q := r.URL.Query()
		if token != "" && q.Get("token") != token {
			respondText(w, http.StatusForbidden, "Forbidden")
			return
		}
		switch r.URL.Path {
		case "/":
			resp := &appDetail{
				Version:    Version,
				StartTime:  app.StartTime(),
				Time:       time.Now(),
				Statistics: app.Engine.Statistics(),
				Profiles:   app.Engine.Profiles().IDs(),
				Rotation:   app.Engine.Profiles().Rotation(),
			}
			resp.Duration = resp.Time.Sub(resp.StartTime).String()
			respondJSON(w, resp)
		case "/generate":
			session := q.Get("session")
			if session == "" {
				respondText(w, http.StatusBadRequest, "session is required")
				return
			}
			fp := app.Engine.GenerateForSession(session, q.Get("profile"), nil)
			respondJSON(w, fp)
		case "/fingerprint":
			fp, ok := app.Engine.LookupByHash(q.Get("ja3"))
			if !ok {
				respondText(w, http.StatusNotFound, "no fingerprint with that hash")
				return
			}
			respondJSON(w, fp)
		case "/profiles":
			if r.Method == http.MethodPut {
				var pc ProfileConfig
				if err := json.NewDecoder(r.Body).Decode(&pc); err != nil {
					respondText(w, http.StatusBadRequest, err.Error())
					return
				}
				p, err := pc.ToProfile()
				if err == nil {
					err = app.Engine.RegisterCustomProfile(p)
				}
				if err != nil {
					respondText(w, http.StatusBadRequest, err.Error())
					return
				}
				respondText(w, http.StatusOK, "Profile registered")
				return
			}
			respondJSON(w, app.Engine.Profiles().IDs())
		case "/invalidate":
			session := q.Get("session")
			if session == "" {
				respondText(w, http.StatusBadRequest, "session is required")
				return
			}
			removed := app.Engine.InvalidateSession(session)
			app.hub.Broadcast(&rotationEvent{Type: "invalidated", Session: session, Time: time.Now()})
			respondJSON(w, map[string]bool{"removed": removed})
		case "/sweep":
			respondJSON(w, map[string]int{"removed": app.Engine.SweepExpired()})
		case "/events":
			app.hub.Serve(w, r)
		default:
			respondText(w, http.StatusNotFound, "Not Found")
		}
	})
	return &http.Server{
		Addr: config.Listen,
		// h2c && h1
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
}
