// internal/controller/poll_controller.go
package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/adsofthq/adtrack-backend/internal/service"
)

const (
	defaultPollWait = 25 * time.Second
	maxPollWait     = 60 * time.Second
)

// PollController exposes the long-poll endpoints dashboards use to detect
// change. Each request blocks one serving slot for up to the wait budget.
type PollController struct {
	Poller *service.Poller
}

func pollWait(r *http.Request) time.Duration {
	wait := defaultPollWait
	if raw := r.URL.Query().Get("wait"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	if wait > maxPollWait {
		wait = maxPollWait
	}
	return wait
}

// PollUser long-polls the caller's own records.
func (c *PollController) PollUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}

	res, err := c.Poller.AwaitChange(&uid, r.URL.Query().Get("token"), pollWait(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PollAdmin long-polls the full record set.
func (c *PollController) PollAdmin(w http.ResponseWriter, r *http.Request) {
	res, err := c.Poller.AwaitChange(nil, r.URL.Query().Get("token"), pollWait(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
