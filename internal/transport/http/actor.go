package http

import (
	"net/http"

	"github.com/tanihub/agristore-api/internal/domain"
)

// actorHeader carries the caller's role, resolved by the session layer in
// front of this service. The state machine still authorizes every edge; the
// header only identifies who is asking.
const actorHeader = "X-Actor-Role"

func actorFromRequest(r *http.Request) (domain.Actor, bool) {
	switch r.Header.Get(actorHeader) {
	case string(domain.ActorCustomer):
		return domain.ActorCustomer, true
	case string(domain.ActorAdmin):
		return domain.ActorAdmin, true
	}
	return "", false
}
