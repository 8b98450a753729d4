package domain

type edge struct {
	target OrderStatus
	actor  Actor
}

// transitions is the single source of truth for the lifecycle graph.
// Rejecting a cancellation is not listed: its target is the captured
// previous status, which Transition handles as a restore edge.
var transitions = map[OrderStatus][]edge{
	StatusProcessing: {
		{StatusShipped, ActorAdmin},
		{StatusCancelRequested, ActorCustomer},
	},
	StatusShipped: {
		{StatusArrived, ActorAdmin},
		{StatusCancelRequested, ActorCustomer},
	},
	StatusArrived: {
		{StatusCompleted, ActorAdmin},
	},
	StatusCompleted: {
		{StatusReturnRequested, ActorCustomer},
	},
	StatusCancelRequested: {
		{StatusCancelled, ActorAdmin},
	},
	StatusReturnRequested: {
		{StatusReturnAccepted, ActorAdmin},
		{StatusReturnRejected, ActorAdmin},
	},
}

// Transition moves the order to target if the edge exists and the actor is
// allowed on it. It reports whether anything changed: an order already in the
// target state is a no-op success so retried requests stay idempotent.
//
// Entering cancel_requested or return_requested snapshots the current status;
// rejecting a cancellation restores it and clears the request record. Return
// rejection is terminal and does not restore.
func (o *Order) Transition(target OrderStatus, actor Actor) (bool, error) {
	if !target.Known() {
		return false, ErrInvalidStatus
	}
	if o.Status == target {
		return false, nil
	}

	if o.Status == StatusCancelRequested && o.PreviousStatus != "" && target == o.PreviousStatus {
		if actor != ActorAdmin {
			return false, ErrUnauthorized
		}
		o.Status = o.PreviousStatus
		o.PreviousStatus = ""
		o.CancelRequest = nil
		return true, nil
	}

	var required Actor
	found := false
	for _, e := range transitions[o.Status] {
		if e.target == target {
			required = e.actor
			found = true
			break
		}
	}
	if !found {
		return false, ErrInvalidTransition
	}
	if actor != required {
		return false, ErrUnauthorized
	}

	switch target {
	case StatusCancelRequested, StatusReturnRequested:
		o.PreviousStatus = o.Status
	default:
		o.PreviousStatus = ""
	}
	o.Status = target
	return true, nil
}
