package session

import (
	"context"
	"fmt"

	"voxterm/internal/fsm"
	"voxterm/internal/ipc"
	"voxterm/internal/phrase"
)

// Handle serves IPC operations by injecting control events into the queue.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	state := c.State()
	switch req.Op {
	case "status":
		return ipc.Response{OK: true, State: string(state), Target: c.CurrentTarget(), Message: "status"}
	case "sleep":
		if state == fsm.StateDormant {
			return ipc.Response{OK: true, State: string(state), Message: "already dormant"}
		}
		c.enqueue(event{kind: eventControl, action: phrase.ActionSleep})
		return ipc.Response{OK: true, State: string(state), Message: "sleep requested"}
	case "wake":
		if fsm.IsAwake(state) {
			return ipc.Response{OK: true, State: string(state), Message: "already listening"}
		}
		c.enqueue(event{kind: eventControl, action: actionWake})
		return ipc.Response{OK: true, State: string(state), Message: "wake requested"}
	case "exit":
		c.enqueue(event{kind: eventControl, action: phrase.ActionExit})
		return ipc.Response{OK: true, State: string(state), Message: "exit requested"}
	default:
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("unknown op: %s", req.Op)}
	}
}
