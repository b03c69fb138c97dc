package kernel

import (
	"github.com/go-zeromq/zmq4"
	"k8s.io/klog/v2"
)

const heartbeatRestartPayload = "restart"

// runHeartbeat answers every ping on the HB REP socket with an echo of
// the same bytes, updating the liveness timestamp on each exchange.
// When a session restart is pending (see Supervisor.pushHeartbeatRestartNotice)
// the next pong carries the "restart" payload instead of echoing the
// ping, the closest REP-socket equivalent of the original
// implementation's out-of-band restart signal.
func (s *Supervisor) runHeartbeat() {
	defer s.doneWG.Done()
	for {
		msg, err := s.Sockets.HB.Socket.Recv()
		if err != nil {
			if !IsTornDownError(err) {
				klog.Warningf("heartbeat recv: %v", err)
			}
			return
		}
		s.touchHeartbeat()

		reply := msg
		if s.pendingRestart.CompareAndSwap(true, false) {
			reply = zmq4.NewMsgFrom([]byte(heartbeatRestartPayload))
		}

		if err := s.Sockets.HB.RunLocked(func(sck zmq4.Socket) error {
			return sck.Send(reply)
		}); err != nil {
			klog.Warningf("heartbeat send: %v", err)
			return
		}

		select {
		case <-s.stop:
			return
		default:
		}
	}
}
