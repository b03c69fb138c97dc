package kernel

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	"k8s.io/klog/v2"
)

// Supervisor is the Go rendering of original_source/core.py's
// JupyterKernelCore/JupyterKernel: it owns the socket set, the current
// execution Session, the two independent poll loops, and the
// heartbeat-driven liveness watchdog. A Session is replaced wholesale
// on restart; the Supervisor itself lives for the kernel's whole
// process lifetime.
type Supervisor struct {
	KernelID string
	Config   Config
	Info     KernelInfo
	KeyPair  KeyPair

	Sockets *SocketGroup
	Session *Session

	Control *HandlerTable
	Shell   *HandlerTable

	registry *Registry

	lastHeartbeat  atomic.Int64 // unix nanos
	execCount      atomic.Int32
	pendingRestart atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once
	doneWG   sync.WaitGroup
}

// NewSupervisor allocates a supervisor but does not yet bind sockets
// or start its poll loops; call Launch for that.
func NewSupervisor(cfg Config, info KernelInfo, ir Interpreter, registry *Registry) (*Supervisor, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	kp, err := DefaultKeyPairCache.Get(id.String())
	if err != nil {
		return nil, err
	}
	return &Supervisor{
		KernelID: id.String(),
		Config:   cfg,
		Info:     info,
		KeyPair:  kp,
		Session:  NewSession(ir),
		Control:  newHandlerTable(controlHandlers()),
		Shell:    newHandlerTable(shellHandlers()),
		registry: registry,
		stop:     make(chan struct{}),
	}, nil
}

// Launch binds the socket set, registers the kernel, and starts the
// process and execution poll loops plus the liveness watchdog — the
// Go equivalent of launch_kernel/initialize_kernel.
func (s *Supervisor) Launch() error {
	sg, err := bindSockets(s.Config)
	if err != nil {
		return err
	}
	s.Sockets = sg
	s.touchHeartbeat()

	s.registry.Insert(s)

	process := newProcessPoller(sg)
	execution := newExecutionPoller(sg)

	s.doneWG.Add(3)
	go s.runProcessLoop(process)
	go s.runExecutionLoop(execution)
	go s.runHeartbeat()

	go s.watchPulse()

	klog.Infof("kernel %s launched (shell=%d control=%d iopub=%d stdin=%d hb=%d)",
		s.KernelID, s.Config.ShellPort, s.Config.ControlPort, s.Config.IOPubPort, s.Config.StdinPort, s.Config.HBPort)
	return nil
}

// runProcessLoop is the isolated poller for control, kept separate
// from execution (and from the heartbeat responder, which runs on its
// own goroutine) so a long-running cell never delays an
// interrupt_request or shutdown_request.
func (s *Supervisor) runProcessLoop(p *ProcessPoller) {
	defer s.doneWG.Done()
	defer p.Stop()
	for {
		select {
		case <-s.stop:
			return
		case res, ok := <-p.Control:
			if !ok {
				return
			}
			s.dispatchControl(res)
		}
	}
}

// runExecutionLoop is the isolated poller for shell+stdin.
func (s *Supervisor) runExecutionLoop(e *ExecutionPoller) {
	defer s.doneWG.Done()
	defer e.Stop()
	for {
		select {
		case <-s.stop:
			return
		case res, ok := <-e.Shell:
			if !ok {
				return
			}
			s.dispatchShell(res)
		case res, ok := <-e.Stdin:
			if !ok {
				return
			}
			if res.err != nil {
				if !IsTornDownError(res.err) {
					klog.Errorf("stdin poll error: %v", res.err)
					go s.TearDown()
				}
				continue
			}
			// Inbound stdin traffic is logged and dropped.
			klog.Infof("dropping inbound stdin message (%d frames)", len(res.msg.Frames))
		}
	}
}

func (s *Supervisor) dispatch(res recvResult, table *HandlerTable) {
	if res.err != nil {
		if !IsTornDownError(res.err) {
			klog.Errorf("poll error: %v", res.err)
			// TearDown waits for this loop to return, so it runs on its
			// own goroutine.
			go s.TearDown()
		}
		return
	}
	composed, identities, err := FromWireMsg(res.msg.Frames, s.Sockets.Key)
	if err != nil {
		klog.Warningf("decoding message: %v", err)
		return
	}
	receipt := Receipt{Msg: composed, Identities: identities, Sockets: s.Sockets}

	if err := receipt.PublishKernelStatus(StatusBusy); err != nil {
		klog.Warningf("publishing busy status: %v", err)
	}
	defer func() {
		if err := receipt.PublishKernelStatus(StatusIdle); err != nil {
			klog.Warningf("publishing idle status: %v", err)
		}
	}()

	handler, ok := table.Lookup(composed.Header.MsgType)
	if !ok {
		klog.Warningf("no handler for msg_type %q", composed.Header.MsgType)
		return
	}
	if err := handler(s, receipt); err != nil {
		klog.Errorf("handling %q: %v", composed.Header.MsgType, err)
	}
}

func (s *Supervisor) dispatchControl(res recvResult) { s.dispatch(res, s.Control) }
func (s *Supervisor) dispatchShell(res recvResult)   { s.dispatch(res, s.Shell) }

// touchHeartbeat records that the kernel is alive, called both by the
// heartbeat responder and by anything else observing liveness.
func (s *Supervisor) touchHeartbeat() {
	s.lastHeartbeat.Store(time.Now().UnixNano())
}

// watchPulse is check_pulse translated to Go: once per second, if the
// gap since the last heartbeat exceeds CardiacArrestTimeoutS, raise a
// CardiacArrest and tear the kernel down.
func (s *Supervisor) watchPulse() {
	timeout := time.Duration(s.Config.CardiacArrestTimeoutS) * time.Second
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			last := time.Unix(0, s.lastHeartbeat.Load())
			if time.Since(last) > timeout {
				err := &CardiacArrest{KernelID: s.KernelID, Since: last, Timeout: timeout}
				klog.Errorf("%v", err)
				s.TearDown()
				return
			}
		}
	}
}

// NewExecutionSession replaces the kernel's Session with a fresh one,
// the supplemented heartbeat-driven restart trigger named in
// SPEC_FULL.md §9: invoked both by an explicit restart request and by
// an admin DELETE /kernel/{id} with signal:15.
func (s *Supervisor) NewExecutionSession(ir Interpreter) {
	s.Session = NewSession(ir)
	s.execCount.Store(0)
	s.pushHeartbeatRestartNotice()
}

// pushHeartbeatRestartNotice arms pendingRestart, which the heartbeat
// responder (heartbeat.go) reads; the notice is sent back as the payload of the very next heartbeat pong,
// instead of the ping bytes it would normally echo. A REP socket must
// recv before it can send, so the notice cannot be pushed unsolicited
// the instant the session is replaced; piggybacking it on the next
// pong is the closest Go/zmq4 equivalent of original_source/core.py's
// new_execution_session behavior, and is still observed by any
// provisioner polling heartbeat traffic.
func (s *Supervisor) pushHeartbeatRestartNotice() {
	s.pendingRestart.Store(true)
}

// TearDown stops every poll loop, closes the sockets, removes the
// kernel from its registry, and forgets its cached keypair — the Go
// rendering of original_source/core.py's tear_down.
func (s *Supervisor) TearDown() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if s.Sockets != nil {
			s.Sockets.Close()
		}
		s.doneWG.Wait()
		s.registry.Remove(s.KernelID)
		DefaultKeyPairCache.Forget(s.KernelID)
		klog.Infof("kernel %s torn down", s.KernelID)
	})
}
