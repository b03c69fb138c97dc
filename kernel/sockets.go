package kernel

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-zeromq/zmq4"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// SyncSocket pairs a zmq4.Socket with the mutex that must be held
// while sending on it, following the teacher's Socket/RunWithSocket
// convention (a ROUTER/PUB socket is not safe for concurrent Send
// calls from multiple goroutines).
type SyncSocket struct {
	Socket zmq4.Socket
	mu     sync.Mutex
}

// RunLocked invokes fn while holding the socket's send lock.
func (s *SyncSocket) RunLocked(fn func(zmq4.Socket) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.Socket)
}

// SocketGroup holds the five sockets a kernel communicates over, plus
// the shared signing key.
type SocketGroup struct {
	Shell   *SyncSocket
	Control *SyncSocket
	Stdin   *SyncSocket
	IOPub   *SyncSocket
	HB      *SyncSocket
	Key     []byte
}

// bindSockets creates and binds all five sockets per cfg, matching
// gonb's bindSockets but restoring a dedicated poller role for
// control (gonb and the teacher both fold control into the same
// select loop as shell; this kernel's CardiacArrest liveness model
// needs control isolated from execution so a long-running cell never
// delays an interrupt_request or shutdown_request).
func bindSockets(cfg Config) (*SocketGroup, error) {
	ctx := context.Background()
	sg := &SocketGroup{
		Shell:   &SyncSocket{Socket: zmq4.NewRouter(ctx)},
		Control: &SyncSocket{Socket: zmq4.NewRouter(ctx)},
		Stdin:   &SyncSocket{Socket: zmq4.NewRouter(ctx)},
		IOPub:   &SyncSocket{Socket: zmq4.NewPub(ctx)},
		HB:      &SyncSocket{Socket: zmq4.NewRep(ctx)},
		Key:     []byte(cfg.Key),
	}

	addr := func(port int) string {
		return fmt.Sprintf("%s://%s:%d", cfg.Transport, cfg.IP, port)
	}

	binds := []struct {
		name string
		sck  zmq4.Socket
		port int
	}{
		{"shell", sg.Shell.Socket, cfg.ShellPort},
		{"control", sg.Control.Socket, cfg.ControlPort},
		{"stdin", sg.Stdin.Socket, cfg.StdinPort},
		{"iopub", sg.IOPub.Socket, cfg.IOPubPort},
		{"hb", sg.HB.Socket, cfg.HBPort},
	}
	for _, b := range binds {
		if err := b.sck.Listen(addr(b.port)); err != nil {
			return nil, errors.Wrapf(err, "binding %s socket", b.name)
		}
	}
	return sg, nil
}

// Close tears down every socket in the group, logging but not failing
// on individual close errors so teardown always completes.
func (sg *SocketGroup) Close() {
	for name, sck := range map[string]zmq4.Socket{
		"shell": sg.Shell.Socket, "control": sg.Control.Socket,
		"stdin": sg.Stdin.Socket, "iopub": sg.IOPub.Socket, "hb": sg.HB.Socket,
	} {
		if err := sck.Close(); err != nil {
			klog.Warningf("closing %s socket: %v", name, err)
		}
	}
}

// recvResult is what a per-socket receive goroutine pushes onto its
// channel.
type recvResult struct {
	msg zmq4.Msg
	err error
}

// pollSocket runs sck.Recv() in a loop, forwarding each result onto ch
// until done is closed. This is the one-goroutine-per-socket pattern
// used identically by the teacher, gonb, and karl: go-zeromq/zmq4 has
// no libzmq-style multi-socket poller, so each blocking Recv runs on
// its own goroutine and a central select fans them back in.
func pollSocket(sck zmq4.Socket, ch chan<- recvResult, done <-chan struct{}) {
	defer close(ch)
	for {
		msg, err := sck.Recv()
		select {
		case ch <- recvResult{msg, err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

// ProcessPoller receives from the control socket, kept apart from the
// execution poller so control stays responsive regardless of how long
// an execution is running. The heartbeat socket is served by its own
// goroutine (see heartbeat.go), not by this poller.
type ProcessPoller struct {
	Control <-chan recvResult
	done    chan struct{}
}

// ExecutionPoller multiplexes the shell and stdin sockets.
type ExecutionPoller struct {
	Shell <-chan recvResult
	Stdin <-chan recvResult
	done  chan struct{}
}

// newProcessPoller starts the control-socket receive goroutine. The
// heartbeat socket is driven separately (see heartbeat.go) since its
// request/reply cadence is simpler than a generic message loop.
func newProcessPoller(sg *SocketGroup) *ProcessPoller {
	done := make(chan struct{})
	ctl := make(chan recvResult)
	go pollSocket(sg.Control.Socket, ctl, done)
	return &ProcessPoller{Control: ctl, done: done}
}

func (p *ProcessPoller) Stop() { close(p.done) }

func newExecutionPoller(sg *SocketGroup) *ExecutionPoller {
	done := make(chan struct{})
	shell := make(chan recvResult)
	stdin := make(chan recvResult)
	go pollSocket(sg.Shell.Socket, shell, done)
	go pollSocket(sg.Stdin.Socket, stdin, done)
	return &ExecutionPoller{Shell: shell, Stdin: stdin, done: done}
}

func (p *ExecutionPoller) Stop() { close(p.done) }
