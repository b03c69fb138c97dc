package kernel

import (
	"github.com/go-zeromq/zmq4"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Receipt wraps an inbound message together with everything needed to
// answer it: its return identities, and the kernel's socket set. It is
// the Go rendering of the original implementation's ContextManagedMessage
// (messages.py): there __enter__/__exit__ auto-send a reply when the
// handler's `with` block exits; here the equivalent discipline is that
// every handler calls exactly one of Reply/Publish per logical
// response and lets the caller defer the status broadcast around it.
type Receipt struct {
	Msg        ComposedMsg
	Identities [][]byte
	Sockets    *SocketGroup
}

// Reply sends msgType back to the return identities over the Shell
// socket. ReplyControl is the Control-socket counterpart.
func (r Receipt) Reply(msgType string, content interface{}) error {
	return r.reply(r.Sockets.Shell, msgType, content)
}

// ReplyControl is Reply for requests received on the control channel.
func (r Receipt) ReplyControl(msgType string, content interface{}) error {
	return r.reply(r.Sockets.Control, msgType, content)
}

func (r Receipt) reply(sck *SyncSocket, msgType string, content interface{}) error {
	msg, err := NewComposed(msgType, r.Msg.Header)
	if err != nil {
		return errors.WithMessage(err, "building reply")
	}
	msg.Content = content
	return sck.RunLocked(func(s zmq4.Socket) error {
		return sendComposed(s, r.Identities, r.Sockets.Key, msg)
	})
}

// Publish sends msgType to all IOPub subscribers, stamped against this
// receipt's parent header. IOPub carries no return identities.
func (r Receipt) Publish(msgType string, content interface{}) error {
	msg, err := NewComposed(msgType, r.Msg.Header)
	if err != nil {
		return errors.WithMessage(err, "building broadcast")
	}
	msg.Content = content
	return r.Sockets.IOPub.RunLocked(func(s zmq4.Socket) error {
		return sendComposed(s, nil, r.Sockets.Key, msg)
	})
}

// PublishKernelStatus broadcasts the kernel's busy/idle/starting state.
func (r Receipt) PublishKernelStatus(state string) error {
	return r.Publish("status", struct {
		ExecutionState string `json:"execution_state"`
	}{state})
}

// PublishExecutionInput tells subscribers what code is about to run.
func (r Receipt) PublishExecutionInput(execCount int, code string) error {
	return r.Publish("execute_input", struct {
		ExecCount int    `json:"execution_count"`
		Code      string `json:"code"`
	}{execCount, code})
}

// PublishExecutionResult broadcasts the rendered value of a completed
// execution.
func (r Receipt) PublishExecutionResult(execCount int, data Data) error {
	return r.Publish("execute_result", struct {
		ExecCount int     `json:"execution_count"`
		Data      MIMEMap `json:"data"`
		Metadata  MIMEMap `json:"metadata"`
	}{execCount, data.Data, ensureMIMEMap(data.Metadata)})
}

// PublishExecutionError broadcasts the first uncaught error/panic from
// an execution.
func (r Receipt) PublishExecutionError(ename, evalue string, traceback []string) error {
	return r.Publish("error", struct {
		Name      string   `json:"ename"`
		Value     string   `json:"evalue"`
		Traceback []string `json:"traceback"`
	}{ename, evalue, traceback})
}

// PublishStream forwards captured stdout/stderr bytes to the
// front-end.
func (r Receipt) PublishStream(stream, data string) error {
	return r.Publish("stream", struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}{stream, data})
}

// streamWriter is an io.Writer that forwards everything written to it
// to a receipt's IOPub stream, grounded on gonb's jupyterStreamWriter.
type streamWriter struct {
	stream string
	r      Receipt
}

func (w *streamWriter) Write(p []byte) (int, error) {
	if err := w.r.PublishStream(w.stream, string(p)); err != nil {
		klog.Warningf("forwarding %d bytes to stream %q: %v", len(p), w.stream, err)
		return 0, err
	}
	return len(p), nil
}
