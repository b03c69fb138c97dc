package kernel

import (
	"os"

	"k8s.io/klog/v2"
)

// handleKernelInfoRequest answers kernel_info_request on either the
// shell or control channel.
func handleKernelInfoRequest(s *Supervisor, receipt Receipt) error {
	return receipt.Reply("kernel_info_reply", s.Info)
}

// handleShutdownRequest replies, then either replaces the execution
// session (restart: true; the kernel stays live) or tears the kernel
// down and exits the process. The restart path goes through
// NewExecutionSession, the same trigger the admin surface's
// DELETE /kernel/{id} with signal:15 uses (SPEC_FULL.md §9). The new
// Session wraps the current Interpreter, so bindings made before the
// restart remain visible to later code.
func handleShutdownRequest(s *Supervisor, receipt Receipt) error {
	content := ContentOf(receipt.Msg.Content)
	restart := content.Bool("restart")

	if err := receipt.Reply("shutdown_reply", shutdownReply{Restart: restart}); err != nil {
		return err
	}

	if restart {
		klog.Infof("kernel %s restarting its execution session in response to shutdown_request", s.KernelID)
		s.NewExecutionSession(s.Session.Interp)
		return nil
	}

	klog.Infof("kernel %s shutting down in response to shutdown_request", s.KernelID)
	// TearDown waits for every poll loop, including the one running this
	// handler, so it runs on its own goroutine.
	go func() {
		s.TearDown()
		os.Exit(0)
	}()
	return nil
}

// handleInterruptRequest flips the session's cooperative-interrupt
// flag; the running statement loop observes it at the next statement
// boundary (see executor.go). There is no preemptive interruption of
// an in-flight statement — see DESIGN.md Open Question decision #1.
func handleInterruptRequest(s *Supervisor, receipt Receipt) error {
	s.Session.Interrupt()
	return receipt.ReplyControl("interrupt_reply", struct {
		Status string `json:"status"`
	}{"ok"})
}

// handleExecuteRequest runs code through the executor and reports the
// result, grounded on the teacher's handleExecuteRequest and
// original_source/handlers/dispatch/execution.py's execute_request,
// including that handler's silent-and-empty-code early return.
func handleExecuteRequest(s *Supervisor, receipt Receipt) error {
	content := ContentOf(receipt.Msg.Content)
	code := content.String("code")
	silent := content.Bool("silent")

	if silent && code == "" {
		return receipt.Reply("execute_reply", map[string]interface{}{
			"status":           "ok",
			"execution_count":  s.execCount.Load(),
			"user_expressions": map[string]interface{}{},
		})
	}

	execCount := int(s.execCount.Load())
	if !silent {
		execCount = int(s.execCount.Add(1))
	}

	if err := receipt.PublishExecutionInput(execCount, code); err != nil {
		klog.Warningf("publishing execution input: %v", err)
	}

	executor := &Executor{Session: s.Session}
	result := executor.Run(code, receipt, execCount)

	replyContent := map[string]interface{}{
		"execution_count":  execCount,
		"user_expressions": map[string]interface{}{},
	}

	switch {
	case result.Interrupted:
		replyContent["status"] = "abort"
	case result.Err != nil:
		replyContent["status"] = "error"
		replyContent["ename"] = result.Err.Name
		replyContent["evalue"] = result.Err.Value
		replyContent["traceback"] = result.Err.Traceback
		if err := receipt.PublishExecutionError(result.Err.Name, result.Err.Value, result.Err.Traceback); err != nil {
			klog.Warningf("publishing execution error: %v", err)
		}
	default:
		replyContent["status"] = "ok"
		if !silent && len(result.Data.Data) != 0 {
			if err := receipt.PublishExecutionResult(execCount, result.Data); err != nil {
				klog.Warningf("publishing execution result: %v", err)
			}
		}
	}

	return receipt.Reply("execute_reply", replyContent)
}

// handleIsCompleteRequest always reports "complete": a real
// statement-completeness check would need the embedded interpreter's
// own parser, which gomacro does not expose separately from Eval
// (same limitation the teacher's checkComplete left as a stub).
func handleIsCompleteRequest(s *Supervisor, receipt Receipt) error {
	return receipt.Reply("is_complete_reply", isCompleteReply{Status: "complete"})
}

// handleCompleteRequest asks the interpreter for completions. Unlike
// the teacher's hard-coded "no completions found" error, an empty
// result set is reported as status: ok per spec.md §4.5's documented
// allowance.
func handleCompleteRequest(s *Supervisor, receipt Receipt) error {
	content := ContentOf(receipt.Msg.Content)
	code := content.String("code")
	cursorPos := content.Int("cursor_pos")

	prefix, matches, _ := s.Session.Interp.CompleteWords(code, cursorPos)

	return receipt.Reply("complete_reply", map[string]interface{}{
		"status":       "ok",
		"matches":      matches,
		"cursor_start": cursorPos - len(prefix),
		"cursor_end":   cursorPos,
		"metadata":     map[string]interface{}{},
	})
}

// handleHistoryRequest answers history_request with every entry of the
// session's ResultHistory, oldest first, as (0, execution_count, code)
// triples.
func handleHistoryRequest(s *Supervisor, receipt Receipt) error {
	n := s.Session.History.Len()
	history := make([][3]interface{}, 0, n)
	for i := 0; i < n; i++ {
		r, ok := s.Session.At(i)
		if !ok {
			continue
		}
		history = append(history, [3]interface{}{0, r.Count, r.Code})
	}
	return receipt.Reply("history_reply", map[string]interface{}{
		"status": "ok",
		"history": history,
	})
}

// handleCommInfoRequest reports no active comms: the comm-target
// plugin protocol is an explicit Non-goal (SPEC_FULL.md §9).
func handleCommInfoRequest(s *Supervisor, receipt Receipt) error {
	return receipt.Reply("comm_info_reply", map[string]interface{}{
		"status": "ok",
		"comms":  map[string]interface{}{},
	})
}
