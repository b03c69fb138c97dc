package kernel

// ReloadHandlers swaps in fresh control/shell handler tables while the
// kernel keeps running, the C11 design-only seam from SPEC_FULL.md
// §4.11. It is a no-op unless Config.LiveReload is set: this repo
// carries the seam original_source/core.py's reload_handlers occupies,
// but has no actual hot-code-loading behind it, since Go has no
// import-cache-busting equivalent to swap in recompiled handler code.
// A real deployment would wire this to a plugin loader that produces
// new HandlerFunc values at runtime.
func (s *Supervisor) ReloadHandlers(control, shell map[string]HandlerFunc) bool {
	if !s.Config.LiveReload {
		return false
	}
	if control != nil {
		s.Control.Reload(control)
	}
	if shell != nil {
		s.Shell.Reload(shell)
	}
	return true
}
