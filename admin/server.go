// Package admin implements the kernel provisioner's REST surface:
// spawn, list, inspect, and scram kernels running in this process.
// Route semantics are grounded on original_source/handlers/web/kernel.py's
// doHead/doGet/doPost/doDelete; the transport is stdlib net/http per
// DESIGN.md's stdlib justification (no example repo in the corpus
// wires a router package to a kernel-shaped service).
package admin

import (
	"encoding/json"
	"net/http"
	"runtime"

	"github.com/ignition-sfc/jupyter-kernel/kernel"
	"k8s.io/klog/v2"
)

// Server is the admin HTTP surface. KernelName/Version are stamped
// into every spawned kernel's kernel_info_reply.
type Server struct {
	Registry       *kernel.Registry
	KernelName     string
	Version        string
	NewInterpreter func() kernel.Interpreter
}

// NewServer constructs a Server backed by the given registry.
func NewServer(registry *kernel.Registry, kernelName, version string, newInterpreter func() kernel.Interpreter) *Server {
	return &Server{Registry: registry, KernelName: kernelName, Version: version, NewInterpreter: newInterpreter}
}

// Handler returns the configured http.Handler for this server's
// routes, ready to pass to http.ListenAndServe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("HEAD /kernel/{id}", s.handleHead)
	mux.HandleFunc("GET /kernel", s.handleList)
	mux.HandleFunc("GET /kernel/{id}", s.handleGet)
	mux.HandleFunc("POST /kernel", s.handlePost)
	mux.HandleFunc("DELETE /kernel/{id}", s.handleDeleteOne)
	mux.HandleFunc("DELETE /kernel", s.handleDeleteAll)
	return mux
}

// handleHead reports 200 if the kernel exists, 404 otherwise, per
// doHead.
func (s *Server) handleHead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.Registry.Get(id); !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleList returns every live kernel ID, per doGet's no-id form.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"kernels": s.Registry.List()})
}

// handleGet returns a kernel's connection info, per doGet's
// with-id form.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sup, ok := s.Registry.Get(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	cfg := sup.Config
	cfg.KernelName = s.KernelName
	writeJSON(w, http.StatusOK, connectionFileOf(cfg, sup))
}

type spawnRequest struct {
	KernelID string        `json:"kernel_id"`
	Options  kernel.Config `json:"options"`
}

// handlePost spawns a new kernel, or — if kernel_id names an
// already-live kernel — returns its connection info unchanged, warning
// on option drift instead of silently ignoring the mismatch, per
// doPost and the supplemented feature in SPEC_FULL.md §9.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	var req spawnRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.KernelID != "" {
		if sup, ok := s.Registry.Get(req.KernelID); ok {
			if !sup.Config.SameOptions(req.Options) {
				klog.Warningf("POST /kernel: kernel %s already live with different options; ignoring new options", req.KernelID)
			}
			writeJSON(w, http.StatusOK, connectionFileOf(sup.Config, sup))
			return
		}
	}

	cfg := kernel.LoadConfigEnv(req.Options)
	info := kernel.KernelInfo{
		ProtocolVersion:       kernel.ProtocolVersion,
		Implementation:        s.KernelName,
		ImplementationVersion: s.Version,
		Banner:                s.KernelName + " kernel v" + s.Version,
		LanguageInfo: kernel.KernelLanguageInfo{
			Name:          "go",
			Version:       runtime.Version(),
			FileExtension: ".go",
		},
	}

	sup, err := kernel.NewSupervisor(cfg, info, s.NewInterpreter(), s.Registry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := sup.Launch(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, connectionFileOf(sup.Config, sup))
}

type deleteRequest struct {
	Signal int `json:"signal"`
}

// handleDeleteOne scrams a kernel outright, unless the body specifies
// {"signal":15} in which case only its execution session is restarted
// (the process, sockets, and registry entry all survive), per doDelete.
func (s *Server) handleDeleteOne(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sup, ok := s.Registry.Get(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var req deleteRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.Signal == 15 {
		sup.NewExecutionSession(s.NewInterpreter())
		writeJSON(w, http.StatusOK, map[string]interface{}{"restarted": id})
		return
	}

	sup.TearDown()
	writeJSON(w, http.StatusOK, map[string]interface{}{"scrammed": []string{id}})
}

// handleDeleteAll scrams every live kernel, per doDelete's no-id form.
func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	ids := s.Registry.RemoveAll()
	writeJSON(w, http.StatusOK, map[string]interface{}{"scrammed": ids})
}

func connectionFileOf(cfg kernel.Config, sup *kernel.Supervisor) map[string]interface{} {
	return map[string]interface{}{
		"kernel_id":          sup.KernelID,
		"kernel_name":        cfg.KernelName,
		"transport":          cfg.Transport,
		"ip":                 cfg.IP,
		"shell_port":         cfg.ShellPort,
		"control_port":       cfg.ControlPort,
		"stdin_port":         cfg.StdinPort,
		"iopub_port":         cfg.IOPubPort,
		"hb_port":            cfg.HBPort,
		"signature_scheme":   cfg.SignatureScheme,
		"key":                cfg.Key,
		"server_public_key":  sup.KeyPair.PublicZ85(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.Warningf("encoding admin response: %v", err)
	}
}
