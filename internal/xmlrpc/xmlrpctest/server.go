// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xmlrpctest provides an in-process XML-RPC service for tests.
package xmlrpctest

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/xmlrpc"
)

// Handler answers one call. Returning a *errors.Fault produces a fault
// document; any other error produces HTTP 500.
type Handler func(params []any) (any, error)

// Call is a recorded request.
type Call struct {
	Path   string
	Method string
	Params []any
}

// Server is a fake service. Handlers are keyed by method name; execute_kw
// calls are keyed by "model.method" instead.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

// NewServer starts a fake service. Close it when done.
func NewServer() *Server {
	s := &Server{handlers: map[string]Handler{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Handle registers h for key.
func (s *Server) Handle(key string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[key] = h
}

// Reply registers a handler that always returns v.
func (s *Server) Reply(key string, v any) {
	s.Handle(key, func([]any) (any, error) { return v, nil })
}

// Calls returns the recorded requests in arrival order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	call, err := xmlrpc.ParseCall(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	params := make([]any, 0, len(call.Params))
	for _, p := range call.Params {
		v, err := xmlrpc.Decode(p)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		params = append(params, v)
	}

	key := call.MethodName
	if key == "execute_kw" && len(params) >= 5 {
		model, _ := params[3].(string)
		method, _ := params[4].(string)
		key = model + "." + method
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Path: r.URL.Path, Method: key, Params: params})
	h, ok := s.handlers[key]
	s.mu.Unlock()

	w.Header().Set("Content-Type", xmlrpc.ContentType)
	if !ok {
		_, _ = w.Write(xmlrpc.BuildFault(1, "unknown method "+key))
		return
	}
	out, err := h(params)
	if err != nil {
		var fault *rpcerrors.Fault
		if errors.As(err, &fault) {
			_, _ = w.Write(xmlrpc.BuildFault(fault.Code, fault.Message))
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	v, err := xmlrpc.Encode(out)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp, err := xmlrpc.BuildResponse(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(resp)
}
