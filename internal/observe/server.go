// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

// Package observe exposes the simulation's observation surface
// (GetAllEntries/GetAllDistances) to out-of-process consumers such as a
// TUI or density-plotting client over HTTP and WebSocket. It never reaches
// into simulation or consensus internals — only their exported
// SystemAddrs methods.
package observe

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/shirou/gopsutil/load"
	"github.com/shirou/gopsutil/mem"
	"golang.org/x/time/rate"

	"github.com/probechain/oddgossip/consensus"
	"github.com/probechain/oddgossip/log"
)

// SystemObserver is the subset of *simulation.SystemAddrs this package
// depends on, named explicitly so tests can substitute a fake harness
// without starting a real simulation.
type SystemObserver interface {
	GetAllEntries(ctx context.Context) ([]consensus.Entry, error)
	GetAllDistances(ctx context.Context) ([]uint32, error)
}

// Server is the observation HTTP+WebSocket API.
type Server struct {
	sys          SystemObserver
	streamPeriod time.Duration
	limiter      *rate.Limiter
	upgrader     websocket.Upgrader
	log          *log.Logger

	httpServer *http.Server
}

// NewServer builds a Server over sys. streamPeriod controls how often
// /stream pushes a fresh distances snapshot.
func NewServer(sys SystemObserver, streamPeriod time.Duration) *Server {
	return &Server{
		sys:          sys,
		streamPeriod: streamPeriod,
		limiter:      rate.NewLimiter(rate.Limit(20), 20),
		upgrader:     websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		log:          log.New("component", "observe"),
	}
}

func (s *Server) routes() http.Handler {
	router := httprouter.New()
	router.GET("/entries", s.handleEntries)
	router.GET("/distances", s.handleDistances)
	router.GET("/stream", s.handleStream)
	router.GET("/health", s.handleHealth)
	return cors.AllowAll().Handler(router)
}

// ListenAndServe binds addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{Handler: s.routes()}
	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.Serve(ln) }()

	s.log.Info("observation server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) rateLimited(w http.ResponseWriter) bool {
	if s.limiter.Allow() {
		return false
	}
	http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	return true
}

type entryView struct {
	Oddsketch string `json:"oddsketch"`
	Mass      uint32 `json:"mass"`
	Version   uint64 `json:"version"`
}

func toEntryViews(entries []consensus.Entry) []entryView {
	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = entryView{
			Oddsketch: hex.EncodeToString(e.Oddsketch[:]),
			Mass:      e.Mass,
			Version:   e.Version,
		}
	}
	return views
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.rateLimited(w) {
		return
	}
	entries, err := s.sys.GetAllEntries(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, toEntryViews(entries))
}

func (s *Server) handleDistances(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.rateLimited(w) {
		return
	}
	distances, err := s.sys.GetAllDistances(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, distances)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	type health struct {
		LoadAvg1    float64 `json:"load_avg_1,omitempty"`
		MemUsedPct  float64 `json:"mem_used_percent,omitempty"`
		HealthError string  `json:"error,omitempty"`
	}
	h := health{}
	if avg, err := load.Avg(); err == nil {
		h.LoadAvg1 = avg.Load1
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.MemUsedPct = vm.UsedPercent
	}
	writeJSON(w, h)
}

// handleStream upgrades to a WebSocket connection and pushes a distances
// snapshot every streamPeriod until the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(s.streamPeriod)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			distances, err := s.sys.GetAllDistances(ctx)
			if err != nil {
				return
			}
			if err := conn.WriteJSON(distances); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
