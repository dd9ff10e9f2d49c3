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

// Package config loads the simulation's tunables from a TOML file, the
// ambient configuration layer the core protocol intentionally has no
// opinion about.
package config

import (
	"errors"
	"io"
	"os"

	"github.com/naoina/toml"
)

// Config holds every tunable StartSimulation and internal/observe need.
// Zero value is not valid; use Default() as a starting point.
type Config struct {
	NodeCount             int    `toml:"node_count"`
	HashRate              uint64 `toml:"hash_rate"`
	HeartbeatMs           uint64 `toml:"heartbeat_ms"`
	FaultRate             uint8  `toml:"fault_rate"`
	SampleSize            int    `toml:"sample_size"`
	WalletFan             int    `toml:"wallet_fan"`
	BroadcastIntervalMs   uint64 `toml:"broadcast_interval_ms"`
	ObserveListenAddr     string `toml:"observe_listen_addr"`
	ObserveStreamPeriodMs uint64 `toml:"observe_stream_period_ms"`
}

// Default mirrors the parameters the original simulation's main entry
// point hard-coded (300 nodes, hash_rate 1, heartbeat 1s, sample 16,
// wallet_fan 10, broadcast interval 1ms), scaled down for a sane
// out-of-the-box CLI default.
func Default() Config {
	return Config{
		NodeCount:             30,
		HashRate:              1,
		HeartbeatMs:           1000,
		FaultRate:             1,
		SampleSize:            4,
		WalletFan:             2,
		BroadcastIntervalMs:   200,
		ObserveListenAddr:     "127.0.0.1:8585",
		ObserveStreamPeriodMs: 500,
	}
}

// Validate checks that the configuration is usable by StartSimulation and
// internal/observe.
func (c Config) Validate() error {
	if c.NodeCount <= 0 {
		return errors.New("config: node_count must be positive")
	}
	if c.HeartbeatMs == 0 {
		return errors.New("config: heartbeat_ms must be positive")
	}
	if c.SampleSize <= 0 {
		return errors.New("config: sample_size must be positive")
	}
	if c.WalletFan <= 0 {
		return errors.New("config: wallet_fan must be positive")
	}
	if c.BroadcastIntervalMs == 0 {
		return errors.New("config: broadcast_interval_ms must be positive")
	}
	if c.FaultRate > 100 {
		return errors.New("config: fault_rate must be in [0, 100]")
	}
	if c.ObserveStreamPeriodMs == 0 {
		return errors.New("config: observe_stream_period_ms must be positive")
	}
	return nil
}

// Load reads and decodes a TOML configuration file, starting from
// Default() so the file only needs to override what it cares about.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Config{}, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}
