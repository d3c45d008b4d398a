/*

  Copyright 2012 Dmitry Kolesnikov, All Rights Reserved

  Licensed under the Apache License, Version 2.0 (the "License");
  you may not use this file except in compliance with the License.
  You may obtain a copy of the License at

      http://www.apache.org/licenses/LICENSE-2.0

  Unless required by applicable law or agreed to in writing, software
  distributed under the License is distributed on an "AS IS" BASIS,
  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
  See the License for the specific language governing permissions and
  limitations under the License.

*/

package tuid

import (
	"fmt"
	"os"
	"strconv"
)

// Env variables of the configuration
const (
	EnvStateFile   = "CONFIG_TUID_STATE_FILE"
	EnvBufferSize  = "CONFIG_TUID_BUFFER"
	EnvConcurrency = "CONFIG_TUID_CONCURRENCY"
	EnvTickReset   = "CONFIG_TUID_TICK_RESET"
	EnvSkew        = "CONFIG_TUID_SKEW"
)

// Config of registry
type Config struct {
	// StateFile of system source, empty is DefaultStateFile in temp dir
	StateFile string

	// Node of system source, nil is derived from host fingerprint
	Node *Node

	// BufferSize of system source
	BufferSize int

	// Concurrency of parallel source
	Concurrency int

	TickReset Reset
	Skew      Skew
}

// DefaultConfig of registry
func DefaultConfig() Config {
	return Config{
		BufferSize:  DefaultBufferSize,
		Concurrency: DefaultConcurrency,
		TickReset:   ResetZero,
		Skew:        SkewHold,
	}
}

// ConfigFromEnv overrides default config with env variables
//
//	CONFIG_TUID_STATE_FILE  - path to state file
//	CONFIG_TUID_NODE_ID     - node identity as a string
//	CONFIG_TUID_BUFFER      - buffer size of system source
//	CONFIG_TUID_CONCURRENCY - size of parallel pool
//	CONFIG_TUID_TICK_RESET  - zero | random
//	CONFIG_TUID_SKEW        - hold | follow
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.StateFile = os.Getenv(EnvStateFile)

	if _, has := os.LookupEnv(EnvNodeID); has {
		node := NodeFromEnv()
		cfg.Node = &node
	}

	var err error

	if cfg.BufferSize, err = intFromEnv(EnvBufferSize, cfg.BufferSize); err != nil {
		return cfg, err
	}

	if cfg.Concurrency, err = intFromEnv(EnvConcurrency, cfg.Concurrency); err != nil {
		return cfg, err
	}

	if cfg.TickReset, err = ParseReset(os.Getenv(EnvTickReset)); err != nil {
		return cfg, err
	}

	if cfg.Skew, err = ParseSkew(os.Getenv(EnvSkew)); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func intFromEnv(key string, value int) (int, error) {
	raw, has := os.LookupEnv(key)
	if !has || raw == "" {
		return value, nil
	}

	x, err := strconv.Atoi(raw)
	if err != nil || x <= 0 {
		return value, fmt.Errorf("tuid: %s must be positive integer, got %q", key, raw)
	}
	return x, nil
}

// policies of clocks built from config
func (cfg Config) clockConfig() []ClockConfig {
	return []ClockConfig{
		WithTickReset(cfg.TickReset),
		WithSkew(cfg.Skew),
	}
}
