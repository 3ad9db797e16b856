// seehuhn.de/go/takeoff - quantity takeoff annotations for PDF drawings
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package config reads the engine configuration from YAML files.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"seehuhn.de/go/takeoff/history"
	"seehuhn.de/go/takeoff/session"
	"seehuhn.de/go/takeoff/snap"
)

// Config holds all engine configuration.
type Config struct {
	Document DocumentConfig `yaml:"document"`
	Snap     SnapConfig     `yaml:"snap"`
	History  HistoryConfig  `yaml:"history"`
	Export   ExportConfig   `yaml:"export"`
}

// DocumentConfig controls how documents are opened.
type DocumentConfig struct {
	// BaseScale is the render scale of document coordinates, in
	// document pixels per PDF unit.
	BaseScale float64 `yaml:"base_scale"`
}

// SnapConfig controls the snapping engine.
type SnapConfig struct {
	Radius   float64  `yaml:"radius"`
	GridSize float64  `yaml:"grid_size"`
	Sources  []string `yaml:"sources"` // endpoints | intersections | onpath | markups | grid
}

// HistoryConfig bounds the undo log.
type HistoryConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// ExportConfig sets the export defaults.
type ExportConfig struct {
	Viewports bool   `yaml:"viewports"`
	Author    string `yaml:"author"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML configuration file.  Missing values fall back to
// the built-in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Document.BaseScale <= 0 {
		c.Document.BaseScale = session.DefaultBaseScale
	}
	if c.Snap.Radius <= 0 {
		c.Snap.Radius = snap.DefaultRadius
	}
	if c.Snap.GridSize <= 0 {
		c.Snap.GridSize = snap.DefaultGridSize
	}
	if c.History.MaxDepth <= 0 {
		c.History.MaxDepth = history.DefaultMaxDepth
	}
}

// SnapModes translates the configured source names into the snap mode
// bit set.  An empty list enables every source.
func (c *Config) SnapModes() snap.Mode {
	if len(c.Snap.Sources) == 0 {
		return snap.All
	}
	var mode snap.Mode
	for _, name := range c.Snap.Sources {
		switch name {
		case "endpoints":
			mode |= snap.Endpoints
		case "intersections":
			mode |= snap.Intersections
		case "onpath":
			mode |= snap.OnPath
		case "markups":
			mode |= snap.Markups
		case "grid":
			mode |= snap.Grid
		}
	}
	if mode == 0 {
		mode = snap.All
	}
	return mode
}
