// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for threadline.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display the effective configuration
//   path                Show the configuration file path
//   get KEY             Print one value
//   set KEY VALUE       Write one value to the config file
//
// Examples:
//   threadline config
//   threadline config show --json
//   threadline config get server.base_url
//   threadline config set thread.graph research
//   threadline config set ui.theme light
//
// Keys use dot notation; run "threadline config show" to list them.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/threadline/internal/config"
)

// ConfigShowData is the payload of "config show --json".
type ConfigShowData struct {
	Path   string                 `json:"path"`
	Exists bool                   `json:"exists"`
	Values map[string]interface{} `json:"values"`
}

// =============================================================================
// CONFIG COMMAND HANDLER
// =============================================================================

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}
	p := NewArgParser(args.Raw)

	switch args.Subcommand {
	case "", "show":
		cfg, _, err := LoadConfig(args)
		if err != nil {
			return err
		}
		return configShow(os.Stdout, cfg, path, args.JSON)

	case "path":
		if args.JSON {
			return NewJSONResponse("config path", map[string]string{"path": path}).Print()
		}
		fmt.Println(path)
		return nil

	case "get":
		if args.Name == "" {
			return ErrMissingArgument("key", "threadline config get server.base_url")
		}
		cfg, _, err := LoadConfig(args)
		if err != nil {
			return err
		}
		return configGet(os.Stdout, cfg, args.Name, args.JSON)

	case "set":
		key, value := args.Name, strings.Join(p.PositionalFrom(2), " ")
		if key == "" || value == "" {
			return ErrMissingArgument("key and value", "threadline config set ui.theme dark")
		}
		if err := configSet(path, key, value); err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("config set", map[string]string{"key": key, "value": value}).Print()
		}
		fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
		return nil

	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown config subcommand",
			Example: "threadline config [show|path|get|set]",
		}
	}
}

func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ActivePath()
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func configShow(w io.Writer, cfg *config.Config, path string, jsonMode bool) error {
	_, statErr := os.Stat(path)
	exists := statErr == nil

	if jsonMode {
		values := make(map[string]interface{})
		for _, key := range config.GetAllKeys() {
			if v, err := cfg.Get(key); err == nil {
				values[key] = v
			}
		}
		return NewJSONResponse("config show", ConfigShowData{Path: path, Exists: exists, Values: values}).Print()
	}

	fmt.Fprintln(w, TitleStyle.Render("threadline Configuration"))
	fmt.Fprintln(w, RenderSeparator(50))
	for _, key := range config.GetAllKeys() {
		v, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", RenderLabel(key), ValueStyle.Render(fmt.Sprint(v)))
	}
	fmt.Fprintln(w, RenderSeparator(50))
	note := ""
	if !exists {
		note = " (not created yet, defaults in use)"
	}
	fmt.Fprintf(w, "%s%s\n", DimStyle.Render(path), DimStyle.Render(note))
	return nil
}

func configGet(w io.Writer, cfg *config.Config, key string, jsonMode bool) error {
	v, err := cfg.Get(key)
	if err != nil {
		return &ValidationError{Field: "key", Value: key, Reason: err.Error(), Example: "threadline config get ui.theme"}
	}
	if jsonMode {
		return NewJSONResponse("config get", map[string]interface{}{"key": key, "value": v}).Print()
	}
	fmt.Fprintln(w, v)
	return nil
}

// configSet writes one key to the file at path. Only file values are
// persisted; environment overrides are left out.
func configSet(path, key, value string) error {
	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		load := config.LoadTOML
		if strings.HasSuffix(path, ".json") {
			load = config.LoadJSON
		}
		if err := load(cfg, path); err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return &ValidationError{Field: "key", Value: key, Reason: err.Error(), Example: "threadline config set ui.theme dark"}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}
