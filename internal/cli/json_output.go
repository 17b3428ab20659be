// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output support for scripting.
//
// Every command that accepts --json prints one JSONResponse on stdout.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/threadline/internal/storage"
	"github.com/jeranaias/threadline/internal/transcript"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
// Human-readable messages should go to stderr when JSON mode is enabled.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// StderrPrint prints a message to stderr (for human-readable output in JSON mode).
func StderrPrint(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// HistoryData is the transcript printed by "history --json".
type HistoryData struct {
	ThreadID string     `json:"thread_id"`
	Units    []UnitData `json:"units"`
}

// UnitData is one transcript unit.
type UnitData struct {
	Key      string     `json:"key"`
	Role     string     `json:"role"`
	Kind     string     `json:"kind"`
	Content  string     `json:"content,omitempty"`
	Tools    []ToolData `json:"tools,omitempty"`
	File     *FileData  `json:"file,omitempty"`
	Copyable bool       `json:"copyable,omitempty"`
}

// ToolData is one entry of a tool chain unit.
type ToolData struct {
	Title       string `json:"title"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// FileData is a file attachment.
type FileData struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// NewUnitData converts a transcript unit for JSON output.
func NewUnitData(u *transcript.Unit) UnitData {
	d := UnitData{
		Key:      u.Key,
		Role:     string(u.Role),
		Kind:     string(u.Kind),
		Content:  u.Content,
		Copyable: u.Copyable,
	}
	for _, it := range u.Items {
		d.Tools = append(d.Tools, ToolData{Title: it.Title, Status: string(it.Status), Description: it.Description})
	}
	if u.File != nil {
		d.File = &FileData{Name: u.File.Name, Description: u.File.Description}
	}
	return d
}

// CacheEntryData is one cached tool result.
type CacheEntryData struct {
	Key       string `json:"key"`
	Tool      string `json:"tool"`
	ThreadID  string `json:"thread_id"`
	Value     string `json:"value,omitempty"`
	Size      int    `json:"size"`
	UpdatedAt string `json:"updated_at"`
}

// NewCacheEntryData converts a store entry. The value is included only when
// withValue is set.
func NewCacheEntryData(e storage.Entry, withValue bool) CacheEntryData {
	d := CacheEntryData{
		Key:       e.Key,
		Tool:      e.Tool,
		ThreadID:  e.ThreadID,
		Size:      len(e.Value),
		UpdatedAt: e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if withValue {
		d.Value = e.Value
	}
	return d
}
