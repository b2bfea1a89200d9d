// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for a transfer:
//  1. [WorkspacePickView] : Browse fetched workspaces and toggle the ones to migrate
//  2. [ConfirmView] : Confirm the transfer operation
//  3. [TransferView] : Monitor real-time progress updates
//  4. [ResultView] : Display per-group transfer counts
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the TransferEngine, providing non-blocking status reporting during transfers.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
