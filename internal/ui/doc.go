// Package ui is the Bubble Tea front end for stockpulse.
//
// The model never talks to the scoring service directly. It drives a Session
// (see package session) and renders the snapshots the session publishes:
//
//   - header: service health, rate-limit state and the cooldown countdown
//   - command bar: key hints, with enter dimmed while submissions are gated
//   - input: the ticker or company name to analyze
//   - status line: spinner while an analysis is pending, or the reason
//     submissions are paused
//   - result viewport: verdict, guidance, factors, metrics and news, or the
//     failure message and its advisory
//   - log pane (ctrl+l): the tail of the client log file
//
// Blocking session calls run inside tea.Cmds. Store change events are read
// one at a time by waitForEventCmd, which re-arms itself after every event,
// so the program loop only ever sees immutable snapshots.
//
// Themes cycle with ctrl+t and are not persisted.
package ui
