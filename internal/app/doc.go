// Package app is the composition root for stockpulse.
//
// Run wires the pieces in order:
//
//  1. Load configuration (file, .env, environment, flags)
//  2. Open the file logger; the terminal belongs to the UI
//  3. Build the scoring service client
//  4. Create the Session and start its health and rate-limit probes in the
//     background
//  5. Run the Bubble Tea UI until the user quits or a signal arrives
//  6. Cancel outstanding probes, wait for startup to finish and close the
//     session so the countdown goroutine exits
//
// Data flow:
//
//	┌──────────┐  Submit/Refresh/Reconnect  ┌──────────────┐   HTTP   ┌─────────────────┐
//	│    ui    │ ─────────────────────────▶ │   session    │ ───────▶ │ scoring service │
//	│  (tea)   │ ◀───────────────────────── │ state.Store  │ ◀─────── │                 │
//	└──────────┘   events + snapshots       └──────────────┘          └─────────────────┘
package app
