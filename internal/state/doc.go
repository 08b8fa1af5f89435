// Package state provides the thread-safe session store for stockpulse.
//
// # Overview
//
// The store is the single place where the session components publish what
// they know and where the UI reads it back. It replaces ambient global state
// with one explicitly owned object.
//
//	Writers (one per field):          Consumer (UI):
//	┌─────────────────────────┐      ┌──────────────────┐
//	│ Monitor   → SetHealth   │      │                  │
//	│ Tracker   → SetRateLimit│      │ Subscribe()      │
//	│ Tracker   → SetCountdown│─────→│   ↓ Event        │
//	│ Controller→ SetAnalysis │mutex │ Snapshot()       │
//	└─────────────────────────┘      └──────────────────┘
//
// # Core Types
//
//   - Snapshot: copy of everything the UI renders, plus CanSubmit, the
//     admission gate (healthy AND not rate limited AND nothing pending)
//   - Analysis: the controller state union Idle | Pending | Succeeded | Failed
//   - ErrorInfo: a classified failure with its advisory text
//
// # Notifications
//
// Every mutation bumps Snapshot.Version and sends an Event to each
// subscriber. Sends never block: a full subscriber buffer drops the event,
// which is safe because events only say "re-read the snapshot".
package state
