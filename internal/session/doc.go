// Package session implements the orchestration behind the analysis screen:
// the connectivity monitor, the rate-limit tracker with its countdown, the
// single-flight analysis controller and the Session that owns them.
//
// Control flow:
//
//	Start ─┬─> Monitor.Probe   (GET /health)      ─┐
//	       └─> Tracker.Probe   (GET /rate-limit)  ─┴─> store
//
//	Submit ─> gate (healthy, not limited, idle) ─> Controller.Submit
//	              Pending ─> POST /analyze ─┬─> Succeeded(result, verdict)
//	                                        ├─> Failed(RateLimited) + Tracker.Probe
//	                                        └─> Failed(EmptyInput|Unreachable|ServerError|MisconfiguredUpstream)
//
// The countdown ticks once per Tracker tick. When it would drop below one it
// clears to zero and issues exactly one re-probe. Nothing retries on its own.
package session
