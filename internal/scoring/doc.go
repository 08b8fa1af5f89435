// Package scoring provides an HTTP client for the remote equity scoring service.
//
// # Overview
//
// The scoring service owns everything about how an analysis is produced. This
// package only knows its wire contract and turns it into typed values and typed
// errors that the session layer can classify.
//
//   - client.go: resty-backed Client, error types
//   - types.go: payloads mirroring the service schema
//
// # API Endpoints
//
//   - GET /health: liveness plus the api_key_configured capability flag
//   - GET /rate-limit: is_limited, message, seconds_remaining
//   - POST /analyze: {stock_name} in, structured analysis out
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation
//   - Set Accept: application/json and User-Agent: stockpulse/0.1
//   - Carry a fresh X-Request-ID (uuid) so service logs can be correlated
//   - Are never retried here; retry policy belongs to the caller
//
// # Error Handling
//
//   - *TransportError: no response at all (refused, DNS, timeout)
//   - *APIError: non-2xx status with the server's detail text and optional code
//   - ErrInvalidPayload: 2xx response that is not a valid analysis object
//   - "decode response" errors for /health and /rate-limit bodies
//
// Inspect them with errors.As / errors.Is.
//
// # Payload Tolerance
//
// AnalysisResult accepts fractional confidence values (rounded, clamped to
// 0..100) and the older confidence_score key. Fields the client does not model
// are preserved in AnalysisResult.Extra. Metric figures decode into
// decimal.NullDecimal so absent and null values stay distinguishable from zero.
//
// # URL Construction
//
//   - "" → DefaultBaseURL
//   - "localhost:8000" → http://localhost:8000
//   - "https://host/api/" → https://host/api (path prefix kept, trailing slash dropped)
//
// # Thread Safety
//
// The Client is safe for concurrent use.
package scoring
