// Package services implements [APIClient], the HTTP client for the moodcrowd backend.
//
// # Endpoints
//
//   - POST /auth/register {email, password}
//   - POST /auth/login {email, password}
//   - GET /playlists/list : []models.Playlist, 401 when the session cookie is missing
//   - POST /playlists/save {name, tracks}
//   - POST /analyze : multipart field "files", sent to the analyzer host
//
// # Credentials
//
// Every call except /analyze goes through a client with a cookie jar. The jar can be written to
// and read from a JSON session file ([APIClient.SaveSession], [APIClient.LoadSession]) so separate
// CLI invocations share one login, or seeded from a browser cURL capture ([APIClient.ImportSession]).
//
// # Error Handling
//
// All failures are returned as [*APIError]. A transport failure has Status 0.
// [APIError] unwraps to the shared sentinels:
//   - [shared.ErrServiceUnavailable] : no HTTP response (offline, timeout, cancelled)
//   - [shared.ErrNotAuthenticated] : 401 or 403
//   - [shared.ErrAPIRequest] : any other non-2xx status
//
// Calls are never retried.
package services
