// Package helixtest provides an in-memory fake of the Helix media service
// for tests of code that talks to it.
//
// The fake issues signatures from /api/{type}_key, checks that every request
// carries a signature of the type its route requires, and keeps media
// resources in memory so create, load, list, update and destroy round-trip.
//
// # Features
//
//   - Signature issuing with per-type fetch counters
//   - Scope prefixes (/resellers/x, /companies/x, /libraries/x) accepted in any combination
//   - Media CRUD for videos, tracks, albums and images
//   - file and play actions, stillframes, slices and statistics reports
//   - Upload sessions with multipart file capture
//   - Canned responses for edge cases via Respond
//
// # Usage
//
//	srv := helixtest.NewServer(t, "license-key")
//	guid := srv.Seed(helix.VideoKind, helix.Attributes{"title": "cats"})
//
//	cfg, err := helix.New(helix.Credentials{Site: srv.URL(), LicenseKey: "license-key"})
//	video, err := helix.NewVideos(cfg).Find(ctx, guid)
//
// Requests are recorded and can be inspected with Requests.
package helixtest
