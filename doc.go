// Package helix is a client library for the Helix media-management REST service.
//
// The service organises videos, tracks, images and albums under a tenancy
// hierarchy of resellers, companies and libraries. Every authenticated request
// carries a short-lived signature fetched from the service for a license key.
//
// # Key Components
//
//   - Config: credentials, scoped URL building, signature acquisition and caching
//   - SignatureStore: where memoized signatures live (in-memory by default,
//     persistent backends in the database package)
//   - Collection: create/find/list operations for one media kind
//   - Video, Track, Album, Image: instance operations (load, update, destroy,
//     download, play, stillframe)
//   - Statistics: delivery, ingest and storage reports
//
// # Example Usage
//
//	creds, err := helix.LoadCredentials(helix.DefaultCredentialsFile)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg, err := helix.New(creds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	videos, err := helix.NewVideos(cfg).Where(ctx, url.Values{"query": {"cats"}})
//
//	video, err := helix.NewVideos(cfg).Find(ctx, "239c59483d346")
//	data, err := video.Download(ctx, "mp4")
//
// Signatures are cached per license key and signature type for
// SignatureDuration; an expired signature is refreshed on its next use.
package helix
