// Package osuapi provides a client for the osu! API v1.
//
// # Features
//
//   - Typed endpoint wrappers for users, beatmaps, scores, multiplayer
//     matches and replays
//   - Raw .osu beatmap file downloads from the main site
//   - Nullable scalar types that absorb the API's string-encoded numbers
//     and null fields
//   - Automatic retries with exponential backoff for transport failures,
//     429 and 5xx responses, honoring Retry-After
//   - Optional circuit breaker for sustained server trouble
//
// # Usage
//
//	client, err := osuapi.NewClient(apiKey, logger)
//	if err != nil {
//		return err
//	}
//
//	user, err := client.GetUser(ctx, osuapi.UserQuery{User: "peppy"})
//	if err != nil {
//		return err
//	}
//	if user == nil {
//		return errors.New("no such user")
//	}
//
// The lower-level Route and Request types remain available for endpoints
// or parameter combinations the wrappers do not cover.
package osuapi
