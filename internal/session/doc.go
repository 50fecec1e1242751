// Package session manages party sessions for a single device.
//
// # Lifecycle
//
// A party moves through nonexistent → active → (expired | deleted) →
// nonexistent. There are no other states.
//
//   - CreateParty / RegisterParty: validate, reject case-insensitive name
//     collisions, persist with an expiry (7 days by default)
//   - Login: case-insensitive lookup, password check via auth.CredentialChecker
//   - DeleteParty: remove the party, then its media, then the current user
//   - Logout: forget the current user only
//
// # Expiration
//
// Expired parties are removed lazily by Sweep, which Login, CreateParty and
// CurrentUser run first. A sweep that removes a party also deletes every
// media item whose creator is no longer an active party. There is no timer.
//
// # Errors
//
// ErrValidation, ErrNotFound, ErrInvalidCredentials and ErrConflict are
// returned (possibly wrapped) for display; use errors.Is. Storage failures are
// logged by the kv layer and surface only as missing data.
package session
