// Package auth seals and checks party passwords.
//
// A CredentialChecker turns a password into its stored form (Seal) and
// compares a supplied password against that form (Match). Two schemes exist:
//
//   - plaintext: the stored form is the password itself, compared exactly
//     and case-sensitively. This is the default and keeps existing party
//     records readable.
//   - bcrypt: the stored form is a bcrypt hash.
//
// Parties created under one scheme cannot log in under the other.
package auth
