// Package profiles resolves parsed packets and registrations into one Profile
// per person.
//
// Merging keys on the exact order email. Registrations seed profiles first,
// then each packet attaches to the profile already holding its email or
// starts a new one. Profiles are accumulated as pending values and frozen
// once merging completes; a frozen Profile exposes read-only accessors.
package profiles
