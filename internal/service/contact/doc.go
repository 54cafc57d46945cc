// Package contact implements the contact-form workflow.
//
// Submit normalises and validates the form, persists it through the
// Repository, then fans the stored submission out to post-submit hooks
// (email notification, S3 archive). Hooks run in the background; their
// failures are logged and never reach the caller.
package contact
