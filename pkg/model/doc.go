// Package model defines the component pattern data model shared by the
// editor, the remote API client and the mock API. Field and Fieldset expose
// copy-returning `With` setters keyed by their JSON attribute names so
// callers can apply one-attribute updates without aliasing the original
// value. Ordering of Fields and Fieldset is significant and is only changed
// through explicit reorder operations.
package model
