// Package service provides the application-level review workflow: it applies
// a learner's answer to a card through the scheduler, records the review, and
// requests parameter optimization once a user has accumulated enough reviews.
//
// Services validate their inputs and return sentinel errors for expected
// conditions; unexpected failures are wrapped in a ServiceError carrying the
// failing operation so callers can differentiate with errors.As.
package service
