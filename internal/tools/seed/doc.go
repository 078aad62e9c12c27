// Package seed loads a YAML manifest of providers, blog posts, calendar
// events and an admin account into the directory through its services.
//
// Runs are idempotent: providers and posts are matched by name or title, and
// events by title and start time, so re-running a manifest only adds what is
// missing.
package seed
