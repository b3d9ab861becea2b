// Package redisstore backs the ngio.Storage contract with Redis, so a
// remembered session survives process restarts and can be shared between the
// instances of a horizontally scaled driver. Values are plain strings under a
// configurable key prefix; a missing key reads back as the empty string, which
// the session engine treats the same as no remembered session.
package redisstore
