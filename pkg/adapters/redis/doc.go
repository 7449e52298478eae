// Package redis provides the Redis-backed distributed locker and commit archive.
package redis
