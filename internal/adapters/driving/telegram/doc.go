// Package telegram drives conversations over the Telegram Bot API using
// long polling. Each chat maps to one session; updates are handled
// sequentially, so turns within a session never interleave.
package telegram
