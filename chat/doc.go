// Package chat is the in-process chat transport: an in-memory store of
// chats and messages that the transcriber talks to through
// transcriber.Messenger. Every change is published to SSE subscribers of
// the chat.
package chat
