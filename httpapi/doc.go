// Package httpapi exposes the chat transport over HTTP.
//
// Clients post audio into a chat, read the chat's messages and follow the
// bot's replies live over Server-Sent Events:
//
//	POST /v1/chats/:chat_id/messages   multipart upload, 202 with message_id
//	GET  /v1/chats/:chat_id/messages   chat history
//	GET  /v1/chats/:chat_id/events     message.sent / message.edited stream
//	GET  /v1/queue                     admission depth and capacity
package httpapi
