// Package sse streams chat updates to HTTP clients as Server-Sent Events.
//
// A Hub keeps the connected clients and routes each published event to
// the clients whose ID matches a glob pattern. Chat subscribers register
// as "chat:<chat_id>:<uuid>", so publishing to "chat:<chat_id>:*" reaches
// every viewer of that chat.
//
//	hub := sse.NewHub(log, sse.DefaultKeepAlive)
//	go hub.Run()
//	hub.Publish("chat:42:*", sse.EventMessageEdited, payload)
package sse
