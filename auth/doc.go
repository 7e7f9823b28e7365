// Package auth issues and verifies the bearer tokens that scope HTTP
// clients to a single chat.
//
// Tokens are JWTs whose subject is the chat ID. Authentication is off
// unless a secret is configured.
//
//	svc, err := auth.NewService(cfg)
//	token, err := svc.Issue("42")
//	claims, err := svc.Parse(token)
package auth
