// Package dify implements the driven.InstanceClient port against a Dify
// instance. It speaks two logical APIs: the token-authenticated content API
// (datasets, documents, segments) and the session-authenticated console API
// (login, apps, DSL export/import), which lives above the versioned path
// segment of the content API.
//
// The client owns all reliability mechanics: backoff retries on HTTP 500,
// the opt-in TLS verification fallback, the fixed inter-request delay, and
// lazy console login with a single re-login on session expiry.
package dify
