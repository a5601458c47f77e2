package common

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "jwt"

// MaxProjectKeyLength bounds a normalized project key.
const MaxProjectKeyLength = 10
