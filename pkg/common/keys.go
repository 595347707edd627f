package common

import "fmt"

var (
	keyPrefix string = "mailtriage"

	// Session keys
	sessionPrefix string = "mailtriage:session"
	sessionData   string = "mailtriage:session:%s" // sessionId
)

var Keys = &redisKeys{}

type redisKeys struct{}

func (rk *redisKeys) Prefix() string {
	return keyPrefix
}

// Session keys
func (rk *redisKeys) SessionPrefix() string {
	return sessionPrefix
}

func (rk *redisKeys) SessionData(sessionId string) string {
	return fmt.Sprintf(sessionData, sessionId)
}
