package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamSessionKey returns the cache key for an exam session's metadata hash
func (r *CacheKeyStruct) ExamSessionKey(token string) string {
	return fmt.Sprintf("exam_session:%s", token)
}

// ExamSessionAnsweredKey returns the cache key for the set of answered question IDs
func (r *CacheKeyStruct) ExamSessionAnsweredKey(token string) string {
	return fmt.Sprintf("exam_session:%s:answered", token)
}

// LoginAttemptsKey returns the cache key for a client's failed login timestamps
func (r *CacheKeyStruct) LoginAttemptsKey(clientID string) string {
	return fmt.Sprintf("login_attempts:%s", clientID)
}

var CacheKey = NewCacheKeyStruct()
