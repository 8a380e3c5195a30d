package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's login session
func (r *CacheKeyStruct) StudentSessionKey(studentID string) string {
	return fmt.Sprintf("login:%s", studentID)
}

// ProgressKey returns the cache key holding the full progress record for a
// (student, exam) pair. One entry per pair, value = JSON-serialized record.
func (r *CacheKeyStruct) ProgressKey(studentID, examID string) string {
	return fmt.Sprintf("student:%s:exam:%s:progress", studentID, examID)
}

// ExamPayloadKey returns the cache key for an exam's student-facing payload
func (r *CacheKeyStruct) ExamPayloadKey(examID string) string {
	return fmt.Sprintf("exam:%s:payload", examID)
}

var CacheKey = NewCacheKeyStruct()
