// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package api

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLogValue(t *testing.T) {
	assert.Equal(t, "backup-db", sanitizeLogValue("backup-db"))
	assert.Equal(t, "a\\x0ab", sanitizeLogValue("a\nb"))
	assert.Equal(t, "x\\x0d\\x09y", sanitizeLogValue("x\r\ty"))
	assert.Equal(t, "del\\x7f", sanitizeLogValue("del\x7f"))
}

func TestGenerateETagDeterministic(t *testing.T) {
	a := generateETag([]byte("hello"))
	b := generateETag([]byte("hello"))
	c := generateETag([]byte("world"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestClampPage(t *testing.T) {
	limit, offset := clampPage(0, -5, 50, 500)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, _ = clampPage(9999, 0, 50, 500)
	assert.Equal(t, 500, limit)

	limit, offset = clampPage(10, 20, 50, 500)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)
}

func TestGetIntParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=25&bad=abc", nil)
	assert.Equal(t, 25, getIntParam(r, "limit", 50))
	assert.Equal(t, 50, getIntParam(r, "bad", 50))
	assert.Equal(t, 50, getIntParam(r, "missing", 50))
}
