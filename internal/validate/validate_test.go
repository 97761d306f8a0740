// SPDX-License-Identifier: MIT

package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_AccumulatesErrors(t *testing.T) {
	v := New()
	v.Range("generator.scale", 0, 1, 64)
	v.NotEmpty("api.listenAddr", "  ")
	v.OneOf("tracing.exporter", "zipkin", []string{"grpc", "http"})
	v.NonNegative("generator.margin", -1)
	v.FloatRange("tracing.sampleRate", 1.5, 0, 1)

	require.False(t, v.IsValid())
	err := v.Err()
	require.Error(t, err)

	var ve ValidationError
	require.True(t, errors.As(err, &ve))
	fields := make([]string, 0, len(ve.Errors()))
	for _, e := range ve.Errors() {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{
		"generator.scale",
		"api.listenAddr",
		"tracing.exporter",
		"generator.margin",
		"tracing.sampleRate",
	}, fields)
	assert.Contains(t, err.Error(), "; ")
}

func TestValidator_ValidProducesNil(t *testing.T) {
	v := New()
	v.Range("x", 5, 1, 10)
	v.OneOf("y", "a", []string{"a", "b"})
	v.LogLevel("logLevel", "debug")
	v.ListenAddr("api.listenAddr", ":8080")
	v.ListenAddr("api.listenAddr", "127.0.0.1:9000")

	assert.True(t, v.IsValid())
	assert.NoError(t, v.Err())
}

func TestValidator_ListenAddr(t *testing.T) {
	for _, addr := range []string{"8080", "localhost", ":0", ":70000", "host:abc"} {
		t.Run(addr, func(t *testing.T) {
			v := New()
			v.ListenAddr("addr", addr)
			assert.False(t, v.IsValid())
		})
	}
}

func TestValidator_LogLevel(t *testing.T) {
	v := New()
	v.LogLevel("logLevel", "verbose")

	require.Len(t, v.Errors(), 1)
	assert.Equal(t, "verbose", v.Errors()[0].Value)
}

func TestValidationError_SingleMessage(t *testing.T) {
	v := New()
	v.Port("port", 0)

	assert.Equal(t, "validation failed for port: port must be between 1 and 65535, got 0", v.Err().Error())
}
